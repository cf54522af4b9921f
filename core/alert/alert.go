// Package alert provides the generic alert delivery contract: sources
// produce alerts, the service collects and exposes them. The specific
// business checks behind a source live with the domain that owns them.
package alert

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Level is the severity of an alert.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alert is a single condition reported by a source.
type Alert struct {
	ID       uuid.UUID `json:"id"`
	Source   string    `json:"source"`
	Level    Level     `json:"-"`
	LevelStr string    `json:"level"`
	Title    string    `json:"title"`
	Text     string    `json:"text"`
	Datetime time.Time `json:"datetime"`
}

// Source produces the current set of alerts for one concern. Check must
// be side-effect-free; it is re-run on every processing cycle.
type Source interface {
	Name() string
	Check(ctx context.Context) ([]Alert, error)
}

// Metrics receives active-alert counts after each processing cycle.
type Metrics interface {
	SetActiveAlerts(source, level string, count float64)
}

// Service collects alerts from registered sources and serves snapshots.
type Service struct {
	mu      sync.RWMutex
	sources []Source
	current map[string][]Alert
	logger  zerolog.Logger
	metrics Metrics
}

// NewService creates an alert service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		current: make(map[string][]Alert),
		logger:  logger,
	}
}

// SetMetrics attaches a metrics sink. Call before Process or Run start.
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// AddSource registers a source. Sources are checked in registration order.
func (s *Service) AddSource(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, src)
}

// Process runs every source and replaces its current alerts. A failing
// source keeps its previous alerts and is logged, not fatal.
func (s *Service) Process(ctx context.Context) {
	s.mu.RLock()
	sources := append([]Source(nil), s.sources...)
	s.mu.RUnlock()

	for _, src := range sources {
		alerts, err := src.Check(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("source", src.Name()).Msg("alert source check failed")
			continue
		}
		now := time.Now().UTC()
		for i := range alerts {
			if alerts[i].ID == uuid.Nil {
				alerts[i].ID = uuid.New()
			}
			alerts[i].Source = src.Name()
			alerts[i].LevelStr = alerts[i].Level.String()
			if alerts[i].Datetime.IsZero() {
				alerts[i].Datetime = now
			}
		}
		s.mu.Lock()
		s.current[src.Name()] = alerts
		s.mu.Unlock()
	}

	s.publishMetrics(sources)
}

// publishMetrics refreshes the per-source gauges, including zeroes for
// levels whose alerts have cleared.
func (s *Service) publishMetrics(sources []Source) {
	if s.metrics == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, src := range sources {
		counts := make(map[Level]int)
		for _, a := range s.current[src.Name()] {
			counts[a.Level]++
		}
		for _, level := range []Level{LevelInfo, LevelWarning, LevelCritical} {
			s.metrics.SetActiveAlerts(src.Name(), level.String(), float64(counts[level]))
		}
	}
}

// List returns a snapshot of all current alerts, ordered by source name.
func (s *Service) List() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.current))
	for name := range s.current {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Alert
	for _, name := range names {
		out = append(out, s.current[name]...)
	}
	return out
}

// Run processes sources on the given interval until the context ends.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.Process(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Process(ctx)
		}
	}
}
