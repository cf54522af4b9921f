// Package tunable manages kernel and boot-loader tunables: named system
// parameters an operator can set, toggle, and comment. It is the reference
// consumer of the schema engine; its method argument schemas are built
// from a registered base definition plus a structural patch.
package tunable

import (
	"context"
	"errors"
)

// Type says where a tunable is applied.
type Type string

const (
	TypeSysctl Type = "SYSCTL"
	TypeLoader Type = "LOADER"
	TypeRC     Type = "RC"
)

// Types lists the valid tunable types in display order.
func Types() []string {
	return []string{string(TypeSysctl), string(TypeLoader), string(TypeRC)}
}

// Tunable is a single system parameter record.
type Tunable struct {
	ID      int64  `json:"id"`
	Var     string `json:"var"`
	Value   string `json:"value"`
	Type    Type   `json:"type"`
	Comment string `json:"comment"`
	Enabled bool   `json:"enabled"`
}

// ErrNotFound is returned by stores when a tunable does not exist.
var ErrNotFound = errors.New("tunable not found")

// Store persists tunables.
type Store interface {
	List(ctx context.Context) ([]Tunable, error)
	Get(ctx context.Context, id int64) (Tunable, error)
	GetByVar(ctx context.Context, name string) (Tunable, error)
	Create(ctx context.Context, t Tunable) (int64, error)
	Update(ctx context.Context, t Tunable) error
	Delete(ctx context.Context, id int64) error
}
