package tunable

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pelagos/shoal/core/alert"
	"github.com/pelagos/shoal/core/method"
	"github.com/pelagos/shoal/core/schema"
)

// Service exposes tunable management as RPC methods.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a tunable service over the given store.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// RegisterMethods declares the service's schemas and methods. The create
// schema registers itself during resolution; the update schema is a patch
// of it in update mode: var is immutable, a body is still required, and
// absent fields are left untouched rather than reset to their create
// defaults.
func (s *Service) RegisterMethods(reg *method.Registry) error {
	schemas := reg.Schemas()

	if err := schemas.Add(schema.NewDict("tunable_entry", []schema.Schema{
		schema.NewInt("id", schema.Required()),
		schema.NewStr("var", schema.Required()),
		schema.NewStr("value", schema.Required()),
		schema.NewEnum("type", Types()),
		schema.NewStr("comment"),
		schema.NewBool("enabled"),
	})); err != nil {
		return err
	}

	create := schema.NewDict("tunable_create", []schema.Schema{
		schema.NewStr("var", schema.Required()),
		schema.NewStr("value", schema.Required()),
		schema.NewEnum("type", Types(), schema.Default(string(TypeSysctl))),
		schema.NewStr("comment", schema.Default("")),
		schema.NewBool("enabled", schema.Default(true)),
	}, schema.RegisterSchema())

	update := schema.NewPatch("tunable_create", "tunable_update",
		schema.RemoveItem("var"),
		schema.AttrItem(map[string]any{
			"update":      true,
			"required":    true,
			"description": "Fields to change; var is immutable",
		}),
	).WithRegister()

	methods := []*method.Method{
		{
			Name:        "tunable.query",
			Description: "List all tunables.",
			Returns:     schema.NewList("tunable_entries", []schema.Schema{schema.NewRef("tunable_entry")}),
			Handler:     s.query,
		},
		{
			Name:        "tunable.create",
			Description: "Create a tunable.",
			Accepts:     []schema.Schema{create},
			Returns:     schema.NewRenamedRef("tunable_entry", "tunable_create_result"),
			Handler:     s.create,
		},
		{
			Name:        "tunable.update",
			Description: "Update a tunable by id.",
			Accepts:     []schema.Schema{schema.NewInt("id", schema.Required()), update},
			Returns:     schema.NewRenamedRef("tunable_entry", "tunable_update_result"),
			Handler:     s.update,
		},
		{
			Name:        "tunable.delete",
			Description: "Delete a tunable by id.",
			Accepts:     []schema.Schema{schema.NewInt("id", schema.Required())},
			Handler:     s.delete,
		},
	}

	for _, m := range methods {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) query(ctx context.Context, args []any) (any, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tunables: %w", err)
	}
	out := make([]any, 0, len(records))
	for _, t := range records {
		out = append(out, entryMap(t))
	}
	return out, nil
}

func (s *Service) create(ctx context.Context, args []any) (any, error) {
	data := args[0].(map[string]any)

	name := data["var"].(string)
	if _, err := s.store.GetByVar(ctx, name); err == nil {
		verrors := schema.NewValidationErrors()
		verrors.Add("tunable_create.var", fmt.Sprintf("Tunable %q already exists", name), schema.EEXIST)
		return nil, verrors.Check()
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup tunable %q: %w", name, err)
	}

	record := Tunable{
		Var:     name,
		Value:   data["value"].(string),
		Type:    Type(data["type"].(string)),
		Comment: data["comment"].(string),
		Enabled: data["enabled"].(bool),
	}
	id, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("create tunable %q: %w", name, err)
	}
	record.ID = id

	s.logger.Info().Str("var", record.Var).Str("type", string(record.Type)).Msg("tunable created")
	return entryMap(record), nil
}

func (s *Service) update(ctx context.Context, args []any) (any, error) {
	id := args[0].(int64)
	data := args[1].(map[string]any)

	record, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &schema.Error{Attribute: "id", Message: "Tunable does not exist", Code: schema.ENOENT}
		}
		return nil, fmt.Errorf("get tunable %d: %w", id, err)
	}

	if v, ok := data["value"].(string); ok {
		record.Value = v
	}
	if v, ok := data["type"].(string); ok {
		record.Type = Type(v)
	}
	if v, ok := data["comment"].(string); ok {
		record.Comment = v
	}
	if v, ok := data["enabled"].(bool); ok {
		record.Enabled = v
	}

	if err := s.store.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update tunable %d: %w", id, err)
	}

	s.logger.Info().Int64("id", id).Str("var", record.Var).Msg("tunable updated")
	return entryMap(record), nil
}

func (s *Service) delete(ctx context.Context, args []any) (any, error) {
	id := args[0].(int64)
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &schema.Error{Attribute: "id", Message: "Tunable does not exist", Code: schema.ENOENT}
		}
		return nil, fmt.Errorf("delete tunable %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("tunable deleted")
	return true, nil
}

func entryMap(t Tunable) map[string]any {
	return map[string]any{
		"id":      t.ID,
		"var":     t.Var,
		"value":   t.Value,
		"type":    string(t.Type),
		"comment": t.Comment,
		"enabled": t.Enabled,
	}
}

// LoaderRebootSource raises a warning while enabled loader tunables exist:
// they only take effect after the next boot.
type LoaderRebootSource struct {
	store Store
}

// NewLoaderRebootSource creates the reboot-required alert source.
func NewLoaderRebootSource(store Store) *LoaderRebootSource {
	return &LoaderRebootSource{store: store}
}

func (s *LoaderRebootSource) Name() string { return "tunable.loader_reboot" }

func (s *LoaderRebootSource) Check(ctx context.Context) ([]alert.Alert, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, t := range records {
		if t.Enabled && t.Type == TypeLoader {
			pending = append(pending, t.Var)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	return []alert.Alert{{
		Level: alert.LevelWarning,
		Title: "Reboot required to apply loader tunables",
		Text:  fmt.Sprintf("Loader tunables take effect at boot: %s", strings.Join(pending, ", ")),
	}}, nil
}
