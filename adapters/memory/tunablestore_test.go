package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/pelagos/shoal/domain/tunable"
)

func TestTunableStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewTunableStore()

	id, err := store.Create(ctx, tunable.Tunable{
		Var:     "kern.maxfiles",
		Value:   "65536",
		Type:    tunable.TypeSysctl,
		Enabled: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Var != "kern.maxfiles" || got.Value != "65536" {
		t.Errorf("Get = %+v", got)
	}

	byVar, err := store.GetByVar(ctx, "kern.maxfiles")
	if err != nil {
		t.Fatalf("GetByVar: %v", err)
	}
	if byVar.ID != id {
		t.Errorf("GetByVar id = %d, want %d", byVar.ID, id)
	}

	got.Value = "131072"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := store.Get(ctx, id)
	if updated.Value != "131072" {
		t.Errorf("updated value = %q", updated.Value)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, tunable.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByVar(ctx, "kern.maxfiles"); !errors.Is(err, tunable.ErrNotFound) {
		t.Errorf("GetByVar after delete = %v, want ErrNotFound", err)
	}
}

func TestTunableStoreUpdateReindexesVar(t *testing.T) {
	ctx := context.Background()
	store := NewTunableStore()

	id, _ := store.Create(ctx, tunable.Tunable{Var: "old.name", Value: "1", Type: tunable.TypeSysctl})

	if err := store.Update(ctx, tunable.Tunable{ID: id, Var: "new.name", Value: "1", Type: tunable.TypeSysctl}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := store.GetByVar(ctx, "old.name"); !errors.Is(err, tunable.ErrNotFound) {
		t.Errorf("old var still indexed: %v", err)
	}
	if got, err := store.GetByVar(ctx, "new.name"); err != nil || got.ID != id {
		t.Errorf("GetByVar(new.name) = %+v, %v", got, err)
	}
}

func TestTunableStoreListOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewTunableStore()

	for _, name := range []string{"c", "a", "b"} {
		if _, err := store.Create(ctx, tunable.Tunable{Var: name, Value: "1", Type: tunable.TypeSysctl}); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d items", len(all))
	}
	for i, want := range []string{"c", "a", "b"} {
		if all[i].Var != want {
			t.Errorf("List[%d].Var = %q, want %q", i, all[i].Var, want)
		}
	}

	if err := store.Update(ctx, tunable.Tunable{ID: 99, Var: "x", Value: "1"}); !errors.Is(err, tunable.ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, 99); !errors.Is(err, tunable.ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
	}
}
