package schema

import (
	"errors"
	"testing"
)

func TestRefResolveCopiesTarget(t *testing.T) {
	reg := NewSchemas()
	reg.MustAdd(NewDict("tunable_entry", []Schema{
		NewInt("id", Required()),
		NewStr("var", Required()),
	}))

	resolved, err := NewRenamedRef("tunable_entry", "result").Resolve(reg)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}

	if resolved.Name() != "result" {
		t.Errorf("name = %q, want result", resolved.Name())
	}
	if !resolved.Resolved() {
		t.Error("resolved flag not set")
	}
	if resolved.ShouldRegister() {
		t.Error("resolved copy must not re-register")
	}

	// Same structure as the registered definition.
	cp, ok := resolved.(*Dict)
	if !ok {
		t.Fatalf("resolved type = %T, want *Dict", resolved)
	}
	for _, name := range []string{"id", "var"} {
		if _, ok := cp.Get(name); !ok {
			t.Errorf("copy is missing child %q", name)
		}
	}
}

func TestRefResolveIsIndependentOfTarget(t *testing.T) {
	reg := NewSchemas()
	reg.MustAdd(NewDict("base", []Schema{NewStr("x")}))

	resolved, err := NewRef("base").Resolve(reg)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	cp := resolved.(*Dict)

	// Mutating the resolved copy never touches the registry entry.
	cp.Set(NewStr("y"))
	cp.Remove("x")

	orig := reg.Get("base").(*Dict)
	if _, ok := orig.Get("y"); ok {
		t.Error("mutating resolved copy added child to registered schema")
	}
	if _, ok := orig.Get("x"); !ok {
		t.Error("mutating resolved copy removed child from registered schema")
	}
}

func TestRefResolveMaterializesNestedRef(t *testing.T) {
	// The registered target still carries a deferred node; resolving a Ref
	// to it must yield a fully usable copy.
	reg := NewSchemas()
	reg.MustAdd(NewStr("hostname"))
	reg.MustAdd(NewDict("outer", []Schema{NewRef("hostname")}))

	resolved, err := NewRenamedRef("outer", "outer_copy").Resolve(reg)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}

	cp := resolved.(*Dict)
	child, ok := cp.Get("hostname")
	if !ok {
		t.Fatal("copy is missing child hostname")
	}
	if _, ok := child.(*Str); !ok {
		t.Errorf("nested child type = %T, want *Str (materialized Ref)", child)
	}
	if _, err := cp.Clean(map[string]any{"hostname": "nas01"}); err != nil {
		t.Errorf("Clean() through nested ref: %v", err)
	}
}

func TestRefResolveUnknownName(t *testing.T) {
	_, err := NewRef("ghost").Resolve(NewSchemas())
	var rerr *ResolverError
	if !errors.As(err, &rerr) {
		t.Fatalf("Resolve() error = %v (%T), want *ResolverError", err, err)
	}
}

func TestRefDefaultsToTargetName(t *testing.T) {
	ref := NewRef("tunable_entry")
	if ref.Name() != "tunable_entry" {
		t.Errorf("name = %q, want tunable_entry", ref.Name())
	}
}

func TestRefResolvesForwardDeclaration(t *testing.T) {
	// The Ref is declared first; the target is registered afterwards.
	reg := NewSchemas()
	ref := NewRef("late")
	reg.MustAdd(NewStr("late", RegisterSchema()))

	resolved, err := ref.Resolve(reg)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if _, ok := resolved.(*Str); !ok {
		t.Errorf("resolved type = %T, want *Str", resolved)
	}
}

func TestCleanBeforeResolutionFails(t *testing.T) {
	if _, err := NewRef("x").Clean("anything"); err == nil {
		t.Error("Ref.Clean before resolution did not fail")
	}
	if _, err := NewPatch("x", "y").Clean("anything"); err == nil {
		t.Error("Patch.Clean before resolution did not fail")
	}
}
