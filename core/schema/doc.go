/*
Package schema is the type system behind every RPC method the daemon
exposes: named schema definitions that declare the shape of method inputs
and outputs, validate and coerce values against those shapes, and emit
JSON-Schema-like documents for clients and documentation tooling.

# Declaration and resolution

Schemas are declared in two phases. During declaration, definitions are
built in any order and may reference each other by name only:

	schemas := schema.NewSchemas()
	schemas.MustAdd(schema.NewDict("tunable_create", []schema.Schema{
		schema.NewStr("var", schema.Required()),
		schema.NewStr("value", schema.Required()),
		schema.NewEnum("type", []string{"SYSCTL", "LOADER", "RC"}, schema.Default("SYSCTL")),
		schema.NewBool("enabled", schema.Default(true)),
	}))

A one-time resolution pass then materializes every deferred node. After
it completes, the graph is immutable and safe for unsynchronized
concurrent reads; Clean, Validate and Dump never touch shared state.

# Deferred references

Ref points at a registered schema by name and resolves to an independent,
renamed deep copy, so one canonical definition can back many parameter
names without duplication:

	schema.NewRenamedRef("tunable_entry", "result")

Patch points at a registered object schema and applies an ordered list of
structural edits to a private copy, never mutating the original:

	schema.NewPatch("tunable_create", "tunable_update",
		schema.RemoveItem("var"),
		schema.EditItem("value", unrequire),
	).WithRegister()

OROperator is a tagged union with implicit discrimination: alternatives
are tried in declared order and the first match wins. Declaration order
is part of the contract, not an implementation accident.

# Error surface

Request-time faults are *Error (one attribute-scoped message plus an
optional code) or *ValidationErrors (an ordered aggregate). Resolution
faults are *ResolverError and should be treated as fatal at startup.

# Raw shapes

ConvertShape builds schemas from plain map descriptions; ParseFile and
ParseDir load such descriptions from YAML, so plugin authors can declare
schemas without writing Go.
*/
package schema
