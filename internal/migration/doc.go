// Package migration models declarative migration definitions: source extraction rules,
// ordered field-mapping pipelines, destination bindings, and dependency edges.
//
// Definitions are plain values. Clone produces an independent copy so that every stage of plan
// generation can hand a snapshot to the next stage without aliasing. The YAML encoding of these
// types is the contract consumed by the migration execution engine.
package migration
