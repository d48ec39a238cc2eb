// Package extensions defines pluggable migration extensions and the registry that instantiates them
// by identifier.
//
// An extension decides whether it is relevant to a generation run (IsActive), which content kinds it
// may touch (ApplicableContent), and how it rewrites a migration definition (AlterMigration).
// AlterMigration receives a snapshot and returns a new definition value.
package extensions
