// Package planerrors defines the typed failures surfaced by migration plan generation.
//
// Every failure aborts the whole generation run, so callers receive either a complete plan or
// exactly one of these errors (possibly wrapped) and match them with errors.As.
package planerrors
