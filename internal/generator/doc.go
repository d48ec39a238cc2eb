// Package generator assembles WordPress migration plans.
//
// A Generator turns one Configuration into a migration group and an ordered list of migration
// definitions: authors (unless a default author is configured), attachments, optional media per
// media kind, optional tag and category taxonomies, content per WordPress content kind, and comments
// for content bundles that carry a comment field. Definitions are created from catalog templates,
// wired to each other through migration_lookup steps, and passed through the configured extensions.
// The finished plan is checked so that every lookup target is a declared dependency and the
// dependency graph is acyclic.
package generator
