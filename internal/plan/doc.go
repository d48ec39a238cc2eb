// Package plan persists generated migration plans, either as a directory of configuration files
// or as a single YAML stream.
package plan
