// Package cli constructs the wpmigrate command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. The generate command produces migration plans and the
// extensions command lists the registered migration extensions.
package cli
