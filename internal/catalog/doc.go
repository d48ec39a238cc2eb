// Package catalog provides the template catalog: base migration definitions keyed by plugin
// identifier. Templates ship embedded in the binary and may be overridden from a directory.
package catalog
