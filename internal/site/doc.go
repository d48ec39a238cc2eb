// Package site loads a profile of the target site from YAML and exposes it to plan generation as
// the schema provider, the author resolver, and the host capability check.
package site
