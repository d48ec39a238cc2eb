// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Build and validate the plan without writing it"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun ExecutionFlagDefinition
}

// DefaultExecutionFlagDefinitions enables the shared dry-run toggle.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		DryRun: ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true},
	}
}

// BindExecutionFlags attaches standardized execution flags to the provided command. The flags are
// yes/no toggles and can be read back with ResolveExecutionFlag.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}
	if !definitions.DryRun.Enabled {
		return
	}
	AddToggleFlag(command.Flags(), nil, definitions.DryRun.Name, definitions.DryRun.Shorthand, defaults.DryRun, definitions.DryRun.Usage)
}

// ResolveExecutionFlag returns the value of a toggle flag when it was set on the command line.
func ResolveExecutionFlag(command *cobra.Command, name string) (bool, bool) {
	if command == nil {
		return false, false
	}
	flag := command.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return false, false
	}
	value, parseError := ParseToggleValue(flag.Value.String())
	if parseError != nil {
		return false, false
	}
	return value, true
}
