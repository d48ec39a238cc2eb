package generate

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/extensions"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RegistryProvider yields the extension registry consulted during generation.
type RegistryProvider func() (*extensions.Registry, error)

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveRegistry(provider RegistryProvider) (*extensions.Registry, error) {
	if provider == nil {
		return extensions.NewDefaultRegistry()
	}
	return provider()
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}
