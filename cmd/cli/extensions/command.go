package extensions

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/extensions"
	"github.com/temirov/wpmigrate/internal/utils"
)

const (
	commandUseConstant                = "extensions"
	commandShortDescriptionConstant   = "List the registered migration extensions"
	commandLongDescriptionConstant    = "extensions prints the identifier, label and description of every extension that generation configurations may enable."
	listingRowTemplateConstant        = "%s\t%s\t%s\n"
	loadRegistryErrorTemplateConstant = "unable to load extension registry: %w"
	flushListingErrorTemplateConstant = "unable to write extension listing: %w"
	tabWriterMinimumWidthConstant     = 0
	tabWriterTabWidthConstant         = 8
	tabWriterPaddingConstant          = 2
	tabWriterPaddingCharacterConstant = ' '
	extensionsListedMessageConstant   = "extensions listed"
	extensionCountFieldConstant       = "extension_count"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the extensions command.
type CommandBuilder struct {
	LoggerProvider   LoggerProvider
	RegistryProvider func() (*extensions.Registry, error)
}

// Build constructs the extensions command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	registryProvider := builder.RegistryProvider
	if registryProvider == nil {
		registryProvider = extensions.NewDefaultRegistry
	}
	registry, registryError := registryProvider()
	if registryError != nil {
		return fmt.Errorf(loadRegistryErrorTemplateConstant, registryError)
	}

	descriptors := registry.Definitions()
	tableWriter := tabwriter.NewWriter(utils.NewFlushingWriter(command.OutOrStdout()), tabWriterMinimumWidthConstant, tabWriterTabWidthConstant, tabWriterPaddingConstant, tabWriterPaddingCharacterConstant, 0)
	for _, descriptor := range descriptors {
		fmt.Fprintf(tableWriter, listingRowTemplateConstant, descriptor.ID, descriptor.Label, descriptor.Description)
	}
	if flushError := tableWriter.Flush(); flushError != nil {
		return fmt.Errorf(flushListingErrorTemplateConstant, flushError)
	}

	resolveLogger(builder.LoggerProvider).Debug(extensionsListedMessageConstant, zap.Int(extensionCountFieldConstant, len(descriptors)))
	return nil
}

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
