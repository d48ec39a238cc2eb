package generate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/catalog"
	"github.com/temirov/wpmigrate/internal/extensions"
	"github.com/temirov/wpmigrate/internal/generator"
	"github.com/temirov/wpmigrate/internal/migration"
	"github.com/temirov/wpmigrate/internal/plan"
	"github.com/temirov/wpmigrate/internal/schema"
	"github.com/temirov/wpmigrate/internal/site"
	"github.com/temirov/wpmigrate/internal/utils"
	"github.com/temirov/wpmigrate/internal/utils/flags"
	pathutils "github.com/temirov/wpmigrate/internal/utils/path"
)

const (
	commandUseConstant                       = "generate [generation-config]"
	commandShortDescriptionConstant          = "Generate a WordPress migration plan"
	commandLongDescriptionConstant           = "generate reads a generation configuration and a target site profile and emits the migration group and migration definitions that import a WordPress export."
	siteFlagNameConstant                     = "site"
	siteFlagDescriptionConstant              = "Path to the target site profile (modules, users and field schema)"
	outputFlagNameConstant                   = "output"
	outputFlagDescriptionConstant            = "Directory receiving the plan files; the plan is streamed to standard output when empty"
	templatesFlagNameConstant                = "templates"
	templatesFlagDescriptionConstant         = "Directory of YAML templates overriding the embedded migration templates"
	configurationPathRequiredMessageConstant = "generation configuration path required; provide a positional argument or --config flag"
	siteProfileRequiredMessageConstant       = "site profile required; specify --site flag or configuration"
	loadConfigurationErrorTemplateConstant   = "unable to load generation configuration: %w"
	loadProfileErrorTemplateConstant         = "unable to load site profile: %w"
	loadCatalogErrorTemplateConstant         = "unable to load migration templates: %w"
	loadRegistryErrorTemplateConstant        = "unable to load extension registry: %w"
	generatorErrorTemplateConstant           = "unable to construct generator: %w"
	generateErrorTemplateConstant            = "unable to generate migration plan: %w"
	sinkErrorTemplateConstant                = "unable to prepare plan output: %w"
	writeErrorTemplateConstant               = "unable to write migration plan: %w"
	templatesOverriddenMessageConstant       = "migration templates overridden"
	dryRunCompletedMessageConstant           = "dry run completed; plan not written"
	templatesDirectoryFieldConstant          = "templates_directory"
	templateCountFieldConstant               = "template_count"
	migrationIDsFieldConstant                = "migration_ids"
	streamedBytesFieldConstant               = "streamed_bytes"
	planStreamedMessageConstant              = "migration plan streamed to standard output"
)

// CommandBuilder assembles the generate command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	RegistryProvider      RegistryProvider
	FileSystem            afero.Fs
	Probe                 extensions.ContentProbe
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the generate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().String(siteFlagNameConstant, "", siteFlagDescriptionConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)
	command.Flags().String(templatesFlagNameConstant, "", templatesFlagDescriptionConstant)
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.DefaultExecutionFlagDefinitions())

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	contextAccessor := utils.NewCommandContextAccessor()

	configurationPathCandidate := ""
	if len(arguments) > 0 {
		configurationPathCandidate = strings.TrimSpace(arguments[0])
	} else {
		configurationPathFromContext, configurationPathAvailable := contextAccessor.ConfigurationFilePath(command.Context())
		if configurationPathAvailable {
			configurationPathCandidate = strings.TrimSpace(configurationPathFromContext)
		}
	}

	if len(configurationPathCandidate) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(configurationPathRequiredMessageConstant)
	}

	commandConfiguration := builder.resolveConfiguration(command)
	if len(commandConfiguration.Site) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(siteProfileRequiredMessageConstant)
	}

	logger := resolveLogger(builder.LoggerProvider)
	fileSystem := builder.resolveFileSystem()

	generationConfiguration, configurationError := generator.LoadConfiguration(fileSystem, builder.expandPath(configurationPathCandidate))
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
	}

	profile, profileError := site.LoadProfile(fileSystem, commandConfiguration.Site)
	if profileError != nil {
		return fmt.Errorf(loadProfileErrorTemplateConstant, profileError)
	}

	templateCatalog, catalogError := builder.loadCatalog(fileSystem, commandConfiguration.Templates, logger)
	if catalogError != nil {
		return fmt.Errorf(loadCatalogErrorTemplateConstant, catalogError)
	}

	registry, registryError := resolveRegistry(builder.RegistryProvider)
	if registryError != nil {
		return fmt.Errorf(loadRegistryErrorTemplateConstant, registryError)
	}

	probe := builder.Probe
	if probe == nil {
		probe = extensions.NewExportProbe(fileSystem, logger, extensions.DefaultExportProbeOptions())
	}

	planGenerator, generatorError := generator.NewGenerator(generator.Dependencies{
		Logger:         logger,
		Catalog:        templateCatalog,
		Introspector:   schema.NewIntrospector(profile, logger),
		AuthorResolver: profile,
		Extensions:     registry,
		Host:           profile,
		Probe:          probe,
	})
	if generatorError != nil {
		return fmt.Errorf(generatorErrorTemplateConstant, generatorError)
	}

	migrationPlan, generateError := planGenerator.Generate(command.Context(), generationConfiguration)
	if generateError != nil {
		return fmt.Errorf(generateErrorTemplateConstant, generateError)
	}

	if commandConfiguration.DryRun {
		logger.Info(dryRunCompletedMessageConstant, zap.Strings(migrationIDsFieldConstant, migrationPlan.IDs()))
		return nil
	}

	return builder.writePlan(command, fileSystem, commandConfiguration.Output, migrationPlan, logger)
}

func (builder *CommandBuilder) writePlan(command *cobra.Command, fileSystem afero.Fs, outputDirectory string, migrationPlan migration.Plan, logger *zap.Logger) error {
	if len(outputDirectory) > 0 {
		directorySink, sinkError := plan.NewDirectorySink(fileSystem, outputDirectory, logger)
		if sinkError != nil {
			return fmt.Errorf(sinkErrorTemplateConstant, sinkError)
		}
		if writeError := directorySink.Write(command.Context(), migrationPlan); writeError != nil {
			return fmt.Errorf(writeErrorTemplateConstant, writeError)
		}
		return nil
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	streamSink, sinkError := plan.NewStreamSink(outputWriter, logger)
	if sinkError != nil {
		return fmt.Errorf(sinkErrorTemplateConstant, sinkError)
	}
	if writeError := streamSink.Write(command.Context(), migrationPlan); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, writeError)
	}
	logger.Debug(planStreamedMessageConstant, zap.Int64(streamedBytesFieldConstant, outputWriter.BytesWritten()))
	return nil
}

func (builder *CommandBuilder) loadCatalog(fileSystem afero.Fs, templatesDirectory string, logger *zap.Logger) (*catalog.Catalog, error) {
	templateCatalog, catalogError := catalog.NewEmbeddedCatalog()
	if catalogError != nil {
		return nil, catalogError
	}
	if len(templatesDirectory) == 0 {
		return templateCatalog, nil
	}

	loadedCount, loadError := templateCatalog.LoadDirectory(fileSystem, templatesDirectory)
	if loadError != nil {
		return nil, loadError
	}
	logger.Info(
		templatesOverriddenMessageConstant,
		zap.String(templatesDirectoryFieldConstant, templatesDirectory),
		zap.Int(templateCountFieldConstant, loadedCount),
	)
	return templateCatalog, nil
}

// resolveConfiguration merges persisted settings with flags. Flag paths are resolved against the
// working directory.
func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	commandConfiguration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		commandConfiguration = builder.ConfigurationProvider()
	}
	commandConfiguration = commandConfiguration.Sanitize()

	if command == nil {
		return commandConfiguration
	}
	if command.Flags().Changed(siteFlagNameConstant) {
		siteValue, _ := command.Flags().GetString(siteFlagNameConstant)
		commandConfiguration.Site = builder.expandPath(siteValue)
	}
	if command.Flags().Changed(outputFlagNameConstant) {
		outputValue, _ := command.Flags().GetString(outputFlagNameConstant)
		commandConfiguration.Output = builder.expandPath(outputValue)
	}
	if command.Flags().Changed(templatesFlagNameConstant) {
		templatesValue, _ := command.Flags().GetString(templatesFlagNameConstant)
		commandConfiguration.Templates = builder.expandPath(templatesValue)
	}
	if dryRun, dryRunChanged := flags.ResolveExecutionFlag(command, flags.DryRunFlagName); dryRunChanged {
		commandConfiguration.DryRun = dryRun
	}
	return commandConfiguration
}

func (builder *CommandBuilder) resolveFileSystem() afero.Fs {
	if builder.FileSystem == nil {
		return afero.NewOsFs()
	}
	return builder.FileSystem
}

func (builder *CommandBuilder) expandPath(candidatePath string) string {
	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return pathutils.Resolve(homeExpander, "", candidatePath)
}
