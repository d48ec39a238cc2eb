package generate

import "strings"

const (
	siteConfigurationKeyConstant      = "site"
	outputConfigurationKeyConstant    = "output"
	templatesConfigurationKeyConstant = "templates"
	dryRunConfigurationKeyConstant    = "dry_run"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures persisted settings for the generate command. Paths read from a
// configuration file are resolved against that file's directory before they reach the command.
type CommandConfiguration struct {
	Site      string `mapstructure:"site"`
	Output    string `mapstructure:"output"`
	Templates string `mapstructure:"templates"`
	DryRun    bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides default generate command settings. An empty output streams
// the plan to standard output.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues exposes the defaults keyed under prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(prefix, siteConfigurationKeyConstant):      defaults.Site,
		prefixedKey(prefix, outputConfigurationKeyConstant):    defaults.Output,
		prefixedKey(prefix, templatesConfigurationKeyConstant): defaults.Templates,
		prefixedKey(prefix, dryRunConfigurationKeyConstant):    defaults.DryRun,
	}
}

// Sanitize trims surrounding whitespace from every path.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Site = strings.TrimSpace(configuration.Site)
	sanitized.Output = strings.TrimSpace(configuration.Output)
	sanitized.Templates = strings.TrimSpace(configuration.Templates)
	return sanitized
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
