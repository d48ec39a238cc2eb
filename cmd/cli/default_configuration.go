package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationYAML holds the common logging settings and the tools.generate section used
// when no configuration file overrides them.
//
//go:embed default_config.yaml
var defaultConfigurationYAML []byte

// EmbeddedDefaultConfiguration returns a private copy of the built-in wpmigrate configuration
// together with its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationYAML), configurationTypeConstant
}
