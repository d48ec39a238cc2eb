package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wpmigrate/internal/extensions"
	pathutils "github.com/temirov/wpmigrate/internal/utils/path"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testHomeDirectoryConstant         = "/home/editor"
	testConfigurationContentConstant  = "common:\n  log_level: warn\n  log_format: console\ntools:\n  generate:\n    site: profiles/site.yml\n    output: ~/plans\n    dry_run: \"yes\"\n"
	testInvalidLevelContentConstant   = "common:\n  log_level: verbose\n"
)

func writeConfigurationFile(testInstance *testing.T, contents string) string {
	testInstance.Helper()
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(contents), 0o600))
	return configurationPath
}

func TestInitializeConfigurationResolvesGeneratePaths(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testConfigurationContentConstant)

	application := NewApplication()
	application.homeExpander = pathutils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil })
	application.configurationFilePath = configurationPath

	rootCommand := application.rootCommand
	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)

	generateConfiguration := application.generateCommandConfiguration()
	require.Equal(testInstance, filepath.Join(filepath.Dir(configurationPath), "profiles", "site.yml"), generateConfiguration.Site)
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "plans"), generateConfiguration.Output)
	require.Empty(testInstance, generateConfiguration.Templates)
	require.True(testInstance, generateConfiguration.DryRun)

	contextPath, contextAvailable := application.commandContextAccessor.ConfigurationFilePath(rootCommand.Context())
	require.True(testInstance, contextAvailable)
	require.Equal(testInstance, configurationPath, contextPath)
}

func TestExecuteArgumentsAppliesLoggingFlags(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testConfigurationContentConstant)

	application := NewApplication()
	var output bytes.Buffer
	application.rootCommand.SetOut(&output)

	executionError := application.ExecuteArguments([]string{"--config", configurationPath, "--log-level", "ERROR", "extensions"})
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)
	require.Contains(testInstance, output.String(), extensions.YoastExtensionID)
}

func TestExecuteArgumentsRejectsInvalidLogging(testInstance *testing.T) {
	testCases := []struct {
		name      string
		contents  string
		arguments []string
	}{
		{name: "configured level", contents: testInvalidLevelContentConstant, arguments: []string{"extensions"}},
		{name: "flag format", contents: testConfigurationContentConstant, arguments: []string{"--log-format", "xml", "extensions"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			configurationPath := writeConfigurationFile(testingInstance, testCase.contents)

			application := NewApplication()
			application.rootCommand.SetOut(&bytes.Buffer{})
			application.rootCommand.SetErr(&bytes.Buffer{})

			arguments := append([]string{"--config", configurationPath}, testCase.arguments...)
			require.Error(testingInstance, application.ExecuteArguments(arguments))
		})
	}
}
