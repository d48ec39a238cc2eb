package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wpmigrate/internal/extensions"
	"github.com/temirov/wpmigrate/internal/generator"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	unknownExtensionMessageTemplate  = "README example enables unknown extension %s"
)

func readmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestReadmeGenerationConfigurationParses(testInstance *testing.T) {
	snippetContent := readmeConfigurationSnippet(testInstance)

	configuration, parseError := generator.ParseConfiguration(readmeFileNameConstant, []byte(snippetContent))
	require.NoError(testInstance, parseError)
	require.NoError(testInstance, configuration.Validate())

	require.Equal(testInstance, "blog", configuration.GroupID)
	require.True(testInstance, configuration.Post.FilterAutop)
	require.True(testInstance, configuration.UseMedia)

	registry, registryError := extensions.NewDefaultRegistry()
	require.NoError(testInstance, registryError)
	registered := make(map[string]struct{})
	for _, descriptor := range registry.Definitions() {
		registered[descriptor.ID] = struct{}{}
	}
	for _, extensionID := range configuration.Extensions {
		_, known := registered[extensionID]
		require.Truef(testInstance, known, unknownExtensionMessageTemplate, extensionID)
	}
}
