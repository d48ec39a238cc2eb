package generate_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wpmigrate/cmd/cli/generate"
	"github.com/temirov/wpmigrate/internal/migration"
	"github.com/temirov/wpmigrate/internal/plan"
	"github.com/temirov/wpmigrate/internal/utils"
	pathutils "github.com/temirov/wpmigrate/internal/utils/path"
)

const (
	generationPathConstant    = "/config/generation.yaml"
	applicationConfigConstant = "/config/config.yaml"
	sitePathConstant          = "/config/site.yaml"
	outputDirectoryConstant   = "/plans/wordpress"
	groupIDConstant           = "wordpress"
	contentPostIDConstant     = "wp_wordpress_content_post"
)

const siteProfileConstant = `modules: [metatag]
users:
  admin: 1
schema:
  node:
    article:
      - {name: field_tags, type: entity_reference, target_type: taxonomy_term, target_bundles: [tags]}
`

const generationDocumentConstant = `file_uri: /exports/site.xml
group_id: wordpress
prefix: wp_
post:
  type: article
`

const applicationDocumentConstant = `common:
  log_level: info
generation:
  file_uri: /exports/site.xml
  group_id: wordpress
  prefix: wp_
  post:
    type: article
`

type stubProbe struct{}

func (stubProbe) Contains(context.Context, string, string) (bool, error) {
	return false, nil
}

func newFileSystem(testInstance *testing.T) afero.Fs {
	testInstance.Helper()
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, sitePathConstant, []byte(siteProfileConstant), 0o644))
	require.NoError(testInstance, afero.WriteFile(fileSystem, generationPathConstant, []byte(generationDocumentConstant), 0o644))
	require.NoError(testInstance, afero.WriteFile(fileSystem, applicationConfigConstant, []byte(applicationDocumentConstant), 0o644))
	return fileSystem
}

func buildCommand(testInstance *testing.T, fileSystem afero.Fs, configuration generate.CommandConfiguration) (*bytes.Buffer, func(context.Context, ...string) error) {
	testInstance.Helper()
	builder := generate.CommandBuilder{
		ConfigurationProvider: func() generate.CommandConfiguration { return configuration },
		FileSystem:            fileSystem,
		Probe:                 stubProbe{},
		HomeExpander:          pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "/home/editor", nil }),
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	execute := func(executionContext context.Context, arguments ...string) error {
		if arguments == nil {
			arguments = []string{}
		}
		command.SetArgs(arguments)
		return command.ExecuteContext(executionContext)
	}
	return &output, execute
}

func decodeStream(testInstance *testing.T, stream []byte) (migration.Group, []string) {
	testInstance.Helper()
	decoder := yaml.NewDecoder(bytes.NewReader(stream))
	var group migration.Group
	require.NoError(testInstance, decoder.Decode(&group))

	var identifiers []string
	for {
		var definition migration.Definition
		if decodeError := decoder.Decode(&definition); decodeError != nil {
			break
		}
		identifiers = append(identifiers, definition.ID)
	}
	return group, identifiers
}

func TestGenerateCommandStreamsPlan(testInstance *testing.T) {
	fileSystem := newFileSystem(testInstance)
	output, execute := buildCommand(testInstance, fileSystem, generate.CommandConfiguration{})

	require.NoError(testInstance, execute(context.Background(), generationPathConstant, "--site", sitePathConstant))

	group, identifiers := decodeStream(testInstance, output.Bytes())
	require.Equal(testInstance, groupIDConstant, group.ID)
	require.Contains(testInstance, identifiers, contentPostIDConstant)
}

func TestGenerateCommandWritesPlanDirectory(testInstance *testing.T) {
	fileSystem := newFileSystem(testInstance)
	output, execute := buildCommand(testInstance, fileSystem, generate.CommandConfiguration{Site: sitePathConstant})

	require.NoError(testInstance, execute(context.Background(), generationPathConstant, "--output", outputDirectoryConstant))
	require.Empty(testInstance, output.String())

	manifestContents, readError := afero.ReadFile(fileSystem, filepath.Join(outputDirectoryConstant, "manifest.yml"))
	require.NoError(testInstance, readError)
	var manifest plan.Manifest
	require.NoError(testInstance, yaml.Unmarshal(manifestContents, &manifest))
	require.Equal(testInstance, groupIDConstant, manifest.Group)
	require.Contains(testInstance, manifest.Migrations, contentPostIDConstant)
}

func TestGenerateCommandDryRunWritesNothing(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration generate.CommandConfiguration
		arguments     []string
	}{
		{
			name:          "flag",
			configuration: generate.CommandConfiguration{Site: sitePathConstant, Output: outputDirectoryConstant},
			arguments:     []string{generationPathConstant, "--dry-run"},
		},
		{
			name:          "configuration",
			configuration: generate.CommandConfiguration{Site: sitePathConstant, Output: outputDirectoryConstant, DryRun: true},
			arguments:     []string{generationPathConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			fileSystem := newFileSystem(testingInstance)
			output, execute := buildCommand(testingInstance, fileSystem, testCase.configuration)

			require.NoError(testingInstance, execute(context.Background(), testCase.arguments...))
			require.Empty(testingInstance, output.String())

			directoryExists, existsError := afero.DirExists(fileSystem, outputDirectoryConstant)
			require.NoError(testingInstance, existsError)
			require.False(testingInstance, directoryExists)
		})
	}
}

func TestGenerateCommandFallsBackToApplicationConfiguration(testInstance *testing.T) {
	fileSystem := newFileSystem(testInstance)
	output, execute := buildCommand(testInstance, fileSystem, generate.CommandConfiguration{Site: sitePathConstant})

	executionContext := utils.NewCommandContextAccessor().WithLoadedConfiguration(context.Background(), utils.LoadedConfiguration{
		ConfigFileUsed:         applicationConfigConstant,
		ConfigurationDirectory: filepath.Dir(applicationConfigConstant),
	})
	require.NoError(testInstance, execute(executionContext))

	group, identifiers := decodeStream(testInstance, output.Bytes())
	require.Equal(testInstance, groupIDConstant, group.ID)
	require.Contains(testInstance, identifiers, contentPostIDConstant)
}

func TestGenerateCommandReportsMissingInputs(testInstance *testing.T) {
	testCases := []struct {
		name            string
		configuration   generate.CommandConfiguration
		arguments       []string
		expectedMessage string
	}{
		{
			name:            "generation configuration",
			configuration:   generate.CommandConfiguration{Site: sitePathConstant},
			arguments:       []string{},
			expectedMessage: "generation configuration path required",
		},
		{
			name:            "site profile",
			configuration:   generate.CommandConfiguration{},
			arguments:       []string{generationPathConstant},
			expectedMessage: "site profile required",
		},
		{
			name:            "absent generation file",
			configuration:   generate.CommandConfiguration{Site: sitePathConstant},
			arguments:       []string{"/config/absent.yaml"},
			expectedMessage: "unable to load generation configuration",
		},
		{
			name:            "absent templates directory",
			configuration:   generate.CommandConfiguration{Site: sitePathConstant, Templates: "/config/templates"},
			arguments:       []string{generationPathConstant},
			expectedMessage: "unable to load migration templates",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			fileSystem := newFileSystem(testingInstance)
			_, execute := buildCommand(testingInstance, fileSystem, testCase.configuration)

			executionError := execute(context.Background(), testCase.arguments...)
			require.Error(testingInstance, executionError)
			require.Contains(testingInstance, executionError.Error(), testCase.expectedMessage)
		})
	}
}

func TestDefaultConfigurationValuesUsePrefix(testInstance *testing.T) {
	values := generate.DefaultConfigurationValues("tools.generate")
	require.Contains(testInstance, values, "tools.generate.site")
	require.Contains(testInstance, values, "tools.generate.dry_run")
	require.Equal(testInstance, false, values["tools.generate.dry_run"])
}
