package migration_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wpmigrate/internal/migration"
)

const (
	templateDocumentConstant = `id: wordpress_content
label: Import content from WordPress XML
migration_tags:
  - WordPress
source:
  plugin: url
  item_selector: /rss/channel/item
  fields:
    - name: title
      label: Content title
      selector: title
  ids:
    post_id:
      type: integer
  constants:
    empty: ""
process:
  title: title
  nid:
    plugin: get
    source: post_id
  body/value:
    - plugin: wp_content
      source: content
      filter_autop: false
  created:
    - plugin: format_date
      source: pub_date
      from_format: 'D, d M Y H:i:s O'
      to_format: U
destination:
  plugin: entity:node
migration_dependencies: {}
`
)

func TestProcessSpecificationPreservesInsertionOrder(testInstance *testing.T) {
	var specification migration.ProcessSpecification
	specification.Set("type", migration.DefaultValueStep("article"))
	specification.Set("title", migration.GetStep("title"))
	specification.Append("path/alias", migration.SkipOnEmptyStep("constants/base_url"))
	specification.Append("path/alias", migration.RegexReplaceStep(`/\/$/`, ""))
	specification.Set("type", migration.DefaultValueStep("page"))

	require.Equal(testInstance, []string{"type", "title", "path/alias"}, specification.Paths())

	typePipeline, exists := specification.Pipeline("type")
	require.True(testInstance, exists)
	require.Equal(testInstance, migration.Pipeline{migration.DefaultValueStep("page")}, typePipeline)

	aliasPipeline, exists := specification.Pipeline("path/alias")
	require.True(testInstance, exists)
	require.Len(testInstance, aliasPipeline, 2)
	require.Equal(testInstance, migration.PluginSkipOnEmpty, aliasPipeline[0].Plugin)
	require.True(testInstance, aliasPipeline[1].Regex)

	require.True(testInstance, specification.Delete("title"))
	require.False(testInstance, specification.Delete("title"))
	require.Equal(testInstance, []string{"type", "path/alias"}, specification.Paths())
}

func TestProcessSpecificationYAMLRoundTrip(testInstance *testing.T) {
	var definition migration.Definition
	require.NoError(testInstance, yaml.Unmarshal([]byte(templateDocumentConstant), &definition))

	require.Equal(testInstance, "wordpress_content", definition.ID)
	require.Equal(testInstance, []string{"title", "nid", "body/value", "created"}, definition.Process.Paths())

	titlePipeline, _ := definition.Process.Pipeline("title")
	require.Equal(testInstance, migration.Pipeline{migration.GetStep("title")}, titlePipeline)

	bodyPipeline, _ := definition.Process.Pipeline("body/value")
	require.Len(testInstance, bodyPipeline, 1)
	require.NotNil(testInstance, bodyPipeline[0].FilterAutop)
	require.False(testInstance, *bodyPipeline[0].FilterAutop)

	createdPipeline, _ := definition.Process.Pipeline("created")
	require.Equal(testInstance, "U", createdPipeline[0].Settings["to_format"])

	encoded, marshalError := yaml.Marshal(definition)
	require.NoError(testInstance, marshalError)
	encodedText := string(encoded)
	require.Less(testInstance, strings.Index(encodedText, "title:"), strings.Index(encodedText, "nid:"))
	require.Less(testInstance, strings.Index(encodedText, "nid:"), strings.Index(encodedText, "body/value:"))
	require.Contains(testInstance, encodedText, "from_format:")

	var decodedAgain migration.Definition
	require.NoError(testInstance, yaml.Unmarshal(encoded, &decodedAgain))
	require.Equal(testInstance, definition.Process.Paths(), decodedAgain.Process.Paths())
	require.Equal(testInstance, definition.Source, decodedAgain.Source)
}

func TestProcessSpecificationRejectsNonMapping(testInstance *testing.T) {
	var definition migration.Definition
	unmarshalError := yaml.Unmarshal([]byte("id: broken\nprocess:\n  - plugin: get\n"), &definition)
	require.Error(testInstance, unmarshalError)
}

func TestStringReplaceKeepsEmptyReplacement(testInstance *testing.T) {
	var specification migration.ProcessSpecification
	specification.Set("path/alias", migration.StringReplaceStep("link", "https://example.com", ""))

	encoded, marshalError := yaml.Marshal(specification)
	require.NoError(testInstance, marshalError)
	require.Contains(testInstance, string(encoded), `replace: ""`)
}

func TestDefinitionCloneIsIndependent(testInstance *testing.T) {
	var original migration.Definition
	require.NoError(testInstance, yaml.Unmarshal([]byte(templateDocumentConstant), &original))
	original.AddRequiredDependency("authors")

	cloned := original.Clone()
	cloned.SetConstant("base_url", "https://example.com")
	cloned.AppendField(migration.FieldDescriptor{Name: "link", Selector: "link"})
	cloned.Process.Set("uid", migration.DefaultValueStep(1))
	cloned.Process.UpdateStep("body/value", 0, func(step migration.ProcessStep) migration.ProcessStep {
		enabled := true
		step.FilterAutop = &enabled
		return step
	})
	cloned.AddRequiredDependency("tags")
	cloned.Tags[0] = "Changed"

	_, constantExists := original.Source.Constants["base_url"]
	require.False(testInstance, constantExists)
	require.Len(testInstance, original.Source.Fields, 1)
	_, uidExists := original.Process.Pipeline("uid")
	require.False(testInstance, uidExists)
	bodyPipeline, _ := original.Process.Pipeline("body/value")
	require.False(testInstance, *bodyPipeline[0].FilterAutop)
	require.Equal(testInstance, []string{"authors"}, original.Dependencies.Required)
	require.Equal(testInstance, []string{"WordPress"}, original.Tags)
}

func TestDefinitionDependencyHelpers(testInstance *testing.T) {
	var definition migration.Definition
	definition.AddRequiredDependency("authors")
	definition.AddRequiredDependency(" authors ")
	definition.AddRequiredDependency("")
	definition.AddRequiredDependency("tags")
	require.Equal(testInstance, []string{"authors", "tags"}, definition.Dependencies.Required)
	require.True(testInstance, definition.HasRequiredDependency("tags"))

	definition.SetRequiredDependencies("attachments")
	require.Equal(testInstance, []string{"attachments"}, definition.Dependencies.Required)
	require.False(testInstance, definition.HasRequiredDependency("tags"))
}

func TestDefinitionLookupTargets(testInstance *testing.T) {
	var definition migration.Definition
	definition.Process.Set("uid", migration.LookupStep("authors", "creator"))
	definition.Process.Set("field_tags", migration.LookupStep("tags", "post_tag"))
	definition.Process.Set("field_image", migration.LookupStep("authors", "thumbnail_id"))
	definition.Process.Set("entity_id", migration.ProcessStep{Plugin: migration.PluginMigrationLookup, Source: "post_id"})

	require.Equal(testInstance, []string{"authors", "tags"}, definition.LookupTargets())
}

func TestAppendFieldDeduplicatesByName(testInstance *testing.T) {
	var definition migration.Definition
	require.True(testInstance, definition.AppendField(migration.FieldDescriptor{Name: "seo", Selector: "a"}))
	require.False(testInstance, definition.AppendField(migration.FieldDescriptor{Name: "seo", Selector: "b"}))
	require.Len(testInstance, definition.Source.Fields, 1)
	require.Equal(testInstance, "a", definition.Source.Fields[0].Selector)
}

func TestPlanAccessors(testInstance *testing.T) {
	plan := migration.Plan{
		Definitions: []migration.Definition{{ID: "authors"}, {ID: "content"}},
	}
	require.Equal(testInstance, []string{"authors", "content"}, plan.IDs())

	definition, exists := plan.Definition("content")
	require.True(testInstance, exists)
	require.Equal(testInstance, "content", definition.ID)

	_, exists = plan.Definition("missing")
	require.False(testInstance, exists)
}
