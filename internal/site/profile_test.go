package site_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/wpmigrate/internal/schema"
	"github.com/temirov/wpmigrate/internal/site"
)

const (
	profilePathConstant     = "/etc/wpmigrate/site.yaml"
	profileDocumentConstant = `modules: [metatag, media]
users:
  admin: 1
  editor: 7
schema:
  node:
    article:
      - {name: field_tags, type: entity_reference, target_type: taxonomy_term, target_bundles: [tags]}
      - {name: comment, type: comment, comment_type: comment}
`
)

func TestLoadProfile(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, profilePathConstant, []byte(profileDocumentConstant), 0o644))

	profile, loadError := site.LoadProfile(fileSystem, profilePathConstant)
	require.NoError(testInstance, loadError)

	require.True(testInstance, profile.ModuleEnabled("metatag"))
	require.False(testInstance, profile.ModuleEnabled("yoast_seo"))

	userIdentifier, found, resolveError := profile.ResolveUsername(context.Background(), "editor")
	require.NoError(testInstance, resolveError)
	require.True(testInstance, found)
	require.Equal(testInstance, 7, userIdentifier)

	_, found, resolveError = profile.ResolveUsername(context.Background(), "ghost")
	require.NoError(testInstance, resolveError)
	require.False(testInstance, found)

	fieldDefinitions, fieldsError := profile.FieldDefinitions(context.Background(), schema.EntityKindNode, "article")
	require.NoError(testInstance, fieldsError)
	require.Equal(testInstance, []schema.FieldDefinition{
		{Name: "field_tags", Type: "entity_reference", TargetType: "taxonomy_term", TargetBundles: []string{"tags"}},
		{Name: "comment", Type: "comment", CommentType: "comment"},
	}, fieldDefinitions)

	fieldDefinitions[0].TargetBundles[0] = "mutated"
	reloaded, _ := profile.FieldDefinitions(context.Background(), schema.EntityKindNode, "article")
	require.Equal(testInstance, "tags", reloaded[0].TargetBundles[0])
}

func TestLoadProfileEmptyPath(testInstance *testing.T) {
	profile, loadError := site.LoadProfile(afero.NewMemMapFs(), "")
	require.NoError(testInstance, loadError)
	require.False(testInstance, profile.ModuleEnabled("metatag"))

	fieldDefinitions, fieldsError := profile.FieldDefinitions(context.Background(), schema.EntityKindNode, "article")
	require.NoError(testInstance, fieldsError)
	require.Empty(testInstance, fieldDefinitions)
}

func TestLoadProfileFailures(testInstance *testing.T) {
	testCases := []struct {
		name     string
		contents string
		write    bool
	}{
		{name: "missing file"},
		{name: "malformed yaml", contents: "modules: [metatag", write: true},
		{name: "invalid user identifier", contents: "users:\n  admin: 0\n", write: true},
		{name: "blank field name", contents: "schema:\n  node:\n    article:\n      - {type: comment}\n", write: true},
		{name: "duplicate field name", contents: "schema:\n  node:\n    article:\n      - {name: comment, type: comment}\n      - {name: comment, type: comment}\n", write: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			if testCase.write {
				require.NoError(testingInstance, afero.WriteFile(fileSystem, profilePathConstant, []byte(testCase.contents), 0o644))
			}
			_, loadError := site.LoadProfile(fileSystem, profilePathConstant)
			require.Error(testingInstance, loadError)
		})
	}
}
