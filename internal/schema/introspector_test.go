package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/wpmigrate/internal/planerrors"
	"github.com/temirov/wpmigrate/internal/schema"
)

type stubProvider struct {
	fields map[string][]schema.FieldDefinition
	err    error
}

func (provider stubProvider) FieldDefinitions(_ context.Context, entityKind string, bundle string) ([]schema.FieldDefinition, error) {
	if provider.err != nil {
		return nil, provider.err
	}
	return provider.fields[entityKind+"."+bundle], nil
}

func articleProvider() stubProvider {
	return stubProvider{fields: map[string][]schema.FieldDefinition{
		"node.article": {
			{Name: "field_category", Type: schema.FieldTypeEntityReference, TargetType: schema.TargetTypeTaxonomyTerm, TargetBundles: []string{"categories"}},
			{Name: "field_tags", Type: schema.FieldTypeEntityReference, TargetType: schema.TargetTypeTaxonomyTerm, TargetBundles: []string{"tags", "keywords"}},
			{Name: "field_more_tags", Type: schema.FieldTypeEntityReference, TargetType: schema.TargetTypeTaxonomyTerm, TargetBundles: []string{"tags"}},
			{Name: "field_related", Type: schema.FieldTypeEntityReference, TargetType: "node", TargetBundles: []string{"tags"}},
			{Name: "comment", Type: schema.FieldTypeComment, CommentType: "comment"},
			{Name: "comment_forum", Type: schema.FieldTypeComment, CommentType: "comment_forum"},
			{Name: "field_meta", Type: schema.FieldTypeMetatag},
			{Name: "field_meta_extra", Type: schema.FieldTypeMetatag},
		},
	}}
}

func TestFindTaxonomyReferenceField(testInstance *testing.T) {
	introspector := schema.NewIntrospector(articleProvider(), nil)

	testCases := []struct {
		name          string
		bundle        string
		vocabulary    string
		expectedField string
		expectedFound bool
	}{
		{name: "first match wins", bundle: "article", vocabulary: "tags", expectedField: "field_tags", expectedFound: true},
		{name: "secondary vocabulary", bundle: "article", vocabulary: "keywords", expectedField: "field_tags", expectedFound: true},
		{name: "categories", bundle: "article", vocabulary: "categories", expectedField: "field_category", expectedFound: true},
		{name: "unbound vocabulary", bundle: "article", vocabulary: "forums"},
		{name: "unknown bundle", bundle: "page", vocabulary: "tags"},
		{name: "blank bundle", bundle: " ", vocabulary: "tags"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			fieldName, found, lookupError := introspector.FindTaxonomyReferenceField(context.Background(), testCase.bundle, testCase.vocabulary)
			require.NoError(testingInstance, lookupError)
			require.Equal(testingInstance, testCase.expectedFound, found)
			require.Equal(testingInstance, testCase.expectedField, fieldName)
		})
	}
}

func TestFindFieldsByTypeAndCommentField(testInstance *testing.T) {
	introspector := schema.NewIntrospector(articleProvider(), nil)

	metatagFields, lookupError := introspector.FindFieldsByType(context.Background(), schema.EntityKindNode, "article", schema.FieldTypeMetatag)
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, []string{"field_meta", "field_meta_extra"}, metatagFields)

	commentField, found, commentError := introspector.FindCommentField(context.Background(), "article")
	require.NoError(testInstance, commentError)
	require.True(testInstance, found)
	require.Equal(testInstance, "comment", commentField.Name)
	require.Equal(testInstance, "comment", commentField.CommentType)

	_, found, commentError = introspector.FindCommentField(context.Background(), "page")
	require.NoError(testInstance, commentError)
	require.False(testInstance, found)
}

func TestProviderFailures(testInstance *testing.T) {
	softFailure := errors.New("schema unavailable")
	hardFailure := planerrors.SchemaIntrospectionError{EntityKind: "node", Bundle: "article", Hard: true, Cause: errors.New("backend offline")}

	testCases := []struct {
		name             string
		providerError    error
		expectError      bool
		expectedWarnings int
	}{
		{name: "soft failure is no field", providerError: softFailure, expectedWarnings: 1},
		{name: "soft typed failure is no field", providerError: planerrors.SchemaIntrospectionError{EntityKind: "node", Bundle: "article", Cause: softFailure}, expectedWarnings: 1},
		{name: "hard failure propagates", providerError: hardFailure, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			observedCore, observedLogs := observer.New(zap.WarnLevel)
			introspector := schema.NewIntrospector(stubProvider{err: testCase.providerError}, zap.New(observedCore))

			fieldName, found, lookupError := introspector.FindTaxonomyReferenceField(context.Background(), "article", "tags")
			require.False(testingInstance, found)
			require.Empty(testingInstance, fieldName)
			if testCase.expectError {
				require.Error(testingInstance, lookupError)
				var introspectionError planerrors.SchemaIntrospectionError
				require.True(testingInstance, errors.As(lookupError, &introspectionError))
				require.True(testingInstance, introspectionError.Hard)
			} else {
				require.NoError(testingInstance, lookupError)
			}
			require.Equal(testingInstance, testCase.expectedWarnings, observedLogs.Len())
		})
	}
}
