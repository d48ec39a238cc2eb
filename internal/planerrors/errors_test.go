package planerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wpmigrate/internal/planerrors"
)

func TestErrorMessages(testInstance *testing.T) {
	underlyingError := errors.New("boom")

	testCases := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "validation_with_field",
			err:             planerrors.ValidationError{Field: "default_author", Message: "username editor does not exist"},
			expectedMessage: "invalid configuration default_author: username editor does not exist",
		},
		{
			name:            "validation_without_field",
			err:             planerrors.ValidationError{Message: "empty document"},
			expectedMessage: "invalid configuration: empty document",
		},
		{
			name:            "template_not_found",
			err:             planerrors.TemplateNotFoundError{PluginID: "wordpress_tags"},
			expectedMessage: `migration template "wordpress_tags" not found`,
		},
		{
			name:            "extension_with_cause",
			err:             planerrors.ExtensionError{ExtensionID: "seo", Operation: planerrors.ExtensionOperationAlter, Cause: underlyingError},
			expectedMessage: "extension seo alteration failed: boom",
		},
		{
			name:            "extension_without_cause",
			err:             planerrors.ExtensionError{ExtensionID: "seo", Operation: planerrors.ExtensionOperationInstantiate},
			expectedMessage: "extension seo instantiation failed",
		},
		{
			name:            "dependency_with_target",
			err:             planerrors.DependencyError{MigrationID: "content", DependencyID: "tags", Message: "lookup target is not a dependency"},
			expectedMessage: "migration content dependency tags: lookup target is not a dependency",
		},
		{
			name:            "dependency_without_target",
			err:             planerrors.DependencyError{MigrationID: "content", Message: "cycle detected"},
			expectedMessage: "migration content: cycle detected",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			require.EqualError(testingInstance, testCase.err, testCase.expectedMessage)
		})
	}
}

func TestErrorsUnwrapThroughWrapping(testInstance *testing.T) {
	underlyingError := errors.New("schema backend offline")
	wrappedError := fmt.Errorf("generation failed: %w", planerrors.SchemaIntrospectionError{
		EntityKind: "node",
		Bundle:     "article",
		Hard:       true,
		Cause:      underlyingError,
	})

	var schemaError planerrors.SchemaIntrospectionError
	require.ErrorAs(testInstance, wrappedError, &schemaError)
	require.True(testInstance, schemaError.Hard)
	require.ErrorIs(testInstance, wrappedError, underlyingError)

	extensionWrapped := fmt.Errorf("outer: %w", planerrors.ExtensionError{ExtensionID: "seo", Cause: underlyingError})
	var extensionError planerrors.ExtensionError
	require.ErrorAs(testInstance, extensionWrapped, &extensionError)
	require.Equal(testInstance, "seo", extensionError.ExtensionID)
	require.ErrorIs(testInstance, extensionWrapped, underlyingError)
}
