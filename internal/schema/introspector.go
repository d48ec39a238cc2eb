package schema

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/planerrors"
)

// Semantic field types recognized by the introspector.
const (
	FieldTypeEntityReference = "entity_reference"
	FieldTypeComment         = "comment"
	FieldTypeMetatag         = "metatag"
	FieldTypeYoastSEO        = "yoast_seo"
	TargetTypeTaxonomyTerm   = "taxonomy_term"
	EntityKindNode           = "node"
)

const (
	schemaLookupFailedMessageConstant = "schema lookup failed; treating as no matching field"
	entityKindFieldNameConstant       = "entity_kind"
	bundleFieldNameConstant           = "bundle"
	semanticTypeFieldNameConstant     = "semantic_type"
)

// FieldDefinition describes one field attached to an entity bundle.
type FieldDefinition struct {
	Name          string   `yaml:"name" mapstructure:"name"`
	Label         string   `yaml:"label,omitempty" mapstructure:"label"`
	Type          string   `yaml:"type" mapstructure:"type"`
	TargetType    string   `yaml:"target_type,omitempty" mapstructure:"target_type"`
	TargetBundles []string `yaml:"target_bundles,omitempty" mapstructure:"target_bundles"`
	CommentType   string   `yaml:"comment_type,omitempty" mapstructure:"comment_type"`
}

// Provider enumerates the fields of an entity bundle in their configured order.
type Provider interface {
	FieldDefinitions(executionContext context.Context, entityKind string, bundle string) ([]FieldDefinition, error)
}

// Introspector answers semantic field queries over a Provider.
type Introspector struct {
	provider Provider
	logger   *zap.Logger
}

// NewIntrospector creates an introspector. A nil logger disables logging.
func NewIntrospector(provider Provider, logger *zap.Logger) *Introspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Introspector{provider: provider, logger: logger}
}

// FindFieldsByType lists the names of fields with the given semantic type in schema order.
func (introspector *Introspector) FindFieldsByType(executionContext context.Context, entityKind string, bundle string, semanticType string) ([]string, error) {
	fieldDefinitions, lookupError := introspector.fieldDefinitions(executionContext, entityKind, bundle, semanticType)
	if lookupError != nil {
		return nil, lookupError
	}

	fieldNames := make([]string, 0, len(fieldDefinitions))
	for _, fieldDefinition := range fieldDefinitions {
		if fieldDefinition.Type == semanticType {
			fieldNames = append(fieldNames, fieldDefinition.Name)
		}
	}
	return fieldNames, nil
}

// FindTaxonomyReferenceField returns the first node field of the bundle referencing taxonomy terms
// of the given vocabulary.
func (introspector *Introspector) FindTaxonomyReferenceField(executionContext context.Context, bundle string, vocabulary string) (string, bool, error) {
	fieldDefinitions, lookupError := introspector.fieldDefinitions(executionContext, EntityKindNode, bundle, FieldTypeEntityReference)
	if lookupError != nil {
		return "", false, lookupError
	}

	for _, fieldDefinition := range fieldDefinitions {
		if fieldDefinition.Type != FieldTypeEntityReference || fieldDefinition.TargetType != TargetTypeTaxonomyTerm {
			continue
		}
		for _, targetBundle := range fieldDefinition.TargetBundles {
			if targetBundle == vocabulary {
				return fieldDefinition.Name, true, nil
			}
		}
	}
	return "", false, nil
}

// FindCommentField returns the first comment field of the node bundle.
func (introspector *Introspector) FindCommentField(executionContext context.Context, bundle string) (FieldDefinition, bool, error) {
	fieldDefinitions, lookupError := introspector.fieldDefinitions(executionContext, EntityKindNode, bundle, FieldTypeComment)
	if lookupError != nil {
		return FieldDefinition{}, false, lookupError
	}

	for _, fieldDefinition := range fieldDefinitions {
		if fieldDefinition.Type == FieldTypeComment {
			return fieldDefinition, true, nil
		}
	}
	return FieldDefinition{}, false, nil
}

func (introspector *Introspector) fieldDefinitions(executionContext context.Context, entityKind string, bundle string, semanticType string) ([]FieldDefinition, error) {
	if introspector == nil || introspector.provider == nil || len(strings.TrimSpace(bundle)) == 0 {
		return nil, nil
	}

	fieldDefinitions, providerError := introspector.provider.FieldDefinitions(executionContext, entityKind, bundle)
	if providerError == nil {
		return fieldDefinitions, nil
	}

	var introspectionError planerrors.SchemaIntrospectionError
	if errors.As(providerError, &introspectionError) && introspectionError.Hard {
		return nil, providerError
	}

	introspector.logger.Warn(
		schemaLookupFailedMessageConstant,
		zap.String(entityKindFieldNameConstant, entityKind),
		zap.String(bundleFieldNameConstant, bundle),
		zap.String(semanticTypeFieldNameConstant, semanticType),
		zap.Error(providerError),
	)
	return nil, nil
}
