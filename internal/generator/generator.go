package generator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/extensions"
	"github.com/temirov/wpmigrate/internal/migration"
	"github.com/temirov/wpmigrate/internal/schema"
)

const (
	catalogMissingMessageConstant        = "template catalog not configured"
	introspectorMissingMessageConstant   = "field introspector not configured"
	authorResolverMissingMessageConstant = "author resolver not configured"
	extensionsMissingMessageConstant     = "extension registry not configured"
	hostMissingMessageConstant           = "host capabilities not configured"
	probeMissingMessageConstant          = "export probe not configured"
	planGeneratedMessageConstant         = "migration plan generated"
	groupIDFieldNameConstant             = "group_id"
	definitionCountFieldNameConstant     = "definition_count"
)

// TemplateCatalog resolves base migration definitions by plugin identifier.
type TemplateCatalog interface {
	Template(pluginID string) (migration.Definition, error)
}

// FieldIntrospector answers semantic field queries against the target schema.
type FieldIntrospector interface {
	FindFieldsByType(executionContext context.Context, entityKind string, bundle string, semanticType string) ([]string, error)
	FindTaxonomyReferenceField(executionContext context.Context, bundle string, vocabulary string) (string, bool, error)
	FindCommentField(executionContext context.Context, bundle string) (schema.FieldDefinition, bool, error)
}

// AuthorResolver maps a username to the identifier of an existing author.
type AuthorResolver interface {
	ResolveUsername(executionContext context.Context, username string) (int, bool, error)
}

// ExtensionRegistry instantiates extensions by identifier.
type ExtensionRegistry interface {
	Instantiate(extensionID string, environment extensions.Environment) (extensions.Extension, error)
}

// Dependencies describes the collaborators required by the Generator.
type Dependencies struct {
	Logger         *zap.Logger
	Catalog        TemplateCatalog
	Introspector   FieldIntrospector
	AuthorResolver AuthorResolver
	Extensions     ExtensionRegistry
	Host           extensions.HostCapabilities
	Probe          extensions.ContentProbe
}

var (
	errCatalogMissing        = errors.New(catalogMissingMessageConstant)
	errIntrospectorMissing   = errors.New(introspectorMissingMessageConstant)
	errAuthorResolverMissing = errors.New(authorResolverMissingMessageConstant)
	errExtensionsMissing     = errors.New(extensionsMissingMessageConstant)
	errHostMissing           = errors.New(hostMissingMessageConstant)
	errProbeMissing          = errors.New(probeMissingMessageConstant)
)

// Generator builds WordPress migration plans. It holds only read-only collaborators, so one value
// may serve concurrent generation runs.
type Generator struct {
	logger            *zap.Logger
	catalog           TemplateCatalog
	introspector      FieldIntrospector
	authorResolver    AuthorResolver
	extensionRegistry ExtensionRegistry
	host              extensions.HostCapabilities
	probe             extensions.ContentProbe
}

// NewGenerator constructs a Generator with the provided dependencies.
func NewGenerator(dependencies Dependencies) (*Generator, error) {
	if dependencies.Catalog == nil {
		return nil, errCatalogMissing
	}
	if dependencies.Introspector == nil {
		return nil, errIntrospectorMissing
	}
	if dependencies.AuthorResolver == nil {
		return nil, errAuthorResolverMissing
	}
	if dependencies.Extensions == nil {
		return nil, errExtensionsMissing
	}
	if dependencies.Host == nil {
		return nil, errHostMissing
	}
	if dependencies.Probe == nil {
		return nil, errProbeMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		logger:            logger,
		catalog:           dependencies.Catalog,
		introspector:      dependencies.Introspector,
		authorResolver:    dependencies.AuthorResolver,
		extensionRegistry: dependencies.Extensions,
		host:              dependencies.Host,
		probe:             dependencies.Probe,
	}, nil
}

// Generate builds the complete plan for configuration. Any failure aborts the run and returns an
// empty plan.
func (generator *Generator) Generate(executionContext context.Context, configuration Configuration) (migration.Plan, error) {
	sanitized := configuration.Sanitize()
	if validationError := sanitized.Validate(); validationError != nil {
		return migration.Plan{}, validationError
	}

	run, runError := generator.newRun(executionContext, sanitized)
	if runError != nil {
		return migration.Plan{}, runError
	}

	plan, buildError := run.build()
	if buildError != nil {
		return migration.Plan{}, buildError
	}

	orderedDefinitions, orderError := orderDefinitions(plan.Definitions)
	if orderError != nil {
		return migration.Plan{}, orderError
	}
	plan.Definitions = orderedDefinitions

	generator.logger.Info(
		planGeneratedMessageConstant,
		zap.String(groupIDFieldNameConstant, plan.Group.ID),
		zap.Int(definitionCountFieldNameConstant, len(plan.Definitions)),
	)
	return plan, nil
}
