package extensions

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/migration"
)

// Descriptor identifies an extension for listings and configuration.
type Descriptor struct {
	ID          string
	Label       string
	Description string
}

// Activation is the read-only view of the generation configuration available to IsActive.
type Activation struct {
	FileLocator string
	GroupID     string
	BaseURL     string
}

// Extension conditionally rewrites migration definitions to import additional source data.
type Extension interface {
	Descriptor() Descriptor
	IsActive(executionContext context.Context, activation Activation) (bool, error)
	ApplicableContent() []string
	AlterMigration(executionContext context.Context, definition migration.Definition) (migration.Definition, error)
}

// FieldLocator finds target fields by semantic type.
type FieldLocator interface {
	FindFieldsByType(executionContext context.Context, entityKind string, bundle string, semanticType string) ([]string, error)
}

// HostCapabilities reports which modules the target site provides.
type HostCapabilities interface {
	ModuleEnabled(moduleName string) bool
}

// ContentProbe scans the raw export for a marker string without side effects.
type ContentProbe interface {
	Contains(executionContext context.Context, locator string, marker string) (bool, error)
}

// Environment carries the collaborators handed to extension factories.
type Environment struct {
	Logger *zap.Logger
	Fields FieldLocator
	Host   HostCapabilities
	Probe  ContentProbe
}

// Factory creates an extension instance for one generation run.
type Factory func(environment Environment) (Extension, error)

// Applies reports whether the extension declares affinity with contentTag.
func Applies(extension Extension, contentTag string) bool {
	for _, applicableTag := range extension.ApplicableContent() {
		if applicableTag == contentTag {
			return true
		}
	}
	return false
}
