package planerrors

import (
	"fmt"
	"strings"
)

const (
	validationErrorTemplateConstant              = "invalid configuration %s: %s"
	validationErrorWithoutFieldTemplateConstant  = "invalid configuration: %s"
	templateNotFoundTemplateConstant             = "migration template %q not found"
	extensionErrorTemplateConstant               = "extension %s %s failed: %v"
	extensionErrorWithoutCauseTemplateConstant   = "extension %s %s failed"
	schemaErrorTemplateConstant                  = "schema introspection of %s.%s failed: %v"
	dependencyErrorTemplateConstant              = "migration %s dependency %s: %s"
	dependencyErrorWithoutTargetTemplateConstant = "migration %s: %s"
)

// ValidationError reports missing or invalid generation configuration.
type ValidationError struct {
	Field   string
	Message string
}

// Error describes the invalid configuration value.
func (validationError ValidationError) Error() string {
	if len(strings.TrimSpace(validationError.Field)) == 0 {
		return fmt.Sprintf(validationErrorWithoutFieldTemplateConstant, validationError.Message)
	}
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.Field, validationError.Message)
}

// TemplateNotFoundError reports a template catalog miss.
type TemplateNotFoundError struct {
	PluginID string
}

// Error describes the missing template.
func (notFoundError TemplateNotFoundError) Error() string {
	return fmt.Sprintf(templateNotFoundTemplateConstant, notFoundError.PluginID)
}

// ExtensionOperation names the extension lifecycle step that failed.
type ExtensionOperation string

// Extension lifecycle steps.
const (
	ExtensionOperationInstantiate ExtensionOperation = ExtensionOperation("instantiation")
	ExtensionOperationRegister    ExtensionOperation = ExtensionOperation("registration")
	ExtensionOperationAlter       ExtensionOperation = ExtensionOperation("alteration")
)

// ExtensionError reports extension instantiation or execution failures.
type ExtensionError struct {
	ExtensionID string
	Operation   ExtensionOperation
	Cause       error
}

// Error describes the extension failure.
func (extensionError ExtensionError) Error() string {
	if extensionError.Cause == nil {
		return fmt.Sprintf(extensionErrorWithoutCauseTemplateConstant, extensionError.ExtensionID, extensionError.Operation)
	}
	return fmt.Sprintf(extensionErrorTemplateConstant, extensionError.ExtensionID, extensionError.Operation, extensionError.Cause)
}

// Unwrap exposes the underlying cause.
func (extensionError ExtensionError) Unwrap() error {
	return extensionError.Cause
}

// SchemaIntrospectionError reports a schema collaborator failure. Hard faults abort generation;
// all other failures are treated as "field not found".
type SchemaIntrospectionError struct {
	EntityKind string
	Bundle     string
	Hard       bool
	Cause      error
}

// Error describes the introspection failure.
func (schemaError SchemaIntrospectionError) Error() string {
	return fmt.Sprintf(schemaErrorTemplateConstant, schemaError.EntityKind, schemaError.Bundle, schemaError.Cause)
}

// Unwrap exposes the underlying cause.
func (schemaError SchemaIntrospectionError) Unwrap() error {
	return schemaError.Cause
}

// DependencyError reports an invalid edge in the migration dependency graph.
type DependencyError struct {
	MigrationID  string
	DependencyID string
	Message      string
}

// Error describes the invalid dependency.
func (dependencyError DependencyError) Error() string {
	if len(dependencyError.DependencyID) == 0 {
		return fmt.Sprintf(dependencyErrorWithoutTargetTemplateConstant, dependencyError.MigrationID, dependencyError.Message)
	}
	return fmt.Sprintf(dependencyErrorTemplateConstant, dependencyError.MigrationID, dependencyError.DependencyID, dependencyError.Message)
}
