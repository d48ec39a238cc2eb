package migration

import "strings"

// FieldDescriptor names one value extracted from each source record.
type FieldDescriptor struct {
	Name     string `yaml:"name"`
	Label    string `yaml:"label,omitempty"`
	Selector string `yaml:"selector"`
}

// Identifier declares the type of a source key column.
type Identifier struct {
	Type string `yaml:"type"`
}

// SourceSpecification describes how records are extracted from the export.
type SourceSpecification struct {
	Plugin            string                `yaml:"plugin,omitempty"`
	DataFetcherPlugin string                `yaml:"data_fetcher_plugin,omitempty"`
	DataParserPlugin  string                `yaml:"data_parser_plugin,omitempty"`
	URLs              []string              `yaml:"urls,omitempty"`
	ItemSelector      string                `yaml:"item_selector,omitempty"`
	Fields            []FieldDescriptor     `yaml:"fields,omitempty"`
	Identifiers       map[string]Identifier `yaml:"ids,omitempty"`
	Constants         map[string]string     `yaml:"constants,omitempty"`
	Namespaces        map[string]string     `yaml:"namespaces,omitempty"`
}

// DestinationSpecification describes where migrated records are stored.
type DestinationSpecification struct {
	Plugin        string         `yaml:"plugin,omitempty"`
	DefaultBundle string         `yaml:"default_bundle,omitempty"`
	Settings      map[string]any `yaml:",inline"`
}

// Dependencies lists migrations that must complete before this one runs.
type Dependencies struct {
	Required []string `yaml:"required,omitempty"`
	Optional []string `yaml:"optional,omitempty"`
}

// Definition is one declarative migration: source extraction, process pipelines, destination
// binding, and dependency edges.
type Definition struct {
	ID           string                   `yaml:"id"`
	Label        string                   `yaml:"label,omitempty"`
	Group        string                   `yaml:"migration_group,omitempty"`
	Tags         []string                 `yaml:"migration_tags,omitempty"`
	Source       SourceSpecification      `yaml:"source"`
	Process      ProcessSpecification     `yaml:"process"`
	Destination  DestinationSpecification `yaml:"destination"`
	Dependencies Dependencies             `yaml:"migration_dependencies"`
}

// Clone returns a deep copy that shares no mutable state with the receiver.
func (definition Definition) Clone() Definition {
	cloned := definition
	cloned.Tags = cloneStrings(definition.Tags)
	cloned.Source = definition.Source.Clone()
	cloned.Process = definition.Process.Clone()
	cloned.Destination = definition.Destination.Clone()
	cloned.Dependencies = Dependencies{
		Required: cloneStrings(definition.Dependencies.Required),
		Optional: cloneStrings(definition.Dependencies.Optional),
	}
	return cloned
}

// AddRequiredDependency records a required dependency once, keeping insertion order.
func (definition *Definition) AddRequiredDependency(migrationID string) {
	trimmedIdentifier := strings.TrimSpace(migrationID)
	if len(trimmedIdentifier) == 0 {
		return
	}
	for _, existingIdentifier := range definition.Dependencies.Required {
		if existingIdentifier == trimmedIdentifier {
			return
		}
	}
	definition.Dependencies.Required = append(definition.Dependencies.Required, trimmedIdentifier)
}

// SetRequiredDependencies replaces the required dependency list.
func (definition *Definition) SetRequiredDependencies(migrationIDs ...string) {
	definition.Dependencies.Required = nil
	for _, migrationID := range migrationIDs {
		definition.AddRequiredDependency(migrationID)
	}
}

// HasRequiredDependency reports whether migrationID is a required dependency.
func (definition Definition) HasRequiredDependency(migrationID string) bool {
	for _, existingIdentifier := range definition.Dependencies.Required {
		if existingIdentifier == migrationID {
			return true
		}
	}
	return false
}

// AppendField adds a source field unless a field with the same name already exists.
func (definition *Definition) AppendField(field FieldDescriptor) bool {
	for _, existingField := range definition.Source.Fields {
		if existingField.Name == field.Name {
			return false
		}
	}
	definition.Source.Fields = append(definition.Source.Fields, field)
	return true
}

// SetConstant stores a source constant.
func (definition *Definition) SetConstant(key string, value string) {
	if definition.Source.Constants == nil {
		definition.Source.Constants = make(map[string]string)
	}
	definition.Source.Constants[key] = value
}

// LookupTargets lists the distinct migrations referenced by migration_lookup steps, in process order.
func (definition Definition) LookupTargets() []string {
	var targets []string
	seenTargets := make(map[string]struct{})
	for _, path := range definition.Process.paths {
		for _, step := range definition.Process.pipelines[path] {
			if step.Plugin != PluginMigrationLookup || len(step.Migration) == 0 {
				continue
			}
			if _, seen := seenTargets[step.Migration]; seen {
				continue
			}
			seenTargets[step.Migration] = struct{}{}
			targets = append(targets, step.Migration)
		}
	}
	return targets
}

// Clone returns a deep copy of the source specification.
func (specification SourceSpecification) Clone() SourceSpecification {
	cloned := specification
	cloned.URLs = cloneStrings(specification.URLs)
	if specification.Fields != nil {
		cloned.Fields = append([]FieldDescriptor(nil), specification.Fields...)
	}
	if specification.Identifiers != nil {
		cloned.Identifiers = make(map[string]Identifier, len(specification.Identifiers))
		for key, identifier := range specification.Identifiers {
			cloned.Identifiers[key] = identifier
		}
	}
	cloned.Constants = cloneStringMap(specification.Constants)
	cloned.Namespaces = cloneStringMap(specification.Namespaces)
	return cloned
}

// Clone returns a deep copy of the destination specification.
func (specification DestinationSpecification) Clone() DestinationSpecification {
	cloned := specification
	cloned.Settings = cloneSettings(specification.Settings)
	return cloned
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func cloneStringMap(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}

func cloneSettings(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	cloned := make(map[string]any, len(values))
	for key, value := range values {
		cloned[key] = cloneValue(value)
	}
	return cloned
}

func cloneValue(value any) any {
	switch typedValue := value.(type) {
	case map[string]any:
		return cloneSettings(typedValue)
	case []any:
		cloned := make([]any, len(typedValue))
		for index := range typedValue {
			cloned[index] = cloneValue(typedValue[index])
		}
		return cloned
	case []string:
		return cloneStrings(typedValue)
	default:
		return value
	}
}
