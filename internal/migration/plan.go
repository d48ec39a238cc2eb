package migration

// GroupSource carries source settings shared by every migration in a group.
type GroupSource struct {
	Namespaces map[string]string `yaml:"namespaces"`
	URLs       []string          `yaml:"urls"`
}

// SharedConfiguration is merged into each member migration by the execution engine.
type SharedConfiguration struct {
	Source GroupSource `yaml:"source"`
}

// Group describes the migration group holding a generated plan.
type Group struct {
	ID                  string              `yaml:"id"`
	Label               string              `yaml:"label"`
	SourceType          string              `yaml:"source_type"`
	SharedConfiguration SharedConfiguration `yaml:"shared_configuration"`
}

// Plan is the finished, dependency-ordered output of one generation run.
type Plan struct {
	Group       Group        `yaml:"group"`
	Definitions []Definition `yaml:"migrations"`
}

// IDs lists migration identifiers in plan order.
func (plan Plan) IDs() []string {
	identifiers := make([]string, 0, len(plan.Definitions))
	for _, definition := range plan.Definitions {
		identifiers = append(identifiers, definition.ID)
	}
	return identifiers
}

// Definition returns a copy of the migration with the given identifier.
func (plan Plan) Definition(migrationID string) (Definition, bool) {
	for _, definition := range plan.Definitions {
		if definition.ID == migrationID {
			return definition.Clone(), true
		}
	}
	return Definition{}, false
}
