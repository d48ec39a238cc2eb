package generator

import (
	"sort"

	"github.com/temirov/wpmigrate/internal/migration"
	"github.com/temirov/wpmigrate/internal/planerrors"
)

const (
	duplicateMigrationMessageConstant = "migration identifier is declared more than once"
	missingDependencyMessageConstant  = "required dependency is not part of the plan"
	selfDependencyMessageConstant     = "migration cannot depend on itself"
	undeclaredLookupMessageConstant   = "lookup target is not declared as a required dependency"
	dependencyCycleMessageConstant    = "dependency cycle detected"
)

// orderDefinitions checks the dependency invariants of a plan and returns the definitions in a
// dependency-respecting order. Among definitions that are ready at the same time, the one emitted
// first wins, so an already ordered plan keeps its order.
func orderDefinitions(definitions []migration.Definition) ([]migration.Definition, error) {
	positions := make(map[string]int, len(definitions))
	for definitionIndex, definition := range definitions {
		if _, exists := positions[definition.ID]; exists {
			return nil, planerrors.DependencyError{MigrationID: definition.ID, Message: duplicateMigrationMessageConstant}
		}
		positions[definition.ID] = definitionIndex
	}

	incomingCounts := make([]int, len(definitions))
	dependents := make([][]int, len(definitions))
	for definitionIndex, definition := range definitions {
		for _, dependencyID := range definition.Dependencies.Required {
			dependencyIndex, exists := positions[dependencyID]
			if !exists {
				return nil, planerrors.DependencyError{MigrationID: definition.ID, DependencyID: dependencyID, Message: missingDependencyMessageConstant}
			}
			if dependencyIndex == definitionIndex {
				return nil, planerrors.DependencyError{MigrationID: definition.ID, DependencyID: dependencyID, Message: selfDependencyMessageConstant}
			}
			incomingCounts[definitionIndex]++
			dependents[dependencyIndex] = append(dependents[dependencyIndex], definitionIndex)
		}
		for _, lookupTarget := range definition.LookupTargets() {
			if lookupTarget == definition.ID {
				continue
			}
			if !definition.HasRequiredDependency(lookupTarget) {
				return nil, planerrors.DependencyError{MigrationID: definition.ID, DependencyID: lookupTarget, Message: undeclaredLookupMessageConstant}
			}
		}
	}

	var ready []int
	for definitionIndex := range definitions {
		if incomingCounts[definitionIndex] == 0 {
			ready = append(ready, definitionIndex)
		}
	}

	ordered := make([]migration.Definition, 0, len(definitions))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		ordered = append(ordered, definitions[current])

		for _, dependent := range dependents[current] {
			incomingCounts[dependent]--
			if incomingCounts[dependent] == 0 {
				insertionIndex := sort.SearchInts(ready, dependent)
				ready = append(ready, 0)
				copy(ready[insertionIndex+1:], ready[insertionIndex:])
				ready[insertionIndex] = dependent
			}
		}
	}

	if len(ordered) != len(definitions) {
		for definitionIndex, definition := range definitions {
			if incomingCounts[definitionIndex] > 0 {
				return nil, planerrors.DependencyError{MigrationID: definition.ID, Message: dependencyCycleMessageConstant}
			}
		}
	}
	return ordered, nil
}
