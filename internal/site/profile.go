package site

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wpmigrate/internal/schema"
)

const (
	profileReadErrorTemplateConstant      = "unable to read site profile %s: %w"
	profileParseErrorTemplateConstant     = "unable to parse site profile %s: %w"
	invalidUserIdentifierTemplateConstant = "site profile user %q has invalid identifier %d"
	blankFieldNameTemplateConstant        = "site profile field in %s.%s has no name"
	duplicateFieldNameTemplateConstant    = "site profile field %s is declared twice in %s.%s"
)

// Profile describes the target site: enabled modules, known users, and bundle schemas keyed by
// entity kind and bundle.
type Profile struct {
	Modules []string                                       `yaml:"modules"`
	Users   map[string]int                                 `yaml:"users"`
	Schema  map[string]map[string][]schema.FieldDefinition `yaml:"schema"`
}

// LoadProfile reads a profile from profilePath. An empty path yields an empty profile.
func LoadProfile(fileSystem afero.Fs, profilePath string) (*Profile, error) {
	trimmedPath := strings.TrimSpace(profilePath)
	if len(trimmedPath) == 0 {
		return &Profile{}, nil
	}

	contents, readError := afero.ReadFile(fileSystem, trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(profileReadErrorTemplateConstant, trimmedPath, readError)
	}

	var profile Profile
	if unmarshalError := yaml.Unmarshal(contents, &profile); unmarshalError != nil {
		return nil, fmt.Errorf(profileParseErrorTemplateConstant, trimmedPath, unmarshalError)
	}
	if validationError := profile.validate(); validationError != nil {
		return nil, validationError
	}
	return &profile, nil
}

// FieldDefinitions returns the fields declared for the bundle. Unknown bundles have no fields.
func (profile *Profile) FieldDefinitions(_ context.Context, entityKind string, bundle string) ([]schema.FieldDefinition, error) {
	if profile == nil {
		return nil, nil
	}
	declaredFields := profile.Schema[entityKind][bundle]
	if len(declaredFields) == 0 {
		return nil, nil
	}

	fieldDefinitions := make([]schema.FieldDefinition, len(declaredFields))
	for fieldIndex, fieldDefinition := range declaredFields {
		fieldDefinition.TargetBundles = append([]string(nil), fieldDefinition.TargetBundles...)
		fieldDefinitions[fieldIndex] = fieldDefinition
	}
	return fieldDefinitions, nil
}

// ResolveUsername maps a username to the user identifier known to the site.
func (profile *Profile) ResolveUsername(_ context.Context, username string) (int, bool, error) {
	if profile == nil {
		return 0, false, nil
	}
	userIdentifier, exists := profile.Users[strings.TrimSpace(username)]
	return userIdentifier, exists, nil
}

// ModuleEnabled reports whether the named module is enabled on the site.
func (profile *Profile) ModuleEnabled(moduleName string) bool {
	if profile == nil {
		return false
	}
	for _, enabledModule := range profile.Modules {
		if strings.EqualFold(strings.TrimSpace(enabledModule), moduleName) {
			return true
		}
	}
	return false
}

func (profile *Profile) validate() error {
	usernames := make([]string, 0, len(profile.Users))
	for username := range profile.Users {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	for _, username := range usernames {
		if profile.Users[username] <= 0 {
			return fmt.Errorf(invalidUserIdentifierTemplateConstant, username, profile.Users[username])
		}
	}

	for entityKind, bundles := range profile.Schema {
		for bundle, fieldDefinitions := range bundles {
			seenNames := make(map[string]struct{}, len(fieldDefinitions))
			for _, fieldDefinition := range fieldDefinitions {
				if len(strings.TrimSpace(fieldDefinition.Name)) == 0 {
					return fmt.Errorf(blankFieldNameTemplateConstant, entityKind, bundle)
				}
				if _, seen := seenNames[fieldDefinition.Name]; seen {
					return fmt.Errorf(duplicateFieldNameTemplateConstant, fieldDefinition.Name, entityKind, bundle)
				}
				seenNames[fieldDefinition.Name] = struct{}{}
			}
		}
	}
	return nil
}
