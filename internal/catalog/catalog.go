package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wpmigrate/internal/migration"
	"github.com/temirov/wpmigrate/internal/planerrors"
)

const (
	embeddedTemplatesDirectoryConstant         = "templates"
	templateFileExtensionConstant              = ".yaml"
	alternateTemplateFileExtensionConstant     = ".yml"
	templateReadErrorTemplateConstant          = "unable to read migration template %s: %w"
	templateParseErrorTemplateConstant         = "unable to parse migration template %s: %w"
	templateListErrorTemplateConstant          = "unable to list migration templates in %s: %w"
	templateDirectoryMissingTemplateConstant   = "migration template directory %s does not exist"
	templateIdentifierMismatchTemplateConstant = "migration template %s declares id %q"
	templateDirectoryRequiredMessageConstant   = "migration template directory path is required"
	templateFileSystemRequiredMessageConstant  = "migration template file system is required"
	duplicateEmbeddedTemplateTemplateConstant  = "duplicate embedded migration template %s"
)

//go:embed templates/*.yaml
var embeddedTemplates embed.FS

// Catalog resolves template plugin identifiers to base migration definitions.
type Catalog struct {
	mutex     sync.RWMutex
	templates map[string]migration.Definition
}

// NewCatalog creates a catalog holding the provided definitions keyed by their identifiers.
func NewCatalog(definitions ...migration.Definition) *Catalog {
	catalog := &Catalog{templates: make(map[string]migration.Definition, len(definitions))}
	for _, definition := range definitions {
		catalog.templates[definition.ID] = definition.Clone()
	}
	return catalog
}

// NewEmbeddedCatalog creates a catalog populated with the templates shipped in the binary.
func NewEmbeddedCatalog() (*Catalog, error) {
	entries, readError := fs.ReadDir(embeddedTemplates, embeddedTemplatesDirectoryConstant)
	if readError != nil {
		return nil, fmt.Errorf(templateListErrorTemplateConstant, embeddedTemplatesDirectoryConstant, readError)
	}

	catalog := NewCatalog()
	for _, entry := range entries {
		if entry.IsDir() || !hasTemplateExtension(entry.Name()) {
			continue
		}
		templatePath := path.Join(embeddedTemplatesDirectoryConstant, entry.Name())
		contents, fileError := fs.ReadFile(embeddedTemplates, templatePath)
		if fileError != nil {
			return nil, fmt.Errorf(templateReadErrorTemplateConstant, templatePath, fileError)
		}
		definition, parseError := parseTemplate(entry.Name(), contents)
		if parseError != nil {
			return nil, parseError
		}
		if _, exists := catalog.templates[definition.ID]; exists {
			return nil, fmt.Errorf(duplicateEmbeddedTemplateTemplateConstant, definition.ID)
		}
		catalog.templates[definition.ID] = definition
	}
	return catalog, nil
}

// Template returns an independent copy of the base definition registered for pluginID.
func (catalog *Catalog) Template(pluginID string) (migration.Definition, error) {
	catalog.mutex.RLock()
	defer catalog.mutex.RUnlock()

	definition, exists := catalog.templates[strings.TrimSpace(pluginID)]
	if !exists {
		return migration.Definition{}, planerrors.TemplateNotFoundError{PluginID: pluginID}
	}
	return definition.Clone(), nil
}

// IDs lists the registered template identifiers in lexical order.
func (catalog *Catalog) IDs() []string {
	catalog.mutex.RLock()
	defer catalog.mutex.RUnlock()

	identifiers := make([]string, 0, len(catalog.templates))
	for identifier := range catalog.templates {
		identifiers = append(identifiers, identifier)
	}
	sort.Strings(identifiers)
	return identifiers
}

// LoadDirectory overlays every YAML template found in directory, replacing templates with the same
// identifier. It returns the number of templates loaded.
func (catalog *Catalog) LoadDirectory(fileSystem afero.Fs, directory string) (int, error) {
	if fileSystem == nil {
		return 0, errors.New(templateFileSystemRequiredMessageConstant)
	}
	trimmedDirectory := strings.TrimSpace(directory)
	if len(trimmedDirectory) == 0 {
		return 0, errors.New(templateDirectoryRequiredMessageConstant)
	}

	directoryExists, existsError := afero.DirExists(fileSystem, trimmedDirectory)
	if existsError != nil {
		return 0, fmt.Errorf(templateListErrorTemplateConstant, trimmedDirectory, existsError)
	}
	if !directoryExists {
		return 0, fmt.Errorf(templateDirectoryMissingTemplateConstant, trimmedDirectory)
	}

	entries, readError := afero.ReadDir(fileSystem, trimmedDirectory)
	if readError != nil {
		return 0, fmt.Errorf(templateListErrorTemplateConstant, trimmedDirectory, readError)
	}

	loadedDefinitions := make([]migration.Definition, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !hasTemplateExtension(entry.Name()) {
			continue
		}
		templatePath := filepath.Join(trimmedDirectory, entry.Name())
		contents, fileError := afero.ReadFile(fileSystem, templatePath)
		if fileError != nil {
			return 0, fmt.Errorf(templateReadErrorTemplateConstant, templatePath, fileError)
		}
		definition, parseError := parseTemplate(entry.Name(), contents)
		if parseError != nil {
			return 0, parseError
		}
		loadedDefinitions = append(loadedDefinitions, definition)
	}

	catalog.mutex.Lock()
	defer catalog.mutex.Unlock()
	if catalog.templates == nil {
		catalog.templates = make(map[string]migration.Definition, len(loadedDefinitions))
	}
	for _, definition := range loadedDefinitions {
		catalog.templates[definition.ID] = definition
	}
	return len(loadedDefinitions), nil
}

func parseTemplate(fileName string, contents []byte) (migration.Definition, error) {
	var definition migration.Definition
	if unmarshalError := yaml.Unmarshal(contents, &definition); unmarshalError != nil {
		return migration.Definition{}, fmt.Errorf(templateParseErrorTemplateConstant, fileName, unmarshalError)
	}

	fileIdentifier := strings.TrimSuffix(strings.TrimSuffix(fileName, templateFileExtensionConstant), alternateTemplateFileExtensionConstant)
	definition.ID = strings.TrimSpace(definition.ID)
	if len(definition.ID) == 0 {
		definition.ID = fileIdentifier
	}
	if definition.ID != fileIdentifier {
		return migration.Definition{}, fmt.Errorf(templateIdentifierMismatchTemplateConstant, fileName, definition.ID)
	}
	return definition, nil
}

func hasTemplateExtension(fileName string) bool {
	extension := strings.ToLower(filepath.Ext(fileName))
	return extension == templateFileExtensionConstant || extension == alternateTemplateFileExtensionConstant
}
