package extensions

import (
	"errors"
	"strings"
	"sync"

	"github.com/temirov/wpmigrate/internal/planerrors"
)

const (
	extensionIdentifierRequiredMessageConstant = "extension identifier is required"
	extensionFactoryRequiredMessageConstant    = "extension factory is required"
	extensionAlreadyRegisteredMessageConstant  = "extension is already registered"
	extensionFactoryReturnedNilMessageConstant = "extension factory returned no extension"
)

// ErrUnknownExtension indicates that no factory is registered for an identifier.
var ErrUnknownExtension = errors.New("unknown extension")

type registryEntry struct {
	descriptor Descriptor
	factory    Factory
}

// Registry maps extension identifiers to factories and remembers registration order.
type Registry struct {
	mutex   sync.RWMutex
	order   []string
	entries map[string]registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// NewDefaultRegistry creates a registry holding the built-in extensions.
func NewDefaultRegistry() (*Registry, error) {
	registry := NewRegistry()
	if registrationError := registry.Register(YoastDescriptor(), NewYoastExtension); registrationError != nil {
		return nil, registrationError
	}
	return registry, nil
}

// Register adds a factory under descriptor.ID. Blank and duplicate identifiers are rejected.
func (registry *Registry) Register(descriptor Descriptor, factory Factory) error {
	descriptor.ID = strings.TrimSpace(descriptor.ID)
	if len(descriptor.ID) == 0 {
		return registrationError(descriptor.ID, extensionIdentifierRequiredMessageConstant)
	}
	if factory == nil {
		return registrationError(descriptor.ID, extensionFactoryRequiredMessageConstant)
	}

	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	if registry.entries == nil {
		registry.entries = make(map[string]registryEntry)
	}
	if _, exists := registry.entries[descriptor.ID]; exists {
		return registrationError(descriptor.ID, extensionAlreadyRegisteredMessageConstant)
	}
	registry.entries[descriptor.ID] = registryEntry{descriptor: descriptor, factory: factory}
	registry.order = append(registry.order, descriptor.ID)
	return nil
}

// Definitions lists registered descriptors in registration order.
func (registry *Registry) Definitions() []Descriptor {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	descriptors := make([]Descriptor, 0, len(registry.order))
	for _, identifier := range registry.order {
		descriptors = append(descriptors, registry.entries[identifier].descriptor)
	}
	return descriptors
}

// Instantiate creates the extension registered under extensionID.
func (registry *Registry) Instantiate(extensionID string, environment Environment) (Extension, error) {
	trimmedIdentifier := strings.TrimSpace(extensionID)

	registry.mutex.RLock()
	entry, exists := registry.entries[trimmedIdentifier]
	registry.mutex.RUnlock()

	if !exists {
		return nil, planerrors.ExtensionError{ExtensionID: trimmedIdentifier, Operation: planerrors.ExtensionOperationInstantiate, Cause: ErrUnknownExtension}
	}

	extension, factoryError := entry.factory(environment)
	if factoryError != nil {
		return nil, planerrors.ExtensionError{ExtensionID: trimmedIdentifier, Operation: planerrors.ExtensionOperationInstantiate, Cause: factoryError}
	}
	if extension == nil {
		return nil, planerrors.ExtensionError{ExtensionID: trimmedIdentifier, Operation: planerrors.ExtensionOperationInstantiate, Cause: errors.New(extensionFactoryReturnedNilMessageConstant)}
	}
	return extension, nil
}

func registrationError(extensionID string, message string) error {
	return planerrors.ExtensionError{ExtensionID: extensionID, Operation: planerrors.ExtensionOperationRegister, Cause: errors.New(message)}
}
