package plan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wpmigrate/internal/migration"
)

const (
	groupFileNameTemplateConstant                 = "migrate_plus.migration_group.%s.yml"
	migrationFileNameTemplateConstant             = "migrate_plus.migration.%s.yml"
	manifestFileNameConstant                      = "manifest.yml"
	yamlIndentConstant                            = 2
	directoryPermissionsConstant                  = 0o755
	filePermissionsConstant                       = 0o644
	sinkFileSystemRequiredMessageConstant         = "plan sink file system is required"
	sinkDirectoryRequiredMessageConstant          = "plan sink directory is required"
	sinkWriterRequiredMessageConstant             = "plan sink writer is required"
	unsafeIdentifierTemplateConstant              = "identifier %q cannot be used as a file name"
	createDirectoryErrorTemplateConstant          = "unable to create plan directory %s: %w"
	encodeDocumentErrorTemplateConstant           = "unable to encode %s: %w"
	writeFileErrorTemplateConstant                = "unable to write plan file %s: %w"
	closeEncoderErrorTemplateConstant             = "unable to finish plan stream: %w"
	planFileWrittenMessageConstant                = "plan file written"
	planDirectoryWrittenMessageConstant           = "migration plan written"
	planStreamWrittenMessageConstant              = "migration plan streamed"
	pathFieldNameConstant                         = "path"
	directoryFieldNameConstant                    = "directory"
	groupIDFieldNameConstant                      = "group_id"
	definitionCountFieldNameConstant              = "definition_count"
	groupDocumentDescriptionConstant              = "migration group"
	manifestDocumentDescriptionConstant           = "plan manifest"
	definitionDocumentDescriptionTemplateConstant = "migration %s"
)

// Sink persists a finished migration plan.
type Sink interface {
	Write(executionContext context.Context, plan migration.Plan) error
}

// Manifest lists the migrations of a plan directory in execution order.
type Manifest struct {
	Group      string   `yaml:"group"`
	Migrations []string `yaml:"migrations"`
}

// DirectorySink writes a plan as one configuration file per migration plus the group and a manifest.
type DirectorySink struct {
	fileSystem afero.Fs
	directory  string
	logger     *zap.Logger
}

// NewDirectorySink creates a sink writing into directory on fileSystem.
func NewDirectorySink(fileSystem afero.Fs, directory string, logger *zap.Logger) (*DirectorySink, error) {
	if fileSystem == nil {
		return nil, errors.New(sinkFileSystemRequiredMessageConstant)
	}
	trimmedDirectory := strings.TrimSpace(directory)
	if len(trimmedDirectory) == 0 {
		return nil, errors.New(sinkDirectoryRequiredMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectorySink{fileSystem: fileSystem, directory: trimmedDirectory, logger: logger}, nil
}

// Write stores the group, every definition and the manifest. Identifiers are validated before any
// file is written.
func (sink *DirectorySink) Write(executionContext context.Context, plan migration.Plan) error {
	if identifierError := validateFileIdentifier(plan.Group.ID); identifierError != nil {
		return identifierError
	}
	for _, definition := range plan.Definitions {
		if identifierError := validateFileIdentifier(definition.ID); identifierError != nil {
			return identifierError
		}
	}

	if mkdirError := sink.fileSystem.MkdirAll(sink.directory, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(createDirectoryErrorTemplateConstant, sink.directory, mkdirError)
	}

	groupFileName := fmt.Sprintf(groupFileNameTemplateConstant, plan.Group.ID)
	if writeError := sink.writeDocument(executionContext, groupFileName, groupDocumentDescriptionConstant, plan.Group); writeError != nil {
		return writeError
	}
	for _, definition := range plan.Definitions {
		definitionFileName := fmt.Sprintf(migrationFileNameTemplateConstant, definition.ID)
		description := fmt.Sprintf(definitionDocumentDescriptionTemplateConstant, definition.ID)
		if writeError := sink.writeDocument(executionContext, definitionFileName, description, definition); writeError != nil {
			return writeError
		}
	}
	manifest := Manifest{Group: plan.Group.ID, Migrations: plan.IDs()}
	if writeError := sink.writeDocument(executionContext, manifestFileNameConstant, manifestDocumentDescriptionConstant, manifest); writeError != nil {
		return writeError
	}

	sink.logger.Info(
		planDirectoryWrittenMessageConstant,
		zap.String(directoryFieldNameConstant, sink.directory),
		zap.String(groupIDFieldNameConstant, plan.Group.ID),
		zap.Int(definitionCountFieldNameConstant, len(plan.Definitions)),
	)
	return nil
}

func (sink *DirectorySink) writeDocument(executionContext context.Context, fileName string, description string, document any) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	contents, encodeError := encodeDocument(document)
	if encodeError != nil {
		return fmt.Errorf(encodeDocumentErrorTemplateConstant, description, encodeError)
	}

	filePath := filepath.Join(sink.directory, fileName)
	if writeError := afero.WriteFile(sink.fileSystem, filePath, contents, filePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeFileErrorTemplateConstant, filePath, writeError)
	}
	sink.logger.Debug(planFileWrittenMessageConstant, zap.String(pathFieldNameConstant, filePath))
	return nil
}

// StreamSink writes a plan as a multi-document YAML stream: the group first, then each definition
// in plan order.
type StreamSink struct {
	writer io.Writer
	logger *zap.Logger
}

// NewStreamSink creates a sink writing to writer.
func NewStreamSink(writer io.Writer, logger *zap.Logger) (*StreamSink, error) {
	if writer == nil {
		return nil, errors.New(sinkWriterRequiredMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamSink{writer: writer, logger: logger}, nil
}

// Write encodes the plan to the underlying writer.
func (sink *StreamSink) Write(executionContext context.Context, plan migration.Plan) error {
	encoder := yaml.NewEncoder(sink.writer)
	encoder.SetIndent(yamlIndentConstant)

	if encodeError := encoder.Encode(plan.Group); encodeError != nil {
		return fmt.Errorf(encodeDocumentErrorTemplateConstant, groupDocumentDescriptionConstant, encodeError)
	}
	for _, definition := range plan.Definitions {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if encodeError := encoder.Encode(definition); encodeError != nil {
			return fmt.Errorf(encodeDocumentErrorTemplateConstant, fmt.Sprintf(definitionDocumentDescriptionTemplateConstant, definition.ID), encodeError)
		}
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(closeEncoderErrorTemplateConstant, closeError)
	}

	sink.logger.Info(
		planStreamWrittenMessageConstant,
		zap.String(groupIDFieldNameConstant, plan.Group.ID),
		zap.Int(definitionCountFieldNameConstant, len(plan.Definitions)),
	)
	return nil
}

func encodeDocument(document any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return nil, encodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, closeError
	}
	return buffer.Bytes(), nil
}

func validateFileIdentifier(identifier string) error {
	trimmedIdentifier := strings.TrimSpace(identifier)
	if len(trimmedIdentifier) == 0 || trimmedIdentifier != identifier || strings.ContainsAny(identifier, `/\`) || identifier == "." || identifier == ".." {
		return fmt.Errorf(unsafeIdentifierTemplateConstant, identifier)
	}
	return nil
}
