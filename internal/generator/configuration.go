package generator

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wpmigrate/internal/planerrors"
	"github.com/temirov/wpmigrate/internal/utils/flags"
)

const (
	configurationWrapperKeyConstant           = "generation"
	configurationReadErrorTemplateConstant    = "unable to read generation configuration %s: %w"
	configurationParseErrorTemplateConstant   = "unable to parse generation configuration %s: %w"
	configurationDecoderErrorTemplateConstant = "unable to prepare generation configuration decoder: %w"
	configurationPathFieldConstant            = "path"
	configurationPathRequiredMessageConstant  = "generation configuration path must be provided"
	fileURIFieldConstant                      = "file_uri"
	groupIDFieldConstant                      = "group_id"
	requiredValueMessageConstant              = "value is required"
	mediaTypeFieldSuffixConstant              = "_media_type_field"
	mediaExtensionsFieldSuffixConstant        = "_media_extensions"
	mediaTargetFieldRequiredTemplateConstant  = "a target field is required when %s media import is enabled"
	mediaExtensionsRequiredTemplateConstant   = "at least one file extension is required when %s media import is enabled"
	extensionListSeparatorConstant            = ","
	fileExtensionPrefixConstant               = "."
)

// ContentKind names a WordPress content type that becomes a content migration.
type ContentKind string

// WordPress content kinds in generation order.
const (
	ContentKindPost ContentKind = ContentKind("post")
	ContentKindPage ContentKind = ContentKind("page")
)

// ContentKinds lists the supported content kinds in generation order.
func ContentKinds() []ContentKind {
	return []ContentKind{ContentKindPost, ContentKindPage}
}

// MediaKind names an attachment family imported as media entities.
type MediaKind string

// Media kinds in generation order.
const (
	MediaKindImage    MediaKind = MediaKind("image")
	MediaKindAudio    MediaKind = MediaKind("audio")
	MediaKindDocument MediaKind = MediaKind("document")
)

// MediaKinds lists the supported media kinds in generation order.
func MediaKinds() []MediaKind {
	return []MediaKind{MediaKindImage, MediaKindAudio, MediaKindDocument}
}

// ContentSettings configures the migration of one WordPress content kind.
type ContentSettings struct {
	Type        string `mapstructure:"type"`
	TextFormat  string `mapstructure:"text_format"`
	FilterAutop bool   `mapstructure:"filter_autop"`
}

// MediaSettings is the resolved media import configuration for one media kind.
type MediaSettings struct {
	MediaType   string
	TargetField string
	Extensions  []string
}

// Configuration is the complete, resolved input of one generation run.
type Configuration struct {
	FileURI                 string          `mapstructure:"file_uri"`
	GroupID                 string          `mapstructure:"group_id"`
	Prefix                  string          `mapstructure:"prefix"`
	DefaultAuthor           string          `mapstructure:"default_author"`
	TagVocabulary           string          `mapstructure:"tag_vocabulary"`
	CategoryVocabulary      string          `mapstructure:"category_vocabulary"`
	Post                    ContentSettings `mapstructure:"post"`
	Page                    ContentSettings `mapstructure:"page"`
	DefaultDestination      string          `mapstructure:"default_destination"`
	UseMedia                bool            `mapstructure:"use_media"`
	ImageMediaType          string          `mapstructure:"image_media_type"`
	ImageMediaTypeField     string          `mapstructure:"image_media_type_field"`
	ImageMediaExtensions    string          `mapstructure:"image_media_extensions"`
	AudioMediaType          string          `mapstructure:"audio_media_type"`
	AudioMediaTypeField     string          `mapstructure:"audio_media_type_field"`
	AudioMediaExtensions    string          `mapstructure:"audio_media_extensions"`
	DocumentMediaType       string          `mapstructure:"document_media_type"`
	DocumentMediaTypeField  string          `mapstructure:"document_media_type_field"`
	DocumentMediaExtensions string          `mapstructure:"document_media_extensions"`
	ImageField              string          `mapstructure:"image_field"`
	BaseURL                 string          `mapstructure:"base_url"`
	Extensions              []string        `mapstructure:"extensions"`
}

// LoadConfiguration reads a generation configuration document. The document may be wrapped in a
// top-level "generation" mapping, in which case sibling keys such as the application settings are
// ignored. Values are weakly typed and unknown keys are rejected.
func LoadConfiguration(fileSystem afero.Fs, configurationPath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(configurationPath)
	if len(trimmedPath) == 0 {
		return Configuration{}, planerrors.ValidationError{Field: configurationPathFieldConstant, Message: configurationPathRequiredMessageConstant}
	}

	contentBytes, readError := afero.ReadFile(fileSystem, trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationReadErrorTemplateConstant, trimmedPath, readError)
	}

	return ParseConfiguration(trimmedPath, contentBytes)
}

// ParseConfiguration decodes a generation configuration document read from sourceName.
func ParseConfiguration(sourceName string, contentBytes []byte) (Configuration, error) {
	var rawDocument map[string]any
	if unmarshalError := yaml.Unmarshal(contentBytes, &rawDocument); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, sourceName, unmarshalError)
	}
	if wrapped, isWrapped := rawDocument[configurationWrapperKeyConstant].(map[string]any); isWrapped {
		rawDocument = wrapped
	}

	var configuration Configuration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			flags.ToggleDecodeHook(),
			mapstructure.StringToSliceHookFunc(extensionListSeparatorConstant),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &configuration,
	})
	if decoderError != nil {
		return Configuration{}, fmt.Errorf(configurationDecoderErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(rawDocument); decodeError != nil {
		return Configuration{}, planerrors.ValidationError{Field: sourceName, Message: decodeError.Error()}
	}

	return configuration.Sanitize(), nil
}

// Sanitize returns a copy with surrounding whitespace removed and blank extension identifiers
// dropped.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	for _, value := range []*string{
		&sanitized.FileURI,
		&sanitized.GroupID,
		&sanitized.Prefix,
		&sanitized.DefaultAuthor,
		&sanitized.TagVocabulary,
		&sanitized.CategoryVocabulary,
		&sanitized.Post.Type,
		&sanitized.Post.TextFormat,
		&sanitized.Page.Type,
		&sanitized.Page.TextFormat,
		&sanitized.DefaultDestination,
		&sanitized.ImageMediaType,
		&sanitized.ImageMediaTypeField,
		&sanitized.ImageMediaExtensions,
		&sanitized.AudioMediaType,
		&sanitized.AudioMediaTypeField,
		&sanitized.AudioMediaExtensions,
		&sanitized.DocumentMediaType,
		&sanitized.DocumentMediaTypeField,
		&sanitized.DocumentMediaExtensions,
		&sanitized.ImageField,
		&sanitized.BaseURL,
	} {
		*value = strings.TrimSpace(*value)
	}

	sanitized.Extensions = nil
	for _, extensionID := range configuration.Extensions {
		trimmedIdentifier := strings.TrimSpace(extensionID)
		if len(trimmedIdentifier) > 0 {
			sanitized.Extensions = append(sanitized.Extensions, trimmedIdentifier)
		}
	}
	return sanitized
}

// Validate reports the first missing or inconsistent setting as a ValidationError.
func (configuration Configuration) Validate() error {
	if len(strings.TrimSpace(configuration.FileURI)) == 0 {
		return planerrors.ValidationError{Field: fileURIFieldConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(configuration.GroupID)) == 0 {
		return planerrors.ValidationError{Field: groupIDFieldConstant, Message: requiredValueMessageConstant}
	}
	if !configuration.UseMedia {
		return nil
	}
	for _, mediaKind := range MediaKinds() {
		mediaSettings, enabled := configuration.Media(mediaKind)
		if !enabled {
			continue
		}
		if len(mediaSettings.TargetField) == 0 {
			return planerrors.ValidationError{Field: string(mediaKind) + mediaTypeFieldSuffixConstant, Message: fmt.Sprintf(mediaTargetFieldRequiredTemplateConstant, mediaKind)}
		}
		if len(mediaSettings.Extensions) == 0 {
			return planerrors.ValidationError{Field: string(mediaKind) + mediaExtensionsFieldSuffixConstant, Message: fmt.Sprintf(mediaExtensionsRequiredTemplateConstant, mediaKind)}
		}
	}
	return nil
}

// Content returns the settings for a content kind and whether that kind is migrated.
func (configuration Configuration) Content(contentKind ContentKind) (ContentSettings, bool) {
	var contentSettings ContentSettings
	switch contentKind {
	case ContentKindPost:
		contentSettings = configuration.Post
	case ContentKindPage:
		contentSettings = configuration.Page
	default:
		return ContentSettings{}, false
	}
	return contentSettings, len(strings.TrimSpace(contentSettings.Type)) > 0
}

// Media returns the settings for a media kind and whether that kind is imported as media.
func (configuration Configuration) Media(mediaKind MediaKind) (MediaSettings, bool) {
	var mediaType, targetField, extensionList string
	switch mediaKind {
	case MediaKindImage:
		mediaType, targetField, extensionList = configuration.ImageMediaType, configuration.ImageMediaTypeField, configuration.ImageMediaExtensions
	case MediaKindAudio:
		mediaType, targetField, extensionList = configuration.AudioMediaType, configuration.AudioMediaTypeField, configuration.AudioMediaExtensions
	case MediaKindDocument:
		mediaType, targetField, extensionList = configuration.DocumentMediaType, configuration.DocumentMediaTypeField, configuration.DocumentMediaExtensions
	default:
		return MediaSettings{}, false
	}

	mediaSettings := MediaSettings{
		MediaType:   strings.TrimSpace(mediaType),
		TargetField: strings.TrimSpace(targetField),
		Extensions:  splitFileExtensions(extensionList),
	}
	return mediaSettings, configuration.UseMedia && len(mediaSettings.MediaType) > 0
}

func splitFileExtensions(extensionList string) []string {
	var fileExtensions []string
	for _, candidate := range strings.Fields(extensionList) {
		trimmedExtension := strings.TrimPrefix(candidate, fileExtensionPrefixConstant)
		if len(trimmedExtension) > 0 {
			fileExtensions = append(fileExtensions, trimmedExtension)
		}
	}
	return fileExtensions
}
