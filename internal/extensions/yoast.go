package extensions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/migration"
)

// YoastExtensionID identifies the Yoast SEO metadata extension.
const YoastExtensionID = "wordpress_yoast_extension"

const (
	yoastLabelConstant                       = "Yoast Plugin"
	yoastDescriptionConstant                 = "Import the metadata from the yoast wordpress plugin into the metatags field of Drupal."
	yoastMarkerConstant                      = "_yoast_wpseo_title"
	metatagModuleConstant                    = "metatag"
	yoastSEOModuleConstant                   = "yoast_seo"
	metatagFieldTypeConstant                 = "metatag"
	yoastSEOFieldTypeConstant                = "yoast_seo"
	nodeEntityKindConstant                   = "node"
	bundlePathConstant                       = "type"
	yoastTitleFieldNameConstant              = "yoast_wpseo_title"
	yoastTitleFieldLabelConstant             = "Yoast SEO Title"
	yoastTitleSelectorConstant               = "wp:postmeta[wp:meta_key='_yoast_wpseo_title']/wp:meta_value"
	yoastDescriptionFieldNameConstant        = "yoast_wpseo_metadesc"
	yoastDescriptionFieldLabelConstant       = "Yoast SEO Metadesc"
	yoastDescriptionSelectorConstant         = "wp:postmeta[wp:meta_key='_yoast_wpseo_metadesc']/wp:meta_value"
	yoastFocusKeywordFieldNameConstant       = "yoast_focus_keyword"
	yoastFocusKeywordFieldLabelConstant      = "Yoast Focus Keyword"
	yoastFocusKeywordSelectorConstant        = "wp:postmeta[wp:meta_key='_yoast_wpseo_focuskw']/wp:meta_value"
	metatagsTitlePathConstant                = "metatags/0/title"
	metatagsDescriptionPathConstant          = "metatags/0/description"
	metatagsReferenceConstant                = "@metatags"
	serializeCallableConstant                = "serialize"
	focusKeywordPathTemplateConstant         = "%s/0/focus_keyword"
	yoastFieldLocatorRequiredMessageConstant = "yoast extension requires a field locator"
	yoastHostRequiredMessageConstant         = "yoast extension requires host capabilities"
	yoastProbeRequiredMessageConstant        = "yoast extension requires an export probe"
	yoastMetatagFieldsErrorTemplateConstant  = "unable to locate metatag fields for bundle %s: %w"
	yoastSEOFieldsErrorTemplateConstant      = "unable to locate yoast_seo fields for bundle %s: %w"
	yoastAlteredMessageConstant              = "yoast metadata mapped"
	migrationIDFieldNameConstant             = "migration_id"
	bundleFieldNameConstant                  = "bundle"
	metatagFieldCountFieldNameConstant       = "metatag_fields"
	yoastSEOFieldCountFieldNameConstant      = "yoast_seo_fields"
)

// YoastDescriptor describes the Yoast SEO metadata extension.
func YoastDescriptor() Descriptor {
	return Descriptor{ID: YoastExtensionID, Label: yoastLabelConstant, Description: yoastDescriptionConstant}
}

// YoastExtension maps Yoast SEO post metadata onto metatag and yoast_seo fields.
type YoastExtension struct {
	logger *zap.Logger
	fields FieldLocator
	host   HostCapabilities
	probe  ContentProbe
}

// NewYoastExtension is the registry factory for YoastExtension.
func NewYoastExtension(environment Environment) (Extension, error) {
	if environment.Fields == nil {
		return nil, errors.New(yoastFieldLocatorRequiredMessageConstant)
	}
	if environment.Host == nil {
		return nil, errors.New(yoastHostRequiredMessageConstant)
	}
	if environment.Probe == nil {
		return nil, errors.New(yoastProbeRequiredMessageConstant)
	}
	logger := environment.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YoastExtension{logger: logger, fields: environment.Fields, host: environment.Host, probe: environment.Probe}, nil
}

// Descriptor returns the extension descriptor.
func (extension *YoastExtension) Descriptor() Descriptor {
	return YoastDescriptor()
}

// IsActive requires the metatag module and Yoast metadata in the export.
func (extension *YoastExtension) IsActive(executionContext context.Context, activation Activation) (bool, error) {
	if !extension.host.ModuleEnabled(metatagModuleConstant) {
		return false, nil
	}
	return extension.probe.Contains(executionContext, activation.FileLocator, yoastMarkerConstant)
}

// ApplicableContent lists the content kinds carrying Yoast metadata.
func (extension *YoastExtension) ApplicableContent() []string {
	return []string{"post", "page"}
}

// AlterMigration adds the Yoast source fields and maps them onto every metatag field of the target
// bundle, and onto yoast_seo fields when that module is enabled.
func (extension *YoastExtension) AlterMigration(executionContext context.Context, definition migration.Definition) (migration.Definition, error) {
	bundle, hasBundle := targetBundle(definition)
	if !hasBundle {
		return definition, nil
	}

	altered := definition.Clone()

	metatagFields, metatagError := extension.fields.FindFieldsByType(executionContext, nodeEntityKindConstant, bundle, metatagFieldTypeConstant)
	if metatagError != nil {
		return definition, fmt.Errorf(yoastMetatagFieldsErrorTemplateConstant, bundle, metatagError)
	}
	for _, metatagField := range metatagFields {
		altered.AppendField(migration.FieldDescriptor{Name: yoastTitleFieldNameConstant, Label: yoastTitleFieldLabelConstant, Selector: yoastTitleSelectorConstant})
		altered.AppendField(migration.FieldDescriptor{Name: yoastDescriptionFieldNameConstant, Label: yoastDescriptionFieldLabelConstant, Selector: yoastDescriptionSelectorConstant})
		altered.Process.Set(metatagsTitlePathConstant, migration.GetStep(yoastTitleFieldNameConstant))
		altered.Process.Set(metatagsDescriptionPathConstant, migration.GetStep(yoastDescriptionFieldNameConstant))
		altered.Process.Append(metatagField, migration.CallbackStep(serializeCallableConstant, metatagsReferenceConstant))
	}

	var yoastSEOFields []string
	if extension.host.ModuleEnabled(yoastSEOModuleConstant) {
		var yoastSEOError error
		yoastSEOFields, yoastSEOError = extension.fields.FindFieldsByType(executionContext, nodeEntityKindConstant, bundle, yoastSEOFieldTypeConstant)
		if yoastSEOError != nil {
			return definition, fmt.Errorf(yoastSEOFieldsErrorTemplateConstant, bundle, yoastSEOError)
		}
		for _, yoastSEOField := range yoastSEOFields {
			altered.AppendField(migration.FieldDescriptor{Name: yoastFocusKeywordFieldNameConstant, Label: yoastFocusKeywordFieldLabelConstant, Selector: yoastFocusKeywordSelectorConstant})
			altered.Process.Set(fmt.Sprintf(focusKeywordPathTemplateConstant, yoastSEOField), migration.GetStep(yoastFocusKeywordFieldNameConstant))
		}
	}

	extension.logger.Debug(
		yoastAlteredMessageConstant,
		zap.String(migrationIDFieldNameConstant, definition.ID),
		zap.String(bundleFieldNameConstant, bundle),
		zap.Int(metatagFieldCountFieldNameConstant, len(metatagFields)),
		zap.Int(yoastSEOFieldCountFieldNameConstant, len(yoastSEOFields)),
	)
	return altered, nil
}

func targetBundle(definition migration.Definition) (string, bool) {
	bundlePipeline, exists := definition.Process.Pipeline(bundlePathConstant)
	if !exists || len(bundlePipeline) == 0 {
		return "", false
	}
	bundle, isString := bundlePipeline[0].DefaultValue.(string)
	bundle = strings.TrimSpace(bundle)
	return bundle, isString && len(bundle) > 0
}
