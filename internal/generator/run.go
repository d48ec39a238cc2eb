package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/temirov/wpmigrate/internal/extensions"
	"github.com/temirov/wpmigrate/internal/migration"
	"github.com/temirov/wpmigrate/internal/planerrors"
)

const (
	groupLabelConstant                    = "Imports from WordPress site"
	groupSourceTypeConstant               = "WordPress"
	authorsTemplateConstant               = "wordpress_authors"
	attachmentsTemplateConstant           = "wordpress_attachments"
	mediaTemplatePrefixConstant           = "wordpress_media_"
	tagsTemplateConstant                  = "wordpress_tags"
	categoriesTemplateConstant            = "wordpress_categories"
	contentTemplateConstant               = "wordpress_content"
	commentTemplateConstant               = "wordpress_comment"
	contentMigrationPrefixConstant        = "wordpress_content_"
	commentMigrationPrefixConstant        = "wordpress_comment_"
	authorsContentTagConstant             = "authors"
	attachmentsContentTagConstant         = "attachments"
	mediaContentTagPrefixConstant         = "media_"
	tagsContentTagConstant                = "tags"
	categoriesContentTagConstant          = "categories"
	commentContentTagPrefixConstant       = "comment_"
	uidPathConstant                       = "uid"
	vidPathConstant                       = "vid"
	typePathConstant                      = "type"
	bodyValuePathConstant                 = "body/value"
	bodyFormatPathConstant                = "body/format"
	pathAliasPathConstant                 = "path/alias"
	thumbnailTargetPathConstant           = "thumbnail/target_id"
	targetIDPathSuffixConstant            = "/target_id"
	entityIDPathConstant                  = "entity_id"
	parentCommentPathConstant             = "pid"
	commentTypePathConstant               = "comment_type"
	fieldNamePathConstant                 = "field_name"
	creatorSourceConstant                 = "creator"
	attachmentIdentifierSourceConstant    = "post_id"
	contentIdentifierSourceConstant       = "post_id"
	parentCommentSourceConstant           = "parent"
	postTagSourceConstant                 = "post_tag"
	categorySourceConstant                = "category"
	thumbnailSourceConstant               = "thumbnail_id"
	contentSourceConstant                 = "content"
	linkSourceConstant                    = "link"
	baseURLConstantNameConstant           = "base_url"
	baseURLConstantSourceConstant         = "constants/base_url"
	fileDestinationConstantNameConstant   = "file_dest_uri"
	trailingSlashPatternConstant          = `/\/$/`
	leadingQueryPatternConstant           = `/^(?=^\/\?)(.*)$/`
	contentTypePlaceholderConstant        = ":content_type"
	postTypeSelectorTemplateConstant      = `[wp:post_type="%s"]`
	mediaSelectorTemplateConstant         = `[wp:post_type="attachment" and (%s)]`
	extensionPredicateTemplateConstant    = `wp:attachment_url[".%[1]s" = substring(., string-length(.) - string-length(".%[1]s") +1)]`
	extensionPredicateSeparatorConstant   = " or "
	defaultAuthorFieldConstant            = "default_author"
	unknownUsernameTemplateConstant       = "username %s does not exist"
	authorResolutionErrorTemplateConstant = "unable to resolve default author %s: %w"
	definitionEmittedMessageConstant      = "migration definition generated"
	definitionDumpMessageConstant         = "migration definition contents"
	extensionProbeFailedMessageConstant   = "extension activation probe failed; treating extension as inactive"
	migrationIDFieldNameConstant          = "migration_id"
	stageFieldNameConstant                = "stage"
	contentTagFieldNameConstant           = "content_kind"
	extensionIDFieldNameConstant          = "extension_id"
	definitionFieldNameConstant           = "definition"
)

var wordPressNamespaces = map[string]string{
	"wp":      "http://wordpress.org/export/1.2/",
	"excerpt": "http://wordpress.org/export/1.2/excerpt/",
	"content": "http://purl.org/rss/1.0/modules/content/",
	"wfw":     "http://wellformedweb.org/CommentAPI/",
	"dc":      "http://purl.org/dc/elements/1.1/",
}

type runExtension struct {
	identifier string
	extension  extensions.Extension
	evaluated  bool
	active     bool
}

// generationRun holds the mutable state of one Generate call.
type generationRun struct {
	generator        *Generator
	executionContext context.Context
	configuration    Configuration
	activation       extensions.Activation
	extensions       []*runExtension

	definitions   []migration.Definition
	uidMapping    migration.ProcessStep
	authorsID     string
	attachmentsID string
	mediaIDs      map[MediaKind]string
	tagsID        string
	categoriesID  string
	contentIDs    map[ContentKind]string
}

func (generator *Generator) newRun(executionContext context.Context, configuration Configuration) (*generationRun, error) {
	run := &generationRun{
		generator:        generator,
		executionContext: executionContext,
		configuration:    configuration,
		activation: extensions.Activation{
			FileLocator: configuration.FileURI,
			GroupID:     configuration.GroupID,
			BaseURL:     configuration.BaseURL,
		},
		mediaIDs:   make(map[MediaKind]string),
		contentIDs: make(map[ContentKind]string),
	}

	seenExtensions := make(map[string]struct{}, len(configuration.Extensions))
	for _, extensionID := range configuration.Extensions {
		if _, seen := seenExtensions[extensionID]; seen {
			continue
		}
		seenExtensions[extensionID] = struct{}{}

		environment := extensions.Environment{
			Logger: generator.logger.With(zap.String(extensionIDFieldNameConstant, extensionID)),
			Fields: generator.introspector,
			Host:   generator.host,
			Probe:  generator.probe,
		}
		extension, instantiateError := generator.extensionRegistry.Instantiate(extensionID, environment)
		if instantiateError != nil {
			return nil, asExtensionError(extensionID, planerrors.ExtensionOperationInstantiate, instantiateError)
		}
		run.extensions = append(run.extensions, &runExtension{identifier: extensionID, extension: extension})
	}
	return run, nil
}

func (run *generationRun) build() (migration.Plan, error) {
	group := run.buildGroup()

	if authorsError := run.buildAuthors(); authorsError != nil {
		return migration.Plan{}, authorsError
	}
	if attachmentsError := run.buildAttachments(); attachmentsError != nil {
		return migration.Plan{}, attachmentsError
	}
	if mediaError := run.buildMedia(); mediaError != nil {
		return migration.Plan{}, mediaError
	}
	if taxonomyError := run.buildTaxonomies(); taxonomyError != nil {
		return migration.Plan{}, taxonomyError
	}
	for _, contentKind := range ContentKinds() {
		if contentError := run.buildContent(contentKind); contentError != nil {
			return migration.Plan{}, contentError
		}
	}
	for _, contentKind := range ContentKinds() {
		if commentError := run.buildComments(contentKind); commentError != nil {
			return migration.Plan{}, commentError
		}
	}

	return migration.Plan{Group: group, Definitions: run.definitions}, nil
}

func (run *generationRun) buildGroup() migration.Group {
	namespaces := make(map[string]string, len(wordPressNamespaces))
	for prefix, namespace := range wordPressNamespaces {
		namespaces[prefix] = namespace
	}
	return migration.Group{
		ID:         run.configuration.GroupID,
		Label:      groupLabelConstant,
		SourceType: groupSourceTypeConstant,
		SharedConfiguration: migration.SharedConfiguration{
			Source: migration.GroupSource{
				Namespaces: namespaces,
				URLs:       []string{run.configuration.FileURI},
			},
		},
	}
}

func (run *generationRun) buildAuthors() error {
	defaultAuthor := run.configuration.DefaultAuthor
	if len(defaultAuthor) > 0 {
		authorIdentifier, found, resolveError := run.generator.authorResolver.ResolveUsername(run.executionContext, defaultAuthor)
		if resolveError != nil {
			return fmt.Errorf(authorResolutionErrorTemplateConstant, defaultAuthor, resolveError)
		}
		if !found {
			return planerrors.ValidationError{Field: defaultAuthorFieldConstant, Message: fmt.Sprintf(unknownUsernameTemplateConstant, defaultAuthor)}
		}
		run.uidMapping = migration.DefaultValueStep(authorIdentifier)
		return nil
	}

	authorsID := run.migrationID(authorsTemplateConstant)
	definition, templateError := run.instantiate(authorsTemplateConstant, authorsID)
	if templateError != nil {
		return templateError
	}
	if emitError := run.finish(definition, StageAuthors, authorsContentTagConstant); emitError != nil {
		return emitError
	}
	run.authorsID = authorsID
	run.uidMapping = migration.LookupStep(authorsID, creatorSourceConstant)
	return nil
}

func (run *generationRun) buildAttachments() error {
	attachmentsID := run.migrationID(attachmentsTemplateConstant)
	definition, templateError := run.instantiate(attachmentsTemplateConstant, attachmentsID)
	if templateError != nil {
		return templateError
	}

	if len(run.configuration.DefaultDestination) > 0 {
		definition.SetConstant(fileDestinationConstantNameConstant, run.configuration.DefaultDestination)
	}
	definition.Process.Set(uidPathConstant, run.uidMapping)
	definition.AddRequiredDependency(run.authorsID)

	if emitError := run.finish(definition, StageAttachments, attachmentsContentTagConstant); emitError != nil {
		return emitError
	}
	run.attachmentsID = attachmentsID
	return nil
}

func (run *generationRun) buildMedia() error {
	for _, mediaKind := range MediaKinds() {
		mediaSettings, enabled := run.configuration.Media(mediaKind)
		if !enabled {
			continue
		}

		templateID := mediaTemplatePrefixConstant + string(mediaKind)
		mediaID := run.migrationID(templateID)
		definition, templateError := run.instantiate(templateID, mediaID)
		if templateError != nil {
			return templateError
		}

		definition.Source.ItemSelector += mediaSelectorPredicate(mediaSettings.Extensions)
		definition.Process.Set(uidPathConstant, run.uidMapping)
		setLookupMigration(&definition, mediaSettings.TargetField+targetIDPathSuffixConstant, run.attachmentsID, attachmentIdentifierSourceConstant)
		setLookupMigration(&definition, thumbnailTargetPathConstant, run.attachmentsID, attachmentIdentifierSourceConstant)
		definition.Destination.DefaultBundle = mediaSettings.MediaType
		definition.SetRequiredDependencies(run.attachmentsID, run.authorsID)

		if emitError := run.finish(definition, StageMedia, mediaContentTagPrefixConstant+string(mediaKind)); emitError != nil {
			return emitError
		}
		run.mediaIDs[mediaKind] = mediaID
	}
	return nil
}

func (run *generationRun) buildTaxonomies() error {
	if len(run.configuration.TagVocabulary) > 0 {
		tagsID, taxonomyError := run.buildTaxonomy(tagsTemplateConstant, run.configuration.TagVocabulary, tagsContentTagConstant)
		if taxonomyError != nil {
			return taxonomyError
		}
		run.tagsID = tagsID
	}
	if len(run.configuration.CategoryVocabulary) > 0 {
		categoriesID, taxonomyError := run.buildTaxonomy(categoriesTemplateConstant, run.configuration.CategoryVocabulary, categoriesContentTagConstant)
		if taxonomyError != nil {
			return taxonomyError
		}
		run.categoriesID = categoriesID
	}
	return nil
}

func (run *generationRun) buildTaxonomy(templateID string, vocabulary string, contentTag string) (string, error) {
	taxonomyID := run.migrationID(templateID)
	definition, templateError := run.instantiate(templateID, taxonomyID)
	if templateError != nil {
		return "", templateError
	}
	definition.Process.Set(vidPathConstant, migration.DefaultValueStep(vocabulary))

	if emitError := run.finish(definition, StageTaxonomies, contentTag); emitError != nil {
		return "", emitError
	}
	return taxonomyID, nil
}

func (run *generationRun) buildContent(contentKind ContentKind) error {
	contentSettings, enabled := run.configuration.Content(contentKind)
	if !enabled {
		return nil
	}

	contentID := run.migrationID(contentMigrationPrefixConstant + string(contentKind))
	definition, templateError := run.instantiate(contentTemplateConstant, contentID)
	if templateError != nil {
		return templateError
	}

	baseURL := run.configuration.BaseURL
	definition.Source.ItemSelector += fmt.Sprintf(postTypeSelectorTemplateConstant, contentKind)
	definition.SetConstant(baseURLConstantNameConstant, baseURL)
	definition.Process.Append(
		pathAliasPathConstant,
		migration.SkipOnEmptyStep(baseURLConstantSourceConstant),
		migration.StringReplaceStep(linkSourceConstant, baseURL, ""),
		migration.RegexReplaceStep(trailingSlashPatternConstant, ""),
		migration.RegexReplaceStep(leadingQueryPatternConstant, ""),
	)
	definition.Process.Set(uidPathConstant, run.uidMapping)

	filterAutop := contentSettings.FilterAutop
	if !definition.Process.UpdateStep(bodyValuePathConstant, 0, func(step migration.ProcessStep) migration.ProcessStep {
		step.FilterAutop = &filterAutop
		return step
	}) {
		definition.Process.Set(bodyValuePathConstant, migration.WordPressContentStep(contentSourceConstant, filterAutop))
	}
	definition.Process.Set(bodyFormatPathConstant, migration.DefaultValueStep(contentSettings.TextFormat))
	definition.Process.Set(typePathConstant, migration.DefaultValueStep(contentSettings.Type))

	var dependencies []string
	if len(run.tagsID) > 0 {
		termField, found, lookupError := run.generator.introspector.FindTaxonomyReferenceField(run.executionContext, contentSettings.Type, run.configuration.TagVocabulary)
		if lookupError != nil {
			return lookupError
		}
		if found {
			definition.Process.Set(termField, migration.LookupStep(run.tagsID, postTagSourceConstant))
			dependencies = append(dependencies, run.tagsID)
		}
	}
	if len(run.categoriesID) > 0 {
		termField, found, lookupError := run.generator.introspector.FindTaxonomyReferenceField(run.executionContext, contentSettings.Type, run.configuration.CategoryVocabulary)
		if lookupError != nil {
			return lookupError
		}
		if found {
			definition.Process.Set(termField, migration.LookupStep(run.categoriesID, categorySourceConstant))
			dependencies = append(dependencies, run.categoriesID)
		}
	}
	if imageField := run.configuration.ImageField; len(imageField) > 0 {
		imageMigrationID := run.attachmentsID
		if mediaImageID, hasMediaImage := run.mediaIDs[MediaKindImage]; run.configuration.UseMedia && hasMediaImage {
			imageMigrationID = mediaImageID
		}
		definition.Process.Set(imageField, migration.LookupStep(imageMigrationID, thumbnailSourceConstant))
		dependencies = append(dependencies, imageMigrationID)
	}
	if len(run.authorsID) > 0 {
		dependencies = append(dependencies, run.authorsID)
	}
	definition.SetRequiredDependencies(dependencies...)

	if emitError := run.finish(definition, StageContent, string(contentKind)); emitError != nil {
		return emitError
	}
	run.contentIDs[contentKind] = contentID
	return nil
}

func (run *generationRun) buildComments(contentKind ContentKind) error {
	contentID, contentCreated := run.contentIDs[contentKind]
	if !contentCreated {
		return nil
	}
	contentSettings, _ := run.configuration.Content(contentKind)

	commentField, found, lookupError := run.generator.introspector.FindCommentField(run.executionContext, contentSettings.Type)
	if lookupError != nil {
		return lookupError
	}
	if !found {
		return nil
	}

	commentID := run.migrationID(commentMigrationPrefixConstant + string(contentKind))
	definition, templateError := run.instantiate(commentTemplateConstant, commentID)
	if templateError != nil {
		return templateError
	}

	definition.Source.ItemSelector = strings.ReplaceAll(definition.Source.ItemSelector, contentTypePlaceholderConstant, string(contentKind))
	setLookupMigration(&definition, entityIDPathConstant, contentID, contentIdentifierSourceConstant)
	if len(commentField.CommentType) > 0 {
		setDefaultValue(&definition, commentTypePathConstant, commentField.CommentType)
	}
	setLookupMigration(&definition, parentCommentPathConstant, commentID, parentCommentSourceConstant)
	setDefaultValue(&definition, fieldNamePathConstant, commentField.Name)
	definition.SetRequiredDependencies(contentID)

	return run.finish(definition, StageComments, commentContentTagPrefixConstant+string(contentKind))
}

func (run *generationRun) migrationID(baseID string) string {
	return run.configuration.Prefix + baseID
}

func (run *generationRun) instantiate(templateID string, migrationID string) (migration.Definition, error) {
	definition, templateError := run.generator.catalog.Template(templateID)
	if templateError != nil {
		return migration.Definition{}, templateError
	}
	definition.ID = migrationID
	definition.Group = run.configuration.GroupID
	return definition, nil
}

// finish runs the applicable extensions over definition and appends the result to the plan.
func (run *generationRun) finish(definition migration.Definition, stage Stage, contentTag string) error {
	altered, alterError := run.applyExtensions(definition, contentTag)
	if alterError != nil {
		return alterError
	}
	run.definitions = append(run.definitions, altered)

	logger := run.generator.logger
	logger.Info(
		definitionEmittedMessageConstant,
		zap.String(migrationIDFieldNameConstant, altered.ID),
		zap.Stringer(stageFieldNameConstant, stage),
		zap.String(contentTagFieldNameConstant, contentTag),
	)
	if logger.Core().Enabled(zap.DebugLevel) {
		logger.Debug(
			definitionDumpMessageConstant,
			zap.String(migrationIDFieldNameConstant, altered.ID),
			zap.String(definitionFieldNameConstant, spew.Sdump(altered)),
		)
	}
	return nil
}

func (run *generationRun) applyExtensions(definition migration.Definition, contentTag string) (migration.Definition, error) {
	current := definition
	for _, entry := range run.extensions {
		if !extensions.Applies(entry.extension, contentTag) || !run.isActive(entry) {
			continue
		}
		altered, alterError := entry.extension.AlterMigration(run.executionContext, current.Clone())
		if alterError != nil {
			return migration.Definition{}, asExtensionError(entry.identifier, planerrors.ExtensionOperationAlter, alterError)
		}
		current = altered
	}
	return current, nil
}

// isActive evaluates an extension's activation once per run.
func (run *generationRun) isActive(entry *runExtension) bool {
	if entry.evaluated {
		return entry.active
	}
	entry.evaluated = true

	active, probeError := entry.extension.IsActive(run.executionContext, run.activation)
	if probeError != nil {
		run.generator.logger.Warn(
			extensionProbeFailedMessageConstant,
			zap.String(extensionIDFieldNameConstant, entry.identifier),
			zap.Error(probeError),
		)
		active = false
	}
	entry.active = active
	return active
}

func mediaSelectorPredicate(fileExtensions []string) string {
	predicates := make([]string, 0, len(fileExtensions))
	for _, fileExtension := range fileExtensions {
		trimmedExtension := strings.TrimSpace(fileExtension)
		if len(trimmedExtension) == 0 {
			continue
		}
		predicates = append(predicates, fmt.Sprintf(extensionPredicateTemplateConstant, trimmedExtension))
	}
	return fmt.Sprintf(mediaSelectorTemplateConstant, strings.Join(predicates, extensionPredicateSeparatorConstant))
}

// setLookupMigration points the leading lookup step of path at migrationID, creating the step when
// the template does not provide one.
func setLookupMigration(definition *migration.Definition, path string, migrationID string, defaultSource string) {
	updated := definition.Process.UpdateStep(path, 0, func(step migration.ProcessStep) migration.ProcessStep {
		if step.Plugin != migration.PluginMigrationLookup {
			return migration.LookupStep(migrationID, defaultSource)
		}
		step.Migration = migrationID
		return step
	})
	if !updated {
		definition.Process.Set(path, migration.LookupStep(migrationID, defaultSource))
	}
}

// setDefaultValue replaces the constant supplied by the leading step of path.
func setDefaultValue(definition *migration.Definition, path string, value any) {
	updated := definition.Process.UpdateStep(path, 0, func(step migration.ProcessStep) migration.ProcessStep {
		if step.Plugin != migration.PluginDefaultValue {
			return migration.DefaultValueStep(value)
		}
		step.DefaultValue = value
		return step
	})
	if !updated {
		definition.Process.Set(path, migration.DefaultValueStep(value))
	}
}

func asExtensionError(extensionID string, operation planerrors.ExtensionOperation, cause error) error {
	var extensionError planerrors.ExtensionError
	if errors.As(cause, &extensionError) {
		return cause
	}
	return planerrors.ExtensionError{ExtensionID: extensionID, Operation: operation, Cause: cause}
}
