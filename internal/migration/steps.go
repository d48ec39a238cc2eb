package migration

// Process plugin identifiers understood by the execution engine.
const (
	PluginGet              = "get"
	PluginDefaultValue     = "default_value"
	PluginMigrationLookup  = "migration_lookup"
	PluginSkipOnEmpty      = "skip_on_empty"
	PluginStringReplace    = "str_replace"
	PluginCallback         = "callback"
	PluginWordPressContent = "wp_content"
)

// SkipMethodProcess skips the remaining steps of the pipeline rather than the whole row.
const SkipMethodProcess = "process"

// GetStep copies a source value unchanged.
func GetStep(source string) ProcessStep {
	return ProcessStep{Plugin: PluginGet, Source: source}
}

// DefaultValueStep supplies a constant value.
func DefaultValueStep(value any) ProcessStep {
	return ProcessStep{Plugin: PluginDefaultValue, DefaultValue: value}
}

// LookupStep resolves source to the identifier produced by another migration.
func LookupStep(migrationID string, source string) ProcessStep {
	return ProcessStep{Plugin: PluginMigrationLookup, Migration: migrationID, Source: source}
}

// SkipOnEmptyStep stops the pipeline when source is empty.
func SkipOnEmptyStep(source string) ProcessStep {
	return ProcessStep{Plugin: PluginSkipOnEmpty, Method: SkipMethodProcess, Source: source}
}

// StringReplaceStep replaces literal occurrences of search. An empty source continues from the
// previous step's value.
func StringReplaceStep(source string, search string, replace string) ProcessStep {
	return ProcessStep{Plugin: PluginStringReplace, Source: source, Search: search, Replace: &replace}
}

// RegexReplaceStep replaces matches of the PCRE pattern search in the current pipeline value.
func RegexReplaceStep(search string, replace string) ProcessStep {
	return ProcessStep{Plugin: PluginStringReplace, Search: search, Replace: &replace, Regex: true}
}

// CallbackStep passes source through callable.
func CallbackStep(callable string, source string) ProcessStep {
	return ProcessStep{Plugin: PluginCallback, Callable: callable, Source: source}
}

// WordPressContentStep converts WordPress post content, optionally applying line-break conversion.
func WordPressContentStep(source string, filterAutop bool) ProcessStep {
	return ProcessStep{Plugin: PluginWordPressContent, Source: source, FilterAutop: &filterAutop}
}
