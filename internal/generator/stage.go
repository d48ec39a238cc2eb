package generator

//go:generate go tool stringer -type=Stage -trimprefix=Stage -output=stage_string.go

// Stage identifies the construction step that produced a definition.
type Stage int

// Construction stages in dependency order.
const (
	StageGroup Stage = iota
	StageAuthors
	StageAttachments
	StageMedia
	StageTaxonomies
	StageContent
	StageComments
)
