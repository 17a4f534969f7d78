package model

// TaskType classifies a retrieval query so the Context Synthesizer can pick
// a section priority table.
type TaskType string

const (
	TaskExplain TaskType = "explain"
	TaskDebug   TaskType = "debug"
	TaskExtend  TaskType = "extend"
	TaskReview  TaskType = "review"
	TaskLocate  TaskType = "locate"
	TaskGeneral TaskType = "general"
	TaskAuto    TaskType = "auto"
)

// RetrievalMode records which retrieval path actually produced results.
type RetrievalMode string

const (
	ModeSemantic RetrievalMode = "semantic"
	ModeLexical  RetrievalMode = "lexical"
	ModeHybrid   RetrievalMode = "hybrid"
)

// SectionKind names a context bundle section.
type SectionKind string

const (
	SectionHeader        SectionKind = "header"
	SectionSignature     SectionKind = "signature"
	SectionDocstring     SectionKind = "docstring"
	SectionSource        SectionKind = "source"
	SectionCallers       SectionKind = "callers"
	SectionCallees       SectionKind = "callees"
	SectionInherits      SectionKind = "inherits"
	SectionImports       SectionKind = "imports"
	SectionRecentChanges SectionKind = "recent_changes"
	SectionImpact        SectionKind = "impact"
	SectionEvidence      SectionKind = "evidence"
)

// Section is one rendered, possibly-truncated piece of a context bundle.
type Section struct {
	Kind      SectionKind
	Text      string
	Tokens    int
	Truncated bool
}

// Evidence points at the chunk or entity backing a section or a search
// result, carrying enough location info for a caller to jump to source.
type Evidence struct {
	ChunkID   string
	EntityID  string
	FilePath  string
	StartLine int
	EndLine   int
	Score     float64
}

// ContextBundle is the externally visible result of a retrieval query.
type ContextBundle struct {
	Sections          []Section
	ContextText       string
	TotalTokens       int
	Evidence          []Evidence
	SelectedEntities  []string
	TaskType          TaskType
	RetrievalMode     RetrievalMode
	SufficiencyScore  float64
}

// ScoredEntity is an entity ranked by the search engine, with the chunk
// evidence that contributed to its score.
type ScoredEntity struct {
	EntityID string
	Score    float64
	Evidence []Evidence
	Expanded bool // true if admitted via dependency expansion, not direct retrieval
}
