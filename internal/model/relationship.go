package model

// RelationshipKind is the type of a directed edge between two entities.
type RelationshipKind string

const (
	RelCalls      RelationshipKind = "calls"
	RelImports    RelationshipKind = "imports"
	RelContains   RelationshipKind = "contains"
	RelInherits   RelationshipKind = "inherits"
	RelAuthored   RelationshipKind = "authored"
	RelModified   RelationshipKind = "modified"
	RelChangedBy  RelationshipKind = "changed_by"
	RelCovers     RelationshipKind = "covers"
	RelExecutedBy RelationshipKind = "executed_by"
)

// Relationship is a directed edge in the semantic graph. SourceID/TargetID
// reference entity ids. Before graph resolution, a local relation may carry
// a symbolic (unresolved) target name instead of an id; resolved edges
// always point at an existing entity id, except for edges explicitly
// retained as unresolved (import/inherit targets with no match), which
// carry an "unresolved_target" string attribute instead.
type Relationship struct {
	SourceID   string
	TargetID   string
	Kind       RelationshipKind
	Attributes Attrs
}

// LocalRelation is the unresolved form emitted by a parser frontend, using
// a symbolic target name rather than a resolved entity id. The Graph
// Builder turns these into Relationship values during resolution.
type LocalRelation struct {
	SourceID   string
	TargetName string
	Kind       RelationshipKind
	Attributes Attrs
}
