// Package cpg defines the Code Property Graph node/edge vocabulary
// produced by the lowering core (spec §3.2/§3.3). It has no dependency on
// ir: a Node is a plain, backend-agnostic record, and edges are separate
// (src, dst, label) triples that never own the nodes they connect, so the
// delta log in package delta can be applied to any graph backend.
package cpg

// NodeKind is the closed set of node labels the core emits.
type NodeKind string

const (
	KindMethod             NodeKind = "METHOD"
	KindBlock              NodeKind = "BLOCK"
	KindMethodReturn       NodeKind = "METHOD_RETURN"
	KindMethodParameterIn  NodeKind = "METHOD_PARAMETER_IN"
	KindMethodParameterOut NodeKind = "METHOD_PARAMETER_OUT"
	KindLocal              NodeKind = "LOCAL"
	KindIdentifier         NodeKind = "IDENTIFIER"
	KindLiteral            NodeKind = "LITERAL"
	KindCall               NodeKind = "CALL"
	KindControlStructure   NodeKind = "CONTROL_STRUCTURE"
	KindJumpTarget         NodeKind = "JUMP_TARGET"
	KindFieldIdentifier    NodeKind = "FIELD_IDENTIFIER"
	KindReturn             NodeKind = "RETURN"
	KindUnknown            NodeKind = "UNKNOWN"
	KindTypeRef            NodeKind = "TYPE_REF"
)

// EdgeLabel is the closed set of edge labels the core emits.
type EdgeLabel string

const (
	EdgeAST           EdgeLabel = "AST"
	EdgeCFG           EdgeLabel = "CFG"
	EdgeArgument      EdgeLabel = "ARGUMENT"
	EdgeReceiver      EdgeLabel = "RECEIVER"
	EdgeRef           EdgeLabel = "REF"
	EdgeCondition     EdgeLabel = "CONDITION"
	EdgeEvalType      EdgeLabel = "EVAL_TYPE"
	EdgeContains      EdgeLabel = "CONTAINS"
	EdgeParameterLink EdgeLabel = "PARAMETER_LINK"
)

// DispatchType is the closed set of CALL dispatch kinds.
type DispatchType string

const (
	StaticDispatch  DispatchType = "STATIC_DISPATCH"
	DynamicDispatch DispatchType = "DYNAMIC_DISPATCH"
)

// EvaluationStrategy is the closed set of parameter-passing strategies.
type EvaluationStrategy string

const (
	ByValue   EvaluationStrategy = "BY_VALUE"
	ByRef     EvaluationStrategy = "BY_REFERENCE"
	BySharing EvaluationStrategy = "BY_SHARING"
)

// ControlStructureType is the closed set of CONTROL_STRUCTURE sub-kinds.
type ControlStructureType string

const (
	ControlIf     ControlStructureType = "IF"
	ControlSwitch ControlStructureType = "SWITCH"
	ControlGoto   ControlStructureType = "GOTO"
)

// Operator names, literal and exact per spec §6.
const (
	OpAssignment  = "<operator>.assignment"
	OpIndexAccess = "<operator>.indexAccess"
	OpFieldAccess = "<operator>.fieldAccess"
	OpCast        = "<operator>.cast"
	OpInstanceOf  = "<operator>.instanceOf"
	OpLengthOf    = "<operator>.lengthOf"
	OpMinus       = "<operator>.minus"
)

// Node is a single CPG node. ID is assigned by the backend on insert and
// is left at its zero value by the core; everything else is populated by
// the lowering passes.
type Node struct {
	ID                 int64
	Label              NodeKind
	Order              int
	ArgumentIndex      int
	Code               string
	Name               string
	TypeFullName       string
	Line               int
	Column             int
	MethodFullName     string // CALL only
	Signature          string // CALL only
	DispatchType       DispatchType
	ControlStructureType ControlStructureType
	EvaluationStrategy EvaluationStrategy
	ContentHash        uint64
}
