// Package index declares the external collaborators the lowering core
// reads from (spec §6): the method-stub provider, the type-node registry,
// and the call index, plus the pure evaluation-strategy classifier. The
// core never constructs these itself — spec §9 "Global caches" explicitly
// re-architects the source's process-wide maps as explicit parameters, so
// every lowering run takes its own MethodIndex/TypeIndex. The call index
// is part of MethodIndex (RegisterCall), not a separate type.
package index

import (
	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// MethodIndex answers questions about pre-created method-stub nodes:
// the METHOD node itself, the full stub set (method, block, method-return,
// existing parameters), and registration hooks used by upstream passes.
// The lowering core calls Stubs, plus RegisterCall for every invocation
// it lowers and StoreParameters once per method, so a single
// implementation serves both the upstream stub-construction pass and this
// core without a second type.
type MethodIndex interface {
	// MethodNode returns the METHOD node for a fully-qualified method
	// name, or nil if none is registered.
	MethodNode(fullName string) *cpg.Node

	// Stubs returns the pre-created stub nodes for a method: the METHOD
	// node, its entry BLOCK, its METHOD_RETURN, and any
	// METHOD_PARAMETER_IN/OUT nodes already created upstream. Any of
	// these may be nil if the upstream pass has not populated them,
	// per spec §7 MissingMethodStub.
	Stubs(m *ir.Method) Stubs

	// RegisterCall records a CALL node against the InvokeExpr that
	// produced it in a process-wide call index, for later inter-method
	// consumers. Out of scope for this core's own behavior.
	RegisterCall(invoke *ir.InvokeExpr, call *cpg.Node)

	// StoreParameters persists the parameter nodes produced during the
	// AST pass prelude so later passes (outside this core) can find them
	// by method.
	StoreParameters(m *ir.Method, params []*cpg.Node)
}

// Stubs is the pre-created, method-stub-pass-owned node set for one
// method.
type Stubs struct {
	Method       *cpg.Node
	Block        *cpg.Node
	MethodReturn *cpg.Node
	Parameters   []*cpg.Node // pre-existing METHOD_PARAMETER_IN/OUT, if any
}

// TypeIndex resolves a type's full name to its pre-created TYPE_REF node,
// for EVAL_TYPE edges. Resolution is lazy and tolerant of misses (spec §7
// MissingTypeNode): the core omits the edge rather than failing.
type TypeIndex interface {
	TypeNode(fullName string) *cpg.Node
}

// EvaluationStrategyFunc is the pure classifier from spec §6: given a
// type name and whether the parameter is used as a return-style output,
// it decides how the parameter is passed. The rule of thumb (object/array
// types are by-reference) lives with the classifier's implementation, not
// with the core, which only consumes the tri-valued result.
type EvaluationStrategyFunc func(typeFullName string, isReturn bool) cpg.EvaluationStrategy
