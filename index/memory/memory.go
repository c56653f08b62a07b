// Package memory provides in-memory reference implementations of the
// package index interfaces, used by the test suite and by the
// jimple2cpg CLI, which has no real graph backend to talk to.
package memory

import (
	"strings"
	"unicode"

	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/index"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// MethodIndex is an in-memory index.MethodIndex keyed by method full
// name. NewMethodIndex returns it empty; Seed or NewStubbedMethod adds the
// METHOD/BLOCK/METHOD_RETURN stub that a real upstream method-stub pass
// would already have created.
type MethodIndex struct {
	stubs map[string]*index.Stubs
	calls map[*ir.InvokeExpr]*cpg.Node
}

// NewMethodIndex creates an empty index.
func NewMethodIndex() *MethodIndex {
	return &MethodIndex{
		stubs: make(map[string]*index.Stubs),
		calls: make(map[*ir.InvokeExpr]*cpg.Node),
	}
}

// Seed registers the stub node set for a method, as the upstream
// method-stub pass would have done before this core runs.
func (idx *MethodIndex) Seed(fullName string, stubs index.Stubs) {
	s := stubs
	idx.stubs[fullName] = &s
}

// NewStubbedMethod is a convenience that builds and seeds a minimal
// METHOD/BLOCK/METHOD_RETURN stub triple for fullName, returning the
// stubs for further customization (e.g. appending pre-existing
// parameters).
func (idx *MethodIndex) NewStubbedMethod(fullName string) *index.Stubs {
	stubs := index.Stubs{
		Method:       &cpg.Node{Label: cpg.KindMethod, Name: fullName, MethodFullName: fullName},
		Block:        &cpg.Node{Label: cpg.KindBlock},
		MethodReturn: &cpg.Node{Label: cpg.KindMethodReturn},
	}
	idx.Seed(fullName, stubs)
	return idx.stubs[fullName]
}

func (idx *MethodIndex) MethodNode(fullName string) *cpg.Node {
	if s, ok := idx.stubs[fullName]; ok {
		return s.Method
	}
	return nil
}

func (idx *MethodIndex) Stubs(m *ir.Method) index.Stubs {
	if m == nil {
		return index.Stubs{}
	}
	if s, ok := idx.stubs[m.FullName]; ok {
		return *s
	}
	return index.Stubs{}
}

func (idx *MethodIndex) RegisterCall(invoke *ir.InvokeExpr, call *cpg.Node) {
	if invoke == nil {
		return
	}
	idx.calls[invoke] = call
}

func (idx *MethodIndex) StoreParameters(m *ir.Method, params []*cpg.Node) {
	if m == nil {
		return
	}
	s, ok := idx.stubs[m.FullName]
	if !ok {
		s = &index.Stubs{}
		idx.stubs[m.FullName] = s
	}
	s.Parameters = params
}

// CallFor returns the CALL node registered for invoke, for assertions in
// tests exercising RegisterCall.
func (idx *MethodIndex) CallFor(invoke *ir.InvokeExpr) (*cpg.Node, bool) {
	n, ok := idx.calls[invoke]
	return n, ok
}

// TypeIndex is an in-memory index.TypeIndex keyed by type full name.
type TypeIndex struct {
	types map[string]*cpg.Node
}

// NewTypeIndex creates an empty type index.
func NewTypeIndex() *TypeIndex {
	return &TypeIndex{types: make(map[string]*cpg.Node)}
}

// Register adds a TYPE_REF node for fullName, returning it for chaining.
func (idx *TypeIndex) Register(fullName string) *cpg.Node {
	n := &cpg.Node{Label: cpg.KindTypeRef, TypeFullName: fullName, Name: fullName}
	idx.types[fullName] = n
	return n
}

func (idx *TypeIndex) TypeNode(fullName string) *cpg.Node {
	return idx.types[fullName]
}

// DefaultEvaluationStrategy implements spec §6's classifier rule of thumb:
// object and array types are passed by reference for parameters; every
// other type is passed by value. Output-only locations (isReturn) are
// always by-sharing, matching spec §4.4's METHOD_PARAMETER_OUT strategy.
func DefaultEvaluationStrategy(typeFullName string, isReturn bool) cpg.EvaluationStrategy {
	if isReturn {
		return cpg.BySharing
	}
	if isReferenceType(typeFullName) {
		return cpg.ByRef
	}
	return cpg.ByValue
}

func isReferenceType(typeFullName string) bool {
	switch typeFullName {
	case "", "int", "long", "short", "byte", "char", "boolean", "float", "double":
		return false
	}
	if strings.HasSuffix(typeFullName, "[]") || strings.Contains(typeFullName, ".") {
		return true
	}
	return unicode.IsUpper(rune(typeFullName[0]))
}
