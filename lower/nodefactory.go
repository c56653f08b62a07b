package lower

import (
	"fmt"
	"strings"

	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// newNode records n with the builder and returns it, mirroring
// delta.Builder.AddNode's register-and-return shape so call sites can build
// and wire a node in one expression.
func (r *runner) newNode(n *cpg.Node) *cpg.Node {
	return r.builder.AddNode(n)
}

func (r *runner) identifier(name, typeFullName string, pos ir.Position) *cpg.Node {
	n := r.newNode(&cpg.Node{
		Label:        cpg.KindIdentifier,
		Name:         name,
		Code:         name,
		TypeFullName: typeFullName,
		Line:         pos.Line,
		Column:       pos.Column,
	})
	r.attachEvalType(n)
	return n
}

func (r *runner) literal(text, typeFullName string, pos ir.Position) *cpg.Node {
	n := r.newNode(&cpg.Node{
		Label:        cpg.KindLiteral,
		Code:         text,
		TypeFullName: typeFullName,
		Line:         pos.Line,
		Column:       pos.Column,
	})
	r.attachEvalType(n)
	return n
}

func (r *runner) call(name, methodFullName, signature string, dispatch cpg.DispatchType, typeFullName string, pos ir.Position) *cpg.Node {
	n := r.newNode(&cpg.Node{
		Label:          cpg.KindCall,
		Name:           name,
		Code:           name,
		MethodFullName: methodFullName,
		Signature:      signature,
		DispatchType:   dispatch,
		TypeFullName:   typeFullName,
		Line:           pos.Line,
		Column:         pos.Column,
	})
	r.attachEvalType(n)
	return n
}

func (r *runner) operatorCall(op string, typeFullName string, pos ir.Position) *cpg.Node {
	return r.call(op, "", "", cpg.StaticDispatch, typeFullName, pos)
}

func (r *runner) controlStructure(kind cpg.ControlStructureType, pos ir.Position) *cpg.Node {
	return r.newNode(&cpg.Node{
		Label:                cpg.KindControlStructure,
		ControlStructureType: kind,
		Line:                 pos.Line,
		Column:               pos.Column,
	})
}

func (r *runner) jumpTarget(name string, argIdx int, pos ir.Position) *cpg.Node {
	return r.newNode(&cpg.Node{
		Label:         cpg.KindJumpTarget,
		Name:          name,
		Code:          name,
		ArgumentIndex: argIdx,
		Line:          pos.Line,
		Column:        pos.Column,
	})
}

func (r *runner) fieldIdentifier(canonicalName string, pos ir.Position) *cpg.Node {
	return r.newNode(&cpg.Node{
		Label:  cpg.KindFieldIdentifier,
		Name:   canonicalName,
		Code:   canonicalName,
		Line:   pos.Line,
		Column: pos.Column,
	})
}

func (r *runner) returnNode(pos ir.Position) *cpg.Node {
	return r.newNode(&cpg.Node{
		Label:  cpg.KindReturn,
		Code:   "return",
		Line:   pos.Line,
		Column: pos.Column,
	})
}

func (r *runner) unknownNode(typeFullName string, pos ir.Position) *cpg.Node {
	n := r.newNode(&cpg.Node{
		Label:        cpg.KindUnknown,
		TypeFullName: typeFullName,
		Line:         pos.Line,
		Column:       pos.Column,
	})
	r.attachEvalType(n)
	return n
}

func (r *runner) localNode(l *ir.Local) *cpg.Node {
	return r.newNode(&cpg.Node{
		Label:        cpg.KindLocal,
		Name:         l.Name,
		Code:         l.Name,
		TypeFullName: l.TypeFullName,
	})
}

func (r *runner) paramIn(l *ir.Local, idx int, strategy cpg.EvaluationStrategy, pos ir.Position) *cpg.Node {
	n := r.newNode(&cpg.Node{
		Label:              cpg.KindMethodParameterIn,
		Name:               l.Name,
		Code:               l.Name,
		TypeFullName:       l.TypeFullName,
		ArgumentIndex:      idx,
		EvaluationStrategy: strategy,
		Line:               pos.Line,
		Column:             pos.Column,
	})
	r.attachEvalType(n)
	return n
}

func (r *runner) paramOut(l *ir.Local, idx int, pos ir.Position) *cpg.Node {
	n := r.newNode(&cpg.Node{
		Label:              cpg.KindMethodParameterOut,
		Name:               l.Name,
		Code:               l.Name,
		TypeFullName:       l.TypeFullName,
		ArgumentIndex:      idx,
		EvaluationStrategy: cpg.BySharing,
		Line:               pos.Line,
		Column:             pos.Column,
	})
	r.attachEvalType(n)
	return n
}

// fieldSignature formats the canonical field signature the way a Soot-style
// field reference renders: <declaringClass: typeFullName fieldName>.
func fieldSignature(declaringClass, typeFullName, fieldName string) string {
	return fmt.Sprintf("<%s: %s %s>", declaringClass, typeFullName, fieldName)
}

// methodFullName and methodSignature format per the external parser's
// convention: "<declaringClass>.<name>:<retType>(<paramTypes,>)" and
// "<retType>(<paramTypes,>)" respectively.
func methodFullName(declaringClass, name, retType string, paramTypes []string) string {
	return fmt.Sprintf("%s.%s:%s", declaringClass, name, methodSignature(retType, paramTypes))
}

func methodSignature(retType string, paramTypes []string) string {
	return fmt.Sprintf("%s(%s)", retType, strings.Join(paramTypes, ","))
}

// addAST records an AST edge from parent to child and assigns child's
// 1-based sibling order, per invariant 6.
func (r *runner) addAST(parent, child *cpg.Node) {
	if parent == nil || child == nil {
		return
	}
	r.astOrder[parent]++
	child.Order = r.astOrder[parent]
	r.builder.AddEdge(parent, child, cpg.EdgeAST)
}

// addArgChild wires an ordinary operand/argument: AST + ARGUMENT edges, with
// the child's argumentIndex set explicitly (invariant 2).
func (r *runner) addArgChild(parent, child *cpg.Node, argIdx int) {
	if child == nil {
		return
	}
	child.ArgumentIndex = argIdx
	r.addAST(parent, child)
	r.builder.AddEdge(parent, child, cpg.EdgeArgument)
}

// addReceiverChild wires a call's receiver: AST + ARGUMENT + RECEIVER edges,
// argumentIndex fixed at 0 (invariant 2).
func (r *runner) addReceiverChild(parent, child *cpg.Node) {
	if child == nil {
		return
	}
	child.ArgumentIndex = 0
	r.addAST(parent, child)
	r.builder.AddEdge(parent, child, cpg.EdgeArgument)
	r.builder.AddEdge(parent, child, cpg.EdgeReceiver)
}

// attachEvalType adds the EVAL_TYPE edge to the previously registered type
// node for n's typeFullName, omitting it (spec's MissingTypeNode policy)
// when the type registry has no such node yet.
func (r *runner) attachEvalType(n *cpg.Node) {
	if n.TypeFullName == "" || r.typeIdx == nil {
		return
	}
	tn := r.typeIdx.TypeNode(n.TypeFullName)
	if tn == nil {
		r.warn(KindMissingTypeNode, ir.Position{}, nil, "no type node registered for %q", n.TypeFullName)
		return
	}
	r.builder.AddEdge(n, tn, cpg.EdgeEvalType)
}
