package lower

import (
	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// evalItem pairs a lowered subexpression's AST root with the node where
// control enters its evaluation, the (root, cfgEntry) pair threaded
// throughout the expression lowerer.
type evalItem struct {
	root     *cpg.Node
	cfgEntry *cpg.Node
}

// chainCFG wires sequential evaluation order between already-lowered
// items — item[i].root -CFG-> item[i+1].cfgEntry — and returns the overall
// entry point (the first item's cfgEntry), or nil if items is empty.
func (r *runner) chainCFG(items ...evalItem) *cpg.Node {
	var entry *cpg.Node
	var prev *cpg.Node
	for _, it := range items {
		if it.cfgEntry == nil && it.root == nil {
			continue
		}
		if entry == nil {
			entry = it.cfgEntry
		}
		if prev != nil {
			r.builder.AddEdge(prev, it.cfgEntry, cpg.EdgeCFG)
		}
		prev = it.root
	}
	return entry
}

// lowerOp recursively lowers an IR value into a CPG node subgraph per the
// per-kind shape rules, returning the subgraph's AST root and the node
// where control first enters its evaluation. pos supplies line/column for
// every node produced, since values in this IR carry no position of their
// own — they inherit the enclosing statement's.
func (r *runner) lowerOp(v ir.Value, argIdx int, pos ir.Position) (*cpg.Node, *cpg.Node) {
	switch val := v.(type) {
	case *ir.Local:
		n := r.identifier(val.Name, val.TypeFullName, pos)
		r.assoc.Append(val, n)
		return n, n

	case *ir.Constant:
		n := r.literal(val.Text, val.TypeFullName, pos)
		return n, n

	case *ir.IdentityRef:
		name := "@" + val.Kind
		n := r.identifier(name, val.TypeFullName, pos)
		return n, n

	case *ir.NewExpr:
		n := r.literal("new "+val.TypeFullName, val.TypeFullName, pos)
		return n, n

	case *ir.NewArrayExpr:
		n := r.literal("newarray "+val.ElementType, val.ElementType+"[]", pos)
		return n, n

	case *ir.CaughtExceptionRef:
		n := r.literal("@caughtexception", val.TypeFullName, pos)
		return n, n

	case *ir.StaticFieldRef:
		return r.lowerStaticFieldAccess(val, pos)

	case *ir.InstanceFieldRef:
		return r.lowerInstanceFieldAccess(val, pos)

	case *ir.BinopExpr:
		return r.lowerBinaryShaped(val.Operator, val.TypeFullName, val.Left, val.Right, pos)

	case *ir.ConditionExpr:
		return r.lowerBinop(val, pos)

	case *ir.CastExpr:
		return r.lowerUnary(cpg.OpCast, val.TypeFullName, val.Operand, pos)

	case *ir.InstanceOfExpr:
		return r.lowerUnary(cpg.OpInstanceOf, val.TypeFullName, val.Operand, pos)

	case *ir.LengthExpr:
		return r.lowerUnary(cpg.OpLengthOf, val.TypeFullName, val.Operand, pos)

	case *ir.NegExpr:
		return r.lowerUnary(cpg.OpMinus, val.TypeFullName, val.Operand, pos)

	case *ir.ArrayRef:
		return r.lowerBinaryShaped(cpg.OpIndexAccess, val.TypeFullName, val.Base, val.Index, pos)

	case *ir.InvokeExpr:
		return r.lowerInvoke(val, pos)

	default:
		r.warn(KindUnknownIRShape, pos, nil, "unrecognized value kind %T", v)
		n := r.unknownNode("", pos)
		return n, n
	}
}

// lowerBinop lowers a ConditionExpr, the shape used for if/switch
// conditions, sharing the binary-operator layout but kept as its own entry
// point so callers needing the condition root specifically (the if
// statement lowerer) can call it directly instead of going through the
// closed ir.Value switch.
func (r *runner) lowerBinop(cond *ir.ConditionExpr, pos ir.Position) (*cpg.Node, *cpg.Node) {
	return r.lowerBinaryShaped(cond.Operator, cond.TypeFullName, cond.Left, cond.Right, pos)
}

// lowerBinaryShaped implements the common two-child shape shared by binary
// operators and index access (spec §4.3): a CALL with two AST/ARGUMENT
// children at indices 1 and 2, internal CFG left -> right -> call, and the
// left operand's cfg-entry as the external entry point.
func (r *runner) lowerBinaryShaped(op, typeFullName string, left, right ir.Value, pos ir.Position) (*cpg.Node, *cpg.Node) {
	call := r.operatorCall(op, typeFullName, pos)
	leftRoot, leftEntry := r.lowerOp(left, 1, pos)
	rightRoot, rightEntry := r.lowerOp(right, 2, pos)
	r.addArgChild(call, leftRoot, 1)
	r.addArgChild(call, rightRoot, 2)
	entry := r.chainCFG(evalItem{leftRoot, leftEntry}, evalItem{rightRoot, rightEntry}, evalItem{call, call})
	return call, entry
}

// lowerUnary implements the one-child shape shared by cast/instanceOf/
// lengthOf/minus (spec §4.3): a CALL with one AST/ARGUMENT child at index
// 1, internal CFG child -> call.
func (r *runner) lowerUnary(op, typeFullName string, operand ir.Value, pos ir.Position) (*cpg.Node, *cpg.Node) {
	call := r.operatorCall(op, typeFullName, pos)
	childRoot, childEntry := r.lowerOp(operand, 1, pos)
	r.addArgChild(call, childRoot, 1)
	entry := r.chainCFG(evalItem{childRoot, childEntry}, evalItem{call, call})
	return call, entry
}

// lowerStaticFieldAccess and lowerInstanceFieldAccess implement spec
// §4.3's field-access shape: a synthetic CALL(fieldAccess) with an
// IDENTIFIER child (the declaring class for a static field, the base local
// for an instance field) and a FIELD_IDENTIFIER child, both stored under
// the field-ref key together with the call; the containment sweep reads
// that entry back to emit their CONTAINS edges.
func (r *runner) lowerStaticFieldAccess(ref *ir.StaticFieldRef, pos ir.Position) (*cpg.Node, *cpg.Node) {
	call := r.operatorCall(cpg.OpFieldAccess, ref.TypeFullName, pos)
	classID := r.identifier(ref.DeclaringClass, ref.DeclaringClass, pos)
	fieldID := r.fieldIdentifier(fieldSignature(ref.DeclaringClass, ref.TypeFullName, ref.FieldName), pos)
	r.addArgChild(call, classID, 1)
	r.addArgChild(call, fieldID, 2)
	r.assoc.Append(ref, classID, fieldID, call)
	entry := r.chainCFG(evalItem{classID, classID}, evalItem{fieldID, fieldID}, evalItem{call, call})
	return call, entry
}

func (r *runner) lowerInstanceFieldAccess(ref *ir.InstanceFieldRef, pos ir.Position) (*cpg.Node, *cpg.Node) {
	call := r.operatorCall(cpg.OpFieldAccess, ref.TypeFullName, pos)
	baseRoot, baseEntry := r.lowerOp(ref.Base, 1, pos)
	fieldID := r.fieldIdentifier(fieldSignature(ref.DeclaringClass, ref.TypeFullName, ref.FieldName), pos)
	r.addArgChild(call, baseRoot, 1)
	r.addArgChild(call, fieldID, 2)
	r.assoc.Append(ref, baseRoot, fieldID, call)
	entry := r.chainCFG(evalItem{baseRoot, baseEntry}, evalItem{fieldID, fieldID}, evalItem{call, call})
	return call, entry
}

// lowerInvoke implements spec §4.3's invocation shape.
func (r *runner) lowerInvoke(inv *ir.InvokeExpr, pos ir.Position) (*cpg.Node, *cpg.Node) {
	dispatch := cpg.DynamicDispatch
	if inv.IsStatic {
		dispatch = cpg.StaticDispatch
	}
	call := r.call(
		inv.Name,
		methodFullName(inv.DeclaringClass, inv.Name, inv.ReturnType, inv.ParamTypes),
		methodSignature(inv.ReturnType, inv.ParamTypes),
		dispatch,
		inv.ReturnType,
		pos,
	)

	var chain []evalItem
	members := []*cpg.Node{call}

	if inv.Receiver != nil {
		if recvLocal, ok := inv.Receiver.(*ir.Local); ok {
			recvNode := r.identifier(recvLocal.Name, recvLocal.TypeFullName, pos)
			r.assoc.Append(recvLocal, recvNode)
			r.addReceiverChild(call, recvNode)
			chain = append(chain, evalItem{recvNode, recvNode})
			members = append(members, recvNode)
		} else {
			r.warn(KindUnknownIRShape, pos, nil, "invocation receiver is not a local: %T", inv.Receiver)
		}
	}

	args := append(append([]ir.Value{}, inv.Args...), inv.BootstrapArgs...)
	idx := 1
	for _, a := range args {
		switch arg := a.(type) {
		case *ir.Local:
			n := r.identifier(arg.Name, arg.TypeFullName, pos)
			r.assoc.Append(arg, n)
			r.addArgChild(call, n, idx)
			chain = append(chain, evalItem{n, n})
			members = append(members, n)
		case *ir.Constant:
			n := r.literal(arg.Text, arg.TypeFullName, pos)
			r.addArgChild(call, n, idx)
			chain = append(chain, evalItem{n, n})
			members = append(members, n)
		default:
			r.warn(KindUnknownIRShape, pos, nil, "invocation argument shape skipped: %T", a)
		}
		idx++
	}

	chain = append(chain, evalItem{call, call})
	entry := r.chainCFG(chain...)
	if entry == nil {
		entry = call
	}

	if r.methodIdx != nil {
		r.methodIdx.RegisterCall(inv, call)
	}
	// Registered under the invocation's own identity (spec §4.3 "register
	// the call node under the invocation key") with every argument/receiver
	// node alongside it, so the PDG pass can re-assert ARGUMENT edges from
	// the association alone (spec §4.6).
	for _, n := range members {
		r.assoc.Append(inv, n)
	}

	return call, entry
}
