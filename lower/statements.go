package lower

import (
	"strconv"

	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// astPass builds every node the method produces: the parameter and locals
// preludes, then one dispatch per body statement. CFG and PDG edges beyond
// those threaded inside expression lowering are added by later passes,
// reading back what this pass recorded in the association map.
func (r *runner) astPass() {
	r.parameterPrelude()
	r.localsPrelude()
	for _, stmt := range r.method.Statements {
		r.lowerStmt(stmt)
	}
}

// parameterPrelude implements spec §4.4 step 1: one METHOD_PARAMETER_IN per
// declared parameter, an accompanying METHOD_PARAMETER_OUT when the
// classifier says the parameter is passed by reference, both attached to
// the METHOD node via AST. A nil classifier degrades to treating every
// parameter as byValue (no OUT side), consistent with the "omit the
// dependent edge" tolerance spec §7 asks for elsewhere.
func (r *runner) parameterPrelude() {
	var stored []*cpg.Node
	for i, p := range r.method.Parameters {
		idx := i + 1
		strategy := cpg.ByValue
		if r.classifier != nil {
			strategy = r.classifier(p.TypeFullName, false)
		}
		in := r.paramIn(p, idx, strategy, r.method.Pos)
		r.addAST(r.stubs.Method, in)
		stored = append(stored, in)
		r.paramInByLocal[p] = in

		if strategy == cpg.ByRef {
			out := r.paramOut(p, idx, r.method.Pos)
			r.addAST(r.stubs.Method, out)
			r.builder.AddEdge(in, out, cpg.EdgeParameterLink)
			stored = append(stored, out)
		}
	}
	r.paramNodes = append(r.paramNodes, stored...)
	if r.methodIdx != nil {
		r.methodIdx.StoreParameters(r.method, stored)
	}
}

// localsPrelude implements spec §4.4 step 2: a LOCAL node for every entry
// in the method's local-variable table, attached to the entry BLOCK via
// AST and recorded under the Local's own identity so the PDG pass can
// later find both the LOCAL and every IDENTIFIER referencing it under the
// same key.
func (r *runner) localsPrelude() {
	for _, l := range r.method.Locals {
		n := r.localNode(l)
		r.addAST(r.stubs.Block, n)
		r.assoc.Append(l, n)
		r.locals[l] = n
	}
}

func (r *runner) lowerStmt(stmt ir.Stmt) {
	switch s := stmt.(type) {
	case *ir.IdentityStmt:
		r.lowerIdentityStmt(stmt, s)
	case *ir.AssignStmt:
		r.lowerAssignLike(stmt, s.Left, s.Right)
	case *ir.IfStmt:
		r.lowerIf(stmt, s)
	case *ir.GotoStmt:
		r.lowerGoto(stmt, s)
	case *ir.LookupSwitchStmt:
		r.lowerLookupSwitch(stmt, s)
	case *ir.TableSwitchStmt:
		r.lowerTableSwitch(stmt, s)
	case *ir.InvokeStmt:
		r.lowerInvokeStmt(stmt, s)
	case *ir.ReturnStmt:
		r.lowerReturn(stmt, s)
	case *ir.ReturnVoidStmt:
		r.lowerReturnVoid(stmt)
	case *ir.ThrowStmt:
		r.lowerThrowOrMonitor(stmt, s.Value, s.Pos())
	case *ir.MonitorStmt:
		r.lowerThrowOrMonitor(stmt, s.Value, s.Pos())
	case *ir.UnknownStmt:
		r.warn(KindUnknownIRShape, s.Pos(), stmt, "statement kind %q outside the closed set, skipped", s.OriginalKind)
	default:
		r.warn(KindUnknownIRShape, stmt.Pos(), stmt, "unrecognized statement kind %T, skipped", stmt)
	}
}

// lowerAssignLike handles AssignStmt (spec §4.4 "Identity / Assign"): a
// CALL(assignment) whose left side uses the restricted lvalue shapes and
// whose right side is any value. IdentityStmt goes through
// lowerIdentityStmt, which builds the same skeleton.
func (r *runner) lowerAssignLike(stmt ir.Stmt, left ir.Value, right ir.Value) {
	pos := stmt.Pos()
	call := r.operatorCall(cpg.OpAssignment, "", pos)
	leftRoot, leftEntry := r.lowerLValue(left, pos)
	rightRoot, rightEntry := r.lowerOp(right, 2, pos)
	r.addArgChild(call, leftRoot, 1)
	r.addArgChild(call, rightRoot, 2)
	r.chainCFG(evalItem{leftRoot, leftEntry}, evalItem{rightRoot, rightEntry}, evalItem{call, call})
	r.addAST(r.stubs.Block, call)
	r.assoc.Append(stmt, leftRoot, rightRoot, call)
}

// lowerIdentityStmt handles IdentityStmt's "this"/parameter binding shape.
// It shares lowerAssignLike's CALL(assignment) skeleton but lowers the
// right side through lowerIdentityRef instead of the general value
// lowerer, since spec §4.6's REF rule sends the "@this"/"@parameter"
// identifier to the matching METHOD_PARAMETER_IN rather than a LOCAL.
func (r *runner) lowerIdentityStmt(stmt ir.Stmt, s *ir.IdentityStmt) {
	pos := stmt.Pos()
	call := r.operatorCall(cpg.OpAssignment, "", pos)
	leftRoot, leftEntry := r.lowerLValue(s.Left, pos)
	rightRoot, rightEntry := r.lowerIdentityRef(s, pos)
	r.addArgChild(call, leftRoot, 1)
	r.addArgChild(call, rightRoot, 2)
	r.chainCFG(evalItem{leftRoot, leftEntry}, evalItem{rightRoot, rightEntry}, evalItem{call, call})
	r.addAST(r.stubs.Block, call)
	r.assoc.Append(stmt, leftRoot, rightRoot, call)
}

// lowerIdentityRef lowers an IdentityStmt's right side. When it is the
// *ir.IdentityRef shape spec §3.1 reserves for "this"/parameter
// placeholders, the identifier it produces is queued for a REF edge to the
// METHOD_PARAMETER_IN parameterPrelude built for the bound Local — emitted
// later by the PDG pass's emitIdentityRefEdges, not here, since this is the
// identity-reference half of spec §4.6's REF rule rather than part of AST
// construction. Any other shape (tolerant of IR that doesn't use
// IdentityRef) falls back to the general value lowerer.
func (r *runner) lowerIdentityRef(s *ir.IdentityStmt, pos ir.Position) (*cpg.Node, *cpg.Node) {
	ref, ok := s.Right.(*ir.IdentityRef)
	if !ok {
		return r.lowerOp(s.Right, 2, pos)
	}
	n := r.identifier("@"+ref.Kind, ref.TypeFullName, pos)
	r.identityBindings = append(r.identityBindings, identityBinding{
		identifier: n,
		paramIn:    r.paramInByLocal[s.Left],
		kind:       ref.Kind,
	})
	return n, n
}

// lowerLValue restricts assignment targets to the shapes spec §4.4
// enumerates (Local, field reference, array reference); anything else
// becomes UNKNOWN rather than falling through to the general expression
// lowerer, since arbitrary values are not valid assignment targets.
func (r *runner) lowerLValue(v ir.Value, pos ir.Position) (*cpg.Node, *cpg.Node) {
	switch val := v.(type) {
	case *ir.Local:
		n := r.identifier(val.Name, val.TypeFullName, pos)
		r.assoc.Append(val, n)
		return n, n
	case *ir.StaticFieldRef:
		return r.lowerStaticFieldAccess(val, pos)
	case *ir.InstanceFieldRef:
		return r.lowerInstanceFieldAccess(val, pos)
	case *ir.ArrayRef:
		call, entry := r.lowerBinaryShaped(cpg.OpIndexAccess, val.TypeFullName, val.Base, val.Index, pos)
		// Recorded under the ArrayRef's own identity so the CFG pass can
		// re-key a successor array-store onto its indexAccess call (spec
		// §4.5 / §9 "re-keys the successor by the leftOp").
		r.assoc.Append(val, call)
		return call, entry
	default:
		r.warn(KindUnknownIRShape, pos, nil, "assignment target shape not supported: %T", v)
		n := r.unknownNode("", pos)
		return n, n
	}
}

func (r *runner) lowerIf(stmt ir.Stmt, s *ir.IfStmt) {
	pos := s.Pos()
	ifNode := r.controlStructure(cpg.ControlIf, pos)
	condRoot, condEntry := r.lowerBinop(s.Condition, pos)
	r.addAST(ifNode, condRoot)
	r.builder.AddEdge(ifNode, condRoot, cpg.EdgeCondition)
	r.addAST(r.stubs.Block, ifNode)
	r.assoc.Append(stmt, condEntry, condRoot, ifNode)
}

func (r *runner) lowerGoto(stmt ir.Stmt, s *ir.GotoStmt) {
	gotoNode := r.controlStructure(cpg.ControlGoto, s.Pos())
	r.addAST(r.stubs.Block, gotoNode)
	r.assoc.Append(stmt, gotoNode)
}

func (r *runner) lowerLookupSwitch(stmt ir.Stmt, s *ir.LookupSwitchStmt) {
	pos := s.Pos()
	switchNode := r.controlStructure(cpg.ControlSwitch, pos)
	condRoot, _ := r.lowerOp(s.Key, 0, pos)
	r.addAST(switchNode, condRoot)
	r.builder.AddEdge(switchNode, condRoot, cpg.EdgeCondition)
	r.addAST(r.stubs.Block, switchNode)
	r.assoc.Append(stmt, switchNode)

	for i, target := range s.Targets {
		if target == s.Default {
			continue
		}
		v := s.Values[i]
		jt := r.jumpTarget(caseLabel(v), int(v), pos)
		r.addAST(switchNode, jt)
		r.assoc.Append(stmt, jt)
	}
	defaultIdx := len(s.Targets) + 2
	jtDefault := r.jumpTarget("default", defaultIdx, pos)
	r.addAST(switchNode, jtDefault)
	r.assoc.Append(stmt, jtDefault)

	r.assoc.Insert(stmt, 0, condRoot)
}

func (r *runner) lowerTableSwitch(stmt ir.Stmt, s *ir.TableSwitchStmt) {
	pos := s.Pos()
	switchNode := r.controlStructure(cpg.ControlSwitch, pos)
	condRoot, _ := r.lowerOp(s.Key, 0, pos)
	r.addAST(switchNode, condRoot)
	r.builder.AddEdge(switchNode, condRoot, cpg.EdgeCondition)
	r.addAST(r.stubs.Block, switchNode)
	r.assoc.Append(stmt, switchNode)

	for i, target := range s.Targets {
		if target == s.Default {
			continue
		}
		jt := r.jumpTarget(caseLabel(int64(i)), i, pos)
		r.addAST(switchNode, jt)
		r.assoc.Append(stmt, jt)
	}
	defaultIdx := len(s.Targets) + 2
	jtDefault := r.jumpTarget("default", defaultIdx, pos)
	r.addAST(switchNode, jtDefault)
	r.assoc.Append(stmt, jtDefault)

	r.assoc.Insert(stmt, 0, condRoot)
}

func caseLabel(v int64) string {
	return "case " + strconv.FormatInt(v, 10)
}

func (r *runner) lowerInvokeStmt(stmt ir.Stmt, s *ir.InvokeStmt) {
	call, _ := r.lowerInvoke(s.Invoke, s.Pos())
	r.addAST(r.stubs.Block, call)
	r.assoc.Insert(stmt, 0, call)
}

func (r *runner) lowerReturn(stmt ir.Stmt, s *ir.ReturnStmt) {
	pos := s.Pos()
	retNode := r.returnNode(pos)
	retNode.ArgumentIndex = 0
	operandRoot, operandEntry := r.lowerOp(s.Value, 1, pos)
	r.addArgChild(retNode, operandRoot, 1)
	r.addAST(r.stubs.Block, retNode)
	r.chainCFG(evalItem{operandRoot, operandEntry}, evalItem{retNode, retNode})
	r.assoc.Append(stmt, operandRoot, retNode)
}

func (r *runner) lowerReturnVoid(stmt ir.Stmt) {
	retNode := r.returnNode(stmt.Pos())
	r.addAST(r.stubs.Block, retNode)
	r.assoc.Append(stmt, retNode)
}

// lowerThrowOrMonitor implements spec §4.4's Throw/Monitor rule, preserved
// verbatim per spec §9: the AST edge between the synthetic UNKNOWN and its
// operand runs unknown -> operand, the reverse of every other kind's
// parent -> child direction.
func (r *runner) lowerThrowOrMonitor(stmt ir.Stmt, value ir.Value, pos ir.Position) {
	operandRoot, _ := r.lowerOp(value, 1, pos)
	unknown := r.unknownNode("void", pos)
	r.builder.AddEdge(operandRoot, unknown, cpg.EdgeCFG)
	r.addAST(unknown, operandRoot)
	r.addAST(r.stubs.Block, unknown)
	r.assoc.Append(stmt, operandRoot, unknown)
}
