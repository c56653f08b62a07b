package lower

import (
	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// cfgPass implements spec §4.5: it reads the association map the AST pass
// populated and adds CFG edges only, never creating or relabeling nodes.
func (r *runner) cfgPass() {
	if r.method.Succ == nil {
		return
	}

	for _, h := range r.method.Succ.Heads() {
		primary := r.primaryNode(h)
		if primary == nil {
			r.warn(KindMissingAssociation, h.Pos(), h, "head statement has no association entry")
			continue
		}
		if r.stubs.Method == nil {
			r.warn(KindMissingMethodStub, h.Pos(), h, "no METHOD stub to anchor head CFG edge")
			continue
		}
		r.builder.AddEdge(r.stubs.Method, primary, cpg.EdgeCFG)
	}

	for _, stmt := range r.method.Statements {
		r.cfgForStmt(stmt)
	}
}

func (r *runner) cfgForStmt(stmt ir.Stmt) {
	switch s := stmt.(type) {
	case *ir.IfStmt:
		r.cfgForIf(stmt, s)
	case *ir.LookupSwitchStmt:
		r.cfgForLookupSwitch(s)
	case *ir.TableSwitchStmt:
		r.cfgForTableSwitch(s)
	case *ir.ReturnStmt:
		r.cfgForReturn(stmt)
	case *ir.ReturnVoidStmt:
		r.cfgForReturn(stmt)
	case *ir.IdentityStmt:
		r.cfgForAssign(stmt)
	case *ir.AssignStmt:
		r.cfgForAssign(stmt)
	case *ir.ThrowStmt:
		// no outgoing CFG: control terminates.
	default:
		r.cfgDefault(stmt)
	}
}

func (r *runner) cfgForIf(stmt ir.Stmt, s *ir.IfStmt) {
	nodes := r.nodesOf(stmt)
	cfgSource := findByLabel(nodes, cpg.KindCall)
	if cfgSource == nil {
		r.warn(KindMissingAssociation, s.Pos(), stmt, "if statement has no condition call in its association")
		return
	}
	for _, succ := range r.method.Succ.Succs(stmt) {
		target := r.primaryNode(succ)
		if target == nil {
			r.warn(KindMissingAssociation, s.Pos(), succ, "if successor has no association entry")
			continue
		}
		r.builder.AddEdge(cfgSource, target, cpg.EdgeCFG)
	}
}

func (r *runner) cfgForLookupSwitch(s *ir.LookupSwitchStmt) {
	nodes := r.nodesOf(s)
	cond := primaryOf(nodes)
	if cond == nil {
		return
	}
	if s.Default != nil {
		r.linkSwitchCase(cond, s.Default, findJumpTargetByName(nodes, "default"))
	}
	for i, target := range s.Targets {
		if target == s.Default {
			continue
		}
		jt := findByArgumentIndex(nodes, int(s.Values[i]))
		r.linkSwitchCase(cond, target, jt)
	}
}

func (r *runner) cfgForTableSwitch(s *ir.TableSwitchStmt) {
	nodes := r.nodesOf(s)
	cond := primaryOf(nodes)
	if cond == nil {
		return
	}
	if s.Default != nil {
		r.linkSwitchCase(cond, s.Default, findJumpTargetByName(nodes, "default"))
	}
	for i, target := range s.Targets {
		if target == s.Default {
			continue
		}
		jt := findByArgumentIndex(nodes, i)
		r.linkSwitchCase(cond, target, jt)
	}
}

func (r *runner) linkSwitchCase(cond *cpg.Node, target ir.Stmt, jt *cpg.Node) {
	if jt == nil {
		r.warn(KindMissingAssociation, target.Pos(), target, "no matching JUMP_TARGET for switch case")
		return
	}
	r.builder.AddEdge(cond, jt, cpg.EdgeCFG)
	entry := r.primaryNode(target)
	if entry == nil {
		r.warn(KindMissingAssociation, target.Pos(), target, "switch target has no association entry")
		return
	}
	r.builder.AddEdge(jt, entry, cpg.EdgeCFG)
}

func primaryOf(nodes []*cpg.Node) *cpg.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (r *runner) cfgForReturn(stmt ir.Stmt) {
	nodes := r.nodesOf(stmt)
	retNode := findByLabel(nodes, cpg.KindReturn)
	if retNode == nil {
		r.warn(KindMissingAssociation, stmt.Pos(), stmt, "return statement has no RETURN node")
		return
	}
	if r.stubs.MethodReturn == nil {
		r.warn(KindMissingMethodStub, stmt.Pos(), stmt, "no METHOD_RETURN stub for return edge")
		return
	}
	r.builder.AddEdge(retNode, r.stubs.MethodReturn, cpg.EdgeCFG)
}

// cfgForAssign implements spec §4.5's Identity/Assign rule, including the
// array-ref re-keying quirk preserved verbatim per spec §9: a successor
// that stores into an array is entered at its indexAccess call, found by
// looking up the successor's own leftOp value rather than the statement.
func (r *runner) cfgForAssign(stmt ir.Stmt) {
	nodes := r.nodesOf(stmt)
	assignCall := lastOf(nodes)
	if assignCall == nil {
		r.warn(KindMissingAssociation, stmt.Pos(), stmt, "assignment has no association entry")
		return
	}
	for _, succ := range r.method.Succ.Succs(stmt) {
		target := r.successorEntry(succ)
		if target == nil {
			r.warn(KindMissingAssociation, stmt.Pos(), succ, "assignment successor has no association entry")
			continue
		}
		r.builder.AddEdge(assignCall, target, cpg.EdgeCFG)
	}
}

func (r *runner) successorEntry(succ ir.Stmt) *cpg.Node {
	if assign, ok := succ.(*ir.AssignStmt); ok {
		if ref, ok := assign.Left.(*ir.ArrayRef); ok {
			if n := r.primaryNode(ref); n != nil {
				return n
			}
		}
	}
	return r.primaryNode(succ)
}

func lastOf(nodes []*cpg.Node) *cpg.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}

func (r *runner) cfgDefault(stmt ir.Stmt) {
	source := r.primaryNode(stmt)
	if source == nil {
		return
	}
	for _, succ := range r.method.Succ.Succs(stmt) {
		target := r.primaryNode(succ)
		if target == nil {
			r.warn(KindMissingAssociation, stmt.Pos(), succ, "successor has no association entry")
			continue
		}
		r.builder.AddEdge(source, target, cpg.EdgeCFG)
	}
}
