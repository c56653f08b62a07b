package lower

import (
	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// pdgPass implements spec §4.6: it adds REF and ARGUMENT edges only,
// reading the association map and the identity bindings the AST pass
// populated. All three loops tolerate missing or malformed entries per
// spec §7's MissingAssociation policy.
func (r *runner) pdgPass() {
	r.emitRefEdges()
	r.emitIdentityRefEdges()
	r.emitArgumentEdges()
}

// emitRefEdges walks every Local the association map was ever populated
// under (the locals prelude and every IDENTIFIER lowered for that Local
// share the same key) and links each IDENTIFIER back to the first LOCAL in
// that same sequence.
func (r *runner) emitRefEdges() {
	for _, key := range r.assoc.Keys() {
		local, ok := key.(*ir.Local)
		if !ok {
			continue
		}
		nodes := r.nodesOf(local)
		localNode := findByLabel(nodes, cpg.KindLocal)
		if localNode == nil {
			r.warn(KindMissingAssociation, ir.Position{}, nil, "local %q has identifier uses but no LOCAL node", local.Name)
			continue
		}
		for _, n := range nodes {
			if n.Label != cpg.KindIdentifier {
				continue
			}
			r.builder.AddEdge(n, localNode, cpg.EdgeRef)
		}
	}
}

// emitIdentityRefEdges implements the other half of spec §4.6's REF rule:
// for every use-box value found on head statements, i.e. every
// identity-reference IDENTIFIER the AST pass queued in identityBindings,
// emit identifier -REF→ the matching METHOD_PARAMETER_IN.
func (r *runner) emitIdentityRefEdges() {
	for _, b := range r.identityBindings {
		if b.paramIn == nil {
			r.warn(KindMissingAssociation, ir.Position{}, nil, "identity reference %q has no matching METHOD_PARAMETER_IN", b.kind)
			continue
		}
		r.builder.AddEdge(b.identifier, b.paramIn, cpg.EdgeRef)
	}
}

// emitArgumentEdges re-asserts ARGUMENT edges for if-conditions and
// invocations, as spec §4.6 requires: idempotent at the logical level,
// physical duplicates of the edges already emitted during AST lowering are
// allowed (spec §4.2/§9).
func (r *runner) emitArgumentEdges() {
	for _, stmt := range r.method.Statements {
		switch s := stmt.(type) {
		case *ir.IfStmt:
			r.reassertArguments(r.nodesOf(stmt))
		case *ir.InvokeStmt:
			r.reassertArguments(r.nodesOf(s.Invoke))
		}
	}
}

func (r *runner) reassertArguments(nodes []*cpg.Node) {
	call := findByLabel(nodes, cpg.KindCall)
	if call == nil {
		return
	}
	for _, n := range nodes {
		if n == call {
			continue
		}
		r.builder.AddEdge(call, n, cpg.EdgeArgument)
	}
}
