package lower

import "github.com/plume-oss/go-jimple2cpg/cpg"

// containmentSweep implements spec §4.7: after all three passes, flatten
// every node recorded in the association map, drop the ones owned by the
// upstream method-stub pass and every LOCAL, and emit a CONTAINS edge from
// METHOD to each survivor. The exclusion is by reference identity (spec
// §9), never by value comparison — excluded is keyed on the node pointer
// itself.
func (r *runner) containmentSweep() {
	defer r.assoc.Clear()

	if r.stubs.Method == nil {
		r.warn(KindMissingMethodStub, r.method.Pos, nil, "no METHOD stub, containment sweep skipped")
		return
	}

	excluded := map[*cpg.Node]bool{
		r.stubs.Method:       true,
		r.stubs.Block:        true,
		r.stubs.MethodReturn: true,
	}
	for _, n := range r.stubs.Parameters {
		excluded[n] = true
	}
	for _, n := range r.paramNodes {
		excluded[n] = true
	}

	seen := map[*cpg.Node]bool{}
	for _, key := range r.assoc.Keys() {
		for _, n := range r.nodesOf(key) {
			if n == nil || n.Label == cpg.KindLocal || excluded[n] || seen[n] {
				continue
			}
			seen[n] = true
			r.builder.AddEdge(r.stubs.Method, n, cpg.EdgeContains)
		}
	}
}
