package lower

import "github.com/plume-oss/go-jimple2cpg/cpg"

// nodesOf reads back an association-map entry as concrete *cpg.Node
// values. assoc.Map stores its own Node interface type to stay independent
// of package cpg; every value this core ever inserts is in fact a
// *cpg.Node, so the assertion here can never fail for keys the core itself
// populated.
func (r *runner) nodesOf(key any) []*cpg.Node {
	raw := r.assoc.Get(key)
	if len(raw) == 0 {
		return nil
	}
	out := make([]*cpg.Node, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(*cpg.Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// primaryNode returns assoc[key][0], the "entry" node the CFG pass threads
// control through, or nil if key was never populated (spec §7
// MissingAssociation: the caller skips the edge).
func (r *runner) primaryNode(key any) *cpg.Node {
	nodes := r.nodesOf(key)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// findByLabel returns the first node of the given label within an
// association entry.
func findByLabel(nodes []*cpg.Node, label cpg.NodeKind) *cpg.Node {
	for _, n := range nodes {
		if n.Label == label {
			return n
		}
	}
	return nil
}

// findByArgumentIndex returns the first node with the given argumentIndex
// within an association entry, used to find a switch's JUMP_TARGET by case
// value.
func findByArgumentIndex(nodes []*cpg.Node, argIdx int) *cpg.Node {
	for _, n := range nodes {
		if n.Label == cpg.KindJumpTarget && n.ArgumentIndex == argIdx {
			return n
		}
	}
	return nil
}

func findJumpTargetByName(nodes []*cpg.Node, name string) *cpg.Node {
	for _, n := range nodes {
		if n.Label == cpg.KindJumpTarget && n.Name == name {
			return n
		}
	}
	return nil
}
