// Package delta implements the append-only delta-graph builder (spec
// §4.2): an ordered log of node and edge additions that is the result of
// a lowering pass, meant for bulk application to a graph backend. The
// builder performs no deduplication; spec §4.2 and §9 are explicit that a
// consumer applying the log is responsible for tolerating duplicate
// edges.
package delta

import "github.com/plume-oss/go-jimple2cpg/cpg"

// OpKind distinguishes the two operation shapes in the log.
type OpKind int

const (
	OpNodeAdd OpKind = iota
	OpEdgeAdd
)

// Op is a single entry in the delta log.
type Op struct {
	Kind  OpKind
	Node  *cpg.Node // set when Kind == OpNodeAdd
	Src   *cpg.Node // set when Kind == OpEdgeAdd
	Dst   *cpg.Node // set when Kind == OpEdgeAdd
	Label cpg.EdgeLabel
}

// Graph is the immutable result of Builder.Build: the ordered log plus
// convenience accessors used by deltaio and by tests. Node identity
// within a Graph is pointer identity on *cpg.Node — the same node value
// referenced by multiple edges is the same node, never a structural
// copy.
type Graph struct {
	Ops []Op
}

// Nodes returns every node added to the graph, in emission order.
func (g *Graph) Nodes() []*cpg.Node {
	nodes := make([]*cpg.Node, 0, len(g.Ops))
	for _, op := range g.Ops {
		if op.Kind == OpNodeAdd {
			nodes = append(nodes, op.Node)
		}
	}
	return nodes
}

// Edges returns every edge added to the graph, in emission order,
// optionally filtered to a single label (pass "" for all labels).
func (g *Graph) Edges(label cpg.EdgeLabel) []Op {
	var out []Op
	for _, op := range g.Ops {
		if op.Kind != OpEdgeAdd {
			continue
		}
		if label != "" && op.Label != label {
			continue
		}
		out = append(out, op)
	}
	return out
}

// Builder accumulates Ops. The zero value is an empty, ready-to-use
// builder, the same one New returns.
type Builder struct {
	ops []Op
}

// New creates an empty delta-graph builder.
func New() *Builder {
	return &Builder{}
}

// AddNode records a node addition and returns the same node, so call
// sites can build and register a node in one expression.
func (b *Builder) AddNode(n *cpg.Node) *cpg.Node {
	b.ops = append(b.ops, Op{Kind: OpNodeAdd, Node: n})
	return n
}

// AddEdge records an edge addition. Self-edges and duplicate edges are
// both permitted; the only check is that an edge with a nil endpoint is
// dropped instead of recorded.
func (b *Builder) AddEdge(src, dst *cpg.Node, label cpg.EdgeLabel) {
	if src == nil || dst == nil {
		return
	}
	b.ops = append(b.ops, Op{Kind: OpEdgeAdd, Src: src, Dst: dst, Label: label})
}

// Len reports how many operations have been recorded so far.
func (b *Builder) Len() int {
	return len(b.ops)
}

// Build returns the accumulated log as an immutable Graph. The builder
// remains usable afterwards (Build does not reset it); callers that want
// a frozen snapshot should stop using the builder after calling Build.
func (b *Builder) Build() *Graph {
	out := make([]Op, len(b.ops))
	copy(out, b.ops)
	return &Graph{Ops: out}
}
