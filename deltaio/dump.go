// Package deltaio renders and serializes delta.Graph values produced by
// package lower: a stable text dump for snapshot tests and human
// inspection (grounded on the teacher's disasm.go bytecode disassembler),
// a DOT rendering for visualization, and a binary encoding for the batch
// CLI's archive output.
package deltaio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/cpg/delta"
)

// nodeIDs assigns each distinct node pointer a stable, order-of-first-
// appearance ordinal, used by both Dump and DumpDOT so edges can reference
// nodes by a short, deterministic label instead of an unstable address.
func nodeIDs(g *delta.Graph) map[*cpg.Node]int {
	ids := make(map[*cpg.Node]int)
	next := 0
	assign := func(n *cpg.Node) {
		if n == nil {
			return
		}
		if _, ok := ids[n]; !ok {
			ids[n] = next
			next++
		}
	}
	for _, op := range g.Ops {
		switch op.Kind {
		case delta.OpNodeAdd:
			assign(op.Node)
		case delta.OpEdgeAdd:
			assign(op.Src)
			assign(op.Dst)
		}
	}
	return ids
}

// Dump renders g as a stable, line-oriented text format: one line per
// operation, in emission order, either a node line
// ("n<id> LABEL name=... code=...") or an edge line
// ("n<src> -LABEL-> n<dst>"). The format intentionally
// carries no node.ID or ContentHash (backend-assigned / derived), so two
// independent lowerings of the same method produce byte-identical dumps.
func Dump(g *delta.Graph) string {
	ids := nodeIDs(g)
	var sb strings.Builder
	for _, op := range g.Ops {
		switch op.Kind {
		case delta.OpNodeAdd:
			fmt.Fprintf(&sb, "n%d %s %s\n", ids[op.Node], op.Node.Label, describeNode(op.Node))
		case delta.OpEdgeAdd:
			fmt.Fprintf(&sb, "n%d -%s-> n%d\n", ids[op.Src], op.Label, ids[op.Dst])
		}
	}
	return sb.String()
}

func describeNode(n *cpg.Node) string {
	var parts []string
	if n.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%q", n.Name))
	}
	if n.Code != "" && n.Code != n.Name {
		parts = append(parts, fmt.Sprintf("code=%q", n.Code))
	}
	if n.TypeFullName != "" {
		parts = append(parts, fmt.Sprintf("type=%q", n.TypeFullName))
	}
	if n.ArgumentIndex != 0 {
		parts = append(parts, fmt.Sprintf("argIdx=%d", n.ArgumentIndex))
	}
	if n.Order != 0 {
		parts = append(parts, fmt.Sprintf("order=%d", n.Order))
	}
	if n.MethodFullName != "" {
		parts = append(parts, fmt.Sprintf("methodFullName=%q", n.MethodFullName))
	}
	if n.ControlStructureType != "" {
		parts = append(parts, fmt.Sprintf("controlStructureType=%s", n.ControlStructureType))
	}
	if n.DispatchType != "" {
		parts = append(parts, fmt.Sprintf("dispatchType=%s", n.DispatchType))
	}
	if n.EvaluationStrategy != "" {
		parts = append(parts, fmt.Sprintf("evaluationStrategy=%s", n.EvaluationStrategy))
	}
	return strings.Join(parts, " ")
}

// DumpDOT renders g as a Graphviz DOT digraph, colored by edge label so the
// overlaid AST/CFG/PDG sub-graphs are visually distinguishable.
func DumpDOT(g *delta.Graph) string {
	ids := nodeIDs(g)
	var sb strings.Builder
	sb.WriteString("digraph cpg {\n")
	sb.WriteString("  rankdir=TB;\n")

	// Node declarations are sorted by id so output stays deterministic
	// regardless of the map's (randomized) iteration order.
	byID := make(map[int]*cpg.Node, len(ids))
	for n, id := range ids {
		byID[id] = n
	}
	sortedIDs := make([]int, 0, len(byID))
	for id := range byID {
		sortedIDs = append(sortedIDs, id)
	}
	sort.Ints(sortedIDs)
	for _, id := range sortedIDs {
		n := byID[id]
		label := string(n.Label)
		if n.Code != "" {
			label = fmt.Sprintf("%s\\n%s", n.Label, dotEscape(n.Code))
		}
		fmt.Fprintf(&sb, "  n%d [label=%q];\n", id, label)
	}

	for _, op := range g.Ops {
		if op.Kind != delta.OpEdgeAdd {
			continue
		}
		fmt.Fprintf(&sb, "  n%d -> n%d [label=%q, color=%q];\n",
			ids[op.Src], ids[op.Dst], op.Label, edgeColor(op.Label))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func dotEscape(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func edgeColor(label cpg.EdgeLabel) string {
	switch label {
	case cpg.EdgeAST:
		return "black"
	case cpg.EdgeCFG:
		return "blue"
	case cpg.EdgeArgument, cpg.EdgeReceiver:
		return "darkorange"
	case cpg.EdgeRef:
		return "forestgreen"
	case cpg.EdgeCondition:
		return "purple"
	case cpg.EdgeContains:
		return "gray60"
	case cpg.EdgeEvalType:
		return "gray40"
	case cpg.EdgeParameterLink:
		return "brown"
	default:
		return "black"
	}
}
