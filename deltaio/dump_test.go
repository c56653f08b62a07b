package deltaio_test

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/cpg/delta"
	"github.com/plume-oss/go-jimple2cpg/deltaio"
)

func sampleGraph() *delta.Graph {
	b := delta.New()
	ident := b.AddNode(&cpg.Node{Label: cpg.KindIdentifier, Name: "a", Code: "a", ArgumentIndex: 1})
	lit := b.AddNode(&cpg.Node{Label: cpg.KindLiteral, Code: "5", ArgumentIndex: 2})
	call := b.AddNode(&cpg.Node{Label: cpg.KindCall, Name: cpg.OpAssignment, DispatchType: cpg.StaticDispatch})
	b.AddEdge(call, ident, cpg.EdgeAST)
	b.AddEdge(call, lit, cpg.EdgeAST)
	b.AddEdge(ident, lit, cpg.EdgeCFG)
	return b.Build()
}

func TestDumpIsStableAcrossRuns(t *testing.T) {
	g := sampleGraph()
	first := deltaio.Dump(g)
	second := deltaio.Dump(g)
	require.Equal(t, first, second)
	require.Contains(t, first, "IDENTIFIER")
	require.Contains(t, first, "LITERAL")
	require.Contains(t, first, "argIdx=1")
	require.Contains(t, first, "-AST-> n")
	require.Contains(t, first, "-CFG-> n")
}

func TestDumpOmitsBackendAssignedFields(t *testing.T) {
	g := sampleGraph()
	out := deltaio.Dump(g)
	require.NotContains(t, out, "ContentHash")
}

func TestDumpDOTIsValidDigraph(t *testing.T) {
	g := sampleGraph()
	out := deltaio.DumpDOT(g)
	require.True(t, strings.HasPrefix(out, "digraph cpg {\n"))
	require.True(t, strings.HasSuffix(out, "}\n"))
	require.Contains(t, out, `color="black"`)
	require.Contains(t, out, `color="blue"`)
}

// TestDumpTextSnapshot snapshot-tests the text dump format the way the
// teacher's interpreter fixtures snapshot-test output: Dump is stable per
// spec (no backend-assigned fields), so the same sample graph always
// matches the stored snapshot.
func TestDumpTextSnapshot(t *testing.T) {
	g := sampleGraph()
	snaps.MatchSnapshot(t, "assignment_dump", deltaio.Dump(g))
}

func TestDumpDOTEscapesQuotesInCode(t *testing.T) {
	b := delta.New()
	b.AddNode(&cpg.Node{Label: cpg.KindLiteral, Code: `say "hi"`})
	out := deltaio.DumpDOT(b.Build())
	require.Contains(t, out, "say")
	require.Contains(t, out, "hi")
	require.True(t, strings.HasPrefix(out, "digraph cpg {\n"))
}
