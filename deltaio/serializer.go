package deltaio

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/cpg/delta"
)

// wireGraph is the serialized form of a delta.Graph: nodes listed once, by
// value, in first-appearance order, and edges referencing them by index.
// Encoding delta.Graph.Ops directly with encoding/gob would not work: gob
// does not deduplicate a pointer reachable from multiple places in a single
// encode, so every edge's Src/Dst would decode into its own copy of the
// node instead of sharing identity the way the in-memory Graph guarantees.
// Indexing side-steps that entirely.
type wireGraph struct {
	Nodes []cpg.Node
	Edges []wireEdge
}

type wireEdge struct {
	Src   int
	Dst   int
	Label cpg.EdgeLabel
}

// Encode serializes g into the gob wire format described above.
func Encode(g *delta.Graph) ([]byte, error) {
	ids := nodeIDs(g)
	wg := wireGraph{
		Nodes: make([]cpg.Node, len(ids)),
		Edges: make([]wireEdge, 0, len(g.Ops)),
	}
	for n, id := range ids {
		wg.Nodes[id] = *n
	}
	for _, op := range g.Ops {
		if op.Kind != delta.OpEdgeAdd {
			continue
		}
		wg.Edges = append(wg.Edges, wireEdge{Src: ids[op.Src], Dst: ids[op.Dst], Label: op.Label})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wg); err != nil {
		return nil, fmt.Errorf("deltaio: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reconstructs a Graph from bytes produced by Encode. The result's
// Ops list every node add (in original first-appearance order) before every
// edge add; the original interleaving of the live lowering run is not
// preserved, only the node/edge content and topology.
func Decode(data []byte) (*delta.Graph, error) {
	var wg wireGraph
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wg); err != nil {
		return nil, fmt.Errorf("deltaio: decode: %w", err)
	}

	b := delta.New()
	nodes := make([]*cpg.Node, len(wg.Nodes))
	for i := range wg.Nodes {
		n := wg.Nodes[i]
		nodes[i] = b.AddNode(&n)
	}
	for _, e := range wg.Edges {
		if e.Src < 0 || e.Src >= len(nodes) || e.Dst < 0 || e.Dst >= len(nodes) {
			return nil, fmt.Errorf("deltaio: decode: edge references out-of-range node index")
		}
		b.AddEdge(nodes[e.Src], nodes[e.Dst], e.Label)
	}
	return b.Build(), nil
}

// WriteArchive gzip-compresses the gob encoding of g to w, for the batch
// CLI subcommand's --archive output. Using klauspost/compress/gzip instead
// of the standard library's compress/gzip is a drop-in swap for its faster
// encoder, at the teacher's own compression call sites.
func WriteArchive(w io.Writer, g *delta.Graph) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(w)
	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return fmt.Errorf("deltaio: write archive: %w", err)
	}
	return gw.Close()
}

// ReadArchive reverses WriteArchive.
func ReadArchive(r io.Reader) (*delta.Graph, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("deltaio: read archive: %w", err)
	}
	defer gr.Close()
	data, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("deltaio: read archive: %w", err)
	}
	return Decode(data)
}
