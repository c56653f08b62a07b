// Package lower is the method-body lowering core: it turns one ir.Method
// into a Code Property Graph fragment (overlaid AST, CFG, and PDG
// sub-graphs) expressed as a delta.Graph. The core runs three passes in
// order over shared per-method state — AstPass, CfgPass, PdgPass — followed
// by a containment sweep, exactly mirroring the teacher's compiler_core.go
// pattern of one Compiler value threaded through per-kind compile
// functions, except the "program" produced here is a graph rather than
// bytecode.
package lower

import (
	"fmt"

	"github.com/plume-oss/go-jimple2cpg/cpg"
	"github.com/plume-oss/go-jimple2cpg/cpg/assoc"
	"github.com/plume-oss/go-jimple2cpg/cpg/delta"
	"github.com/plume-oss/go-jimple2cpg/index"
	"github.com/plume-oss/go-jimple2cpg/ir"
)

// identityBinding records one identity-reference IDENTIFIER awaiting its
// REF edge; kind is carried only for diagnostic messages.
type identityBinding struct {
	identifier *cpg.Node
	paramIn    *cpg.Node
	kind       string
}

// Result is what Run returns: the delta graph produced so far (complete on
// success, partial if a pass panicked) plus every Diagnostic recorded along
// the way.
type Result struct {
	Graph       *delta.Graph
	Diagnostics []Diagnostic
}

// HasErrors reports whether any Diagnostic reached Severity Error, i.e.
// whether a pass was aborted by a recovered panic.
func (res *Result) HasErrors() bool {
	for _, d := range res.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// runner is the per-method state threaded through every lowering function,
// the graph equivalent of the teacher's Compiler value: never shared across
// methods, rebuilt fresh by Run for each call.
type runner struct {
	method     *ir.Method
	methodIdx  index.MethodIndex
	typeIdx    index.TypeIndex
	classifier index.EvaluationStrategyFunc

	builder *delta.Builder
	assoc   *assoc.Map
	stubs   index.Stubs

	// locals maps each declared Local to its LOCAL node, populated by the
	// locals prelude before any statement is lowered.
	locals map[*ir.Local]*cpg.Node

	// paramNodes collects every METHOD_PARAMETER_IN/OUT node this run
	// created, so the containment sweep can exclude them (they are
	// method-stub-owned, not body nodes, per spec §3.2/§4.7).
	paramNodes []*cpg.Node

	// paramInByLocal maps each declared parameter Local to the
	// METHOD_PARAMETER_IN node parameterPrelude built for it, so the
	// identity statements below can resolve which parameter an
	// identity-reference binds to.
	paramInByLocal map[*ir.Local]*cpg.Node

	// identityBindings pairs each "@this"/"@parameter" IDENTIFIER the AST
	// pass built with the METHOD_PARAMETER_IN it stands for (nil if none
	// matched), so the PDG pass can emit the REF edge spec §4.6 requires
	// for identity references without the AST pass reaching ahead into the
	// PDG pass's own concern.
	identityBindings []identityBinding

	// astOrder tracks the next 1-based AST sibling index per parent node.
	astOrder map[*cpg.Node]int

	diagnostics []Diagnostic
}

// Run lowers a single method into a Code Property Graph fragment. methodIdx
// supplies the pre-created METHOD/BLOCK/METHOD_RETURN stubs and receives
// call/parameter registrations; typeIdx resolves EVAL_TYPE targets;
// classifier decides each parameter's evaluation strategy. Any of the three
// may be nil: a nil methodIdx leaves out every edge anchored on a stub
// node (the CFG pass and the containment sweep record MissingMethodStub
// warnings), a nil typeIdx omits every EVAL_TYPE edge without a
// diagnostic, and a nil classifier treats every parameter as by-value.
func Run(m *ir.Method, methodIdx index.MethodIndex, typeIdx index.TypeIndex, classifier index.EvaluationStrategyFunc) *Result {
	r := &runner{
		method:         m,
		methodIdx:      methodIdx,
		typeIdx:        typeIdx,
		classifier:     classifier,
		builder:        delta.New(),
		assoc:          assoc.New(),
		locals:         make(map[*ir.Local]*cpg.Node),
		paramInByLocal: make(map[*ir.Local]*cpg.Node),
		astOrder:       make(map[*cpg.Node]int),
	}
	if methodIdx != nil {
		r.stubs = methodIdx.Stubs(m)
	}

	r.runPass("AstPass", r.astPass)
	r.runPass("CfgPass", r.cfgPass)
	r.runPass("PdgPass", r.pdgPass)
	r.runPass("ContainmentSweep", r.containmentSweep)

	graph := r.builder.Build()
	for _, n := range graph.Nodes() {
		n.ContentHash = cpg.ContentHash(n)
	}
	return &Result{Graph: graph, Diagnostics: r.diagnostics}
}

// runPass invokes fn, recovering a panic into a single Error diagnostic per
// spec §5/§7: "any exception raised inside a pass is caught at the outer
// boundary; a warning is logged and the partial DeltaGraph built so far is
// returned." Later passes still run — CfgPass reading an incomplete
// association map after a panicked AstPass degrades via MissingAssociation,
// not a second panic, since every map read already tolerates absent keys.
func (r *runner) runPass(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.diagnostics = append(r.diagnostics, Diagnostic{
				Severity: Error,
				Kind:     KindPanic,
				Message:  fmt.Sprintf("%s: recovered panic: %v", name, rec),
				Pos:      r.method.Pos,
			})
		}
	}()
	fn()
}
