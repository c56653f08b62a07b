package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/plume-oss/go-jimple2cpg/cpg/delta"
	"github.com/plume-oss/go-jimple2cpg/deltaio"
	"github.com/plume-oss/go-jimple2cpg/fixture"
	"github.com/plume-oss/go-jimple2cpg/index/memory"
	"github.com/plume-oss/go-jimple2cpg/ir"
	"github.com/plume-oss/go-jimple2cpg/lower"
)

// lowerFixture loads one YAML fixture from location and runs it through the
// lowering core, seeding a minimal in-memory method/type index the way a
// real pipeline's upstream stub-construction and type-resolution passes
// would have done before this core runs.
func lowerFixture(location string) (*ir.Method, *lower.Result, error) {
	ctx := context.Background()
	fs := fixture.NewOS()
	m, err := fixture.Load(ctx, fs, location)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", location, err)
	}

	methodIdx := memory.NewMethodIndex()
	methodIdx.NewStubbedMethod(m.FullName)

	typeIdx := memory.NewTypeIndex()
	for _, l := range m.Locals {
		if l.TypeFullName != "" {
			typeIdx.Register(l.TypeFullName)
		}
	}
	for _, p := range m.Parameters {
		if p.TypeFullName != "" {
			typeIdx.Register(p.TypeFullName)
		}
	}

	res := lower.Run(m, methodIdx, typeIdx, memory.DefaultEvaluationStrategy)
	return m, res, nil
}

func printDiagnostics(res *lower.Result) {
	if len(res.Diagnostics) == 0 {
		return
	}
	fmt.Fprint(os.Stderr, lower.FormatAll(res.Diagnostics))
}

func printGraph(g *delta.Graph, format string) error {
	switch strings.ToLower(format) {
	case "text", "":
		fmt.Print(deltaio.Dump(g))
	case "dot":
		fmt.Print(deltaio.DumpDOT(g))
	default:
		return fmt.Errorf("unrecognized --format %q (want text or dot)", format)
	}
	return nil
}

func archiveGraph(g *delta.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer f.Close()
	if err := deltaio.WriteArchive(f, g); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}
