// Package builder is a test-authoring convenience for constructing
// ir.Method values by hand, in the spirit of the teacher corpus's habit of
// hand-building AST literals directly inside _test.go files. It is not
// part of the IR contract; the lowering core never imports it.
package builder

import "github.com/plume-oss/go-jimple2cpg/ir"

// Method accumulates statements and wires up a successor graph as
// statements are appended in textual order, with explicit branches added
// via Branch/Fallthrough.
type Method struct {
	m     *ir.Method
	succs map[ir.Stmt][]ir.Stmt
}

// New starts a method builder for the given fully-qualified name.
func New(fullName, declaringType string) *Method {
	return &Method{
		m: &ir.Method{
			FullName:      fullName,
			DeclaringType: declaringType,
		},
		succs: map[ir.Stmt][]ir.Stmt{},
	}
}

// Local declares a parameter or body local.
func (b *Method) Local(name, typeFullName string) *ir.Local {
	return &ir.Local{Name: name, TypeFullName: typeFullName}
}

// Param appends a parameter local.
func (b *Method) Param(local *ir.Local) *ir.Local {
	b.m.Parameters = append(b.m.Parameters, local)
	return local
}

// Add appends a statement in textual order. The first statement added
// always becomes a head; Head adds further heads alongside it.
func (b *Method) Add(stmt ir.Stmt) ir.Stmt {
	b.m.Statements = append(b.m.Statements, stmt)
	if len(b.m.Statements) == 1 {
		b.m.Heads = append(b.m.Heads, stmt)
	}
	return stmt
}

// Head marks a statement as an entry point explicitly (used for exception
// handler starts, which are heads with no predecessor).
func (b *Method) Head(stmt ir.Stmt) {
	b.m.Heads = append(b.m.Heads, stmt)
}

// Flow records a control-flow edge between two already-added statements.
func (b *Method) Flow(from, to ir.Stmt) {
	b.succs[from] = append(b.succs[from], to)
}

// FlowSeq wires each statement in order to the next one (straight-line
// fallthrough), leaving explicit branches to be added separately.
func (b *Method) FlowSeq() {
	for i := 0; i+1 < len(b.m.Statements); i++ {
		cur := b.m.Statements[i]
		switch cur.(type) {
		case *ir.ReturnStmt, *ir.ReturnVoidStmt, *ir.ThrowStmt, *ir.GotoStmt:
			continue
		default:
			if _, ok := b.succs[cur]; !ok {
				b.Flow(cur, b.m.Statements[i+1])
			}
		}
	}
}

// Build finalizes the method, wiring the successor graph from the
// recorded edges.
func (b *Method) Build() *ir.Method {
	b.m.Succ = ir.NewSuccessorGraph(b.m.Heads, b.succs)
	b.m.IdentityLocals = identityLocals(b.m)
	b.m.Locals = ir.CollectLocals(b.m)
	return b.m
}

func identityLocals(m *ir.Method) []*ir.Local {
	var out []*ir.Local
	seen := map[*ir.Local]bool{}
	for _, stmt := range m.Statements {
		id, ok := stmt.(*ir.IdentityStmt)
		if !ok || id.Left == nil || seen[id.Left] {
			continue
		}
		seen[id.Left] = true
		out = append(out, id.Left)
	}
	return out
}
