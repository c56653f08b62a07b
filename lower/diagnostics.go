package lower

import (
	"fmt"
	"strings"

	"github.com/plume-oss/go-jimple2cpg/ir"
)

// Severity classifies a Diagnostic per spec §7's error taxonomy.
type Severity int

const (
	// Warning corresponds to the recoverable cases spec §7 enumerates:
	// UnknownIRShape, MissingAssociation, MissingTypeNode,
	// MissingMethodStub. The pass always continues after one.
	Warning Severity = iota
	// Error is reserved for the single top-level catch in spec §7: an
	// uncaught panic inside a pass, recovered once at Run's boundary.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Kind names the spec §7 error kind a Diagnostic reports, purely for
// machine-readable filtering; the Message already carries the prose.
type Kind string

const (
	KindUnknownIRShape     Kind = "UnknownIRShape"
	KindMissingAssociation Kind = "MissingAssociation"
	KindMissingTypeNode    Kind = "MissingTypeNode"
	KindMissingMethodStub  Kind = "MissingMethodStub"
	KindPanic              Kind = "Panic"
)

// Diagnostic is one recorded problem encountered while lowering a method.
// Adapted from the teacher's internal/errors.CompilerError: the same
// file/line/caret rendering, but positioned against a Jimple-like
// statement (via ir.Describe) instead of original source text, since the
// core's input is already-decompiled IR, not source.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Pos      ir.Position
	Context  string // ir.Describe(stmt) of the statement the diagnostic concerns, if any
}

// Error implements the error interface so a Diagnostic can be wrapped or
// compared like any other Go error.
func (d Diagnostic) Error() string {
	return d.Format()
}

// Format renders the diagnostic the way the teacher's CompilerError.Format
// renders a compile error: a header line, the offending line's text, and
// a caret. There is no surrounding source file here, so the "source line"
// is the statement's own rendering.
func (d Diagnostic) Format() string {
	var sb strings.Builder
	if d.Pos.Valid() {
		fmt.Fprintf(&sb, "%s at %d:%d: %s\n", d.Severity, d.Pos.Line, d.Pos.Column, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s: %s\n", d.Severity, d.Message)
	}
	if d.Context != "" {
		sb.WriteString("    ")
		sb.WriteString(d.Context)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", 4))
		sb.WriteString("^\n")
	}
	return sb.String()
}

// FormatAll renders a batch of diagnostics the way the teacher's
// FormatErrors renders multiple CompilerErrors.
func FormatAll(diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d diagnostic(s):\n\n", len(diags))
	for i, d := range diags {
		fmt.Fprintf(&sb, "[%d of %d]\n", i+1, len(diags))
		sb.WriteString(d.Format())
		if i < len(diags)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (r *runner) warn(kind Kind, pos ir.Position, stmt ir.Stmt, format string, args ...any) {
	ctx := ""
	if stmt != nil {
		ctx = ir.Describe(stmt)
	}
	r.diagnostics = append(r.diagnostics, Diagnostic{
		Severity: Warning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Context:  ctx,
	})
}
