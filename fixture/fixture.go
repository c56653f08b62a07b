// Package fixture decodes YAML method descriptions into ir.Method values.
// It plays the role the teacher's .dws script fixtures play for
// internal/interp: a human-writable, version-controllable input format for
// both the test suite and the CLI, so a method body never has to be
// hand-built in Go to be lowered from outside a unit test.
package fixture

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/plume-oss/go-jimple2cpg/ir"
)

// doc is the raw YAML shape. Every statement and value is decoded into this
// shape first, then resolved into ir types in a second pass so that
// statement-to-statement successor references (plain strings in YAML) can
// be turned into the pointer-identity links ir.SuccessorGraph requires.
type doc struct {
	FullName      string      `yaml:"fullName"`
	DeclaringType string      `yaml:"declaringType"`
	Parameters    []localDoc  `yaml:"parameters"`
	Statements    []stmtDoc   `yaml:"statements"`
}

type localDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type valueDoc struct {
	Kind string `yaml:"kind"`

	// *Local references and literal values.
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Text string `yaml:"text"`

	// identity
	IdentityKind string `yaml:"identityKind"`
	Index        int    `yaml:"index"`

	// binop / condition / arrayref / instanceof / cast / length / neg
	Operator string     `yaml:"operator"`
	Left     *valueDoc  `yaml:"left"`
	Right    *valueDoc  `yaml:"right"`
	Operand  *valueDoc  `yaml:"operand"`
	Base     *valueDoc  `yaml:"base"`
	IndexValue *valueDoc `yaml:"indexValue"`
	CheckType string    `yaml:"checkType"`

	// new / newarray
	ElementType string `yaml:"elementType"`
	Size        *valueDoc `yaml:"size"`

	// field refs
	DeclaringClass string `yaml:"declaringClass"`
	FieldName      string `yaml:"fieldName"`

	// invoke
	InvokeKind     string      `yaml:"invokeKind"`
	ReturnType     string      `yaml:"returnType"`
	ParamTypes     []string    `yaml:"paramTypes"`
	Receiver       *valueDoc   `yaml:"receiver"`
	Args           []*valueDoc `yaml:"args"`
	BootstrapArgs  []*valueDoc `yaml:"bootstrapArgs"`
	IsStatic       bool        `yaml:"isStatic"`
}

type stmtDoc struct {
	ID      string     `yaml:"id"`
	Kind    string     `yaml:"kind"`
	Head    bool       `yaml:"head"`
	Line    int        `yaml:"line"`
	Column  int        `yaml:"column"`

	Left  *valueDoc `yaml:"left"`
	Right *valueDoc `yaml:"right"`
	Value *valueDoc `yaml:"value"`
	Key   *valueDoc `yaml:"key"`

	Low     int64        `yaml:"low"`
	Cases   []caseDoc    `yaml:"cases"`
	Default string       `yaml:"default"`

	Enter bool `yaml:"enter"`

	// successor edges, by statement id; "next" covers straight-line flow
	// and goto, "true"/"false" cover an IfStmt's two branches.
	Next  []string `yaml:"next"`
	True  string   `yaml:"true"`
	False string   `yaml:"false"`
}

type caseDoc struct {
	Value  int64  `yaml:"value"`
	Target string `yaml:"target"`
}

// Load reads and decodes a method fixture from location through fs,
// so fixtures can be read from local disk today and from any afs-backed
// store without changing call sites.
func Load(ctx context.Context, fs afs.Service, location string) (*ir.Method, error) {
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fixture: download %s: %w", location, err)
	}
	return Decode(data)
}

// Decode parses raw YAML bytes into an ir.Method.
func Decode(data []byte) (*ir.Method, error) {
	var d doc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("fixture: decode: %w", err)
	}
	return resolve(&d)
}

func resolve(d *doc) (*ir.Method, error) {
	locals := map[string]*ir.Local{}
	localFor := func(name, typeFullName string) *ir.Local {
		if l, ok := locals[name]; ok {
			return l
		}
		l := &ir.Local{Name: name, TypeFullName: typeFullName}
		locals[name] = l
		return l
	}

	m := &ir.Method{
		FullName:      d.FullName,
		DeclaringType: d.DeclaringType,
	}
	for _, p := range d.Parameters {
		m.Parameters = append(m.Parameters, localFor(p.Name, p.Type))
	}

	stmts := make(map[string]ir.Stmt, len(d.Statements))
	order := make([]string, 0, len(d.Statements))

	// Pass 1: build every statement (and its value tree) without resolving
	// successor/target references, since those may point forward.
	for _, sd := range d.Statements {
		if sd.ID == "" {
			return nil, fmt.Errorf("fixture: statement missing id")
		}
		stmt, err := buildStmt(sd, localFor)
		if err != nil {
			return nil, fmt.Errorf("fixture: statement %s: %w", sd.ID, err)
		}
		stmts[sd.ID] = stmt
		order = append(order, sd.ID)
	}

	lookup := func(id string) (ir.Stmt, error) {
		if id == "" {
			return nil, nil
		}
		s, ok := stmts[id]
		if !ok {
			return nil, fmt.Errorf("fixture: unresolved statement reference %q", id)
		}
		return s, nil
	}

	// Pass 2: resolve Targets/Default on switch statements, now that every
	// id maps to a built ir.Stmt.
	for _, sd := range d.Statements {
		switch sd.Kind {
		case "lookupswitch", "tableswitch":
			stmt := stmts[sd.ID]
			targets := make([]ir.Stmt, 0, len(sd.Cases))
			var values []int64
			for _, c := range sd.Cases {
				t, err := lookup(c.Target)
				if err != nil {
					return nil, fmt.Errorf("fixture: statement %s: %w", sd.ID, err)
				}
				targets = append(targets, t)
				values = append(values, c.Value)
			}
			def, err := lookup(sd.Default)
			if err != nil {
				return nil, fmt.Errorf("fixture: statement %s: %w", sd.ID, err)
			}
			switch s := stmt.(type) {
			case *ir.LookupSwitchStmt:
				s.Targets = targets
				s.Values = values
				s.Default = def
			case *ir.TableSwitchStmt:
				s.Targets = targets
				s.Default = def
			}
		}
	}

	succs := map[ir.Stmt][]ir.Stmt{}
	var heads []ir.Stmt
	for _, sd := range d.Statements {
		stmt := stmts[sd.ID]
		if sd.Head {
			heads = append(heads, stmt)
		}
		for _, n := range sd.Next {
			t, err := lookup(n)
			if err != nil {
				return nil, fmt.Errorf("fixture: statement %s: %w", sd.ID, err)
			}
			succs[stmt] = append(succs[stmt], t)
		}
		if sd.True != "" {
			t, err := lookup(sd.True)
			if err != nil {
				return nil, err
			}
			succs[stmt] = append(succs[stmt], t)
		}
		if sd.False != "" {
			t, err := lookup(sd.False)
			if err != nil {
				return nil, err
			}
			succs[stmt] = append(succs[stmt], t)
		}
	}
	if len(heads) == 0 && len(order) > 0 {
		heads = append(heads, stmts[order[0]])
	}

	for _, id := range order {
		m.Statements = append(m.Statements, stmts[id])
	}
	m.Heads = heads
	m.Succ = ir.NewSuccessorGraph(heads, succs)
	m.Locals = ir.CollectLocals(m)
	m.IdentityLocals = identityLocals(m)
	return m, nil
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

type localLookup func(name, typeFullName string) *ir.Local

// posSetter is satisfied by every ir.Stmt, via the promoted SetPos method
// on their embedded base.
type posSetter interface {
	SetPos(ir.Position)
}

func buildStmt(sd stmtDoc, lf localLookup) (ir.Stmt, error) {
	pos := ir.Position{Line: sd.Line, Column: sd.Column}

	var stmt ir.Stmt
	var err error
	switch sd.Kind {
	case "identity":
		var left, right ir.Value
		if left, err = buildValue(sd.Left, lf); err != nil {
			return nil, err
		}
		if right, err = buildValue(sd.Right, lf); err != nil {
			return nil, err
		}
		l, ok := left.(*ir.Local)
		if !ok {
			return nil, fmt.Errorf("identity left must be a local")
		}
		stmt = &ir.IdentityStmt{Left: l, Right: right}
	case "assign":
		var left, right ir.Value
		if left, err = buildValue(sd.Left, lf); err != nil {
			return nil, err
		}
		if right, err = buildValue(sd.Right, lf); err != nil {
			return nil, err
		}
		stmt = &ir.AssignStmt{Left: left, Right: right}
	case "if":
		var cond ir.Value
		if cond, err = buildValue(sd.Value, lf); err != nil {
			return nil, err
		}
		c, ok := cond.(*ir.ConditionExpr)
		if !ok {
			return nil, fmt.Errorf("if condition must be kind condition")
		}
		stmt = &ir.IfStmt{Condition: c}
	case "goto":
		stmt = &ir.GotoStmt{}
	case "lookupswitch":
		var key ir.Value
		if key, err = buildValue(sd.Key, lf); err != nil {
			return nil, err
		}
		stmt = &ir.LookupSwitchStmt{Key: key}
	case "tableswitch":
		var key ir.Value
		if key, err = buildValue(sd.Key, lf); err != nil {
			return nil, err
		}
		stmt = &ir.TableSwitchStmt{Key: key, Low: sd.Low}
	case "invoke":
		var v ir.Value
		if v, err = buildValue(sd.Value, lf); err != nil {
			return nil, err
		}
		inv, ok := v.(*ir.InvokeExpr)
		if !ok {
			return nil, fmt.Errorf("invoke statement value must be kind invoke")
		}
		stmt = &ir.InvokeStmt{Invoke: inv}
	case "return":
		var v ir.Value
		if v, err = buildValue(sd.Value, lf); err != nil {
			return nil, err
		}
		stmt = &ir.ReturnStmt{Value: v}
	case "returnvoid":
		stmt = &ir.ReturnVoidStmt{}
	case "throw":
		var v ir.Value
		if v, err = buildValue(sd.Value, lf); err != nil {
			return nil, err
		}
		stmt = &ir.ThrowStmt{Value: v}
	case "monitor":
		var v ir.Value
		if v, err = buildValue(sd.Value, lf); err != nil {
			return nil, err
		}
		stmt = &ir.MonitorStmt{Value: v, Enter: sd.Enter}
	case "unknown":
		stmt = &ir.UnknownStmt{OriginalKind: sd.ID}
	default:
		return nil, fmt.Errorf("unrecognized statement kind %q", sd.Kind)
	}

	if ps, ok := stmt.(posSetter); ok {
		ps.SetPos(pos)
	}
	return stmt, nil
}

func buildValue(vd *valueDoc, lf localLookup) (ir.Value, error) {
	if vd == nil {
		return nil, nil
	}
	switch vd.Kind {
	case "local":
		return lf(vd.Name, vd.Type), nil
	case "constant":
		return &ir.Constant{Text: vd.Text, TypeFullName: vd.Type}, nil
	case "identity":
		idx := vd.Index
		return &ir.IdentityRef{Kind: vd.IdentityKind, Index: idx, TypeFullName: vd.Type}, nil
	case "new":
		return &ir.NewExpr{TypeFullName: vd.Type}, nil
	case "newarray":
		size, err := buildValue(vd.Size, lf)
		if err != nil {
			return nil, err
		}
		return &ir.NewArrayExpr{ElementType: vd.ElementType, Size: size}, nil
	case "caughtexception":
		return &ir.CaughtExceptionRef{TypeFullName: vd.Type}, nil
	case "staticfield":
		return &ir.StaticFieldRef{DeclaringClass: vd.DeclaringClass, FieldName: vd.FieldName, TypeFullName: vd.Type}, nil
	case "instancefield":
		base, err := buildValue(vd.Base, lf)
		if err != nil {
			return nil, err
		}
		return &ir.InstanceFieldRef{Base: base, DeclaringClass: vd.DeclaringClass, FieldName: vd.FieldName, TypeFullName: vd.Type}, nil
	case "binop":
		left, err := buildValue(vd.Left, lf)
		if err != nil {
			return nil, err
		}
		right, err := buildValue(vd.Right, lf)
		if err != nil {
			return nil, err
		}
		return &ir.BinopExpr{Operator: vd.Operator, Left: left, Right: right, TypeFullName: vd.Type}, nil
	case "condition":
		left, err := buildValue(vd.Left, lf)
		if err != nil {
			return nil, err
		}
		right, err := buildValue(vd.Right, lf)
		if err != nil {
			return nil, err
		}
		return &ir.ConditionExpr{Operator: vd.Operator, Left: left, Right: right, TypeFullName: vd.Type}, nil
	case "cast":
		operand, err := buildValue(vd.Operand, lf)
		if err != nil {
			return nil, err
		}
		return &ir.CastExpr{Operand: operand, TypeFullName: vd.Type}, nil
	case "instanceof":
		operand, err := buildValue(vd.Operand, lf)
		if err != nil {
			return nil, err
		}
		return &ir.InstanceOfExpr{Operand: operand, CheckType: vd.CheckType, TypeFullName: vd.Type}, nil
	case "length":
		operand, err := buildValue(vd.Operand, lf)
		if err != nil {
			return nil, err
		}
		return &ir.LengthExpr{Operand: operand, TypeFullName: vd.Type}, nil
	case "neg":
		operand, err := buildValue(vd.Operand, lf)
		if err != nil {
			return nil, err
		}
		return &ir.NegExpr{Operand: operand, TypeFullName: vd.Type}, nil
	case "arrayref":
		base, err := buildValue(vd.Base, lf)
		if err != nil {
			return nil, err
		}
		index, err := buildValue(vd.IndexValue, lf)
		if err != nil {
			return nil, err
		}
		return &ir.ArrayRef{Base: base, Index: index, TypeFullName: vd.Type}, nil
	case "invoke":
		kind, err := parseInvokeKind(vd.InvokeKind)
		if err != nil {
			return nil, err
		}
		receiver, err := buildValue(vd.Receiver, lf)
		if err != nil {
			return nil, err
		}
		args, err := buildValues(vd.Args, lf)
		if err != nil {
			return nil, err
		}
		bootstrap, err := buildValues(vd.BootstrapArgs, lf)
		if err != nil {
			return nil, err
		}
		return &ir.InvokeExpr{
			Kind:           kind,
			DeclaringClass: vd.DeclaringClass,
			Name:           vd.Name,
			ReturnType:     vd.ReturnType,
			ParamTypes:     vd.ParamTypes,
			Receiver:       receiver,
			Args:           args,
			BootstrapArgs:  bootstrap,
			IsStatic:       vd.IsStatic,
		}, nil
	default:
		return nil, fmt.Errorf("unrecognized value kind %q", vd.Kind)
	}
}

func buildValues(docs []*valueDoc, lf localLookup) ([]ir.Value, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]ir.Value, 0, len(docs))
	for _, d := range docs {
		v, err := buildValue(d, lf)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseInvokeKind(s string) (ir.InvokeKind, error) {
	switch s {
	case "", "static":
		return ir.InvokeStatic, nil
	case "virtual":
		return ir.InvokeVirtual, nil
	case "special":
		return ir.InvokeSpecial, nil
	case "interface":
		return ir.InvokeInterface, nil
	case "dynamic":
		return ir.InvokeDynamic, nil
	default:
		return 0, fmt.Errorf("unrecognized invoke kind %q", s)
	}
}

// NewOS returns an afs.Service backed by the local filesystem, the default
// used by the CLI.
func NewOS() afs.Service {
	return afs.New()
}
