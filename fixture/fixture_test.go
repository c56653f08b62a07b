package fixture_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plume-oss/go-jimple2cpg/fixture"
	"github.com/plume-oss/go-jimple2cpg/index/memory"
	"github.com/plume-oss/go-jimple2cpg/ir"
	"github.com/plume-oss/go-jimple2cpg/lower"
)

func TestDecodePlainAssignment(t *testing.T) {
	src := `
fullName: Scenario1.run
declaringType: Scenario1
statements:
  - id: s1
    kind: assign
    head: true
    left: {kind: local, name: a, type: int}
    right: {kind: constant, text: "5", type: int}
`
	m, err := fixture.Decode([]byte(src))
	require.NoError(t, err)
	require.Equal(t, "Scenario1.run", m.FullName)
	require.Len(t, m.Statements, 1)
	require.Len(t, m.Locals, 1)
	require.Equal(t, "a", m.Locals[0].Name)

	assign, ok := m.Statements[0].(*ir.AssignStmt)
	require.True(t, ok)
	left, ok := assign.Left.(*ir.Local)
	require.True(t, ok)
	require.Equal(t, "a", left.Name)
	right, ok := assign.Right.(*ir.Constant)
	require.True(t, ok)
	require.Equal(t, "5", right.Text)

	require.Len(t, m.Succ.Heads(), 1)
	require.Same(t, m.Statements[0], m.Succ.Heads()[0])
}

func TestDecodeDedupsLocalsByName(t *testing.T) {
	src := `
fullName: Scenario.run
declaringType: Scenario
statements:
  - id: s1
    kind: assign
    head: true
    left: {kind: local, name: a, type: int}
    right: {kind: constant, text: "1", type: int}
    next: [s2]
  - id: s2
    kind: assign
    left: {kind: local, name: a, type: int}
    right: {kind: constant, text: "2", type: int}
`
	m, err := fixture.Decode([]byte(src))
	require.NoError(t, err)
	require.Len(t, m.Locals, 1)

	s1 := m.Statements[0].(*ir.AssignStmt)
	s2 := m.Statements[1].(*ir.AssignStmt)
	require.Same(t, s1.Left.(*ir.Local), s2.Left.(*ir.Local))

	succs := m.Succ.Succs(m.Statements[0])
	require.Len(t, succs, 1)
	require.Same(t, m.Statements[1], succs[0])
}

func TestDecodeIfWithTrueFalseBranches(t *testing.T) {
	src := `
fullName: Scenario2.run
declaringType: Scenario2
statements:
  - id: cond
    kind: if
    head: true
    value:
      kind: condition
      operator: "<operator>.equals"
      left: {kind: local, name: x, type: int}
      right: {kind: constant, text: "0", type: int}
      type: boolean
    "true": target
    "false": fallthrough
  - id: target
    kind: returnvoid
  - id: fallthrough
    kind: returnvoid
`
	m, err := fixture.Decode([]byte(src))
	require.NoError(t, err)

	ifStmt, ok := m.Statements[0].(*ir.IfStmt)
	require.True(t, ok)
	require.Equal(t, "<operator>.equals", ifStmt.Condition.Operator)

	succs := m.Succ.Succs(m.Statements[0])
	require.Len(t, succs, 2)
	require.Same(t, m.Statements[1], succs[0])
	require.Same(t, m.Statements[2], succs[1])
}

func TestDecodeLookupSwitchWithDefault(t *testing.T) {
	src := `
fullName: Scenario5.run
declaringType: Scenario5
statements:
  - id: sw
    kind: lookupswitch
    head: true
    key: {kind: local, name: x, type: int}
    cases:
      - {value: 1, target: c1}
      - {value: 5, target: c5}
    default: def
  - id: c1
    kind: returnvoid
  - id: c5
    kind: returnvoid
  - id: def
    kind: returnvoid
`
	m, err := fixture.Decode([]byte(src))
	require.NoError(t, err)

	sw, ok := m.Statements[0].(*ir.LookupSwitchStmt)
	require.True(t, ok)
	require.Equal(t, []int64{1, 5}, sw.Values)
	require.Len(t, sw.Targets, 2) // parallel to Values, default kept separate
	require.Same(t, m.Statements[1], sw.Targets[0])
	require.Same(t, m.Statements[2], sw.Targets[1])
	require.Same(t, m.Statements[3], sw.Default)
}

func TestDecodeRejectsUnknownStatementKind(t *testing.T) {
	src := `
fullName: Bad.run
declaringType: Bad
statements:
  - id: s1
    kind: bogus
`
	_, err := fixture.Decode([]byte(src))
	require.Error(t, err)
}

func TestDecodeRejectsDanglingReference(t *testing.T) {
	src := `
fullName: Bad.run
declaringType: Bad
statements:
  - id: s1
    kind: returnvoid
    head: true
    next: [nowhere]
`
	_, err := fixture.Decode([]byte(src))
	require.Error(t, err)
}

// TestDecodedMethodLowersCleanly exercises the full path from YAML fixture
// through the lowering core, the way cmd/jimple2cpg's lowerFixture does.
func TestDecodedMethodLowersCleanly(t *testing.T) {
	src := `
fullName: Scenario1.run
declaringType: Scenario1
statements:
  - id: s1
    kind: assign
    head: true
    left: {kind: local, name: a, type: int}
    right: {kind: constant, text: "5", type: int}
`
	m, err := fixture.Decode([]byte(src))
	require.NoError(t, err)

	methodIdx := memory.NewMethodIndex()
	methodIdx.NewStubbedMethod(m.FullName)
	typeIdx := memory.NewTypeIndex()
	typeIdx.Register("int")

	res := lower.Run(m, methodIdx, typeIdx, memory.DefaultEvaluationStrategy)
	require.False(t, res.HasErrors(), lower.FormatAll(res.Diagnostics))
	require.NotEmpty(t, res.Graph.Nodes())
}
