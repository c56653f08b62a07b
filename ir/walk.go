package ir

// CollectLocals returns m.Parameters followed by every other distinct Local
// referenced by a statement or value reachable from m.Statements, in
// first-occurrence order, deduped by pointer identity. This is the method's local-variable table
// (analogous to a Jimple body's getLocals()); the AST pass's locals
// prelude relies on it being complete before any statement is lowered.
func CollectLocals(m *Method) []*Local {
	seen := make(map[*Local]bool)
	var out []*Local
	note := func(l *Local) {
		if l == nil || seen[l] {
			return
		}
		seen[l] = true
		out = append(out, l)
	}
	for _, p := range m.Parameters {
		note(p)
	}
	for _, stmt := range m.Statements {
		walkStmt(stmt, note)
	}
	return out
}

func walkStmt(stmt Stmt, note func(*Local)) {
	switch s := stmt.(type) {
	case *IdentityStmt:
		note(s.Left)
		walkValue(s.Right, note)
	case *AssignStmt:
		walkValue(s.Left, note)
		walkValue(s.Right, note)
	case *IfStmt:
		walkValue(s.Condition, note)
	case *LookupSwitchStmt:
		walkValue(s.Key, note)
	case *TableSwitchStmt:
		walkValue(s.Key, note)
	case *InvokeStmt:
		walkValue(s.Invoke, note)
	case *ReturnStmt:
		walkValue(s.Value, note)
	case *ThrowStmt:
		walkValue(s.Value, note)
	case *MonitorStmt:
		walkValue(s.Value, note)
	}
}

func walkValue(v Value, note func(*Local)) {
	switch val := v.(type) {
	case nil:
	case *Local:
		note(val)
	case *InvokeExpr:
		walkValue(val.Receiver, note)
		for _, a := range val.Args {
			walkValue(a, note)
		}
		for _, a := range val.BootstrapArgs {
			walkValue(a, note)
		}
	case *BinopExpr:
		walkValue(val.Left, note)
		walkValue(val.Right, note)
	case *ConditionExpr:
		walkValue(val.Left, note)
		walkValue(val.Right, note)
	case *CastExpr:
		walkValue(val.Operand, note)
	case *InstanceOfExpr:
		walkValue(val.Operand, note)
	case *LengthExpr:
		walkValue(val.Operand, note)
	case *NegExpr:
		walkValue(val.Operand, note)
	case *ArrayRef:
		walkValue(val.Base, note)
		walkValue(val.Index, note)
	case *NewArrayExpr:
		walkValue(val.Size, note)
	case *InstanceFieldRef:
		walkValue(val.Base, note)
	}
}
