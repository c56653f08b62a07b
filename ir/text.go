package ir

import "fmt"

// Describe renders a short, source-like line for a statement, used only
// for diagnostics (it is never consulted by the lowering logic itself).
func Describe(stmt Stmt) string {
	switch s := stmt.(type) {
	case *IdentityStmt:
		return fmt.Sprintf("%s := %s", describeValue(s.Left), describeValue(s.Right))
	case *AssignStmt:
		return fmt.Sprintf("%s = %s", describeValue(s.Left), describeValue(s.Right))
	case *IfStmt:
		return fmt.Sprintf("if %s goto ...", describeValue(s.Condition))
	case *GotoStmt:
		return "goto ..."
	case *LookupSwitchStmt:
		return fmt.Sprintf("lookupswitch(%s)", describeValue(s.Key))
	case *TableSwitchStmt:
		return fmt.Sprintf("tableswitch(%s)", describeValue(s.Key))
	case *InvokeStmt:
		return describeValue(s.Invoke)
	case *ReturnStmt:
		return fmt.Sprintf("return %s", describeValue(s.Value))
	case *ReturnVoidStmt:
		return "return"
	case *ThrowStmt:
		return fmt.Sprintf("throw %s", describeValue(s.Value))
	case *MonitorStmt:
		if s.Enter {
			return fmt.Sprintf("entermonitor %s", describeValue(s.Value))
		}
		return fmt.Sprintf("exitmonitor %s", describeValue(s.Value))
	case *UnknownStmt:
		return fmt.Sprintf("<unknown:%s>", s.OriginalKind)
	default:
		return "<unknown statement>"
	}
}

func describeValue(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case *Local:
		return val.Name
	case *IdentityRef:
		return "@" + val.Kind
	case *Constant:
		return val.Text
	case *InvokeExpr:
		return fmt.Sprintf("%s.%s(...)", val.DeclaringClass, val.Name)
	case *BinopExpr:
		return fmt.Sprintf("%s %s %s", describeValue(val.Left), val.Operator, describeValue(val.Right))
	case *ConditionExpr:
		return fmt.Sprintf("%s %s %s", describeValue(val.Left), val.Operator, describeValue(val.Right))
	case *CastExpr:
		return fmt.Sprintf("(%s) %s", val.TypeFullName, describeValue(val.Operand))
	case *InstanceOfExpr:
		return fmt.Sprintf("%s instanceof %s", describeValue(val.Operand), val.CheckType)
	case *LengthExpr:
		return fmt.Sprintf("lengthof %s", describeValue(val.Operand))
	case *NegExpr:
		return fmt.Sprintf("neg %s", describeValue(val.Operand))
	case *ArrayRef:
		return fmt.Sprintf("%s[%s]", describeValue(val.Base), describeValue(val.Index))
	case *NewExpr:
		return fmt.Sprintf("new %s", val.TypeFullName)
	case *NewArrayExpr:
		return fmt.Sprintf("newarray (%s)[%s]", val.ElementType, describeValue(val.Size))
	case *CaughtExceptionRef:
		return "@caughtexception"
	case *StaticFieldRef:
		return fmt.Sprintf("%s.%s", val.DeclaringClass, val.FieldName)
	case *InstanceFieldRef:
		return fmt.Sprintf("%s.%s", describeValue(val.Base), val.FieldName)
	default:
		return "<unknown value>"
	}
}
