package ast

// Equal reports deep structural equality of two nodes, ignoring source
// positions, so tests can assert "parsing X yields this exact tree" no
// matter where the tokens originated.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *NumberLiteral:
		y, ok := b.(*NumberLiteral)
		return ok && x.Value == y.Value

	case *VariableRef:
		y, ok := b.(*VariableRef)
		return ok && x.Name == y.Name

	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)

	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)

	case *CallExpr:
		y, ok := b.(*CallExpr)
		if !ok || x.Callee != y.Callee || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true

	case *IfExpr:
		y, ok := b.(*IfExpr)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Then, y.Then) && Equal(x.Else, y.Else)

	case *ForExpr:
		y, ok := b.(*ForExpr)
		return ok && x.Var == y.Var &&
			Equal(x.Start, y.Start) && Equal(x.End, y.End) &&
			equalOpt(x.Step, y.Step) && Equal(x.Body, y.Body)

	case *VarExpr:
		y, ok := b.(*VarExpr)
		if !ok || len(x.Bindings) != len(y.Bindings) {
			return false
		}
		for i := range x.Bindings {
			if x.Bindings[i].Name != y.Bindings[i].Name {
				return false
			}
			if !equalOpt(x.Bindings[i].Init, y.Bindings[i].Init) {
				return false
			}
		}
		return Equal(x.Body, y.Body)

	case *Prototype:
		y, ok := b.(*Prototype)
		if !ok || x.Name != y.Name || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i] != y.Params[i] {
				return false
			}
		}
		return x.IsOperator == y.IsOperator && x.Symbol == y.Symbol && x.Precedence == y.Precedence

	case *Function:
		y, ok := b.(*Function)
		return ok && Equal(x.Proto, y.Proto) && Equal(x.Body, y.Body)

	case *Extern:
		y, ok := b.(*Extern)
		return ok && Equal(x.Proto, y.Proto)
	}

	return false
}

// equalOpt compares optional expressions where nil means "omitted".
func equalOpt(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(a, b)
}
