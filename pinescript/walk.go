package pinescript

// Walk traverses the AST rooted at node in depth-first order, calling fn
// for each node. If fn returns false for a node, its children are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Script:
		for _, stmt := range n.Body {
			Walk(stmt, fn)
		}

	case *FuncDef:
		for _, param := range n.Params {
			if param.Default != nil {
				Walk(param.Default, fn)
			}
		}
		if n.Expr != nil {
			Walk(n.Expr, fn)
		}
		for _, stmt := range n.Body {
			Walk(stmt, fn)
		}

	case *AssignStmt:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *ExprStmt:
		Walk(n.X, fn)

	case *IfStmt:
		Walk(n.Cond, fn)
		for _, stmt := range n.Body {
			Walk(stmt, fn)
		}
		for _, stmt := range n.Else {
			Walk(stmt, fn)
		}

	case *ForStmt:
		if n.In != nil {
			Walk(n.In, fn)
		}
		if n.From != nil {
			Walk(n.From, fn)
		}
		if n.To != nil {
			Walk(n.To, fn)
		}
		if n.Step != nil {
			Walk(n.Step, fn)
		}
		for _, stmt := range n.Body {
			Walk(stmt, fn)
		}

	case *WhileStmt:
		Walk(n.Cond, fn)
		for _, stmt := range n.Body {
			Walk(stmt, fn)
		}

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *UnaryExpr:
		Walk(n.Operand, fn)

	case *TernaryExpr:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *CallExpr:
		Walk(n.Func, fn)
		for _, arg := range n.Args {
			Walk(arg.Value, fn)
		}

	case *AttrExpr:
		Walk(n.X, fn)

	case *IndexExpr:
		Walk(n.X, fn)
		Walk(n.Index, fn)

	case *TupleExpr:
		for _, elem := range n.Elems {
			Walk(elem, fn)
		}

	case *GroupExpr:
		for _, elem := range n.Elems {
			Walk(elem, fn)
		}
	}
}
