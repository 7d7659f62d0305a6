package internal

// Builders for DJ trees in tests. Every node is on line 1 unless atLine moves a subtree.

func program(classes []*Node, locals []*Node, body ...*Node) *Node {
	return NewNode(ProgramKind, 1,
		NewNode(ClassDeclListKind, 1, classes...),
		NewNode(VarDeclListKind, 1, locals...),
		NewNode(ExprListKind, 1, body...),
	)
}

func classes(decls ...*Node) []*Node {
	return decls
}

func vars(decls ...*Node) []*Node {
	return decls
}

func typeNode(tp string) *Node {
	if tp == "nat" {
		return NewNode(NatTypeKind, 1)
	}
	return NewIDNode(tp, 1)
}

func varDecl(tp, name string) *Node {
	return NewNode(VarDeclKind, 1, typeNode(tp), NewIDNode(name, 1))
}

func classDecl(kind NodeKind, name, super string, fields []*Node, methods ...*Node) *Node {
	return NewNode(kind, 1,
		NewIDNode(name, 1),
		NewIDNode(super, 1),
		NewNode(VarDeclListKind, 1, fields...),
		NewNode(MethodDeclListKind, 1, methods...),
	)
}

func class(name, super string, fields []*Node, methods ...*Node) *Node {
	return classDecl(NonFinalClassDeclKind, name, super, fields, methods...)
}

func finalClass(name, super string, fields []*Node, methods ...*Node) *Node {
	return classDecl(FinalClassDeclKind, name, super, fields, methods...)
}

func methodDecl(kind NodeKind, ret, name, paramType, param string, locals []*Node, body ...*Node) *Node {
	return NewNode(kind, 1,
		typeNode(ret),
		NewIDNode(name, 1),
		typeNode(paramType),
		NewIDNode(param, 1),
		NewNode(VarDeclListKind, 1, locals...),
		NewNode(ExprListKind, 1, body...),
	)
}

func method(ret, name, paramType, param string, locals []*Node, body ...*Node) *Node {
	return methodDecl(NonFinalMethodDeclKind, ret, name, paramType, param, locals, body...)
}

func finalMethod(ret, name, paramType, param string, locals []*Node, body ...*Node) *Node {
	return methodDecl(FinalMethodDeclKind, ret, name, paramType, param, locals, body...)
}

func list(exprs ...*Node) *Node {
	return NewNode(ExprListKind, 1, exprs...)
}

func nat(value int) *Node {
	return NewNatNode(value, 1)
}

func null() *Node {
	return NewNode(NullExprKind, 1)
}

func this() *Node {
	return NewNode(ThisExprKind, 1)
}

func readNat() *Node {
	return NewNode(ReadExprKind, 1)
}

func newExpr(class string) *Node {
	return NewNode(NewExprKind, 1, NewIDNode(class, 1))
}

func idExpr(name string) *Node {
	return NewNode(IDExprKind, 1, NewIDNode(name, 1))
}

func assign(name string, rhs *Node) *Node {
	return NewNode(AssignExprKind, 1, NewIDNode(name, 1), rhs)
}

func dotID(recv *Node, name string) *Node {
	return NewNode(DotIDExprKind, 1, recv, NewIDNode(name, 1))
}

func dotAssign(recv *Node, name string, rhs *Node) *Node {
	return NewNode(DotAssignExprKind, 1, recv, NewIDNode(name, 1), rhs)
}

func call(name string, arg *Node) *Node {
	return NewNode(MethodCallExprKind, 1, NewIDNode(name, 1), arg)
}

func dotCall(recv *Node, name string, arg *Node) *Node {
	return NewNode(DotMethodCallExprKind, 1, recv, NewIDNode(name, 1), arg)
}

func unary(kind NodeKind, operand *Node) *Node {
	return NewNode(kind, 1, operand)
}

func binary(kind NodeKind, left, right *Node) *Node {
	return NewNode(kind, 1, left, right)
}

func ifElse(cond *Node, then, els *Node) *Node {
	return NewNode(IfThenElseExprKind, 1, cond, then, els)
}

func while(cond *Node, body *Node) *Node {
	return NewNode(WhileExprKind, 1, cond, body)
}

func printExpr(operand *Node) *Node {
	return unary(PrintExprKind, operand)
}

// atLine moves a whole subtree to a source line.
func atLine(line int, node *Node) *Node {
	node.Walk(func(n *Node) {
		n.Line = line
	})
	return node
}

// checkedProgram builds and checks a tree, failing the caller through the returned error.
func checkedProgram(root *Node) (*Program, error) {
	p, err := BuildSymbolTables(root)
	if err != nil {
		return nil, err
	}
	return p, Check(p)
}
