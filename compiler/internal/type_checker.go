package internal

// Check validates the whole program and fills the resolution slots of identifier, field and call nodes. It stops
// at the first error. Running it again on the same program writes the same annotations.
func Check(p *Program) error {
	err := p.checkDeclarations()
	if err != nil {
		return err
	}
	for i := 1; i < len(p.Classes); i++ {
		for j, method := range p.Classes[i].Methods {
			err = p.checkMethodBody(MethodScope(i, j), method)
			if err != nil {
				return err
			}
		}
	}
	_, err = p.typeExprList(p.MainBody, MainScope())
	if err != nil {
		return err
	}
	p.checked = true
	return nil
}

func (p *Program) checkMethodBody(scope Scope, method *MethodDecl) error {
	bodyType, err := p.typeExprList(method.Body, scope)
	if err != nil {
		return err
	}
	if !p.IsSubtype(bodyType, method.ReturnType) {
		return makeSemanticError(method.Line, "method %s.%s returns %s but its body has type %s",
			p.Classes[scope.Class()].Name, method.Name, p.typeName(method.ReturnType), p.typeName(bodyType))
	}
	return nil
}

// typeExprList types every expression of an EXPR_LIST; the list has the type of its last expression.
func (p *Program) typeExprList(list *Node, scope Scope) (int, error) {
	if list == nil || list.Kind != ExprListKind {
		return InvalidType, makeInternalError("expected an EXPR_LIST node")
	}
	if len(list.Children) == 0 {
		return InvalidType, makeSemanticError(list.Line, "empty expression list")
	}
	tp := InvalidType
	for _, expr := range list.Children {
		var err error
		tp, err = p.typeExpr(expr, scope)
		if err != nil {
			return InvalidType, err
		}
	}
	return tp, nil
}

func (p *Program) typeExpr(expr *Node, scope Scope) (int, error) {
	if expr == nil {
		return InvalidType, makeInternalError("nil expression node")
	}
	switch expr.Kind {
	case NatLiteralExprKind, ReadExprKind:
		return NatType, nil
	case NullExprKind:
		return NullType, nil
	case ThisExprKind:
		if !scope.InMethod() {
			return InvalidType, makeSemanticError(expr.Line, "'this' used outside of a class")
		}
		return scope.Class(), nil
	case NewExprKind:
		return p.typeNew(expr)
	case IDExprKind:
		return p.typeID(expr, scope)
	case AssignExprKind:
		return p.typeAssign(expr, scope)
	case DotIDExprKind:
		return p.typeDotID(expr, scope)
	case DotAssignExprKind:
		return p.typeDotAssign(expr, scope)
	case MethodCallExprKind:
		return p.typeMethodCall(expr, scope)
	case DotMethodCallExprKind:
		return p.typeDotMethodCall(expr, scope)
	case PlusExprKind, MinusExprKind, TimesExprKind, LessThanExprKind, OrExprKind:
		return p.typeNatBinary(expr, scope)
	case EqualityExprKind:
		return p.typeEquality(expr, scope)
	case NotExprKind, AssertExprKind, PrintExprKind:
		return p.typeNatUnary(expr, scope)
	case IfThenElseExprKind:
		return p.typeIf(expr, scope)
	case WhileExprKind:
		return p.typeWhile(expr, scope)
	}
	return InvalidType, makeInternalError("%s at line %d is not an expression", expr, expr.Line)
}

func (p *Program) typeNew(expr *Node) (int, error) {
	name, nameAst, err := expr.idChild(0)
	if err != nil {
		return InvalidType, err
	}
	class := p.classNameToNumber(name)
	if class == InvalidType {
		return InvalidType, makeSemanticError(nameAst.Line, "new of undeclared class %s", name)
	}
	expr.setStatic(class, 0)
	return class, nil
}

func (p *Program) typeID(expr *Node, scope Scope) (int, error) {
	name, _, err := expr.idChild(0)
	if err != nil {
		return InvalidType, err
	}
	ref, ok := p.lookupVar(scope, name)
	if !ok {
		return InvalidType, makeSemanticError(expr.Line, "undeclared variable %s", name)
	}
	expr.setStatic(scope.annotation())
	return ref.tp, nil
}

func (p *Program) typeAssign(expr *Node, scope Scope) (int, error) {
	name, _, err := expr.idChild(0)
	if err != nil {
		return InvalidType, err
	}
	ref, ok := p.lookupVar(scope, name)
	if !ok {
		return InvalidType, makeSemanticError(expr.Line, "undeclared variable %s", name)
	}
	rhs, err := expr.child(1)
	if err != nil {
		return InvalidType, err
	}
	rhsType, err := p.typeExpr(rhs, scope)
	if err != nil {
		return InvalidType, err
	}
	if !p.IsSubtype(rhsType, ref.tp) {
		return InvalidType, makeSemanticError(expr.Line, "cannot assign %s to variable %s of type %s",
			p.typeName(rhsType), name, p.typeName(ref.tp))
	}
	expr.setStatic(scope.annotation())
	return ref.tp, nil
}

// typeReceiver types the receiver of a dot expression, which must be of a class type.
func (p *Program) typeReceiver(expr *Node, scope Scope) (int, error) {
	recv, err := expr.child(0)
	if err != nil {
		return InvalidType, err
	}
	recvType, err := p.typeExpr(recv, scope)
	if err != nil {
		return InvalidType, err
	}
	if !p.isClass(recvType) {
		return InvalidType, makeSemanticError(expr.Line, "receiver of type %s is not an object",
			p.typeName(recvType))
	}
	return recvType, nil
}

func (p *Program) resolveField(expr *Node, scope Scope) (int, error) {
	recvType, err := p.typeReceiver(expr, scope)
	if err != nil {
		return InvalidType, err
	}
	name, _, err := expr.idChild(1)
	if err != nil {
		return InvalidType, err
	}
	class, index, ok := p.lookupField(recvType, name)
	if !ok {
		return InvalidType, makeSemanticError(expr.Line, "class %s has no field %s", p.typeName(recvType), name)
	}
	expr.setStatic(class, index)
	return p.Classes[class].Fields[index].Type, nil
}

func (p *Program) typeDotID(expr *Node, scope Scope) (int, error) {
	return p.resolveField(expr, scope)
}

func (p *Program) typeDotAssign(expr *Node, scope Scope) (int, error) {
	fieldType, err := p.resolveField(expr, scope)
	if err != nil {
		return InvalidType, err
	}
	rhs, err := expr.child(2)
	if err != nil {
		return InvalidType, err
	}
	rhsType, err := p.typeExpr(rhs, scope)
	if err != nil {
		return InvalidType, err
	}
	if !p.IsSubtype(rhsType, fieldType) {
		return InvalidType, makeSemanticError(expr.Line, "cannot assign %s to field %s of type %s",
			p.typeName(rhsType), expr.Children[1].ID, p.typeName(fieldType))
	}
	return fieldType, nil
}

// resolveCall looks the method up from class upward, checks the argument and annotates expr.
func (p *Program) resolveCall(expr *Node, scope Scope, class int, nameIndex int) (int, error) {
	name, _, err := expr.idChild(nameIndex)
	if err != nil {
		return InvalidType, err
	}
	declClass, index, ok := p.lookupMethod(class, name)
	if !ok {
		return InvalidType, makeSemanticError(expr.Line, "class %s has no method %s", p.typeName(class), name)
	}
	arg, err := expr.child(nameIndex + 1)
	if err != nil {
		return InvalidType, err
	}
	argType, err := p.typeExpr(arg, scope)
	if err != nil {
		return InvalidType, err
	}
	method := p.method(declClass, index)
	if !p.IsSubtype(argType, method.ParamType) {
		return InvalidType, makeSemanticError(expr.Line, "argument of type %s does not match parameter %s of type %s",
			p.typeName(argType), method.ParamName, p.typeName(method.ParamType))
	}
	expr.setStatic(declClass, index)
	return method.ReturnType, nil
}

func (p *Program) typeMethodCall(expr *Node, scope Scope) (int, error) {
	if !scope.InMethod() {
		return InvalidType, makeSemanticError(expr.Line, "method call without receiver outside of a class")
	}
	return p.resolveCall(expr, scope, scope.Class(), 0)
}

func (p *Program) typeDotMethodCall(expr *Node, scope Scope) (int, error) {
	recvType, err := p.typeReceiver(expr, scope)
	if err != nil {
		return InvalidType, err
	}
	return p.resolveCall(expr, scope, recvType, 1)
}

func (p *Program) typeOperand(expr *Node, i int, scope Scope) (int, error) {
	operand, err := expr.child(i)
	if err != nil {
		return InvalidType, err
	}
	return p.typeExpr(operand, scope)
}

func (p *Program) typeNatUnary(expr *Node, scope Scope) (int, error) {
	tp, err := p.typeOperand(expr, 0, scope)
	if err != nil {
		return InvalidType, err
	}
	if tp != NatType {
		return InvalidType, makeSemanticError(expr.Line, "operand of %s must be nat, got %s", expr.Kind,
			p.typeName(tp))
	}
	return NatType, nil
}

func (p *Program) typeNatBinary(expr *Node, scope Scope) (int, error) {
	for i := 0; i < 2; i++ {
		tp, err := p.typeOperand(expr, i, scope)
		if err != nil {
			return InvalidType, err
		}
		if tp != NatType {
			return InvalidType, makeSemanticError(expr.Line, "operands of %s must be nat, got %s", expr.Kind,
				p.typeName(tp))
		}
	}
	return NatType, nil
}

func (p *Program) typeEquality(expr *Node, scope Scope) (int, error) {
	left, err := p.typeOperand(expr, 0, scope)
	if err != nil {
		return InvalidType, err
	}
	right, err := p.typeOperand(expr, 1, scope)
	if err != nil {
		return InvalidType, err
	}
	if !p.IsSubtype(left, right) && !p.IsSubtype(right, left) {
		return InvalidType, makeSemanticError(expr.Line, "cannot compare %s with %s", p.typeName(left),
			p.typeName(right))
	}
	return NatType, nil
}

func (p *Program) typeCondition(expr *Node, scope Scope) error {
	tp, err := p.typeOperand(expr, 0, scope)
	if err != nil {
		return err
	}
	if tp != NatType {
		return makeSemanticError(expr.Line, "condition must be nat, got %s", p.typeName(tp))
	}
	return nil
}

func (p *Program) typeIf(expr *Node, scope Scope) (int, error) {
	err := p.typeCondition(expr, scope)
	if err != nil {
		return InvalidType, err
	}
	thenList, err := expr.childOfKind(1, ExprListKind)
	if err != nil {
		return InvalidType, err
	}
	elseList, err := expr.childOfKind(2, ExprListKind)
	if err != nil {
		return InvalidType, err
	}
	thenType, err := p.typeExprList(thenList, scope)
	if err != nil {
		return InvalidType, err
	}
	elseType, err := p.typeExprList(elseList, scope)
	if err != nil {
		return InvalidType, err
	}
	switch {
	case thenType == NatType && elseType == NatType:
		return NatType, nil
	case thenType >= 0 && elseType >= 0:
		if tp, ok := p.Join(thenType, elseType); ok {
			return tp, nil
		}
	case p.IsSubtype(thenType, elseType):
		return elseType, nil
	case p.IsSubtype(elseType, thenType):
		return thenType, nil
	}
	return InvalidType, makeSemanticError(expr.Line, "branches of types %s and %s are not joinable",
		p.typeName(thenType), p.typeName(elseType))
}

func (p *Program) typeWhile(expr *Node, scope Scope) (int, error) {
	err := p.typeCondition(expr, scope)
	if err != nil {
		return InvalidType, err
	}
	body, err := expr.childOfKind(1, ExprListKind)
	if err != nil {
		return InvalidType, err
	}
	_, err = p.typeExprList(body, scope)
	if err != nil {
		return InvalidType, err
	}
	return NatType, nil
}
