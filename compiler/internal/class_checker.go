package internal

// checkDeclarations validates classes, fields, methods and locals before any expression is typed.
func (p *Program) checkDeclarations() error {
	err := p.checkClassHeaders()
	if err != nil {
		return err
	}
	err = p.checkAcyclic()
	if err != nil {
		return err
	}
	for i := 1; i < len(p.Classes); i++ {
		err = p.checkClassMembers(i)
		if err != nil {
			return err
		}
	}
	return p.checkVarDecls(p.MainLocals, "main block local")
}

func (p *Program) checkClassHeaders() error {
	for i := 1; i < len(p.Classes); i++ {
		class := p.Classes[i]
		if class.Name == "Object" {
			return makeSemanticError(class.Line, "class Object is predefined")
		}
		for j := 1; j < i; j++ {
			if p.Classes[j].Name == class.Name {
				return makeSemanticError(class.Line, "duplicate class name %s", class.Name)
			}
		}
		switch {
		case class.Super == InvalidType:
			return makeSemanticError(class.SuperLine, "class %s extends an undeclared class", class.Name)
		case class.Super == i:
			return makeSemanticError(class.SuperLine, "class %s extends itself", class.Name)
		case class.Super > i:
			return makeSemanticError(class.SuperLine, "class %s extends %s which is declared later", class.Name,
				p.Classes[class.Super].Name)
		case p.Classes[class.Super].Final:
			return makeSemanticError(class.SuperLine, "class %s extends final class %s", class.Name,
				p.Classes[class.Super].Name)
		}
	}
	return nil
}

// checkAcyclic walks every superclass chain and fails if a chain does not reach Object within the class count.
func (p *Program) checkAcyclic() error {
	for i := 1; i < len(p.Classes); i++ {
		class, steps := i, 0
		for class != ObjectType {
			if !p.isClass(class) || steps > len(p.Classes) {
				return makeSemanticError(p.Classes[i].Line, "cyclic inheritance involving class %s", p.Classes[i].Name)
			}
			class = p.Classes[class].Super
			steps++
		}
	}
	return nil
}

func (p *Program) checkClassMembers(classIndex int) error {
	class := p.Classes[classIndex]
	err := p.checkVarDecls(class.Fields, "field")
	if err != nil {
		return err
	}
	for _, field := range class.Fields {
		declClass, _, ok := p.lookupField(class.Super, field.Name)
		if ok {
			return makeSemanticError(field.Line, "field %s in class %s duplicates a field of superclass %s",
				field.Name, class.Name, p.Classes[declClass].Name)
		}
	}
	for i, method := range class.Methods {
		for j := 0; j < i; j++ {
			if class.Methods[j].Name == method.Name {
				return makeSemanticError(method.Line, "duplicate method %s in class %s", method.Name, class.Name)
			}
		}
		err = p.checkMethodDecl(class, method)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) checkMethodDecl(class *ClassDecl, method *MethodDecl) error {
	if method.ReturnType < NullType {
		return makeSemanticError(method.ReturnTypeLine, "method %s.%s has an undeclared return type", class.Name,
			method.Name)
	}
	if method.ParamType < NullType {
		return makeSemanticError(method.ParamTypeLine, "parameter %s of method %s.%s has an undeclared type",
			method.ParamName, class.Name, method.Name)
	}
	err := p.checkVarDecls(method.Locals, "local")
	if err != nil {
		return err
	}
	for _, local := range method.Locals {
		if local.Name == method.ParamName {
			return makeSemanticError(local.Line, "local %s of method %s.%s duplicates its parameter", local.Name,
				class.Name, method.Name)
		}
	}
	superClass, index, ok := p.lookupMethod(class.Super, method.Name)
	if !ok {
		return nil
	}
	overridden := p.method(superClass, index)
	if overridden.Final {
		return makeSemanticError(method.Line, "method %s.%s overrides final method of class %s", class.Name,
			method.Name, p.Classes[superClass].Name)
	}
	if overridden.ParamType != method.ParamType || overridden.ReturnType != method.ReturnType {
		return makeSemanticError(method.Line, "method %s.%s overrides %s.%s with a different signature",
			class.Name, method.Name, p.Classes[superClass].Name, overridden.Name)
	}
	return nil
}

// checkVarDecls requires valid types and pairwise distinct names.
func (p *Program) checkVarDecls(vars []*VarDecl, what string) error {
	for i, v := range vars {
		if v.Type < NullType {
			return makeSemanticError(v.TypeLine, "%s %s has an undeclared type", what, v.Name)
		}
		for j := 0; j < i; j++ {
			if vars[j].Name == v.Name {
				return makeSemanticError(v.Line, "duplicate %s %s", what, v.Name)
			}
		}
	}
	return nil
}
