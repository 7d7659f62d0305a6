package internal

// Type indices shared by fields, locals, params and return types. Non-negative values are class indices.
const (
	InvalidType = -3
	NullType    = -2
	NatType     = -1
	ObjectType  = 0
)

type VarDecl struct {
	Name     string
	Line     int
	Type     int
	TypeLine int
}

type MethodDecl struct {
	Name           string
	Line           int
	Final          bool
	ReturnType     int
	ReturnTypeLine int
	ParamName      string
	ParamLine      int
	ParamType      int
	ParamTypeLine  int
	Locals         []*VarDecl
	Body           *Node
}

type ClassDecl struct {
	Name      string
	Line      int
	Super     int
	SuperLine int
	Final     bool
	Fields    []*VarDecl
	Methods   []*MethodDecl
}

// Program is the compilation context: the class table with Object at index 0, the main block, and the tree they
// were built from. It is built once and only the tree's resolution slots change afterwards.
type Program struct {
	Root       *Node
	Classes    []*ClassDecl
	MainLocals []*VarDecl
	MainBody   *Node

	// NatObjectWidening makes nat and every class type subtypes of each other.
	NatObjectWidening bool

	checked bool
}

func (p *Program) Checked() bool {
	return p.checked
}

// BuildSymbolTables derives the class, method and variable tables from a PROGRAM node.
func BuildSymbolTables(root *Node) (*Program, error) {
	if root == nil || root.Kind != ProgramKind {
		return nil, makeInternalError("tree root must be a PROGRAM node")
	}
	if len(root.Children) < 3 {
		return nil, makeInternalError("PROGRAM node has %d children, expects 3", len(root.Children))
	}
	classList, err := root.childOfKind(0, ClassDeclListKind)
	if err != nil {
		return nil, err
	}
	mainLocals, err := root.childOfKind(1, VarDeclListKind)
	if err != nil {
		return nil, err
	}
	mainBody, err := root.childOfKind(2, ExprListKind)
	if err != nil {
		return nil, err
	}
	p := &Program{
		Root:     root,
		Classes:  []*ClassDecl{{Name: "Object", Super: InvalidType}},
		MainBody: mainBody,
	}
	// Names first, so that types may refer to classes declared later.
	for _, classAst := range classList.Children {
		if classAst == nil || !classAst.Kind.isClassDecl() {
			return nil, makeInternalError("CLASS_DECL_LIST holds a non class node")
		}
		name, nameAst, err := classAst.idChild(0)
		if err != nil {
			return nil, err
		}
		p.Classes = append(p.Classes, &ClassDecl{
			Name:  name,
			Line:  nameAst.Line,
			Final: classAst.Kind == FinalClassDeclKind,
		})
	}
	for i, classAst := range classList.Children {
		err = p.buildClass(p.Classes[i+1], classAst)
		if err != nil {
			return nil, err
		}
	}
	p.MainLocals, err = p.buildVarDecls(mainLocals)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) buildClass(class *ClassDecl, classAst *Node) error {
	superName, superAst, err := classAst.idChild(1)
	if err != nil {
		return err
	}
	class.Super = p.classNameToNumber(superName)
	class.SuperLine = superAst.Line
	fields, err := classAst.childOfKind(2, VarDeclListKind)
	if err != nil {
		return err
	}
	class.Fields, err = p.buildVarDecls(fields)
	if err != nil {
		return err
	}
	methods, err := classAst.childOfKind(3, MethodDeclListKind)
	if err != nil {
		return err
	}
	for _, methodAst := range methods.Children {
		method, err := p.buildMethod(methodAst)
		if err != nil {
			return err
		}
		class.Methods = append(class.Methods, method)
	}
	return nil
}

func (p *Program) buildMethod(methodAst *Node) (*MethodDecl, error) {
	if methodAst == nil || !methodAst.Kind.isMethodDecl() {
		return nil, makeInternalError("METHOD_DECL_LIST holds a non method node")
	}
	method := &MethodDecl{Final: methodAst.Kind == FinalMethodDeclKind}
	retAst, err := methodAst.child(0)
	if err != nil {
		return nil, err
	}
	method.ReturnType, err = p.typeOf(retAst)
	if err != nil {
		return nil, err
	}
	method.ReturnTypeLine = retAst.Line
	name, nameAst, err := methodAst.idChild(1)
	if err != nil {
		return nil, err
	}
	method.Name, method.Line = name, nameAst.Line
	paramTypeAst, err := methodAst.child(2)
	if err != nil {
		return nil, err
	}
	method.ParamType, err = p.typeOf(paramTypeAst)
	if err != nil {
		return nil, err
	}
	method.ParamTypeLine = paramTypeAst.Line
	paramName, paramAst, err := methodAst.idChild(3)
	if err != nil {
		return nil, err
	}
	method.ParamName, method.ParamLine = paramName, paramAst.Line
	locals, err := methodAst.childOfKind(4, VarDeclListKind)
	if err != nil {
		return nil, err
	}
	method.Locals, err = p.buildVarDecls(locals)
	if err != nil {
		return nil, err
	}
	method.Body, err = methodAst.childOfKind(5, ExprListKind)
	if err != nil {
		return nil, err
	}
	return method, nil
}

func (p *Program) buildVarDecls(list *Node) ([]*VarDecl, error) {
	ret := make([]*VarDecl, 0, len(list.Children))
	for _, varAst := range list.Children {
		if varAst == nil || varAst.Kind != VarDeclKind {
			return nil, makeInternalError("VAR_DECL_LIST holds a non VAR_DECL node")
		}
		typeAst, err := varAst.child(0)
		if err != nil {
			return nil, err
		}
		tp, err := p.typeOf(typeAst)
		if err != nil {
			return nil, err
		}
		name, nameAst, err := varAst.idChild(1)
		if err != nil {
			return nil, err
		}
		ret = append(ret, &VarDecl{Name: name, Line: nameAst.Line, Type: tp, TypeLine: typeAst.Line})
	}
	return ret, nil
}

// typeOf resolves a type node: NAT_TYPE or a class name. Unknown class names give InvalidType, which the
// declaration checks report.
func (p *Program) typeOf(typeAst *Node) (int, error) {
	switch typeAst.Kind {
	case NatTypeKind:
		return NatType, nil
	case IDKind:
		return p.classNameToNumber(typeAst.ID), nil
	}
	return InvalidType, makeInternalError("%s at line %d is not a type", typeAst, typeAst.Line)
}

// classNameToNumber returns the first class index with the given name, 0 for Object and InvalidType otherwise.
func (p *Program) classNameToNumber(name string) int {
	if name == "Object" {
		return ObjectType
	}
	for i := 1; i < len(p.Classes); i++ {
		if p.Classes[i].Name == name {
			return i
		}
	}
	return InvalidType
}

func (p *Program) isClass(tp int) bool {
	return tp >= 0 && tp < len(p.Classes)
}

func (p *Program) superOf(class int) int {
	if !p.isClass(class) {
		return InvalidType
	}
	return p.Classes[class].Super
}

// typeName renders a type index for diagnostics.
func (p *Program) typeName(tp int) string {
	switch {
	case tp == NatType:
		return "nat"
	case tp == NullType:
		return "null"
	case p.isClass(tp):
		return p.Classes[tp].Name
	}
	return "<invalid type>"
}

// lookupField searches class and its ancestors for a field. It returns the declaring class and the field index
// within that class.
func (p *Program) lookupField(class int, name string) (int, int, bool) {
	for steps := 0; p.isClass(class) && steps < len(p.Classes); steps++ {
		for i, field := range p.Classes[class].Fields {
			if field.Name == name {
				return class, i, true
			}
		}
		class = p.Classes[class].Super
	}
	return InvalidType, 0, false
}

// lookupMethod searches class and its ancestors for a method. It returns the declaring class and the method index
// within that class.
func (p *Program) lookupMethod(class int, name string) (int, int, bool) {
	for steps := 0; p.isClass(class) && steps < len(p.Classes); steps++ {
		for i, method := range p.Classes[class].Methods {
			if method.Name == name {
				return class, i, true
			}
		}
		class = p.Classes[class].Super
	}
	return InvalidType, 0, false
}

func (p *Program) method(class, index int) *MethodDecl {
	return p.Classes[class].Methods[index]
}

// numFields counts the fields of an object of the given class, inherited ones included.
func (p *Program) numFields(class int) int {
	ret := 0
	for steps := 0; p.isClass(class) && steps < len(p.Classes); steps++ {
		ret += len(p.Classes[class].Fields)
		class = p.Classes[class].Super
	}
	return ret
}

// fieldOffset is the word offset from an object's address to a field. Word 0 holds the class tag, then come the
// fields of the root-most ancestor first.
func (p *Program) fieldOffset(class, index int) int {
	return 1 + p.numFields(p.superOf(class)) + index
}

type varKind int

const (
	mainLocalVar varKind = iota
	paramVar
	localVar
	fieldVar
)

// varRef says where a variable named in an expression lives.
type varRef struct {
	kind  varKind
	index int
	class int // declaring class, fields only
	tp    int
}

// lookupVar resolves a name in scope: the parameter, then the locals, then the fields of the enclosing class and
// its ancestors. Inside the main block only the main locals are visible.
func (p *Program) lookupVar(scope Scope, name string) (varRef, bool) {
	if !scope.InMethod() {
		for i, local := range p.MainLocals {
			if local.Name == name {
				return varRef{kind: mainLocalVar, index: i, tp: local.Type}, true
			}
		}
		return varRef{}, false
	}
	method := p.method(scope.Class(), scope.Method())
	if method.ParamName == name {
		return varRef{kind: paramVar, tp: method.ParamType}, true
	}
	for i, local := range method.Locals {
		if local.Name == name {
			return varRef{kind: localVar, index: i, tp: local.Type}, true
		}
	}
	class, index, ok := p.lookupField(scope.Class(), name)
	if !ok {
		return varRef{}, false
	}
	return varRef{kind: fieldVar, index: index, class: class, tp: p.Classes[class].Fields[index].Type}, true
}
