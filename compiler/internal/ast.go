package internal

import "fmt"

// In this file, we defined the tree handed over by the DJ parser. Every node carries its kind, its ordered children,
// the literal attributes used by AST_ID and NAT_LITERAL_EXPR nodes, and two resolution slots filled by the type
// checker and read by the code generator.

type NodeKind int

const (
	ProgramKind NodeKind = iota
	ClassDeclListKind
	FinalClassDeclKind
	NonFinalClassDeclKind
	VarDeclListKind
	VarDeclKind
	MethodDeclListKind
	FinalMethodDeclKind
	NonFinalMethodDeclKind
	NatTypeKind
	IDKind
	ExprListKind
	DotMethodCallExprKind
	MethodCallExprKind
	DotIDExprKind
	IDExprKind
	DotAssignExprKind
	AssignExprKind
	PlusExprKind
	MinusExprKind
	TimesExprKind
	EqualityExprKind
	LessThanExprKind
	NotExprKind
	OrExprKind
	AssertExprKind
	IfThenElseExprKind
	WhileExprKind
	PrintExprKind
	ReadExprKind
	ThisExprKind
	NewExprKind
	NullExprKind
	NatLiteralExprKind
)

var nodeKindNames = [...]string{
	ProgramKind:            "PROGRAM",
	ClassDeclListKind:      "CLASS_DECL_LIST",
	FinalClassDeclKind:     "FINAL_CLASS_DECL",
	NonFinalClassDeclKind:  "NONFINAL_CLASS_DECL",
	VarDeclListKind:        "VAR_DECL_LIST",
	VarDeclKind:            "VAR_DECL",
	MethodDeclListKind:     "METHOD_DECL_LIST",
	FinalMethodDeclKind:    "FINAL_METHOD_DECL",
	NonFinalMethodDeclKind: "NONFINAL_METHOD_DECL",
	NatTypeKind:            "NAT_TYPE",
	IDKind:                 "AST_ID",
	ExprListKind:           "EXPR_LIST",
	DotMethodCallExprKind:  "DOT_METHOD_CALL_EXPR",
	MethodCallExprKind:     "METHOD_CALL_EXPR",
	DotIDExprKind:          "DOT_ID_EXPR",
	IDExprKind:             "ID_EXPR",
	DotAssignExprKind:      "DOT_ASSIGN_EXPR",
	AssignExprKind:         "ASSIGN_EXPR",
	PlusExprKind:           "PLUS_EXPR",
	MinusExprKind:          "MINUS_EXPR",
	TimesExprKind:          "TIMES_EXPR",
	EqualityExprKind:       "EQUALITY_EXPR",
	LessThanExprKind:       "LESS_THAN_EXPR",
	NotExprKind:            "NOT_EXPR",
	OrExprKind:             "OR_EXPR",
	AssertExprKind:         "ASSERT_EXPR",
	IfThenElseExprKind:     "IF_THEN_ELSE_EXPR",
	WhileExprKind:          "WHILE_EXPR",
	PrintExprKind:          "PRINT_EXPR",
	ReadExprKind:           "READ_EXPR",
	ThisExprKind:           "THIS_EXPR",
	NewExprKind:            "NEW_EXPR",
	NullExprKind:           "NULL_EXPR",
	NatLiteralExprKind:     "NAT_LITERAL_EXPR",
}

var nodeKindsByName = func() map[string]NodeKind {
	ret := make(map[string]NodeKind, len(nodeKindNames))
	for kind, name := range nodeKindNames {
		ret[name] = NodeKind(kind)
	}
	return ret
}()

func (kind NodeKind) String() string {
	if kind < 0 || int(kind) >= len(nodeKindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(kind))
	}
	return nodeKindNames[kind]
}

// ParseNodeKind maps a canonical kind name such as "DOT_ID_EXPR" back to its NodeKind.
func ParseNodeKind(name string) (NodeKind, bool) {
	kind, ok := nodeKindsByName[name]
	return kind, ok
}

func (kind NodeKind) isClassDecl() bool {
	return kind == FinalClassDeclKind || kind == NonFinalClassDeclKind
}

func (kind NodeKind) isMethodDecl() bool {
	return kind == FinalMethodDeclKind || kind == NonFinalMethodDeclKind
}

type Node struct {
	Kind     NodeKind
	Children []*Node
	Nat      int
	ID       string
	Line     int

	// Written by the type checker.
	StaticClass  int
	StaticMember int
}

func NewNode(kind NodeKind, line int, children ...*Node) *Node {
	return &Node{Kind: kind, Line: line, Children: children}
}

func NewIDNode(id string, line int) *Node {
	return &Node{Kind: IDKind, ID: id, Line: line}
}

func NewNatNode(value int, line int) *Node {
	return &Node{Kind: NatLiteralExprKind, Nat: value, Line: line}
}

func (node *Node) AddChild(child *Node) {
	node.Children = append(node.Children, child)
}

func (node *Node) String() string {
	switch node.Kind {
	case IDKind:
		return fmt.Sprintf("%s(%s)", node.Kind, node.ID)
	case NatLiteralExprKind:
		return fmt.Sprintf("%s(%d)", node.Kind, node.Nat)
	}
	return node.Kind.String()
}

// child returns the i-th child or an internal error naming the malformed node.
func (node *Node) child(i int) (*Node, error) {
	if i >= len(node.Children) || node.Children[i] == nil {
		return nil, makeInternalError("%s at line %d has no child %d", node, node.Line, i)
	}
	return node.Children[i], nil
}

func (node *Node) childOfKind(i int, kind NodeKind) (*Node, error) {
	child, err := node.child(i)
	if err != nil {
		return nil, err
	}
	if child.Kind != kind {
		return nil, makeInternalError("%s at line %d expects %s as child %d, got %s", node, node.Line, kind, i,
			child.Kind)
	}
	return child, nil
}

// idChild returns the identifier string held by the i-th child, which must be an AST_ID.
func (node *Node) idChild(i int) (string, *Node, error) {
	child, err := node.childOfKind(i, IDKind)
	if err != nil {
		return "", nil, err
	}
	return child.ID, child, nil
}

func (node *Node) setStatic(class, member int) {
	node.StaticClass = class
	node.StaticMember = member
}

// Walk visits node and its descendants in pre-order.
func (node *Node) Walk(visit func(*Node)) {
	if node == nil {
		return
	}
	visit(node)
	for _, child := range node.Children {
		child.Walk(visit)
	}
}
