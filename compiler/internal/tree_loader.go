package internal

import (
	"io"
	"os"

	"github.com/xiaobogaga/djc/util"
	"gopkg.in/yaml.v3"
)

// yamlNode is the serialized form of a Node written by the DJ parser:
//
//	kind: DOT_ID_EXPR
//	line: 3
//	children:
//	  - {kind: THIS_EXPR, line: 3}
//	  - {kind: AST_ID, line: 3, id: f}
type yamlNode struct {
	Kind     string      `yaml:"kind"`
	Line     int         `yaml:"line"`
	ID       string      `yaml:"id,omitempty"`
	Nat      int         `yaml:"nat,omitempty"`
	Children []*yamlNode `yaml:"children,omitempty"`
}

func LoadTreeFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTree(f)
}

// LoadTree decodes one YAML document into a tree. Unknown kinds and bad identifiers are internal errors.
func LoadTree(rd io.Reader) (*Node, error) {
	doc := &yamlNode{}
	err := yaml.NewDecoder(rd).Decode(doc)
	if err != nil {
		return nil, makeInternalError("cannot decode tree: %v", err)
	}
	return doc.toNode()
}

func (n *yamlNode) toNode() (*Node, error) {
	if n == nil {
		return nil, makeInternalError("empty tree node")
	}
	kind, ok := ParseNodeKind(n.Kind)
	if !ok {
		return nil, makeInternalError("unknown node kind %q at line %d", n.Kind, n.Line)
	}
	if kind == IDKind && !util.IsIdentifier(n.ID) {
		return nil, makeInternalError("bad identifier %q at line %d", n.ID, n.Line)
	}
	if kind == NatLiteralExprKind && n.Nat < 0 {
		return nil, makeInternalError("negative literal %d at line %d", n.Nat, n.Line)
	}
	node := &Node{Kind: kind, Line: n.Line, ID: n.ID, Nat: n.Nat}
	for _, child := range n.Children {
		c, err := child.toNode()
		if err != nil {
			return nil, err
		}
		node.AddChild(c)
	}
	return node, nil
}

// DumpTree writes a tree in the same YAML form LoadTree reads.
func DumpTree(root *Node, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	err := encoder.Encode(fromNode(root))
	if err != nil {
		return err
	}
	return encoder.Close()
}

func fromNode(node *Node) *yamlNode {
	n := &yamlNode{Kind: node.Kind.String(), Line: node.Line, ID: node.ID, Nat: node.Nat}
	for _, child := range node.Children {
		n.Children = append(n.Children, fromNode(child))
	}
	return n
}
