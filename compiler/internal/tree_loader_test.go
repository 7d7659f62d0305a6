package internal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

const printSevenTree = `
kind: PROGRAM
line: 1
children:
  - kind: CLASS_DECL_LIST
    line: 1
  - kind: VAR_DECL_LIST
    line: 1
  - kind: EXPR_LIST
    line: 2
    children:
      - kind: PRINT_EXPR
        line: 2
        children:
          - {kind: NAT_LITERAL_EXPR, line: 2, nat: 7}
`

func TestLoadTree(t *testing.T) {
	root, err := LoadTree(strings.NewReader(printSevenTree))
	assert.Nil(t, err)
	assert.Equal(t, ProgramKind, root.Kind)
	assert.Equal(t, 3, len(root.Children))
	printNode := root.Children[2].Children[0]
	assert.Equal(t, PrintExprKind, printNode.Kind)
	assert.Equal(t, 2, printNode.Line)
	assert.Equal(t, NatLiteralExprKind, printNode.Children[0].Kind)
	assert.Equal(t, 7, printNode.Children[0].Nat)
}

func TestDumpAndLoadTree(t *testing.T) {
	root := program(
		classes(class("A", "Object", vars(varDecl("nat", "f")),
			method("A", "m", "A", "other", vars(varDecl("nat", "tmp")),
				atLine(4, ifElse(binary(EqualityExprKind, this(), idExpr("other")), list(null()), list(this()))),
			),
		)),
		vars(varDecl("A", "a")),
		assign("a", newExpr("A")),
		atLine(7, dotAssign(idExpr("a"), "f", readNat())),
		printExpr(dotID(dotCall(idExpr("a"), "m", idExpr("a")), "f")),
	)
	buff := &bytes.Buffer{}
	assert.Nil(t, DumpTree(root, buff))
	loaded, err := LoadTree(buff)
	assert.Nil(t, err)
	if diff := cmp.Diff(root, loaded); diff != "" {
		t.Errorf("tree changed after a round trip (-want +got):\n%s", diff)
	}
	_, err = checkedProgram(loaded)
	assert.Nil(t, err)
}

func TestLoadTreeErrors(t *testing.T) {
	testData := []struct {
		name string
		text string
	}{
		{"not yaml", "kind: [PROGRAM"},
		{"unknown kind", "kind: CLASS\nline: 1\n"},
		{"bad identifier", "kind: ID_EXPR\nline: 3\nchildren:\n  - {kind: AST_ID, line: 3, id: 9lives}\n"},
		{"empty identifier", "kind: AST_ID\nline: 3\n"},
		{"negative literal", "kind: NAT_LITERAL_EXPR\nline: 1\nnat: -4\n"},
		{"empty document", ""},
	}
	for _, data := range testData {
		_, err := LoadTree(strings.NewReader(data.text))
		assert.True(t, IsInternalError(err), data.name)
	}
}

func TestLoadTreeFileMissing(t *testing.T) {
	_, err := LoadTreeFile(t.TempDir() + "/missing.yaml")
	assert.NotNil(t, err)
	assert.False(t, IsInternalError(err))
}
