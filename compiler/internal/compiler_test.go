package internal

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaobogaga/djc/dism"
)

func silentCompiler(t *testing.T, cfg *Config) *Compiler {
	log, err := NewLogger(LogLevelSilentName, ioutil.Discard)
	assert.Nil(t, err)
	return NewCompiler(cfg, log)
}

func writeTree(t *testing.T, root *Node) string {
	path := filepath.Join(t.TempDir(), "prog.yaml")
	f, err := os.Create(path)
	assert.Nil(t, err)
	assert.Nil(t, DumpTree(root, f))
	assert.Nil(t, f.Close())
	return path
}

func TestOutputPathFor(t *testing.T) {
	assert.Equal(t, "tests/good1.dism", OutputPathFor("tests/good1.yaml"))
	assert.Equal(t, "prog.dism", OutputPathFor("prog"))
	assert.Equal(t, "a.b/prog.dj.dism", OutputPathFor("a.b/prog.dj.yaml"))
}

func TestCompile(t *testing.T) {
	path := writeTree(t, program(
		classes(class("A", "Object", vars(varDecl("nat", "v")),
			method("nat", "get", "nat", "x", nil, binary(PlusExprKind, idExpr("v"), idExpr("x"))),
		)),
		vars(varDecl("A", "a")),
		assign("a", newExpr("A")),
		dotAssign(idExpr("a"), "v", readNat()),
		printExpr(dotCall(idExpr("a"), "get", nat(2))),
	))
	outPath, err := silentCompiler(t, DefaultConfig()).Compile(path)
	assert.Nil(t, err)
	assert.Equal(t, OutputPathFor(path), outPath)

	f, err := os.Open(outPath)
	assert.Nil(t, err)
	defer f.Close()
	out := &bytes.Buffer{}
	res, err := dism.RunProgram(f, DefaultMaxAddress, DefaultMaxSteps, strings.NewReader("40"), out)
	assert.Nil(t, err)
	assert.Equal(t, haltOK, res.ExitCode)
	assert.Equal(t, "42\n", out.String())
}

func TestCompileConfiguredOutput(t *testing.T) {
	path := writeTree(t, program(nil, nil, printExpr(nat(1))))
	cfg := DefaultConfig()
	cfg.Output.Path = filepath.Join(t.TempDir(), "custom.dism")
	cfg.Output.StripComments = true
	outPath, err := silentCompiler(t, cfg).Compile(path)
	assert.Nil(t, err)
	assert.Equal(t, cfg.Output.Path, outPath)
	text, err := ioutil.ReadFile(outPath)
	assert.Nil(t, err)
	assert.NotContains(t, string(text), ";")
}

func TestCompileSemanticErrorRemovesOutput(t *testing.T) {
	path := writeTree(t, program(nil, nil, atLine(3, idExpr("missing"))))
	_, err := silentCompiler(t, DefaultConfig()).Compile(path)
	assertSemanticError(t, err, 3, "undeclared variable missing", "compile")
	_, statErr := os.Stat(OutputPathFor(path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckTreeWidening(t *testing.T) {
	root := func() *Node {
		return program(nil, vars(varDecl("Object", "o")), assign("o", nat(1)))
	}
	_, err := silentCompiler(t, DefaultConfig()).CheckTree(root())
	assert.True(t, IsSemanticError(err))

	cfg := DefaultConfig()
	cfg.Compiler.NatObjectWidening = true
	p, err := silentCompiler(t, cfg).CheckTree(root())
	assert.Nil(t, err)
	assert.True(t, p.Checked())
}

func TestCompileTreeMalformed(t *testing.T) {
	err := silentCompiler(t, DefaultConfig()).CompileTree(list(nat(0)), &bytes.Buffer{})
	assert.True(t, IsInternalError(err))
}
