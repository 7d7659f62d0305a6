package internal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Compiler runs the pipeline: symbol tables, checks, code generation.
type Compiler struct {
	cfg *Config
	log *Logger
}

func NewCompiler(cfg *Config, log *Logger) *Compiler {
	return &Compiler{cfg: cfg, log: log}
}

// CheckTree builds the symbol tables of a tree and type checks it.
func (c *Compiler) CheckTree(root *Node) (*Program, error) {
	c.log.Phase("start building symbol tables")
	p, err := BuildSymbolTables(root)
	if err != nil {
		return nil, err
	}
	p.NatObjectWidening = c.cfg.Compiler.NatObjectWidening
	if p.NatObjectWidening {
		c.log.Warn("Widening", "nat and object types are treated as subtypes of each other")
	}
	c.log.Phase("start type checker on %d classes", len(p.Classes)-1)
	err = Check(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CompileTree checks a tree and writes its DISM code to w.
func (c *Compiler) CompileTree(root *Node, w io.Writer) error {
	p, err := c.CheckTree(root)
	if err != nil {
		return err
	}
	c.log.Phase("start generate codes")
	return Generate(p, w, c.cfg.genOptions())
}

// Compile reads the tree at path and writes the DISM program next to it, or to the configured output path. It
// returns the path written.
func (c *Compiler) Compile(path string) (string, error) {
	c.log.Phase("start loading tree at path: %s", path)
	root, err := LoadTreeFile(path)
	if err != nil {
		return "", err
	}
	outPath := c.cfg.Output.Path
	if outPath == "" {
		outPath = OutputPathFor(path)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	err = c.CompileTree(root, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(outPath)
		return "", err
	}
	if closeErr != nil {
		return "", closeErr
	}
	c.log.Success("Compiled", outPath)
	return outPath, nil
}

// OutputPathFor replaces the extension of a tree file with .dism.
func OutputPathFor(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".dism"
}
