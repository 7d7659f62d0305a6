package internal

import (
	"fmt"
	"io"
	"strings"
)

// Register conventions of the generated DISM code.
const (
	regZero = 0
	regHP   = 5
	regSP   = 6
	regFP   = 7
)

// Halt codes of generated programs.
const (
	haltOK              = 0
	haltOutOfMemory     = 77
	haltNullDereference = 88
	haltAssertFailed    = 99
	haltNoMethod        = 66
)

// HaltMessage explains the exit code of a generated program.
func HaltMessage(code int) string {
	switch code {
	case haltOK:
		return "ok"
	case haltOutOfMemory:
		return "out of memory (77)"
	case haltNullDereference:
		return "null pointer dereference (88)"
	case haltAssertFailed:
		return "assertion failed (99)"
	case haltNoMethod:
		return "no matching method (66)"
	}
	return fmt.Sprintf("halted with code %d", code)
}

// Emitter writes DISM instructions one per line and hands out unique labels. The first write error is kept and
// every later write is dropped.
type Emitter struct {
	writer        io.Writer
	stripComments bool
	labelNumber   int
	needVtable    bool
	err           error
}

func NewEmitter(writer io.Writer, stripComments bool) *Emitter {
	return &Emitter{writer: writer, stripComments: stripComments}
}

func (e *Emitter) Err() error {
	return e.err
}

// emitf writes one instruction. Text after ';' is a comment.
func (e *Emitter) emitf(format string, args ...interface{}) {
	code := fmt.Sprintf(format, args...)
	if e.stripComments {
		if i := strings.IndexByte(code, ';'); i != -1 {
			code = strings.TrimSpace(code[:i])
		}
	}
	e.writeOutput("       " + code)
}

// label places name on a no-op so it can be a branch target.
func (e *Emitter) label(name string) {
	e.writeOutput(fmt.Sprintf("#%s: mov 0 0", name))
}

func (e *Emitter) newLabel(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, e.labelNumber)
	e.labelNumber++
	return name
}

func (e *Emitter) writeOutput(output string) {
	if e.err != nil {
		return
	}
	output += "\n"
	for i := 0; i < len(output); {
		l, err := e.writer.Write([]byte(output[i:]))
		if err != nil {
			e.err = err
			return
		}
		i += l
	}
}

// push stores register r on the stack top.
func (e *Emitter) push(r int) {
	e.emitf("str %d 0 %d", regSP, r)
	e.decSP()
}

// decSP grows the stack and halts when it meets the heap.
func (e *Emitter) decSP() {
	ok := e.newLabel("spOK")
	e.emitf("mov 4 1")
	e.emitf("sub %d %d 4 ; SP--", regSP, regSP)
	e.emitf("blt %d %d #%s ; branch if HP<SP", regHP, regSP, ok)
	e.emitf("mov 4 %d ; out of stack memory", haltOutOfMemory)
	e.emitf("hlt 4")
	e.label(ok)
}

// incSP pops the stack top.
func (e *Emitter) incSP() {
	e.emitf("mov 4 1")
	e.emitf("add %d %d 4 ; SP++", regSP, regSP)
}

func (e *Emitter) haltWith(code int, comment string) {
	e.emitf("mov 1 %d ; %s", code, comment)
	e.emitf("hlt 1")
}

// haltIfZero halts with code when register r is zero and otherwise falls through.
func (e *Emitter) haltIfZero(r int, code int, comment string) {
	fail := e.newLabel("fail")
	ok := e.newLabel("ok")
	e.emitf("beq %d 0 #%s", r, fail)
	e.emitf("jmp 0 #%s", ok)
	e.label(fail)
	e.haltWith(code, comment)
	e.label(ok)
}

// checkNullDereference halts when the stack top is null.
func (e *Emitter) checkNullDereference() {
	e.emitf("lod 1 %d 1 ; r1 = M[SP+1]", regSP)
	e.haltIfZero(1, haltNullDereference, "null pointer dereference")
}

// frameAddress leaves FP-offset in register r.
func (e *Emitter) frameAddress(r int, offset int) {
	e.emitf("mov %d %d", r, offset)
	e.emitf("sub %d %d %d", r, regFP, r)
}
