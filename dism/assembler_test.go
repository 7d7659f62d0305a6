package dism

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

func TestTrimLine(t *testing.T) {
	asm := CreateAssembler()
	testData := []struct {
		line      string
		trimmed   string
		remaining bool
	}{
		{"  mov 1 2  ", "mov 1 2", true},
		{"mov 1 2 ; comment", "mov 1 2", true},
		{"; only a comment", "", false},
		{"   ", "", false},
		{"#l: mov 0 0 ;x", "#l: mov 0 0", true},
	}
	for _, data := range testData {
		line, ok := asm.trimLine([]byte(data.line))
		assert.Equal(t, data.remaining, ok, data.line)
		assert.Equal(t, data.trimmed, string(line))
	}
}

func TestParseInstructions(t *testing.T) {
	testData := []struct {
		code string
		op   Opcode
		args [3]int
	}{
		{"mov 1 5", OpMov, [3]int{1, 5, 0}},
		{"add 6 6 1", OpAdd, [3]int{6, 6, 1}},
		{"sub 3 7 3", OpSub, [3]int{3, 7, 3}},
		{"mul 1 1 2", OpMul, [3]int{1, 1, 2}},
		{"jmp 2 0", OpJmp, [3]int{2, 0, 0}},
		{"beq 1 0 4", OpBeq, [3]int{1, 0, 4}},
		{"blt 5 6 9", OpBlt, [3]int{5, 6, 9}},
		{"lod 1 6 1", OpLod, [3]int{1, 6, 1}},
		{"str 6 0 1", OpStr, [3]int{6, 0, 1}},
		{"rdn 1", OpRdn, [3]int{1, 0, 0}},
		{"ptn 1", OpPtn, [3]int{1, 0, 0}},
		{"hlt 0", OpHlt, [3]int{0, 0, 0}},
	}
	for _, data := range testData {
		program, err := Assemble(strings.NewReader(data.code))
		assert.Nil(t, err, data.code)
		assert.Equal(t, 1, len(program))
		assert.Equal(t, data.op, program[0].Op)
		assert.Equal(t, data.args, program[0].Args)
	}
}

func TestParseLabels(t *testing.T) {
	code := `
mov 1 #end   ; forward reference
#loop: mov 0 0
jmp 0 #loop
#end: hlt 0
`
	asm := CreateAssembler()
	program, err := asm.Parse(strings.NewReader(code))
	assert.Nil(t, err)
	assert.Equal(t, 4, len(program))
	assert.Equal(t, 3, program[0].Args[1])
	assert.Equal(t, 1, program[2].Args[1])
	addr, ok := asm.Label("loop")
	assert.True(t, ok)
	assert.Equal(t, 1, addr)
}

func TestParseErrors(t *testing.T) {
	testData := []struct {
		code string
		msg  string
	}{
		{"foo 1", "syntax err at line 1: unknown instruction foo"},
		{"mov 1", "syntax err at line 1: mov takes 2 operands, got 1"},
		{"mov 9 1", "syntax err at line 1: wrong register 9"},
		{"mov 1 x", "syntax err at line 1: wrong immediate x"},
		{"mov 1 -3", "syntax err at line 1: wrong immediate -3"},
		{"add 1 -0 2", "syntax err at line 1: wrong register -0"},
		{"hlt 0\njmp 0 #nowhere", "syntax err at line 2: undefined label #nowhere"},
		{"#a: mov 0 0\n#a: mov 0 0", "syntax err at line 2: found duplicate label #a"},
		{"#1a: mov 0 0", "syntax err at line 1: wrong label format #1a"},
		{"#a mov 0 0", "syntax err at line 1: label definition without ':'"},
	}
	for _, data := range testData {
		_, err := Assemble(strings.NewReader(data.code))
		assert.NotNil(t, err, data.code)
		if err != nil {
			assert.Equal(t, data.msg, err.Error())
		}
	}
}

func TestRunProgram(t *testing.T) {
	code := `
rdn 1
mov 2 3
mul 1 1 2
ptn 1
mov 3 7
hlt 3
`
	out := &bytes.Buffer{}
	result, err := RunProgram(strings.NewReader(code), 100, 0, strings.NewReader("14\n"), out)
	assert.Nil(t, err)
	assert.Equal(t, 7, result.ExitCode)
	assert.Equal(t, 6, result.Steps)
	assert.Equal(t, "42\n", out.String())
}

func TestRunMemoryAndBranches(t *testing.T) {
	// Sums 1..5 through memory cell 10.
	code := `
mov 1 0
mov 2 5
mov 3 1
#loop: beq 2 0 #done
lod 4 0 10
add 4 4 2
str 0 10 4
sub 2 2 3
jmp 0 #loop
#done: lod 1 0 10
ptn 1
hlt 0
`
	out := &bytes.Buffer{}
	result, err := RunProgram(strings.NewReader(code), 100, 1000, strings.NewReader(""), out)
	assert.Nil(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "15\n", out.String())
}

func TestMachineState(t *testing.T) {
	program, err := Assemble(strings.NewReader("mov 1 9\nmov 2 3\nstr 2 4 1\nmov 6 12\nhlt 0"))
	assert.Nil(t, err)
	m := NewMachine(10, strings.NewReader(""), &bytes.Buffer{})
	_, err = m.Run(program)
	assert.Nil(t, err)
	assert.Equal(t, 9, m.Memory(7))
	assert.Equal(t, 0, m.Memory(8))
	assert.Equal(t, 12, m.Register(6))
}

func TestRunFaults(t *testing.T) {
	testData := []struct {
		code string
		err  string
	}{
		{"mov 1 500\nlod 2 1 0\nhlt 0", "address 500 out of range"},
		{"mov 1 50\njmp 1 0", "pc outside of the program"},
		{"rdn 1\nhlt 0", "cannot read a number"},
	}
	for _, data := range testData {
		_, err := RunProgram(strings.NewReader(data.code), 100, 0, strings.NewReader(""), &bytes.Buffer{})
		assert.NotNil(t, err, data.code)
		if err != nil {
			assert.Contains(t, err.Error(), data.err)
		}
	}
}

func TestStepLimit(t *testing.T) {
	_, err := RunProgram(strings.NewReader("#l: jmp 0 #l"), 10, 50, strings.NewReader(""), &bytes.Buffer{})
	assert.Equal(t, ErrStepLimit, err)
}

func TestRegisterZeroIsConstant(t *testing.T) {
	program, err := Assemble(strings.NewReader("mov 0 5\nhlt 0"))
	assert.Nil(t, err)
	m := NewMachine(10, strings.NewReader(""), &bytes.Buffer{})
	result, err := m.Run(program)
	assert.Nil(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 0, m.Register(0))
}
