package dism

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var ErrStepLimit = errors.New("step limit exceeded")

// RuntimeError is a machine fault: a bad address, a bad jump target or unreadable input.
type RuntimeError struct {
	PC   int
	Line int
	Msg  string
}

func (err *RuntimeError) Error() string {
	return fmt.Sprintf("runtime err at pc %d (line %d): %s", err.PC, err.Line, err.Msg)
}

type Result struct {
	// ExitCode is the value of the register named by the hlt instruction.
	ExitCode int
	Steps    int
}

// Machine simulates DISM: eight registers, r0 always reads 0, and word memory from 0 to the max address.
type Machine struct {
	mem      []int
	regs     [NumRegisters]int
	pc       int
	in       *bufio.Reader
	out      io.Writer
	maxSteps int
}

func NewMachine(maxAddress int, in io.Reader, out io.Writer) *Machine {
	return &Machine{
		mem: make([]int, maxAddress+1),
		in:  bufio.NewReader(in),
		out: out,
	}
}

// SetMaxSteps bounds Run; zero means no bound.
func (m *Machine) SetMaxSteps(n int) {
	m.maxSteps = n
}

func (m *Machine) Register(r int) int {
	return m.regs[r]
}

func (m *Machine) Memory(addr int) int {
	return m.mem[addr]
}

// Run executes program from instruction 0 until hlt.
func (m *Machine) Run(program []Instruction) (*Result, error) {
	m.pc = 0
	for steps := 0; ; steps++ {
		if m.maxSteps > 0 && steps >= m.maxSteps {
			return &Result{Steps: steps}, ErrStepLimit
		}
		if m.pc < 0 || m.pc >= len(program) {
			return nil, &RuntimeError{PC: m.pc, Msg: "pc outside of the program"}
		}
		instr := program[m.pc]
		halted, err := m.step(instr)
		if err != nil {
			return nil, err
		}
		if halted {
			return &Result{ExitCode: m.regs[instr.Args[0]], Steps: steps + 1}, nil
		}
	}
}

func (m *Machine) set(r, value int) {
	if r != 0 {
		m.regs[r] = value
	}
}

func (m *Machine) address(instr Instruction, addr int) (int, error) {
	if addr < 0 || addr >= len(m.mem) {
		return 0, &RuntimeError{PC: m.pc, Line: instr.Line, Msg: fmt.Sprintf("address %d out of range", addr)}
	}
	return addr, nil
}

func (m *Machine) step(instr Instruction) (bool, error) {
	a, r := instr.Args, &m.regs
	next := m.pc + 1
	switch instr.Op {
	case OpMov:
		m.set(a[0], a[1])
	case OpAdd:
		m.set(a[0], r[a[1]]+r[a[2]])
	case OpSub:
		m.set(a[0], r[a[1]]-r[a[2]])
	case OpMul:
		m.set(a[0], r[a[1]]*r[a[2]])
	case OpJmp:
		next = r[a[0]] + a[1]
	case OpBeq:
		if r[a[0]] == r[a[1]] {
			next = a[2]
		}
	case OpBlt:
		if r[a[0]] < r[a[1]] {
			next = a[2]
		}
	case OpLod:
		addr, err := m.address(instr, r[a[1]]+a[2])
		if err != nil {
			return false, err
		}
		m.set(a[0], m.mem[addr])
	case OpStr:
		addr, err := m.address(instr, r[a[0]]+a[1])
		if err != nil {
			return false, err
		}
		m.mem[addr] = r[a[2]]
	case OpRdn:
		var value int
		if _, err := fmt.Fscan(m.in, &value); err != nil {
			return false, &RuntimeError{PC: m.pc, Line: instr.Line, Msg: fmt.Sprintf("cannot read a number: %v", err)}
		}
		m.set(a[0], value)
	case OpPtn:
		fmt.Fprintln(m.out, r[a[0]])
	case OpHlt:
		return true, nil
	default:
		return false, &RuntimeError{PC: m.pc, Line: instr.Line, Msg: fmt.Sprintf("unknown opcode %d", instr.Op)}
	}
	m.pc = next
	return false, nil
}

// RunProgram assembles DISM text and runs it.
func RunProgram(rd io.Reader, maxAddress, maxSteps int, in io.Reader, out io.Writer) (*Result, error) {
	program, err := Assemble(rd)
	if err != nil {
		return nil, err
	}
	m := NewMachine(maxAddress, in, out)
	m.SetMaxSteps(maxSteps)
	return m.Run(program)
}
