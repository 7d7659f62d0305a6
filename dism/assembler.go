package dism

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xiaobogaga/djc/util"
)

// A two pass assembler for DISM text. Each line holds at most one instruction, optionally preceded by a label
// definition `#name:`. Immediates are decimal numbers or label references `#name`, which may be used before the
// label is defined. Everything after ';' is a comment.

type Opcode int

const (
	OpMov Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpJmp
	OpBeq
	OpBlt
	OpLod
	OpStr
	OpRdn
	OpPtn
	OpHlt
)

type operandKind int

const (
	regOperand operandKind = iota
	immOperand
)

type opcodeDesc struct {
	op       Opcode
	name     string
	operands []operandKind
}

var opcodeDescs = []opcodeDesc{
	{OpMov, "mov", []operandKind{regOperand, immOperand}},
	{OpAdd, "add", []operandKind{regOperand, regOperand, regOperand}},
	{OpSub, "sub", []operandKind{regOperand, regOperand, regOperand}},
	{OpMul, "mul", []operandKind{regOperand, regOperand, regOperand}},
	{OpJmp, "jmp", []operandKind{regOperand, immOperand}},
	{OpBeq, "beq", []operandKind{regOperand, regOperand, immOperand}},
	{OpBlt, "blt", []operandKind{regOperand, regOperand, immOperand}},
	{OpLod, "lod", []operandKind{regOperand, regOperand, immOperand}},
	{OpStr, "str", []operandKind{regOperand, immOperand, regOperand}},
	{OpRdn, "rdn", []operandKind{regOperand}},
	{OpPtn, "ptn", []operandKind{regOperand}},
	{OpHlt, "hlt", []operandKind{regOperand}},
}

var opcodesByName = func() map[string]opcodeDesc {
	ret := map[string]opcodeDesc{}
	for _, desc := range opcodeDescs {
		ret[desc.name] = desc
	}
	return ret
}()

func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeDescs) {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
	return opcodeDescs[op].name
}

const NumRegisters = 8

type Instruction struct {
	Op   Opcode
	Args [3]int
	// Line is the source line, for diagnostics.
	Line            int
	OriginalContent string
}

func (instr Instruction) String() string {
	return fmt.Sprintf("Instruction: {Op: %s, Args: %v, Line: %d, OriginalContent: %s}", instr.Op, instr.Args,
		instr.Line, instr.OriginalContent)
}

type Assembler struct {
	line             int
	labelLocationMap map[string]int
	symbolLocations  []symbolLocation
	instructions     []Instruction
}

// symbolLocation is a label reference waiting for the second pass.
type symbolLocation struct {
	symbol      string
	instruction int
	arg         int
	line        int
}

func CreateAssembler() *Assembler {
	return &Assembler{
		line:             1,
		labelLocationMap: map[string]int{},
	}
}

// Parse reads DISM text and returns the program with every label reference replaced by the index of the
// instruction the label marks.
func (asm *Assembler) Parse(rd io.Reader) ([]Instruction, error) {
	bfReader := bufio.NewReader(rd)
	for {
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		trimmed, hasRemainCharacter := asm.trimLine(line)
		if hasRemainCharacter {
			if transformErr := asm.transformLine(trimmed); transformErr != nil {
				return nil, transformErr
			}
		}
		if err == io.EOF {
			break
		}
		asm.line++
	}
	err := asm.updateLabelReferences()
	if err != nil {
		return nil, err
	}
	return asm.instructions, nil
}

// Label returns the instruction index a label marks.
func (asm *Assembler) Label(name string) (int, bool) {
	addr, ok := asm.labelLocationMap[name]
	return addr, ok
}

// updateLabelReferences patches label immediates once every label definition is known.
func (asm *Assembler) updateLabelReferences() error {
	for _, loc := range asm.symbolLocations {
		addr, exist := asm.labelLocationMap[loc.symbol]
		if !exist {
			return asm.makeSyntaxErrAtSpecificLine(loc.line, fmt.Sprintf("undefined label #%s", loc.symbol))
		}
		asm.instructions[loc.instruction].Args[loc.arg] = addr
	}
	return nil
}

// trimLine drops the comment and surrounding space, then reports whether anything is left.
func (asm *Assembler) trimLine(line []byte) ([]byte, bool) {
	index := bytes.IndexByte(line, ';')
	if index != -1 {
		line = line[:index]
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false
	}
	return line, true
}

func (asm *Assembler) transformLine(line []byte) error {
	if line[0] == '#' {
		rest, err := asm.transformLabelDefinition(line)
		if err != nil || len(rest) == 0 {
			return err
		}
		line = rest
	}
	return asm.transformInstruction(line)
}

// transformLabelDefinition records `#name:` at the index of the next instruction and returns what follows it.
func (asm *Assembler) transformLabelDefinition(line []byte) ([]byte, error) {
	loc := bytes.IndexByte(line, ':')
	if loc == -1 {
		return nil, asm.makeSyntaxErr("label definition without ':'")
	}
	label := string(line[1:loc])
	if !util.IsIdentifier(label) {
		return nil, asm.makeSyntaxErr(fmt.Sprintf("wrong label format #%s", label))
	}
	if _, exist := asm.labelLocationMap[label]; exist {
		return nil, asm.makeSyntaxErr(fmt.Sprintf("found duplicate label #%s", label))
	}
	asm.labelLocationMap[label] = len(asm.instructions)
	return bytes.TrimSpace(line[loc+1:]), nil
}

func (asm *Assembler) transformInstruction(line []byte) error {
	fields := strings.Fields(string(line))
	desc, exist := opcodesByName[fields[0]]
	if !exist {
		return asm.makeSyntaxErr(fmt.Sprintf("unknown instruction %s", fields[0]))
	}
	if len(fields)-1 != len(desc.operands) {
		return asm.makeSyntaxErr(fmt.Sprintf("%s takes %d operands, got %d", desc.name, len(desc.operands),
			len(fields)-1))
	}
	instr := Instruction{Op: desc.op, Line: asm.line, OriginalContent: string(line)}
	for i, kind := range desc.operands {
		value, err := asm.parseOperand(kind, fields[i+1], i)
		if err != nil {
			return err
		}
		instr.Args[i] = value
	}
	asm.instructions = append(asm.instructions, instr)
	return nil
}

func (asm *Assembler) parseOperand(kind operandKind, field string, arg int) (int, error) {
	if kind == regOperand {
		reg, err := strconv.Atoi(field)
		if err != nil || !util.IsNumeric(field) || reg >= NumRegisters {
			return 0, asm.makeSyntaxErr(fmt.Sprintf("wrong register %s", field))
		}
		return reg, nil
	}
	if field[0] == '#' {
		if !util.IsIdentifier(field[1:]) {
			return 0, asm.makeSyntaxErr(fmt.Sprintf("wrong label reference %s", field))
		}
		asm.symbolLocations = append(asm.symbolLocations, symbolLocation{
			symbol:      field[1:],
			instruction: len(asm.instructions),
			arg:         arg,
			line:        asm.line,
		})
		return 0, nil
	}
	// Immediates are natural numbers.
	value, err := strconv.Atoi(field)
	if err != nil || !util.IsNumeric(field) {
		return 0, asm.makeSyntaxErr(fmt.Sprintf("wrong immediate %s", field))
	}
	return value, nil
}

func (asm *Assembler) makeSyntaxErr(msg string) error {
	return asm.makeSyntaxErrAtSpecificLine(asm.line, msg)
}

func (asm *Assembler) makeSyntaxErrAtSpecificLine(line int, msg string) error {
	return errors.New(fmt.Sprintf("syntax err at line %d: %s", line, msg))
}

// Assemble parses a whole DISM program.
func Assemble(rd io.Reader) ([]Instruction, error) {
	return CreateAssembler().Parse(rd)
}
