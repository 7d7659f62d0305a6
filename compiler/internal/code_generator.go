package internal

import (
	"fmt"
	"io"
)

// GenOptions controls the shape of the generated DISM text.
type GenOptions struct {
	// MaxAddress is the highest memory address; the stack starts there.
	MaxAddress    int
	StripComments bool
}

type codeGenerator struct {
	p          *Program
	e          *Emitter
	maxAddress int
}

// Generate lowers a checked program to DISM: the main block first, then one body per class method, then the
// dispatch table when any method call was generated.
func Generate(p *Program, writer io.Writer, opts GenOptions) error {
	if !p.checked {
		return makeInternalError("code generation on an unchecked program")
	}
	if opts.MaxAddress < MinMaxAddress {
		return makeInternalError("max address %d is below %d", opts.MaxAddress, MinMaxAddress)
	}
	g := &codeGenerator{p: p, e: NewEmitter(writer, opts.StripComments), maxAddress: opts.MaxAddress}
	err := g.generateMainCode()
	if err != nil {
		return err
	}
	for i := 1; i < len(p.Classes); i++ {
		for j := range p.Classes[i].Methods {
			err = g.generateMethodCode(i, j)
			if err != nil {
				return err
			}
		}
	}
	if g.e.needVtable {
		g.generateVtable()
	}
	return g.e.Err()
}

func methodLabel(class, method int) string {
	return fmt.Sprintf("C%dM%d", class, method)
}

func (g *codeGenerator) generateMainCode() error {
	g.e.emitf("mov %d %d ; initialize FP", regFP, g.maxAddress)
	g.e.emitf("mov %d %d ; initialize SP", regSP, g.maxAddress)
	g.e.emitf("mov %d 1 ; initialize HP", regHP)
	for range g.p.MainLocals {
		g.e.push(regZero)
	}
	err := g.generateExprListCode(g.p.MainBody, MainScope())
	if err != nil {
		return err
	}
	g.e.emitf("hlt %d ; end of main block", haltOK)
	return nil
}

// Method frame, offsets below FP: 0 return address, 1 this, 2 static class, 3 static method, 4 argument,
// 5+i local i, 5+n the caller's FP.
func (g *codeGenerator) generateMethodCode(class, index int) error {
	method := g.p.method(class, index)
	n := len(method.Locals)
	g.e.label(methodLabel(class, index))
	for range method.Locals {
		g.e.push(regZero)
	}
	g.e.emitf("str %d 0 %d ; save caller FP", regSP, regFP)
	g.e.decSP()
	g.e.emitf("mov 1 %d", n+6)
	g.e.emitf("add %d %d 1 ; FP points at the return address", regFP, regSP)
	err := g.generateExprListCode(method.Body, MethodScope(class, index))
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 1 ; r1 = result", regSP)
	g.e.emitf("lod 2 %d 0 ; r2 = return address", regFP)
	g.e.emitf("str %d 0 1 ; result replaces the return address", regFP)
	g.e.frameAddress(3, 5+n)
	g.e.emitf("lod 3 3 0 ; r3 = caller FP")
	g.e.emitf("mov 4 1")
	g.e.emitf("sub %d %d 4 ; SP = FP - 1", regSP, regFP)
	g.e.emitf("add %d 3 0 ; restore FP", regFP)
	g.e.emitf("jmp 2 0 ; return")
	return nil
}

// generateExprListCode leaves only the value of the last expression on the stack.
func (g *codeGenerator) generateExprListCode(list *Node, scope Scope) error {
	if len(list.Children) == 0 {
		g.e.push(regZero)
		return nil
	}
	for i, expr := range list.Children {
		if i > 0 {
			g.e.incSP()
		}
		err := g.generateExprCode(expr, scope)
		if err != nil {
			return err
		}
	}
	return nil
}

// generateExprCode pushes exactly one value for expr.
func (g *codeGenerator) generateExprCode(expr *Node, scope Scope) error {
	switch expr.Kind {
	case NatLiteralExprKind:
		g.e.emitf("mov 1 %d", expr.Nat)
		g.e.push(1)
	case NullExprKind:
		g.e.push(regZero)
	case ReadExprKind:
		g.e.emitf("rdn 1")
		g.e.push(1)
	case ThisExprKind:
		g.generateThisCode()
	case NewExprKind:
		g.generateNewCode(expr.StaticClass)
	case IDExprKind:
		return g.generateIDCode(expr, scope)
	case AssignExprKind:
		return g.generateAssignCode(expr, scope)
	case DotIDExprKind:
		return g.generateDotIDCode(expr, scope)
	case DotAssignExprKind:
		return g.generateDotAssignCode(expr, scope)
	case MethodCallExprKind:
		return g.generateCallCode(expr, scope, nil, expr.Children[1])
	case DotMethodCallExprKind:
		return g.generateCallCode(expr, scope, expr.Children[0], expr.Children[2])
	case PlusExprKind:
		return g.generateArithmeticCode(expr, scope, "add")
	case MinusExprKind:
		return g.generateArithmeticCode(expr, scope, "sub")
	case TimesExprKind:
		return g.generateArithmeticCode(expr, scope, "mul")
	case EqualityExprKind:
		return g.generateCompareCode(expr, scope, "beq")
	case LessThanExprKind:
		return g.generateCompareCode(expr, scope, "blt")
	case NotExprKind:
		return g.generateNotCode(expr, scope)
	case OrExprKind:
		return g.generateOrCode(expr, scope)
	case AssertExprKind:
		return g.generateAssertCode(expr, scope)
	case PrintExprKind:
		err := g.generateExprCode(expr.Children[0], scope)
		if err != nil {
			return err
		}
		g.e.emitf("lod 1 %d 1", regSP)
		g.e.emitf("ptn 1")
	case IfThenElseExprKind:
		return g.generateIfCode(expr, scope)
	case WhileExprKind:
		return g.generateWhileCode(expr, scope)
	default:
		return makeInternalError("cannot generate code for %s at line %d", expr, expr.Line)
	}
	return nil
}

func (g *codeGenerator) generateThisCode() {
	g.e.frameAddress(2, 1)
	g.e.emitf("lod 1 2 0 ; r1 = this")
	g.e.push(1)
}

// generateNewCode allocates the tag word and every field slot, zeroed, on the heap.
func (g *codeGenerator) generateNewCode(class int) {
	n := g.p.numFields(class)
	fail := g.e.newLabel("oom")
	ok := g.e.newLabel("alloc")
	g.e.emitf("mov 1 %d", n+1)
	g.e.emitf("add 1 %d 1 ; r1 = new HP", regHP)
	g.e.emitf("blt %d 1 #%s ; would overlap the stack", regSP, fail)
	g.e.emitf("jmp 0 #%s", ok)
	g.e.label(fail)
	g.e.haltWith(haltOutOfMemory, "out of heap memory")
	g.e.label(ok)
	g.e.emitf("mov 2 %d", class)
	g.e.emitf("str %d 0 2 ; class tag", regHP)
	for i := 1; i <= n; i++ {
		g.e.emitf("str %d %d 0", regHP, i)
	}
	g.e.emitf("str %d 0 %d ; push object address", regSP, regHP)
	g.e.emitf("add %d 1 0 ; HP = r1", regHP)
	g.e.decSP()
}

// generateVarAddressCode leaves the address of a variable in r2. It uses r3.
func (g *codeGenerator) generateVarAddressCode(expr *Node, scope Scope) error {
	name := expr.Children[0].ID
	ref, ok := g.p.lookupVar(scope, name)
	if !ok {
		return makeInternalError("variable %s at line %d was not resolved by the checker", name, expr.Line)
	}
	switch ref.kind {
	case mainLocalVar:
		g.e.frameAddress(2, ref.index)
	case paramVar:
		g.e.frameAddress(2, 4)
	case localVar:
		g.e.frameAddress(2, 5+ref.index)
	case fieldVar:
		g.e.frameAddress(2, 1)
		g.e.emitf("lod 2 2 0 ; r2 = this")
		g.e.emitf("mov 3 %d", g.p.fieldOffset(ref.class, ref.index))
		g.e.emitf("add 2 2 3 ; r2 = address of field %s", name)
	}
	return nil
}

func (g *codeGenerator) generateIDCode(expr *Node, scope Scope) error {
	err := g.generateVarAddressCode(expr, scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 2 0")
	g.e.push(1)
	return nil
}

func (g *codeGenerator) generateAssignCode(expr *Node, scope Scope) error {
	err := g.generateExprCode(expr.Children[1], scope)
	if err != nil {
		return err
	}
	err = g.generateVarAddressCode(expr, scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 1", regSP)
	g.e.emitf("str 2 0 1 ; assign %s", expr.Children[0].ID)
	return nil
}

// generateReceiverCode pushes the receiver, checking it against null unless it cannot be null.
func (g *codeGenerator) generateReceiverCode(recv *Node, scope Scope) error {
	err := g.generateExprCode(recv, scope)
	if err != nil {
		return err
	}
	if recv.Kind != NewExprKind && recv.Kind != ThisExprKind {
		g.e.checkNullDereference()
	}
	return nil
}

func (g *codeGenerator) generateDotIDCode(expr *Node, scope Scope) error {
	err := g.generateReceiverCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 1 ; r1 = object", regSP)
	g.e.emitf("mov 2 %d", g.p.fieldOffset(expr.StaticClass, expr.StaticMember))
	g.e.emitf("add 1 1 2")
	g.e.emitf("lod 1 1 0 ; r1 = field %s", expr.Children[1].ID)
	g.e.emitf("str %d 1 1 ; replace object with field value", regSP)
	return nil
}

func (g *codeGenerator) generateDotAssignCode(expr *Node, scope Scope) error {
	err := g.generateReceiverCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	err = g.generateExprCode(expr.Children[2], scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 1 ; r1 = value", regSP)
	g.e.emitf("lod 2 %d 2 ; r2 = object", regSP)
	g.e.emitf("mov 3 %d", g.p.fieldOffset(expr.StaticClass, expr.StaticMember))
	g.e.emitf("add 2 2 3")
	g.e.emitf("str 2 0 1 ; store field %s", expr.Children[1].ID)
	g.e.incSP()
	g.e.emitf("str %d 1 1 ; replace object with value", regSP)
	return nil
}

// generateCallCode pushes the return label, the receiver, the static class and method numbers and the argument,
// then enters the dispatch table. A nil recv means this.
func (g *codeGenerator) generateCallCode(expr *Node, scope Scope, recv *Node, arg *Node) error {
	g.e.needVtable = true
	ret := g.e.newLabel("ret")
	g.e.emitf("mov 1 #%s", ret)
	g.e.push(1)
	if recv == nil {
		g.generateThisCode()
	} else {
		err := g.generateReceiverCode(recv, scope)
		if err != nil {
			return err
		}
	}
	g.e.emitf("mov 1 %d ; static class", expr.StaticClass)
	g.e.push(1)
	g.e.emitf("mov 1 %d ; static method", expr.StaticMember)
	g.e.push(1)
	err := g.generateExprCode(arg, scope)
	if err != nil {
		return err
	}
	g.e.emitf("jmp 0 #%s", vtableLabel)
	g.e.label(ret)
	return nil
}

func (g *codeGenerator) generateOperandsCode(expr *Node, scope Scope) error {
	err := g.generateExprCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	err = g.generateExprCode(expr.Children[1], scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 2", regSP)
	g.e.emitf("lod 2 %d 1", regSP)
	return nil
}

func (g *codeGenerator) generateArithmeticCode(expr *Node, scope Scope, op string) error {
	err := g.generateOperandsCode(expr, scope)
	if err != nil {
		return err
	}
	g.e.emitf("%s 1 1 2", op)
	g.e.emitf("str %d 2 1", regSP)
	g.e.incSP()
	return nil
}

// generateCompareCode writes 1 when the branch is taken and 0 otherwise.
func (g *codeGenerator) generateCompareCode(expr *Node, scope Scope, branch string) error {
	err := g.generateOperandsCode(expr, scope)
	if err != nil {
		return err
	}
	trueLabel := g.e.newLabel("true")
	endLabel := g.e.newLabel("end")
	g.e.emitf("%s 1 2 #%s", branch, trueLabel)
	g.e.emitf("mov 3 0")
	g.e.emitf("jmp 0 #%s", endLabel)
	g.e.label(trueLabel)
	g.e.emitf("mov 3 1")
	g.e.label(endLabel)
	g.e.emitf("str %d 2 3", regSP)
	g.e.incSP()
	return nil
}

func (g *codeGenerator) generateNotCode(expr *Node, scope Scope) error {
	err := g.generateExprCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	trueLabel := g.e.newLabel("true")
	endLabel := g.e.newLabel("end")
	g.e.emitf("lod 1 %d 1", regSP)
	g.e.emitf("beq 1 0 #%s", trueLabel)
	g.e.emitf("mov 2 0")
	g.e.emitf("jmp 0 #%s", endLabel)
	g.e.label(trueLabel)
	g.e.emitf("mov 2 1")
	g.e.label(endLabel)
	g.e.emitf("str %d 1 2", regSP)
	return nil
}

// generateOrCode skips the right operand when the left one is nonzero. The result is 0 or 1.
func (g *codeGenerator) generateOrCode(expr *Node, scope Scope) error {
	err := g.generateExprCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	rightLabel := g.e.newLabel("orRight")
	endLabel := g.e.newLabel("end")
	g.e.emitf("lod 1 %d 1", regSP)
	g.e.emitf("beq 1 0 #%s", rightLabel)
	g.e.emitf("mov 1 1")
	g.e.emitf("str %d 1 1", regSP)
	g.e.emitf("jmp 0 #%s", endLabel)
	g.e.label(rightLabel)
	g.e.incSP()
	err = g.generateExprCode(expr.Children[1], scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 1", regSP)
	g.e.emitf("beq 1 0 #%s", endLabel)
	g.e.emitf("mov 1 1")
	g.e.emitf("str %d 1 1", regSP)
	g.e.label(endLabel)
	return nil
}

func (g *codeGenerator) generateAssertCode(expr *Node, scope Scope) error {
	err := g.generateExprCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 1", regSP)
	g.e.haltIfZero(1, haltAssertFailed, fmt.Sprintf("assertion at line %d failed", expr.Line))
	return nil
}

func (g *codeGenerator) generateIfCode(expr *Node, scope Scope) error {
	err := g.generateExprCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	elseLabel := g.e.newLabel("else")
	endLabel := g.e.newLabel("end")
	g.e.emitf("lod 1 %d 1 ; r1 = condition", regSP)
	g.e.incSP()
	g.e.emitf("beq 1 0 #%s", elseLabel)
	err = g.generateExprListCode(expr.Children[1], scope)
	if err != nil {
		return err
	}
	g.e.emitf("jmp 0 #%s", endLabel)
	g.e.label(elseLabel)
	err = g.generateExprListCode(expr.Children[2], scope)
	if err != nil {
		return err
	}
	g.e.label(endLabel)
	return nil
}

// generateWhileCode drops the body value of every iteration and pushes 0 when the loop ends.
func (g *codeGenerator) generateWhileCode(expr *Node, scope Scope) error {
	topLabel := g.e.newLabel("while")
	endLabel := g.e.newLabel("end")
	g.e.label(topLabel)
	err := g.generateExprCode(expr.Children[0], scope)
	if err != nil {
		return err
	}
	g.e.emitf("lod 1 %d 1 ; r1 = condition", regSP)
	g.e.incSP()
	g.e.emitf("beq 1 0 #%s", endLabel)
	err = g.generateExprListCode(expr.Children[1], scope)
	if err != nil {
		return err
	}
	g.e.incSP()
	g.e.emitf("jmp 0 #%s", topLabel)
	g.e.label(endLabel)
	g.e.push(regZero)
	return nil
}
