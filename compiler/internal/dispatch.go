package internal

import "fmt"

const (
	vtableLabel     = "VTABLE"
	vtableFailLabel = "VTFAIL"
)

// generateVtable emits the dispatch routine every method call jumps to. On entry the stack holds, from the top,
// the argument, the static method, the static class, the receiver and the return label. The routine compares the
// receiver's class tag, then the static class, then the static method, and jumps into the body that the dynamic
// class inherits or overrides for that method name.
func (g *codeGenerator) generateVtable() {
	g.e.label(vtableLabel)
	g.e.emitf("lod 1 %d 4 ; r1 = receiver", regSP)
	g.e.emitf("lod 1 1 0 ; r1 = dynamic class")
	g.e.emitf("lod 2 %d 3 ; r2 = static class", regSP)
	g.e.emitf("lod 3 %d 2 ; r3 = static method", regSP)

	var dynamicClasses []int
	for d := 0; d < len(g.p.Classes); d++ {
		if len(g.staticClassesOf(d)) > 0 {
			dynamicClasses = append(dynamicClasses, d)
		}
	}
	for _, d := range dynamicClasses {
		g.e.emitf("mov 4 %d", d)
		g.e.emitf("beq 1 4 #%s", dynamicLabel(d))
	}
	g.e.emitf("jmp 0 #%s", vtableFailLabel)

	for _, d := range dynamicClasses {
		g.e.label(dynamicLabel(d))
		statics := g.staticClassesOf(d)
		for _, s := range statics {
			g.e.emitf("mov 4 %d", s)
			g.e.emitf("beq 2 4 #%s", staticLabel(d, s))
		}
		g.e.emitf("jmp 0 #%s", vtableFailLabel)
		for _, s := range statics {
			g.e.label(staticLabel(d, s))
			for m, method := range g.p.Classes[s].Methods {
				class, index, _ := g.p.lookupMethod(d, method.Name)
				g.e.emitf("mov 4 %d", m)
				g.e.emitf("beq 3 4 #%s ; %s.%s", methodLabel(class, index), g.p.Classes[class].Name, method.Name)
			}
			g.e.emitf("jmp 0 #%s", vtableFailLabel)
		}
	}
	g.e.label(vtableFailLabel)
	g.e.haltWith(haltNoMethod, "no matching method")
}

// staticClassesOf lists the classes on d's superclass chain, d included, that declare at least one method.
// Only those can be the static class of a call on a receiver of class d.
func (g *codeGenerator) staticClassesOf(d int) []int {
	var ret []int
	for steps := 0; g.p.isClass(d) && steps < len(g.p.Classes); steps++ {
		if len(g.p.Classes[d].Methods) > 0 {
			ret = append(ret, d)
		}
		d = g.p.Classes[d].Super
	}
	return ret
}

func dynamicLabel(d int) string {
	return fmt.Sprintf("VT%d", d)
}

func staticLabel(d, s int) string {
	return fmt.Sprintf("VT%d_%d", d, s)
}
