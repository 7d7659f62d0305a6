package internal

import "fmt"

// Scope is where an expression sits: the main block or a method of a class.
type Scope struct {
	inMethod bool
	class    int
	method   int
}

func MainScope() Scope {
	return Scope{}
}

func MethodScope(class, method int) Scope {
	return Scope{inMethod: true, class: class, method: method}
}

func (s Scope) InMethod() bool {
	return s.inMethod
}

func (s Scope) Class() int {
	return s.class
}

func (s Scope) Method() int {
	return s.method
}

// annotation is the (class, method) pair recorded on identifier nodes. The main block records (0, 0); Object has
// no methods so the pair is never ambiguous.
func (s Scope) annotation() (int, int) {
	if !s.inMethod {
		return 0, 0
	}
	return s.class, s.method
}

func (s Scope) String() string {
	if !s.inMethod {
		return "main"
	}
	return fmt.Sprintf("class %d method %d", s.class, s.method)
}
