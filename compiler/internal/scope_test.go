package internal

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestScope(t *testing.T) {
	testData := []struct {
		scope    Scope
		inMethod bool
		class    int
		method   int
		name     string
	}{
		{MainScope(), false, 0, 0, "main"},
		{MethodScope(2, 1), true, 2, 1, "class 2 method 1"},
		{MethodScope(1, 0), true, 1, 0, "class 1 method 0"},
	}
	for _, data := range testData {
		assert.Equal(t, data.inMethod, data.scope.InMethod(), data.name)
		class, method := data.scope.annotation()
		assert.Equal(t, data.class, class, data.name)
		assert.Equal(t, data.method, method, data.name)
		assert.Equal(t, data.name, data.scope.String())
	}
}
