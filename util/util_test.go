package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestIsIdentifier(t *testing.T) {
	testData := []struct {
		s  string
		ok bool
	}{
		{"a", true},
		{"Object", true},
		{"_tmp1", true},
		{"C1M2", true},
		{"", false},
		{"1abc", false},
		{"a-b", false},
		{"a b", false},
	}
	for _, data := range testData {
		assert.Equal(t, data.ok, IsIdentifier(data.s), data.s)
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("0"))
	assert.True(t, IsNumeric("65535"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("-1"))
	assert.False(t, IsNumeric("12a"))
}
