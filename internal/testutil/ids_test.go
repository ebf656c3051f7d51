package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedIDGenerator("run-1")
	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-1", gen.Generate())
}

func TestFixedIDGenerator_Default(t *testing.T) {
	gen := NewFixedIDGenerator("")
	assert.Equal(t, "test-run-default", gen.Generate())
}
