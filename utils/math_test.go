package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMath_MinMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(-1.5, Min(-1.5, 0.0))
	assert.Equal(3, Abs(-3))
}

func TestMath_Clamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1.0, Clamp(2.0, 0, 1))
	assert.Equal(0.0, Clamp(-0.3, 0, 1))
	assert.Equal(0.25, Clamp(0.25, 0, 1))
}

func TestMath_Contains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]string{"a", "b"}, "c"))
}
