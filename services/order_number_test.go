package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber_Format(t *testing.T) {
	number, err := GenerateOrderNumber()
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(number, "ORD-"))
	assert.Len(t, number, 14)

	for _, ch := range number[4:] {
		assert.Contains(t, orderNumberAlphabet, string(ch))
	}
}

func TestGenerateOrderNumber_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		number, err := GenerateOrderNumber()
		assert.NoError(t, err)
		assert.False(t, seen[number], "generated a duplicate order number: %s", number)
		seen[number] = true
	}
}
