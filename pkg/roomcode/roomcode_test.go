package roomcode

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 1000; i++ {
		code := g.Generate()
		require.True(t, Validate(code), "generated code %q must validate", code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateCoversRange(t *testing.T) {
	g := &Generator{intN: func(int) int { return 0 }}
	assert.Equal(t, "100000", g.Generate())

	g = &Generator{intN: func(n int) int { return n - 1 }}
	assert.Equal(t, "999999", g.Generate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"482193", true},
		{"100000", true},
		{"999999", true},
		{"000000", true},
		{"", false},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"abcdef", false},
		{"12 456", false},
		{"12345\x00", false},
		{"１２３４５６", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, Validate(tt.code), "code %q", tt.code)
	}
}
