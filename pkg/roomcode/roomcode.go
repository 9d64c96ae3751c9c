package roomcode

import (
	"math/rand"
	"strconv"
)

const Length = 6

// Generator produces random 6-digit room codes. Codes are drawn uniformly
// from [100000, 999999]; uniqueness among active rooms is the caller's job.
type Generator struct {
	intN func(n int) int
}

func NewGenerator() *Generator {
	return &Generator{intN: rand.Intn}
}

func (g *Generator) Generate() string {
	return strconv.Itoa(100000 + g.intN(900000))
}

// Validate reports whether code is exactly 6 ASCII digits.
func Validate(code string) bool {
	if len(code) != Length {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
