package shamir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulMatchesReference(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			require.Equal(t, mulSlow(uint8(a), uint8(b)), mul(uint8(a), uint8(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestDivIsInverseOfMul(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			require.Equal(t, uint8(a), mul(div(uint8(a), uint8(b)), uint8(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestDivByZeroPanics(t *testing.T) {
	assert.Panics(t, func() { div(1, 0) })
}

func TestKnownProducts(t *testing.T) {
	// FIPS-197 section 4.2 example.
	assert.Equal(t, uint8(0xc1), mul(0x57, 0x83))
	assert.Equal(t, uint8(0xfe), mul(0x57, 0x13))
}

func TestEvaluate(t *testing.T) {
	assert.Equal(t, uint8(0x2a), evaluate([]uint8{0x2a}, 7))
	// 5 + 3x at x = 2 is 5 ^ mul(3, 2) = 5 ^ 6 = 3
	assert.Equal(t, uint8(3), evaluate([]uint8{5, 3}, 2))
	assert.Equal(t, uint8(0x11), evaluate([]uint8{0x11, 0xff, 0x42}, 0))
}
