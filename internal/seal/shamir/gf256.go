package shamir

// Arithmetic in GF(2^8) with the AES reduction polynomial x^8 + x^4 + x^3 + x + 1.
// Addition and subtraction are both XOR.

var (
	expTable [510]uint8
	logTable [256]uint8
)

func init() {
	var x uint8 = 1
	for i := 0; i < 255; i++ {
		expTable[i] = x
		expTable[i+255] = x
		logTable[x] = uint8(i)
		x = mulSlow(x, 3)
	}
}

// mulSlow multiplies without tables; only used to build them.
func mulSlow(a, b uint8) uint8 {
	var p uint8
	for b > 0 {
		if b&1 != 0 {
			p ^= a
		}
		carry := a & 0x80
		a <<= 1
		if carry != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

func mul(a, b uint8) uint8 {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[int(logTable[a])+int(logTable[b])]
}

// div panics on division by zero; callers guarantee distinct non-zero x coordinates.
func div(a, b uint8) uint8 {
	if b == 0 {
		panic("shamir: division by zero")
	}
	if a == 0 {
		return 0
	}
	return expTable[int(logTable[a])+255-int(logTable[b])]
}

// evaluate computes the polynomial with the given coefficients (constant term first) at x
// using Horner's method.
func evaluate(coefficients []uint8, x uint8) uint8 {
	var result uint8
	for i := len(coefficients) - 1; i >= 0; i-- {
		result = mul(result, x) ^ coefficients[i]
	}
	return result
}
