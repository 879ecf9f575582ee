package quant

import "math"

// IEEE 754 binary16 conversion. The widening direction preserves subnormals,
// infinities and NaN payload bits exactly; the narrowing direction rounds to
// nearest even and overflows to infinity.

// Float16ToFloat32 converts a half-precision bit pattern to float32.
func Float16ToFloat32(h uint16) float32 {
	sign := (h >> 15) & 0x1
	exp := (h >> 10) & 0x1F
	mant := h & 0x3FF

	var result uint32
	switch exp {
	case 0:
		if mant == 0 {
			result = uint32(sign) << 31
		} else {
			// Subnormal, normalize into float32's larger exponent range.
			e := int32(1)
			m := uint32(mant)
			for m&0x400 == 0 {
				m <<= 1
				e--
			}
			m &= 0x3FF
			result = uint32(sign)<<31 | uint32(e+127-15)<<23 | m<<13
		}
	case 0x1F:
		// Inf or NaN.
		result = uint32(sign)<<31 | 0x7F800000 | uint32(mant)<<13
	default:
		result = uint32(sign)<<31 | uint32(exp+127-15)<<23 | uint32(mant)<<13
	}
	return math.Float32frombits(result)
}

// Float32ToFloat16 converts a float32 to the nearest half-precision bit
// pattern, rounding to nearest even.
func Float32ToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp32 := int32(bits >> 23 & 0xFF)
	mant := bits & 0x7FFFFF

	if exp32 == 0xFF {
		if mant != 0 {
			// NaN: keep the top mantissa bits, forcing at least one so the
			// result does not collapse into infinity.
			payload := uint16(mant >> 13)
			if payload == 0 {
				payload = 1
			}
			return sign | 0x7C00 | payload
		}
		return sign | 0x7C00
	}

	exp := exp32 - 127 + 15
	switch {
	case exp >= 0x1F:
		return sign | 0x7C00
	case exp <= 0:
		if exp < -10 {
			// Below the smallest subnormal, flush to zero.
			return sign
		}
		// Subnormal: restore the implicit bit, shift down, round to
		// nearest even.
		m := mant | 0x800000
		shift := uint32(14 - exp)
		m += (1 << (shift - 1)) - 1 + (m >> shift & 1)
		return sign | uint16(m>>shift)
	default:
		v := uint32(exp)<<10 | mant>>13
		rem := mant & 0x1FFF
		if rem > 0x1000 || (rem == 0x1000 && v&1 == 1) {
			// Rounding up may carry into the exponent; an overflowing carry
			// lands on the infinity encoding, which is the correct result.
			v++
		}
		return sign | uint16(v)
	}
}
