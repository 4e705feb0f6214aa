package core

// SafeRate divides num by den, returning exactly 0.0 when the denominator
// is not positive. Output tables never carry NaN or Inf.
func SafeRate(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0.0
}
