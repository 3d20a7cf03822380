package bms

import "math"

// logGain normalizes the curve so that 127 maps to 127.
var logGain = 127 / (40 * math.Log10(2))

// LogCurve remaps a linear 0-127 value onto a logarithmic perceptual curve.
func LogCurve(v uint8) uint8 {
	if v == 0 {
		return 0
	}
	r := math.Round(logGain * 40 * math.Log10(1+float64(v)/127))
	return uint8(max(1, min(127, r)))
}
