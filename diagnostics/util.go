package diagnostics

import "math"

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ppmOf переводит количество в PPM относительно объема производства;
// нулевое производство дает ноль, а не бесконечность.
func ppmOf(qty, production float64) float64 {
	if production <= 0 {
		return 0
	}
	return qty / production * 1_000_000
}
