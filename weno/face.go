package weno

// FaceResolver combines the owner and neighbour side values of an internal
// face. flux is the face flux, positive when leaving the owner.
type FaceResolver func(owner, neighbour, flux float64) float64

func UpwindResolver(owner, neighbour, flux float64) float64 {
	if flux >= 0 {
		return owner
	}
	return neighbour
}

func CentralResolver(owner, neighbour, _ float64) float64 {
	return 0.5 * (owner + neighbour)
}

// faceValue evaluates ubar + sum_k c_k Row_k.
func faceValue(mean float64, coeffs, row []float64) float64 {
	if len(row) == 0 || len(coeffs) == 0 {
		return mean
	}
	v := mean
	for k, c := range coeffs {
		v += c * row[k]
	}
	return v
}

func clamp(v, a, b float64) float64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
