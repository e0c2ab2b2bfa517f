package weno

import (
	"math"

	"github.com/notargets/goweno/utils"
)

type WeightParams struct {
	Epsilon  float64
	Exponent int
	Theta    float64 // 0 is treated as 1
}

// Weights returns the normalised nonlinear weights
//
//	omega_k = d_k / (eps + sigma_k^theta)^p
//
// The ideal weights d are normalised first. Each denominator is scaled by the
// smallest one so that large sigma never underflows every weight to zero.
func Weights(ideal, sigma []float64, wp WeightParams) (w []float64) {
	if len(ideal) != len(sigma) {
		panic("weights: ideal and sigma lengths differ")
	}
	w = make([]float64, len(ideal))
	if len(w) == 0 {
		return
	}
	var dSum float64
	for _, d := range ideal {
		dSum += d
	}
	var (
		den    = make([]float64, len(sigma))
		denMin = math.Inf(1)
	)
	for k, s := range sigma {
		if wp.Theta != 0 && wp.Theta != 1 {
			s = math.Pow(s, wp.Theta)
		}
		den[k] = wp.Epsilon + s
		denMin = math.Min(denMin, den[k])
	}
	var sum float64
	for k := range w {
		w[k] = (ideal[k] / dSum) / utils.POW(den[k]/denMin, wp.Exponent)
		sum += w[k]
	}
	for k := range w {
		w[k] /= sum
	}
	return
}

// Blend returns sum_k w_k c_k.
func Blend(w []float64, coeffs [][]float64) (c []float64) {
	if len(coeffs) == 0 {
		return
	}
	c = make([]float64, len(coeffs[0]))
	for k, ck := range coeffs {
		for i, v := range ck {
			c[i] += w[k] * v
		}
	}
	return
}

// ShockSensor returns (sigma_max - sigma_min) / (sigma_max + eps), zero for a
// smooth solution and approaching one when some stencils cross a
// discontinuity.
func ShockSensor(sigma []float64, eps float64) float64 {
	if len(sigma) < 2 {
		return 0
	}
	sMin, sMax := sigma[0], sigma[0]
	for _, s := range sigma[1:] {
		sMin, sMax = math.Min(sMin, s), math.Max(sMax, s)
	}
	return (sMax - sMin) / (sMax + eps)
}
