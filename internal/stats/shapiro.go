package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// MaxShapiroN is the largest sample for which Royston's p-value
// approximation is calibrated. Larger samples are still computed.
const MaxShapiroN = 5000

// Polynomial coefficients from Royston (1995), algorithm AS R94.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk computes the W statistic and p-value for the sample x, which
// must hold at least 3 finite values with a non-zero range. NaN values must
// be removed by the caller.
func ShapiroWilk(x []float64) (w, p float64, err error) {
	n := len(x)
	if n < 3 {
		return 0, 0, &PreconditionError{Test: "shapiro-wilk", N: n, Reason: "at least 3 observations are required"}
	}
	xs := append([]float64(nil), x...)
	sort.Float64s(xs)
	span := xs[n-1] - xs[0]
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0, 0, &PreconditionError{Test: "shapiro-wilk", N: n, Reason: "sample range is zero or not finite"}
	}

	// Scale by the range to keep the sums well conditioned.
	lo := xs[0]
	var mean float64
	for i := range xs {
		xs[i] = (xs[i] - lo) / span
		mean += xs[i]
	}
	mean /= float64(n)
	var ss float64
	for _, v := range xs {
		d := v - mean
		ss += d * d
	}
	a := swCoefficients(n)
	var num float64
	for i := 0; i < n/2; i++ {
		num += a[i] * (xs[n-1-i] - xs[i])
	}
	w = num * num / ss
	if w > 1 {
		w = 1
	}
	return w, swPValue(w, n), nil
}

// swCoefficients returns the first n/2 Shapiro-Wilk weights; the remaining
// weights are their negatives in reverse order.
func swCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}
	m := make([]float64, half)
	an25 := float64(n) + 0.25
	var summ2 float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(float64(n))
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	first := 1
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func swPValue(w float64, n int) float64 {
	if n == 3 {
		// exact
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return clamp01(p)
	}
	an := float64(n)
	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		lx := math.Log(an)
		m = poly(swC5, lx)
		s = math.Exp(poly(swC6, lx))
	}
	z := (y - m) / s
	return clamp01(distuv.UnitNormal.Survival(z))
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
