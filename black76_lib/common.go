package black76

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var unitNormal = distuv.Normal{Mu: normMean, Sigma: normStdDev}

// Shift returns the displacement applied to F and K when in.Shifted is set.
// Implemented from "Pricing Interest Rate Derivatives in a Negative Yield
// Environment" (Rognone, 2017): shift = |min(F, K, R)| + ShiftFactor when
// the minimum is negative, otherwise 0.
func Shift(in Inputs) float64 {
	m := math.Min(math.Min(in.F, in.K), in.R)
	if m < 0 {
		return math.Abs(m) + ShiftFactor
	}
	return 0
}

// ShiftedFK returns (F, K) as they enter d1/d2 and the price: displaced by
// Shift when shifting is enabled, unchanged otherwise.
func ShiftedFK(in Inputs) (float64, float64) {
	if !in.Shifted {
		return in.F, in.K
	}
	s := Shift(in)
	return in.F + s, in.K + s
}

// D1D2 calculates d1 and d2 for the option.
// Requires F, K, T, Sigma.
func D1D2(in Inputs) (float64, float64, error) {
	const op = "D1D2"
	if in.Sigma == nil {
		return 0, 0, newError(KindInputMissing, op, "sigma is required, got nil")
	}
	if err := in.Validate(); err != nil {
		return 0, 0, err
	}
	sigma := *in.Sigma
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return 0, 0, newError(KindInvalidDomain, op, "sigma must be positive and finite")
	}
	f, k := ShiftedFK(in)

	numd1 := math.Log(f/k) + (sigma*sigma/2)*in.T
	den := sigma * math.Sqrt(in.T)

	d1 := numd1 / den
	d2 := d1 - den
	if math.IsNaN(d1) || math.IsNaN(d2) {
		return 0, 0, newError(KindNumericConversion, op, "d1/d2 evaluated to NaN")
	}
	return d1, d2, nil
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) (float64, error) {
	if math.IsNaN(x) {
		return 0, newError(KindNumericConversion, "NormCDF", "argument is NaN")
	}
	return unitNormal.CDF(x), nil
}

// NormPDF is the standard normal density, exp(-x^2/2)/sqrt(2π).
func NormPDF(x float64) float64 {
	return unitNormal.Prob(x)
}

// ND1ND2 returns N(d1), N(d2) for calls and N(-d1), N(-d2) for puts.
func ND1ND2(in Inputs) (float64, float64, error) {
	d1, d2, err := D1D2(in)
	if err != nil {
		return 0, 0, err
	}
	s := in.OptionType.sign()
	nd1, err := NormCDF(s * d1)
	if err != nil {
		return 0, 0, err
	}
	nd2, err := NormCDF(s * d2)
	if err != nil {
		return 0, 0, err
	}
	return nd1, nd2, nil
}

// NPrimeD1 is the standard normal density at d1.
func NPrimeD1(in Inputs) (float64, error) {
	d1, _, err := D1D2(in)
	if err != nil {
		return 0, err
	}
	return NormPDF(d1), nil
}

// NPrimeD2 is the standard normal density at d2.
func NPrimeD2(in Inputs) (float64, error) {
	_, d2, err := D1D2(in)
	if err != nil {
		return 0, err
	}
	return NormPDF(d2), nil
}
