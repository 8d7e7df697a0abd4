package black76

import (
	"fmt"
	"math"
)

// RationalFunc is the contract of Jäckel's "Let's be rational"
// implied_volatility_from_a_transformed_rational_guess: undiscounted option
// price, forward, strike, time to expiry and q (+1 call, -1 put) in, volatility
// out. The routine signals failure only through its return value.
type RationalFunc func(price, f, k, t, q float64) float64

// RationalSolver adapts a RationalFunc to the Solver interface and classifies
// its output. A nil Func uses DefaultRational.
type RationalSolver struct {
	Func RationalFunc
}

// RationalImpliedVolatility calculates the implied volatility with the
// rational-guess backend carried by this build.
// Requires F, K, R, T, P.
func (in Inputs) RationalImpliedVolatility() (float64, error) {
	return RationalSolver{}.Solve(in)
}

// Solve implements Solver.
func (s RationalSolver) Solve(in Inputs) (float64, error) {
	const op = "RationalImpliedVolatility"
	if in.P == nil {
		return 0, newError(KindInputMissing, op, "price is required, got nil")
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}
	p := *in.P
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, newError(KindInvalidDomain, op, "price must be finite")
	}
	fn := s.Func
	if fn == nil {
		fn = DefaultRational()
	}

	f, k := ShiftedFK(in)
	// the routine works on undiscounted prices
	undiscounted := p * math.Exp(in.R*in.T)
	if math.IsInf(undiscounted, 0) {
		return 0, newError(KindNumericConversion, op, "undiscounted price overflows")
	}

	sigma := fn(undiscounted, f, k, in.T, in.OptionType.sign())
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
		return 0, newError(KindConvergenceFailure, op, fmt.Sprintf("backend returned %g", sigma))
	}
	return sigma, nil
}

// BracketedRational honours the RationalFunc contract in pure Go: a Newton
// iteration on the undiscounted Black price, kept inside a bisection bracket.
// It returns NaN when the price lies outside the no-arbitrage bounds.
func BracketedRational(price, f, k, t, q float64) float64 {
	const (
		maxIterations = 200
		maxSigma      = 1e4
		relTolerance  = 1e-14
	)
	if f <= 0 || k <= 0 || t <= 0 || math.IsNaN(price) {
		return math.NaN()
	}
	intrinsic := math.Max(q*(f-k), 0)
	upper := f
	if q < 0 {
		upper = k
	}
	if price < intrinsic || price >= upper {
		return math.NaN()
	}
	if price == intrinsic {
		return 0
	}

	lo, hi := 0.0, 1.0
	for undiscountedBlack(f, k, t, hi, q) < price {
		lo = hi
		hi *= 2
		if hi > maxSigma {
			return math.NaN()
		}
	}

	sigma := (lo + hi) / 2
	for i := 0; i < maxIterations; i++ {
		diff := undiscountedBlack(f, k, t, sigma, q) - price
		if math.Abs(diff) <= relTolerance*price {
			return sigma
		}
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}
		vega := undiscountedVega(f, k, t, sigma)
		next := sigma - diff/vega
		if vega <= 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		if next == sigma {
			return sigma
		}
		sigma = next
	}
	return sigma
}

func undiscountedBlack(f, k, t, sigma, q float64) float64 {
	if sigma <= 0 {
		return math.Max(q*(f-k), 0)
	}
	sd := sigma * math.Sqrt(t)
	d1 := math.Log(f/k)/sd + sd/2
	d2 := d1 - sd
	return q * (f*unitNormal.CDF(q*d1) - k*unitNormal.CDF(q*d2))
}

func undiscountedVega(f, k, t, sigma float64) float64 {
	sqrtT := math.Sqrt(t)
	sd := sigma * sqrtT
	d1 := math.Log(f/k)/sd + sd/2
	return f * NormPDF(d1) * sqrtT
}
