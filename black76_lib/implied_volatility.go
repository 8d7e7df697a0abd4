package black76

import (
	"fmt"
	"math"
)

// Solver recovers the volatility implied by in.P.
type Solver interface {
	Solve(in Inputs) (float64, error)
}

// NewtonSolver refines a modified Corrado-Miller seed with Newton-Raphson.
// Zero values fall back to DefaultTolerance and DefaultMaxIterations.
type NewtonSolver struct {
	Tolerance     float64
	MaxIterations int
}

// ImpliedVolatility calculates the implied volatility of the option.
// Tolerance is the maximum absolute price error accepted; the lower the
// tolerance the more iterations are needed. Values between 1e-4 and 1e-3
// work best.
// Requires F, K, R, T, P.
func (in Inputs) ImpliedVolatility(tolerance float64) (float64, error) {
	if tolerance == 0 {
		return 0, newError(KindInvalidDomain, "ImpliedVolatility", "tolerance must be positive")
	}
	return NewtonSolver{Tolerance: tolerance}.Solve(in)
}

// InitialGuess estimates sigma with the modified Corrado-Miller estimator
// ("A Modified Corrado-Miller Implied Volatility Estimator", Pluciennik 2007).
// The estimator is invalid for some deep in/out-of-the-money or very short
// dated inputs; those return a convergence failure.
func InitialGuess(in Inputs) (float64, error) {
	const op = "InitialGuess"
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
	f, k := ShiftedFK(in)

	bigX := k * math.Exp(-in.R*in.T)
	fMinusX := f - bigX
	fPlusX := f + bigX
	oneOverSqrtT := 1 / math.Sqrt(in.T)

	root := math.Sqrt(math.Pow(p-fMinusX/2, 2) - fMinusX*fMinusX/math.Pi)
	x := oneOverSqrtT * (sqrt2Pi / fPlusX)
	y := p - (f-k)/2 + root

	sigma := oneOverSqrtT*(sqrt2Pi/fPlusX)*(p-fMinusX/2+root) +
		cmA +
		cmB/x +
		cmC*y +
		cmD/(x*x) +
		cmE*y*y +
		cmF*y/x

	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return 0, newError(KindConvergenceFailure, op, "initial estimate is not finite")
	}
	if sigma <= 0 {
		return 0, newError(KindConvergenceFailure, op, fmt.Sprintf("initial estimate %g is not positive", sigma))
	}
	return sigma, nil
}

// Solve implements Solver.
func (s NewtonSolver) Solve(in Inputs) (float64, error) {
	const op = "ImpliedVolatility"
	tolerance := s.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	if math.IsNaN(tolerance) || math.IsInf(tolerance, 0) || tolerance <= 0 {
		return 0, newError(KindInvalidDomain, op, "tolerance must be positive and finite")
	}
	maxIterations := s.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	sigma, err := InitialGuess(in)
	if err != nil {
		return 0, err
	}
	p := *in.P

	// Price is increasing in sigma, so each evaluation narrows [lo, hi].
	// Steps that leave the bracket, or that would divide by a vanishing
	// vega, expand the bracket upward or bisect it instead.
	lo, hi := 0.0, math.Inf(1)
	for i := 0; i < maxIterations; i++ {
		trial := in.WithSigma(sigma)
		price, err := trial.Price()
		if err != nil {
			return 0, err
		}
		diff := price - p
		if math.Abs(diff) <= tolerance {
			return sigma, nil
		}
		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}
		if hi < MinSigma {
			return 0, newError(KindConvergenceFailure, op, "price is not above intrinsic value")
		}

		vega, err := trial.Vega()
		if err != nil {
			return 0, err
		}
		next := math.NaN()
		// vega is per 1%, the step needs per unit
		if vega*100 >= MinVega {
			next = sigma - diff/(vega*100)
		}
		if math.IsNaN(next) || next <= lo || next >= hi {
			if math.IsInf(hi, 1) {
				next = 2 * sigma
			} else {
				next = (lo + hi) / 2
			}
		}
		if next > MaxSigma {
			return 0, newError(KindConvergenceFailure, op, "price is not below the upper bound")
		}
		if next == sigma {
			return 0, newError(KindConvergenceFailure, op, fmt.Sprintf("iterate stalled at sigma %g", sigma))
		}
		if next <= 0 {
			return 0, newError(KindConvergenceFailure, op, fmt.Sprintf("iterate %g is not positive", next))
		}
		sigma = next
	}
	return 0, newError(KindConvergenceFailure, op, fmt.Sprintf("no convergence after %d iterations", maxIterations))
}
