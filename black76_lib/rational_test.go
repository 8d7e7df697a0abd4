package black76_test

import (
	"errors"
	"math"
	"testing"

	black76 "github.com/jwaldner/black76/black76_lib"
)

func TestRationalRoundTrip(t *testing.T) {
	for _, o := range []black76.OptionType{black76.Call, black76.Put} {
		for _, k := range []float64{80, 90, 100, 110, 125} {
			for _, tm := range []float64{twentyDays, 0.5, 3} {
				for _, sigma := range []float64{0.1, 0.2, 0.6} {
					in := inputs(o, 100, k, 0.05, tm, sigma)
					// no time value left to invert
					if v, err := in.Vega(); err != nil || v < 1e-4 {
						continue
					}
					p := price(t, in)
					in.Sigma = nil
					iv, err := in.WithPrice(p).RationalImpliedVolatility()
					if err != nil {
						t.Fatalf("%s k=%v t=%v sigma=%v: %v", o, k, tm, sigma, err)
					}
					if !approxEqual(iv, sigma, 1e-6) {
						t.Errorf("%s k=%v t=%v: iv = %v, want %v", o, k, tm, iv, sigma)
					}
				}
			}
		}
	}
}

func TestRationalSolverMarshaling(t *testing.T) {
	var got struct{ price, f, k, t, q float64 }
	stub := func(price, f, k, t, q float64) float64 {
		got.price, got.f, got.k, got.t, got.q = price, f, k, t, q
		return 0.42
	}

	in := black76.NewInputs(black76.Put, 0.5, -0.25, black76.Float(0.1), -0.005, 2, nil).WithShift(true)
	iv, err := black76.RationalSolver{Func: stub}.Solve(in)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if iv != 0.42 {
		t.Errorf("Solve() = %v, want 0.42", iv)
	}
	if want := 0.1 * math.Exp(-0.005*2); !approxEqual(got.price, want, 1e-15) {
		t.Errorf("price passed = %v, want undiscounted %v", got.price, want)
	}
	if !approxEqual(got.f, 0.76, 1e-12) || !approxEqual(got.k, 0.01, 1e-12) {
		t.Errorf("f, k passed = %v, %v; want shifted 0.76, 0.01", got.f, got.k)
	}
	if got.t != 2 || got.q != -1 {
		t.Errorf("t, q passed = %v, %v; want 2, -1", got.t, got.q)
	}
}

func TestRationalSolverClassifiesOutput(t *testing.T) {
	in := black76.NewInputs(black76.Call, 100, 100, black76.Float(2), 0.05, 1, nil)
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.1} {
		bad := bad
		_, err := black76.RationalSolver{Func: func(_, _, _, _, _ float64) float64 { return bad }}.Solve(in)
		if !errors.Is(err, black76.ErrConvergenceFailure) {
			t.Errorf("backend result %v: error = %v, want convergence failure", bad, err)
		}
	}

	missing := black76.NewInputs(black76.Call, 100, 100, nil, 0.05, 1, nil)
	if _, err := missing.RationalImpliedVolatility(); !errors.Is(err, black76.ErrInputMissing) {
		t.Errorf("missing price error = %v, want input missing", err)
	}
}

func TestRationalOutsideBounds(t *testing.T) {
	below := black76.NewInputs(black76.Call, 100, 90, black76.Float(5), 0.05, twentyDays, nil)
	if _, err := below.RationalImpliedVolatility(); !errors.Is(err, black76.ErrConvergenceFailure) {
		t.Errorf("below intrinsic: error = %v, want convergence failure", err)
	}
	above := black76.NewInputs(black76.Put, 100, 90, black76.Float(95), 0.05, twentyDays, nil)
	if _, err := above.RationalImpliedVolatility(); !errors.Is(err, black76.ErrConvergenceFailure) {
		t.Errorf("above upper bound: error = %v, want convergence failure", err)
	}
}

func TestBracketedRationalIntrinsic(t *testing.T) {
	if got := black76.BracketedRational(10, 110, 100, 1, 1); got != 0 {
		t.Errorf("price at intrinsic: got %v, want 0", got)
	}
	if got := black76.BracketedRational(1, 100, 100, 0, 1); !math.IsNaN(got) {
		t.Errorf("zero time: got %v, want NaN", got)
	}
}
