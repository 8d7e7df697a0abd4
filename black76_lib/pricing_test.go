package black76_test

import (
	"errors"
	"math"
	"testing"

	black76 "github.com/jwaldner/black76/black76_lib"
)

const twentyDays = 20.0 / black76.DaysPerYear

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func inputs(o black76.OptionType, f, k, r, t, sigma float64) black76.Inputs {
	return black76.NewInputs(o, f, k, nil, r, t, black76.Float(sigma))
}

func TestPriceReferenceScenarios(t *testing.T) {
	tests := []struct {
		name string
		in   black76.Inputs
		want float64
	}{
		{"call OTM", inputs(black76.Call, 100, 110, 0.05, twentyDays, 0.2), 0.0376},
		{"call ITM", inputs(black76.Call, 100, 90, 0.05, twentyDays, 0.2), 9.9913},
		{"put OTM", inputs(black76.Put, 100, 90, 0.05, twentyDays, 0.2), 0.01867},
		{"put ITM", inputs(black76.Put, 100, 110, 0.05, twentyDays, 0.2), 10.0103},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Price()
			if err != nil {
				t.Fatalf("Price() error: %v", err)
			}
			if !approxEqual(got, tt.want, 0.001) {
				t.Errorf("Price() = %.6f, want %.6f", got, tt.want)
			}
		})
	}
}

func TestPutCallParity(t *testing.T) {
	for _, f := range []float64{80, 95, 100, 105, 130} {
		for _, k := range []float64{90, 100, 110} {
			for _, r := range []float64{-0.01, 0, 0.05} {
				for _, tm := range []float64{twentyDays, 0.5, 2} {
					call, err := inputs(black76.Call, f, k, r, tm, 0.25).Price()
					if err != nil {
						t.Fatalf("call price: %v", err)
					}
					put, err := inputs(black76.Put, f, k, r, tm, 0.25).Price()
					if err != nil {
						t.Fatalf("put price: %v", err)
					}
					want := math.Exp(-r*tm) * (f - k)
					if !approxEqual(call-put, want, 1e-9) {
						t.Errorf("f=%v k=%v r=%v t=%v: call-put = %.10f, want %.10f", f, k, r, tm, call-put, want)
					}
				}
			}
		}
	}
}

func TestPriceNonNegative(t *testing.T) {
	for _, o := range []black76.OptionType{black76.Call, black76.Put} {
		for _, k := range []float64{1, 50, 100, 200, 1000} {
			for _, sigma := range []float64{0.001, 0.05, 0.5, 3} {
				for _, tm := range []float64{1e-6, twentyDays, 5} {
					got, err := inputs(o, 100, k, 0.05, tm, sigma).Price()
					if err != nil {
						t.Fatalf("%s k=%v sigma=%v t=%v: %v", o, k, sigma, tm, err)
					}
					if got < 0 || math.IsNaN(got) || math.IsInf(got, 0) {
						t.Errorf("%s k=%v sigma=%v t=%v: price %v not a finite non-negative number", o, k, sigma, tm, got)
					}
				}
			}
		}
	}
}

func TestShift(t *testing.T) {
	t.Run("positive inputs leave the shift at zero", func(t *testing.T) {
		in := inputs(black76.Call, 100, 110, 0.05, twentyDays, 0.2)
		if s := black76.Shift(in); s != 0 {
			t.Fatalf("Shift() = %v, want 0", s)
		}
		plain, err := in.Price()
		if err != nil {
			t.Fatal(err)
		}
		shifted, err := in.WithShift(true).Price()
		if err != nil {
			t.Fatal(err)
		}
		if plain != shifted {
			t.Errorf("shifted price %v differs from plain price %v", shifted, plain)
		}
	})

	t.Run("zero minimum is not shifted", func(t *testing.T) {
		in := inputs(black76.Call, 100, 100, 0, twentyDays, 0.2)
		if s := black76.Shift(in); s != 0 {
			t.Errorf("Shift() = %v, want 0", s)
		}
	})

	t.Run("negative strike", func(t *testing.T) {
		in := inputs(black76.Call, 0.5, -0.25, -0.005, 1, 0.2).WithShift(true)
		if s := black76.Shift(in); !approxEqual(s, 0.26, 1e-12) {
			t.Fatalf("Shift() = %v, want 0.26", s)
		}
		f, k := black76.ShiftedFK(in)
		if !approxEqual(f, 0.76, 1e-12) || !approxEqual(k, 0.01, 1e-12) {
			t.Fatalf("ShiftedFK() = (%v, %v), want (0.76, 0.01)", f, k)
		}
		price, err := in.Price()
		if err != nil {
			t.Fatalf("Price() error: %v", err)
		}
		if price <= 0 {
			t.Errorf("Price() = %v, want positive", price)
		}
	})

	t.Run("negative strike without shift is rejected", func(t *testing.T) {
		_, err := inputs(black76.Call, 0.5, -0.25, -0.005, 1, 0.2).Price()
		if !errors.Is(err, black76.ErrInvalidDomain) {
			t.Errorf("Price() error = %v, want invalid domain", err)
		}
	})

	t.Run("zero legs stay invalid when shifted", func(t *testing.T) {
		tests := []struct {
			name string
			in   black76.Inputs
		}{
			{"zero future", inputs(black76.Call, 0, 100, 0.05, 1, 0.2).WithShift(true)},
			{"zero strike", inputs(black76.Put, 100, 0, 0.05, 1, 0.2).WithShift(true)},
			{"zero future and strike", inputs(black76.Call, 0, 0, 0.05, 1, 0.2).WithShift(true)},
		}
		for _, tt := range tests {
			if err := tt.in.Validate(); !errors.Is(err, black76.ErrInvalidDomain) {
				t.Errorf("%s: Validate() error = %v, want invalid domain", tt.name, err)
			}
			if _, _, err := black76.D1D2(tt.in); !errors.Is(err, black76.ErrInvalidDomain) {
				t.Errorf("%s: D1D2() error = %v, want invalid domain", tt.name, err)
			}
			if _, err := tt.in.Price(); !errors.Is(err, black76.ErrInvalidDomain) {
				t.Errorf("%s: Price() error = %v, want invalid domain", tt.name, err)
			}
			if g, err := tt.in.Greeks(); !errors.Is(err, black76.ErrInvalidDomain) {
				t.Errorf("%s: Greeks() = %+v, %v; want invalid domain", tt.name, g, err)
			}
		}
	})

	t.Run("negative rate shifts both legs", func(t *testing.T) {
		in := inputs(black76.Put, 2, 2.5, -0.5, 1, 0.3).WithShift(true)
		f, k := black76.ShiftedFK(in)
		if !approxEqual(f, 2.51, 1e-12) || !approxEqual(k, 3.01, 1e-12) {
			t.Errorf("ShiftedFK() = (%v, %v), want (2.51, 3.01)", f, k)
		}
	})
}

func TestD1D2(t *testing.T) {
	in := inputs(black76.Call, 100, 110, 0.05, twentyDays, 0.2)
	d1, d2, err := black76.D1D2(in)
	if err != nil {
		t.Fatal(err)
	}
	den := 0.2 * math.Sqrt(twentyDays)
	wantD1 := (math.Log(100.0/110.0) + 0.02*twentyDays) / den
	if !approxEqual(d1, wantD1, 1e-12) {
		t.Errorf("d1 = %v, want %v", d1, wantD1)
	}
	if !approxEqual(d1-d2, den, 1e-12) {
		t.Errorf("d1-d2 = %v, want %v", d1-d2, den)
	}

	// the rate does not enter d1/d2
	other, _, err := black76.D1D2(inputs(black76.Call, 100, 110, 0.5, twentyDays, 0.2))
	if err != nil {
		t.Fatal(err)
	}
	if other != d1 {
		t.Errorf("d1 depends on the rate: %v vs %v", other, d1)
	}
}

func TestNormal(t *testing.T) {
	cdf, err := black76.NormCDF(0)
	if err != nil || !approxEqual(cdf, 0.5, 1e-15) {
		t.Errorf("NormCDF(0) = %v, %v", cdf, err)
	}
	cdf, err = black76.NormCDF(-8)
	if err != nil || cdf <= 0 || cdf > 1e-14 {
		t.Errorf("NormCDF(-8) = %v, %v; want tiny positive tail", cdf, err)
	}
	if _, err := black76.NormCDF(math.NaN()); !errors.Is(err, black76.ErrNumericConversion) {
		t.Errorf("NormCDF(NaN) error = %v, want numeric conversion", err)
	}
	if got, want := black76.NormPDF(1.3), math.Exp(-0.5*1.3*1.3)/math.Sqrt(2*math.Pi); !approxEqual(got, want, 1e-15) {
		t.Errorf("NormPDF(1.3) = %v, want %v", got, want)
	}

	in := inputs(black76.Put, 100, 90, 0.05, twentyDays, 0.2)
	d1, d2, _ := black76.D1D2(in)
	nd1, nd2, err := black76.ND1ND2(in)
	if err != nil {
		t.Fatal(err)
	}
	wantNd1, _ := black76.NormCDF(-d1)
	wantNd2, _ := black76.NormCDF(-d2)
	if nd1 != wantNd1 || nd2 != wantNd2 {
		t.Errorf("put ND1ND2 = (%v, %v), want (%v, %v)", nd1, nd2, wantNd1, wantNd2)
	}
}

func TestPriceErrors(t *testing.T) {
	tests := []struct {
		name string
		in   black76.Inputs
		want error
	}{
		{"missing sigma", black76.NewInputs(black76.Call, 100, 100, nil, 0.05, 1, nil), black76.ErrInputMissing},
		{"zero sigma", inputs(black76.Call, 100, 100, 0.05, 1, 0), black76.ErrInvalidDomain},
		{"negative sigma", inputs(black76.Call, 100, 100, 0.05, 1, -0.2), black76.ErrInvalidDomain},
		{"zero time", inputs(black76.Call, 100, 100, 0.05, 0, 0.2), black76.ErrInvalidDomain},
		{"NaN future", inputs(black76.Call, math.NaN(), 100, 0.05, 1, 0.2), black76.ErrInvalidDomain},
		{"infinite rate", inputs(black76.Call, 100, 100, math.Inf(1), 1, 0.2), black76.ErrInvalidDomain},
		{"bad option type", inputs(black76.OptionType(7), 100, 100, 0.05, 1, 0.2), black76.ErrInvalidDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Price()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Price() error = %v, want %v", err, tt.want)
			}
			if black76.KindOf(err) != black76.KindOf(tt.want) {
				t.Errorf("KindOf = %v, want %v", black76.KindOf(err), black76.KindOf(tt.want))
			}
		})
	}
}

func TestInputsString(t *testing.T) {
	in := black76.NewInputs(black76.Put, 100, 90, black76.Float(1.5), 0.05, 0.25, nil)
	want := "Option type: Put\n" +
		"Future price: 100.00\n" +
		"Strike price: 90.00\n" +
		"Option price: 1.50\n" +
		"Risk-free rate: 0.0500\n" +
		"Time to maturity: 0.2500\n" +
		"Volatility: None\n" +
		"Shifted: false\n"
	if got := in.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseOptionType(t *testing.T) {
	for _, s := range []string{"call", "CALL", " c "} {
		if o, err := black76.ParseOptionType(s); err != nil || o != black76.Call {
			t.Errorf("ParseOptionType(%q) = %v, %v", s, o, err)
		}
	}
	for _, s := range []string{"put", "P"} {
		if o, err := black76.ParseOptionType(s); err != nil || o != black76.Put {
			t.Errorf("ParseOptionType(%q) = %v, %v", s, o, err)
		}
	}
	if _, err := black76.ParseOptionType("straddle"); !errors.Is(err, black76.ErrInvalidDomain) {
		t.Errorf("ParseOptionType(straddle) error = %v", err)
	}
}
