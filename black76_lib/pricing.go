package black76

import "math"

// Price calculates the discounted Black-76 price of the option.
// Requires F, K, R, T, Sigma.
func (in Inputs) Price() (float64, error) {
	nd1, nd2, err := ND1ND2(in)
	if err != nil {
		return 0, err
	}
	f, k := ShiftedFK(in)
	discount := math.Exp(-in.R * in.T)

	var raw float64
	switch in.OptionType {
	case Call:
		raw = discount * (nd1*f - nd2*k)
	case Put:
		raw = discount * (nd2*k - nd1*f)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, newError(KindNumericConversion, "Price", "price evaluated to a non-finite value")
	}
	return math.Max(0, raw), nil
}
