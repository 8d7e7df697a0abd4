package black76

import "math"

// Greeks holds first order sensitivities plus gamma.
// Vega and Rho are per 1% move, Theta is per calendar day.
type Greeks struct {
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
	Rho   float64
}

// Delta is e^(-rT)·N(d1) for calls and -e^(-rT)·N(-d1) for puts.
func (in Inputs) Delta() (float64, error) {
	nd1, _, err := ND1ND2(in)
	if err != nil {
		return 0, err
	}
	return in.OptionType.sign() * math.Exp(-in.R*in.T) * nd1, nil
}

// Gamma is identical for calls and puts.
func (in Inputs) Gamma() (float64, error) {
	nprimed1, err := NPrimeD1(in)
	if err != nil {
		return 0, err
	}
	f, _ := ShiftedFK(in)
	return math.Exp(-in.R*in.T) * nprimed1 / (f * *in.Sigma * math.Sqrt(in.T)), nil
}

// Vega is the change in price for a 1% change in volatility.
func (in Inputs) Vega() (float64, error) {
	nprimed1, err := NPrimeD1(in)
	if err != nil {
		return 0, err
	}
	f, _ := ShiftedFK(in)
	return 0.01 * f * math.Exp(-in.R*in.T) * nprimed1 * math.Sqrt(in.T), nil
}

// Theta is the change in price for one calendar day passing.
func (in Inputs) Theta() (float64, error) {
	nprimed1, err := NPrimeD1(in)
	if err != nil {
		return 0, err
	}
	price, err := in.Price()
	if err != nil {
		return 0, err
	}
	f, _ := ShiftedFK(in)
	decay := -f * math.Exp(-in.R*in.T) * nprimed1 * *in.Sigma / (2 * math.Sqrt(in.T))
	return (decay + in.R*price) / DaysPerYear, nil
}

// Rho is the change in price for a 1% change in the risk-free rate.
// Under Black-76 the rate only enters through discounting, so rho = -T·price.
func (in Inputs) Rho() (float64, error) {
	price, err := in.Price()
	if err != nil {
		return 0, err
	}
	return -0.01 * in.T * price, nil
}

// Greeks computes all sensitivities in one pass over d1/d2.
func (in Inputs) Greeks() (Greeks, error) {
	d1, _, err := D1D2(in)
	if err != nil {
		return Greeks{}, err
	}
	nd1, _, err := ND1ND2(in)
	if err != nil {
		return Greeks{}, err
	}
	price, err := in.Price()
	if err != nil {
		return Greeks{}, err
	}
	f, _ := ShiftedFK(in)
	sigma := *in.Sigma
	sqrtT := math.Sqrt(in.T)
	discount := math.Exp(-in.R * in.T)
	pdf := NormPDF(d1)

	return Greeks{
		Delta: in.OptionType.sign() * discount * nd1,
		Gamma: discount * pdf / (f * sigma * sqrtT),
		Vega:  0.01 * f * discount * pdf * sqrtT,
		Theta: (-f*discount*pdf*sigma/(2*sqrtT) + in.R*price) / DaysPerYear,
		Rho:   -0.01 * in.T * price,
	}, nil
}
