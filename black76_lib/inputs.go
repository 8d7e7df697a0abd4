package black76

import (
	"fmt"
	"math"
	"strings"
)

// OptionType is the type of option to be priced.
type OptionType int

const (
	Call OptionType = iota
	Put
)

func (o OptionType) String() string {
	switch o {
	case Call:
		return "Call"
	case Put:
		return "Put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(o))
	}
}

// ParseOptionType accepts "call"/"c" and "put"/"p" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, newError(KindInvalidDomain, "ParseOptionType", fmt.Sprintf("unknown option type %q", s))
}

// sign returns +1 for calls and -1 for puts.
func (o OptionType) sign() float64 {
	if o == Put {
		return -1
	}
	return 1
}

// Inputs carries everything needed to price an option on a future or to
// solve for its implied volatility. It is passed by value; methods never
// mutate the receiver.
type Inputs struct {
	OptionType OptionType
	// Future price
	F float64
	// Strike price
	K float64
	// Observed option price, required for implied volatility
	P *float64
	// Risk-free rate, continuously compounded
	R float64
	// Time to maturity in years
	T float64
	// Volatility, required for pricing
	Sigma *float64
	// Shifted enables the negative-rate displacement of F and K
	Shifted bool
}

// NewInputs creates an Inputs value. Pass nil for whichever of p or sigma is unknown.
func NewInputs(optionType OptionType, f, k float64, p *float64, r, t float64, sigma *float64) Inputs {
	return Inputs{
		OptionType: optionType,
		F:          f,
		K:          k,
		P:          p,
		R:          r,
		T:          t,
		Sigma:      sigma,
	}
}

// Float returns a pointer to v, for the optional P and Sigma fields.
func Float(v float64) *float64 {
	return &v
}

// WithSigma returns a copy of in with the volatility set.
func (in Inputs) WithSigma(sigma float64) Inputs {
	in.Sigma = Float(sigma)
	return in
}

// WithPrice returns a copy of in with the observed price set.
func (in Inputs) WithPrice(p float64) Inputs {
	in.P = Float(p)
	return in
}

// WithShift returns a copy of in with shifting enabled or disabled.
func (in Inputs) WithShift(shifted bool) Inputs {
	in.Shifted = shifted
	return in
}

// Validate checks the preconditions shared by every calculation.
func (in Inputs) Validate() error {
	const op = "Validate"
	if in.OptionType != Call && in.OptionType != Put {
		return newError(KindInvalidDomain, op, "option type must be Call or Put")
	}
	for _, v := range []struct {
		name  string
		value float64
	}{{"future price", in.F}, {"strike", in.K}, {"rate", in.R}, {"time to maturity", in.T}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return newError(KindInvalidDomain, op, v.name+" must be finite")
		}
	}
	if in.T <= 0 {
		return newError(KindInvalidDomain, op, "time to maturity must be positive")
	}
	if !in.Shifted && (in.F <= 0 || in.K <= 0) {
		return newError(KindInvalidDomain, op, "future price and strike must be positive unless shifted")
	}
	// A zero minimum is not shifted, so F or K can still be 0 here.
	if f, k := ShiftedFK(in); f <= 0 || k <= 0 {
		return newError(KindInvalidDomain, op, fmt.Sprintf("shifted future price %g and strike %g must be positive", f, k))
	}
	return nil
}

func (in Inputs) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Option type: %s\n", in.OptionType)
	fmt.Fprintf(&b, "Future price: %.2f\n", in.F)
	fmt.Fprintf(&b, "Strike price: %.2f\n", in.K)
	if in.P != nil {
		fmt.Fprintf(&b, "Option price: %.2f\n", *in.P)
	} else {
		b.WriteString("Option price: None\n")
	}
	fmt.Fprintf(&b, "Risk-free rate: %.4f\n", in.R)
	fmt.Fprintf(&b, "Time to maturity: %.4f\n", in.T)
	if in.Sigma != nil {
		fmt.Fprintf(&b, "Volatility: %.4f\n", *in.Sigma)
	} else {
		b.WriteString("Volatility: None\n")
	}
	fmt.Fprintf(&b, "Shifted: %t\n", in.Shifted)
	return b.String()
}
