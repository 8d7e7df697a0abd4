//go:build cgo && letsberational

package black76

/*
#cgo LDFLAGS: -llets_be_rational -lstdc++ -lm

double implied_volatility_from_a_transformed_rational_guess(double price, double F, double K, double T, double q);
*/
import "C"

// NativeRational calls Peter Jäckel's reference implementation
// (http://www.jaeckel.org/LetsBeRational.7z) through cgo. The C routine keeps
// no state between calls.
func NativeRational(price, f, k, t, q float64) float64 {
	sigma := C.implied_volatility_from_a_transformed_rational_guess(
		C.double(price),
		C.double(f),
		C.double(k),
		C.double(t),
		C.double(q))
	return float64(sigma)
}

// DefaultRational returns the native backend when built with the letsberational tag.
func DefaultRational() RationalFunc {
	return NativeRational
}

// RationalBackend names the backend compiled into this build.
const RationalBackend = "native"
