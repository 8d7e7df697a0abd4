//go:build !(cgo && letsberational)

package black76

// DefaultRational returns BracketedRational; build with -tags letsberational
// and liblets_be_rational on the linker path to use the native routine.
func DefaultRational() RationalFunc {
	return BracketedRational
}

// RationalBackend names the backend compiled into this build.
const RationalBackend = "bracketed"
