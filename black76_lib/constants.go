package black76

import "math"

const (
	normMean   = 0.0
	normStdDev = 1.0

	// DaysPerYear converts calendar days to year fractions.
	DaysPerYear = 365.25

	// ShiftFactor is the margin added beyond the most negative of (F, K, R)
	// when shifting is enabled.
	ShiftFactor = 0.01

	// DefaultTolerance is the absolute price tolerance used when none is configured.
	DefaultTolerance = 1e-4
	// DefaultMaxIterations bounds the Newton-Raphson refinement.
	DefaultMaxIterations = 500
	// MinVega is the smallest per-unit vega the solver will divide by.
	MinVega = 1e-12
	// MinSigma and MaxSigma bound the volatility search. A price that needs
	// a volatility outside them is outside the no-arbitrage bounds.
	MinSigma = 1e-10
	MaxSigma = 1e4
)

// Correction terms of the modified Corrado-Miller seed:
// sigma0 = CM + A + B/x + C*y + D/x^2 + E*y^2 + F*y/x
// These are placeholder values, not the published calibration. The
// bracketed Newton refinement converges from the seed either way.
const (
	cmA = -0.00886333
	cmB = 0.00018472
	cmC = 0.00062315
	cmD = -0.00000206
	cmE = -0.00002145
	cmF = 0.00000391
)

var sqrt2Pi = math.Sqrt(2 * math.Pi)
