package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	black76 "github.com/jwaldner/black76/black76_lib"
	"github.com/jwaldner/black76/internal/config"
	"github.com/jwaldner/black76/internal/logger"
)

// ExecutionMode selects the implied-volatility backend
type ExecutionMode string

const (
	ExecutionModeAuto     ExecutionMode = "auto"
	ExecutionModeNewton   ExecutionMode = "newton"
	ExecutionModeRational ExecutionMode = "rational"
)

// ParseExecutionMode maps "" to fallback and rejects unknown modes.
func ParseExecutionMode(s string, fallback ExecutionMode) (ExecutionMode, error) {
	switch ExecutionMode(s) {
	case "":
		return fallback, nil
	case ExecutionModeAuto, ExecutionModeNewton, ExecutionModeRational:
		return ExecutionMode(s), nil
	}
	return "", &black76.Error{Kind: black76.KindInvalidDomain, Op: "ParseExecutionMode", Reason: fmt.Sprintf("unknown method %q", s)}
}

// Contract is one unit of batch work
type Contract struct {
	ID     string
	Inputs black76.Inputs
	Mode   ExecutionMode
}

// ContractResult holds the outcome for one contract. Price is set when the
// contract carried a volatility; ImpliedVolatility when it carried a price.
type ContractResult struct {
	ID                string
	Price             *float64
	ImpliedVolatility *float64
	Method            ExecutionMode
	Greeks            *black76.Greeks
	Err               error
}

// PricingService runs the black76 library with configured solvers
type PricingService struct {
	mode      ExecutionMode
	newton    black76.NewtonSolver
	rational  black76.RationalSolver
	workers   int
	batchSize int
}

// NewPricingService creates a service from engine configuration
func NewPricingService(cfg config.EngineConfig) (*PricingService, error) {
	mode, err := ParseExecutionMode(cfg.ExecutionMode, ExecutionModeAuto)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &PricingService{
		mode: mode,
		newton: black76.NewtonSolver{
			Tolerance:     cfg.Tolerance,
			MaxIterations: cfg.MaxIterations,
		},
		rational:  black76.RationalSolver{Func: black76.DefaultRational()},
		workers:   workers,
		batchSize: batchSize,
	}, nil
}

// Mode returns the default execution mode
func (s *PricingService) Mode() ExecutionMode {
	return s.mode
}

// BatchSize returns the maximum contracts per batch
func (s *PricingService) BatchSize() int {
	return s.batchSize
}

// Price returns the option price and greeks. Requires a volatility.
func (s *PricingService) Price(in black76.Inputs) (float64, black76.Greeks, error) {
	price, err := in.Price()
	if err != nil {
		return 0, black76.Greeks{}, err
	}
	greeks, err := in.Greeks()
	if err != nil {
		return 0, black76.Greeks{}, err
	}
	logger.Verbose.Printf("priced %s F=%.4f K=%.4f T=%.6f: %.6f", in.OptionType, in.F, in.K, in.T, price)
	return price, greeks, nil
}

// ImpliedVolatility solves for volatility with the given mode ("" uses the
// service default). In auto mode a Newton-Raphson convergence failure is
// retried once with the rational backend.
func (s *PricingService) ImpliedVolatility(in black76.Inputs, mode ExecutionMode) (float64, ExecutionMode, error) {
	if mode == "" {
		mode = s.mode
	}
	switch mode {
	case ExecutionModeNewton:
		iv, err := s.newton.Solve(in)
		return iv, ExecutionModeNewton, err
	case ExecutionModeRational:
		iv, err := s.rational.Solve(in)
		return iv, ExecutionModeRational, err
	case ExecutionModeAuto:
		iv, err := s.newton.Solve(in)
		if err == nil {
			return iv, ExecutionModeNewton, nil
		}
		if !errors.Is(err, black76.ErrConvergenceFailure) {
			return 0, ExecutionModeNewton, err
		}
		logger.Warn.Printf("newton solver failed (%v), retrying with %s rational backend", err, black76.RationalBackend)
		iv, err = s.rational.Solve(in)
		return iv, ExecutionModeRational, err
	}
	return 0, mode, &black76.Error{Kind: black76.KindInvalidDomain, Op: "ImpliedVolatility", Reason: fmt.Sprintf("unknown method %q", mode)}
}

// Calculate handles one contract: price and greeks when it has a
// volatility, otherwise implied volatility and greeks at that volatility.
func (s *PricingService) Calculate(c Contract) ContractResult {
	result := ContractResult{ID: c.ID}
	in := c.Inputs

	if in.Sigma == nil {
		iv, method, err := s.ImpliedVolatility(in, c.Mode)
		result.Method = method
		if err != nil {
			result.Err = err
			return result
		}
		result.ImpliedVolatility = &iv
		in = in.WithSigma(iv)
	}

	price, greeks, err := s.Price(in)
	if err != nil {
		result.Err = err
		return result
	}
	if result.ImpliedVolatility == nil {
		result.Price = &price
	}
	result.Greeks = &greeks
	return result
}

// CalculateContracts processes contracts concurrently, at most s.workers at
// a time. Results keep the input order; per-contract failures are reported
// in ContractResult.Err and do not stop the batch.
func (s *PricingService) CalculateContracts(ctx context.Context, contracts []Contract) ([]ContractResult, error) {
	if len(contracts) == 0 {
		return nil, nil
	}
	if len(contracts) > s.batchSize {
		return nil, fmt.Errorf("batch of %d contracts exceeds the limit of %d", len(contracts), s.batchSize)
	}

	results := make([]ContractResult, len(contracts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range contracts {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.Calculate(contracts[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch calculation cancelled: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info.Printf("batch of %d contracts processed, %d failed", len(contracts), failed)
	return results, nil
}
