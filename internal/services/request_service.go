package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	black76 "github.com/jwaldner/black76/black76_lib"
	"github.com/jwaldner/black76/internal/logger"
	"github.com/jwaldner/black76/internal/models"
	"github.com/jwaldner/black76/internal/utils"
)

// RateSource supplies the risk-free rate for requests that omit one
type RateSource interface {
	RiskFreeRate(ctx context.Context) float64
}

// RequestService handles HTTP request parsing
type RequestService struct {
	rates RateSource
	now   func() time.Time
}

// NewRequestService creates a new request service. rates may be nil, in
// which case requests must carry risk_free_rate.
func NewRequestService(rates RateSource) *RequestService {
	return &RequestService{rates: rates, now: time.Now}
}

// NewRequestServiceAt fixes the clock used for expiration dates.
func NewRequestServiceAt(rates RateSource, now func() time.Time) *RequestService {
	return &RequestService{rates: rates, now: now}
}

// ParseOptionRequest decodes a single contract from a POST body
func (s *RequestService) ParseOptionRequest(r *http.Request) (*models.OptionRequest, error) {
	if r.Method != http.MethodPost {
		return nil, fmt.Errorf("method not allowed: %s", r.Method)
	}

	var req models.OptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// ParseBatchRequest decodes a batch of contracts and enforces the size limit
func (s *RequestService) ParseBatchRequest(r *http.Request, maxContracts int) (*models.BatchRequest, error) {
	if r.Method != http.MethodPost {
		return nil, fmt.Errorf("method not allowed: %s", r.Method)
	}

	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if len(req.Contracts) == 0 {
		return nil, fmt.Errorf("contracts are required")
	}
	if len(req.Contracts) > maxContracts {
		return nil, fmt.Errorf("batch of %d contracts exceeds the limit of %d", len(req.Contracts), maxContracts)
	}
	return &req, nil
}

// ToInputs converts a request into calculation inputs. Failures are
// black76 errors so callers can classify them.
func (s *RequestService) ToInputs(ctx context.Context, req *models.OptionRequest) (black76.Inputs, error) {
	const op = "ToInputs"

	optionType, err := black76.ParseOptionType(req.OptionType)
	if err != nil {
		return black76.Inputs{}, err
	}

	f, err := toFloat(op, "future_price", req.FuturePrice)
	if err != nil {
		return black76.Inputs{}, err
	}
	k, err := toFloat(op, "strike", req.Strike)
	if err != nil {
		return black76.Inputs{}, err
	}
	r, err := s.riskFreeRate(ctx, op, req)
	if err != nil {
		return black76.Inputs{}, err
	}
	t, err := s.timeToMaturity(op, req)
	if err != nil {
		return black76.Inputs{}, err
	}

	in := black76.NewInputs(optionType, f, k, nil, r, t, nil)
	in.Shifted = req.Shifted
	if req.Price != nil {
		p, err := toFloat(op, "price", *req.Price)
		if err != nil {
			return black76.Inputs{}, err
		}
		in.P = black76.Float(p)
	}
	if req.Volatility != nil {
		sigma, err := toFloat(op, "volatility", *req.Volatility)
		if err != nil {
			return black76.Inputs{}, err
		}
		in.Sigma = black76.Float(sigma)
	}
	return in, nil
}

func (s *RequestService) riskFreeRate(ctx context.Context, op string, req *models.OptionRequest) (float64, error) {
	if req.RiskFreeRate != nil {
		return toFloat(op, "risk_free_rate", *req.RiskFreeRate)
	}
	if s.rates == nil {
		return 0, &black76.Error{Kind: black76.KindInputMissing, Op: op, Reason: "risk_free_rate is required"}
	}
	return s.rates.RiskFreeRate(ctx), nil
}

func (s *RequestService) timeToMaturity(op string, req *models.OptionRequest) (float64, error) {
	if req.TimeToMaturity != nil {
		return toFloat(op, "time_to_maturity", *req.TimeToMaturity)
	}

	var expiry time.Time
	if date := strings.TrimSpace(req.ExpirationDate); date != "" {
		parsed, err := utils.ParseExpiration(date)
		if err != nil {
			return 0, &black76.Error{Kind: black76.KindInvalidDomain, Op: op, Reason: err.Error()}
		}
		expiry = parsed
	} else {
		expiry = utils.NextThirdFriday(s.now())
		logger.Debug.Printf("no maturity given, defaulting to %s", expiry.Format("2006-01-02"))
	}
	return utils.TimeToMaturity(s.now(), expiry), nil
}

func toFloat(op, field string, d decimal.Decimal) (float64, error) {
	v, _ := d.Float64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &black76.Error{
			Kind:   black76.KindNumericConversion,
			Op:     op,
			Reason: fmt.Sprintf("%s %s is not representable as float64", field, d.String()),
		}
	}
	return v, nil
}
