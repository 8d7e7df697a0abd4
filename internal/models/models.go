package models

import "github.com/shopspring/decimal"

// OptionRequest is one contract as sent by API clients. Amounts accept JSON
// numbers or decimal strings.
type OptionRequest struct {
	ID             string           `json:"id,omitempty"`
	OptionType     string           `json:"option_type"` // "call" or "put"
	FuturePrice    decimal.Decimal  `json:"future_price"`
	Strike         decimal.Decimal  `json:"strike"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	RiskFreeRate   *decimal.Decimal `json:"risk_free_rate,omitempty"`   // defaults to the Treasury Bill rate
	TimeToMaturity *decimal.Decimal `json:"time_to_maturity,omitempty"` // years
	ExpirationDate string           `json:"expiration_date,omitempty"`  // YYYY-MM-DD, used when time_to_maturity is absent
	Volatility     *decimal.Decimal `json:"volatility,omitempty"`
	Shifted        bool             `json:"shifted"`
	Method         string           `json:"method,omitempty"` // newton, rational, auto
}

// BatchRequest prices or solves many contracts in one call
type BatchRequest struct {
	Contracts []OptionRequest `json:"contracts"`
}

// GreeksResponse mirrors black76.Greeks
type GreeksResponse struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// PriceResponse for a single priced contract
type PriceResponse struct {
	ID             string          `json:"id,omitempty"`
	OptionPrice    decimal.Decimal `json:"option_price"`
	TimeToMaturity float64         `json:"time_to_maturity"`
	RiskFreeRate   float64         `json:"risk_free_rate"`
	Greeks         GreeksResponse  `json:"greeks"`
}

// ImpliedVolatilityResponse for a single solved contract
type ImpliedVolatilityResponse struct {
	ID                string         `json:"id,omitempty"`
	ImpliedVolatility float64        `json:"implied_volatility"`
	Method            string         `json:"method"`
	TimeToMaturity    float64        `json:"time_to_maturity"`
	RiskFreeRate      float64        `json:"risk_free_rate"`
	Greeks            GreeksResponse `json:"greeks"`
}

// BatchResult carries either a result or the error for one contract
type BatchResult struct {
	ID                string           `json:"id,omitempty"`
	OptionPrice       *decimal.Decimal `json:"option_price,omitempty"`
	ImpliedVolatility *float64         `json:"implied_volatility,omitempty"`
	Method            string           `json:"method,omitempty"`
	Greeks            *GreeksResponse  `json:"greeks,omitempty"`
	Error             string           `json:"error,omitempty"`
	ErrorKind         string           `json:"error_kind,omitempty"`
}

// BatchResponse for multiple results
type BatchResponse struct {
	Results           []BatchResult `json:"results"`
	ProcessedIn       float64       `json:"processed_in_ms"`
	ExecutionMode     string        `json:"execution_mode"`
	RationalBackend   string        `json:"rational_backend"`
	TotalCalculations int           `json:"total_calculations"`
	Failed            int           `json:"failed"`
}

// ErrorResponse is written for any failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// HealthResponse reports the engine configuration
type HealthResponse struct {
	Status          string `json:"status"`
	ExecutionMode   string `json:"execution_mode"`
	RationalBackend string `json:"rational_backend"`
}
