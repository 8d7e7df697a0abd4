package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	black76 "github.com/jwaldner/black76/black76_lib"
	"github.com/jwaldner/black76/internal/logger"
	"github.com/jwaldner/black76/internal/models"
	"github.com/jwaldner/black76/internal/services"
)

// priceDecimals is the precision of prices returned to clients
const priceDecimals = 6

// PricingHandler serves the pricing API
type PricingHandler struct {
	pricing  *services.PricingService
	requests *services.RequestService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricing *services.PricingService, requests *services.RequestService) *PricingHandler {
	return &PricingHandler{
		pricing:  pricing,
		requests: requests,
	}
}

// RegisterRoutes mounts the API on r
func (h *PricingHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/price", h.PriceHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/implied-volatility", h.ImpliedVolatilityHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/batch", h.BatchHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/health", h.HealthHandler).Methods("GET")
}

// PriceHandler prices one contract and returns its greeks
func (h *PricingHandler) PriceHandler(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, "POST, OPTIONS") {
		return
	}

	req, err := h.requests.ParseOptionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}
	in, err := h.requests.ToInputs(r.Context(), req)
	if err != nil {
		writeCalcError(w, err)
		return
	}

	price, greeks, err := h.pricing.Price(in)
	if err != nil {
		writeCalcError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PriceResponse{
		ID:             req.ID,
		OptionPrice:    decimal.NewFromFloat(price).Round(priceDecimals),
		TimeToMaturity: in.T,
		RiskFreeRate:   in.R,
		Greeks:         toGreeksResponse(greeks),
	})
}

// ImpliedVolatilityHandler solves one contract for volatility
func (h *PricingHandler) ImpliedVolatilityHandler(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, "POST, OPTIONS") {
		return
	}

	req, err := h.requests.ParseOptionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}
	mode, err := services.ParseExecutionMode(req.Method, "")
	if err != nil {
		writeCalcError(w, err)
		return
	}
	in, err := h.requests.ToInputs(r.Context(), req)
	if err != nil {
		writeCalcError(w, err)
		return
	}

	iv, method, err := h.pricing.ImpliedVolatility(in, mode)
	if err != nil {
		writeCalcError(w, err)
		return
	}
	greeks, err := in.WithSigma(iv).Greeks()
	if err != nil {
		writeCalcError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ImpliedVolatilityResponse{
		ID:                req.ID,
		ImpliedVolatility: iv,
		Method:            string(method),
		TimeToMaturity:    in.T,
		RiskFreeRate:      in.R,
		Greeks:            toGreeksResponse(greeks),
	})
}

// BatchHandler processes many contracts concurrently. Contracts that fail
// carry their error in the result rather than failing the request.
func (h *PricingHandler) BatchHandler(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, "POST, OPTIONS") {
		return
	}

	start := time.Now()
	req, err := h.requests.ParseBatchRequest(r, h.pricing.BatchSize())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	results := make([]models.BatchResult, len(req.Contracts))
	contracts := make([]services.Contract, 0, len(req.Contracts))
	positions := make([]int, 0, len(req.Contracts))
	for i := range req.Contracts {
		c := &req.Contracts[i]
		results[i].ID = c.ID

		mode, err := services.ParseExecutionMode(c.Method, "")
		if err != nil {
			setBatchError(&results[i], err)
			continue
		}
		in, err := h.requests.ToInputs(r.Context(), c)
		if err != nil {
			setBatchError(&results[i], err)
			continue
		}
		contracts = append(contracts, services.Contract{ID: c.ID, Inputs: in, Mode: mode})
		positions = append(positions, i)
	}

	calculated, err := h.pricing.CalculateContracts(r.Context(), contracts)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "batch failed", err)
		return
	}
	for j, cr := range calculated {
		res := &results[positions[j]]
		res.Method = string(cr.Method)
		if cr.Err != nil {
			setBatchError(res, cr.Err)
			continue
		}
		if cr.Price != nil {
			p := decimal.NewFromFloat(*cr.Price).Round(priceDecimals)
			res.OptionPrice = &p
		}
		res.ImpliedVolatility = cr.ImpliedVolatility
		if cr.Greeks != nil {
			g := toGreeksResponse(*cr.Greeks)
			res.Greeks = &g
		}
	}

	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, models.BatchResponse{
		Results:           results,
		ProcessedIn:       float64(time.Since(start).Microseconds()) / 1000.0,
		ExecutionMode:     string(h.pricing.Mode()),
		RationalBackend:   black76.RationalBackend,
		TotalCalculations: len(results),
		Failed:            failed,
	})
}

// HealthHandler reports liveness and engine settings
func (h *PricingHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:          "ok",
		ExecutionMode:   string(h.pricing.Mode()),
		RationalBackend: black76.RationalBackend,
	})
}

// setCORS writes CORS headers and reports whether the request was a preflight
func setCORS(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// writeJSON encodes v before writing the status so an encoding failure
// still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error.Printf("failed to encode response: %v", err)
		buf.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&buf).Encode(models.ErrorResponse{
			Error:   "internal error",
			Message: "failed to encode response",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	logger.Warn.Printf("%s: %v", message, err)
	writeJSON(w, status, models.ErrorResponse{
		Error:   message,
		Message: err.Error(),
	})
}

// writeCalcError maps library error kinds onto status codes
func writeCalcError(w http.ResponseWriter, err error) {
	kind := black76.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		logger.Error.Printf("calculation failed: %v", err)
	} else {
		logger.Debug.Printf("calculation rejected: %v", err)
	}
	writeJSON(w, status, models.ErrorResponse{
		Error:   "calculation failed",
		Kind:    kind.String(),
		Message: err.Error(),
	})
}

func statusForKind(kind black76.Kind) int {
	switch kind {
	case black76.KindInputMissing, black76.KindInvalidDomain, black76.KindNumericConversion:
		return http.StatusBadRequest
	case black76.KindConvergenceFailure:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func setBatchError(res *models.BatchResult, err error) {
	res.Error = err.Error()
	var calcErr *black76.Error
	if errors.As(err, &calcErr) {
		res.ErrorKind = calcErr.Kind.String()
	}
}

func toGreeksResponse(g black76.Greeks) models.GreeksResponse {
	return models.GreeksResponse{
		Delta: g.Delta,
		Gamma: g.Gamma,
		Vega:  g.Vega,
		Theta: g.Theta,
		Rho:   g.Rho,
	}
}
