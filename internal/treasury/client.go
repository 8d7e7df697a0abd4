package treasury

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jwaldner/black76/internal/logger"
)

const ratesPath = "/v2/accounting/od/avg_interest_rates?fields=avg_interest_rate_amt,record_date&filter=security_desc:eq:Treasury%20Bills&sort=-record_date&page[size]=1"

// Client supplies the latest Treasury Bill rate as the default risk-free
// rate. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cacheTTL   time.Duration

	group singleflight.Group

	mu            sync.Mutex
	lastKnownRate float64
	lastFetchTime time.Time
}

type TreasuryResponse struct {
	Data []TreasuryRate `json:"data"`
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
}

type TreasuryRate struct {
	RecordDate            string          `json:"record_date"`
	SecurityDesc          string          `json:"security_desc"`
	AvgInterestRateAmount decimal.Decimal `json:"avg_interest_rate_amt"`
}

// NewClient creates a client. fallbackRate is returned until the first
// successful fetch; an empty baseURL disables fetching entirely.
func NewClient(baseURL string, fallbackRate float64, cacheTTL time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:       baseURL,
		cacheTTL:      cacheTTL,
		lastKnownRate: fallbackRate,
	}
}

// fetchRiskFreeRate does the actual API call
func (c *Client) fetchRiskFreeRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ratesPath, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build Treasury request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch Treasury rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("Treasury API returned status %d", resp.StatusCode)
	}

	var treasuryResp TreasuryResponse
	if err := json.NewDecoder(resp.Body).Decode(&treasuryResp); err != nil {
		return 0, fmt.Errorf("failed to decode Treasury response: %w", err)
	}
	if len(treasuryResp.Data) == 0 {
		return 0, fmt.Errorf("no Treasury rate data returned")
	}

	// Percentage to decimal (3.983 -> 0.03983)
	rate, _ := treasuryResp.Data[0].AvgInterestRateAmount.Shift(-2).Float64()
	return rate, nil
}

// RiskFreeRate returns the cached rate while it is fresh, otherwise fetches
// a new one. Concurrent callers share a single fetch, which is not bound to
// any one caller's cancellation. A caller whose ctx ends first, or a failed
// fetch, gets the last known rate.
func (c *Client) RiskFreeRate(ctx context.Context) float64 {
	c.mu.Lock()
	if c.baseURL == "" || (!c.lastFetchTime.IsZero() && time.Since(c.lastFetchTime) < c.cacheTTL) {
		rate := c.lastKnownRate
		c.mu.Unlock()
		return rate
	}
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("rate", func() (interface{}, error) {
		rate, err := c.fetchRiskFreeRate(fetchCtx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			logger.Warn.Printf("Treasury API failed (%v), using last known rate %.6f", err, c.lastKnownRate)
			return c.lastKnownRate, nil
		}
		c.lastKnownRate = rate
		c.lastFetchTime = time.Now()
		logger.Info.Printf("Fetched Treasury Bill rate: %.3f%% (%.6f decimal)", rate*100, rate)
		return rate, nil
	})

	select {
	case res := <-ch:
		return res.Val.(float64)
	case <-ctx.Done():
		rate, _, _ := c.GetCacheInfo()
		return rate
	}
}

// GetCacheInfo returns information about the cached rate
func (c *Client) GetCacheInfo() (rate float64, age time.Duration, isInitialized bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastFetchTime.IsZero() {
		return c.lastKnownRate, 0, false
	}
	return c.lastKnownRate, time.Since(c.lastFetchTime), true
}
