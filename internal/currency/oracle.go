package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Oracle fetches exchange rates for a base currency from an external
// service, bounded by a timeout. Grounded on paymentgateway.Client's
// http.Client-with-context-timeout pattern.
type Oracle struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewOracle(baseURL string, timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Oracle{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type oracleResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates returns every rate the oracle reports for the given base
// currency, keyed by target code.
func (o *Oracle) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/latest?base=%s", o.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build oracle request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var out oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}

	return out.Rates, nil
}
