// Package currency resolves exchange rates and converts amounts between
// currencies. Rates are expressed as USD per one unit of a currency.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// TableFetcher returns the latest quote table: units of each currency per
// one USD.
type TableFetcher interface {
	FetchTable(ctx context.Context) (map[string]float64, error)
}

// FetchError is a failed call to the rate API.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rate fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("rate fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RatesClient fetches the full USD rate table from an HTTP endpoint such as
// open.er-api.com or exchangerate-api.com.
type RatesClient struct {
	httpClient *http.Client
	url        string
}

// NewRatesClient creates a client for the given latest-rates URL.
func NewRatesClient(httpClient *http.Client, url string) *RatesClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RatesClient{httpClient: httpClient, url: url}
}

type ratesResponse struct {
	Rates           map[string]float64 `json:"rates"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// FetchTable calls the rate API once and returns every positive rate keyed
// by upper-case currency code.
func (c *RatesClient) FetchTable(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{URL: c.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: c.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: c.url, StatusCode: resp.StatusCode}
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{URL: c.url, Err: fmt.Errorf("decoding rates: %w", err)}
	}

	raw := body.Rates
	if len(raw) == 0 {
		raw = body.ConversionRates
	}
	if len(raw) == 0 {
		return nil, &FetchError{URL: c.url, Err: fmt.Errorf("response has no rates")}
	}

	table := make(map[string]float64, len(raw))
	for code, rate := range raw {
		if rate > 0 {
			table[strings.ToUpper(code)] = rate
		}
	}
	return table, nil
}
