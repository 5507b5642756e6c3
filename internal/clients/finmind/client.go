package finmind

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// rateLimitDelay spaces consecutive requests so a full-universe collection
// stays inside the provider's per-hour quota.
const rateLimitDelay = 400 * time.Millisecond

const defaultBaseURL = "https://api.finmindtrade.com"

// Client is a FinMind dataset API client. Construct one per process and inject
// it into whatever needs market data; the rate limiter lives in the client, so
// sharing the instance is what keeps requests sequenced.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a new FinMind client. An empty baseURL uses the public
// endpoint; token may be empty for the anonymous quota.
func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("client", "finmind").Logger(),
	}
}

// apiResponse is the envelope every dataset endpoint returns.
type apiResponse struct {
	Msg    string          `json:"msg"`
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// fetchDataset performs one rate-limited dataset request and decodes the data
// array into out.
func (c *Client) fetchDataset(dataset, symbol, startDate string, out interface{}) error {
	c.throttle()

	params := url.Values{}
	params.Set("dataset", dataset)
	params.Set("data_id", symbol)
	if startDate != "" {
		params.Set("start_date", startDate)
	}
	if c.token != "" {
		params.Set("token", c.token)
	}

	endpoint := fmt.Sprintf("%s/api/v4/data?%s", c.baseURL, params.Encode())
	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return fmt.Errorf("failed to fetch %s for %s: %w", dataset, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", dataset, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d: %s", dataset, resp.StatusCode, string(body))
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode %s envelope: %w", dataset, err)
	}
	if envelope.Status != 200 {
		return fmt.Errorf("%s returned status %d: %s", dataset, envelope.Status, envelope.Msg)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", dataset, err)
	}

	c.log.Debug().Str("dataset", dataset).Str("symbol", symbol).Msg("Dataset fetched")
	return nil
}

// throttle sleeps until rateLimitDelay has passed since the previous request.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if elapsed := time.Since(c.lastRequest); elapsed < rateLimitDelay {
			time.Sleep(rateLimitDelay - elapsed)
		}
	}
	c.lastRequest = time.Now()
}
