package balldontlie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/omarshaarawi/courtside/internal/config"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when upstream answers 429.
var ErrRateLimited = errors.New("balldontlie rate limit exceeded")

type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	Config     config.BallDontLie
}

func NewClient(cfg config.BallDontLie) *Client {
	perMinute := cfg.RateLimit
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		baseURL:    cfg.BaseURL,
		Config:     cfg,
	}
}

// Get issues a GET against endpoint and decodes the JSON body into result.
// Array parameters are passed as repeated keys, e.g. "team_ids[]".
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Authorization", c.Config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}
