package moralis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/thanhnp/moralis-gateway/internal/config"
	"github.com/thanhnp/moralis-gateway/internal/models"
)

// APIKeyHeader carries the Moralis API key on every upstream call
const APIKeyHeader = "x-api-key"

// ErrUpstream is returned for every failed upstream call. Its detail is for
// logs only and must not reach the caller.
var ErrUpstream = errors.New("upstream request failed")

// Client forwards queries to the Moralis API
type Client struct {
	httpClient   *http.Client
	apiKey       string
	maxBodyBytes int64
	logger       zerolog.Logger
}

// NewClient creates a new Moralis client using the configured timeout
func NewClient(cfg config.MoralisConfig, logger zerolog.Logger) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, cfg, logger)
}

// NewClientWithHTTP creates a new Moralis client with a custom HTTP client
func NewClientWithHTTP(httpClient *http.Client, cfg config.MoralisConfig, logger zerolog.Logger) *Client {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 8 << 20
	}
	return &Client{
		httpClient:   httpClient,
		apiKey:       cfg.APIKey,
		maxBodyBytes: maxBody,
		logger:       logger.With().Str("component", "moralis").Logger(),
	}
}

// Get issues a single GET to target with params as the query string and
// returns the upstream JSON body unmodified.
func (c *Client) Get(ctx context.Context, target string, params models.Params) (json.RawMessage, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", ErrUpstream, err)
	}
	u.RawQuery = params.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrUpstream, err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", u.Redacted()).Msg("Moralis API request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		c.logger.Error().Err(err).Int("status", resp.StatusCode).Msg("Failed to read Moralis API response")
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstream, err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		c.logger.Error().Int("status", resp.StatusCode).Int64("limit", c.maxBodyBytes).Msg("Moralis API response too large")
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrUpstream, c.maxBodyBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Moralis API request failed")
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrUpstream, resp.StatusCode)
	}

	if !utf8.Valid(body) || !json.Valid(body) {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Moralis API returned a malformed body")
		return nil, fmt.Errorf("%w: malformed json body", ErrUpstream)
	}

	return json.RawMessage(body), nil
}
