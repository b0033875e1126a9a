package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mcoot/wordsession/internal/metrics"
)

// ClientConfig configures the remote word-validation client
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration // per attempt
	Attempts   uint
	RetryDelay time.Duration
}

// DefaultClientConfig returns defaults for a given base URL
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:    baseURL,
		Timeout:    3 * time.Second,
		Attempts:   3,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Client asks a remote service whether words are legal:
// GET {BaseURL}/api/validate-word/{word} -> {"isValid": bool}
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	metrics    metrics.Recorder
	logger     *slog.Logger
}

var _ Checker = (*Client)(nil)

// NewClient creates a remote dictionary client
func NewClient(cfg ClientConfig, recorder metrics.Recorder, logger *slog.Logger) *Client {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    recorder,
		logger:     logger.With(slog.String("component", "dictionary_client")),
	}
}

// ValidationResponse is the wire shape of a word lookup
type ValidationResponse struct {
	IsValid bool `json:"isValid"`
}

var errServerStatus = errors.New("dictionary service error")

// CheckWord returns true only when the remote service positively confirms the word
func (c *Client) CheckWord(ctx context.Context, word string) bool {
	start := time.Now()
	valid, err := c.lookup(ctx, word)
	c.metrics.RecordWordLookupLatency("remote", time.Since(start))
	if err != nil {
		c.logger.Warn("word lookup failed, treating as invalid",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		valid = false
	}
	c.metrics.RecordWordLookup("remote", valid)
	return valid
}

func (c *Client) lookup(ctx context.Context, word string) (bool, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/validate-word/" + url.PathEscape(strings.ToLower(word))

	var result ValidationResponse
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode >= 500:
				return fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode > 299:
				return retry.Unrecoverable(fmt.Errorf("%w: status %d", errServerStatus, resp.StatusCode))
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			c.logger.Debug("retrying word lookup", slog.Uint64("attempt", uint64(n)), slog.String("error", err.Error()))
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return false, err
	}
	return result.IsValid, nil
}
