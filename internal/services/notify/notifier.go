package notify

import (
	"bytes"
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

	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/synchronizer"
)

// Config configures the notification endpoint client
type Config struct {
	BaseURL    string
	Timeout    time.Duration // per attempt
	Attempts   uint
	RetryDelay time.Duration
}

// DefaultConfig returns defaults for a given base URL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		Attempts:   3,
		RetryDelay: 200 * time.Millisecond,
	}
}

// ErrRejected is returned when the endpoint answers with a non-2xx status
var ErrRejected = errors.New("notification rejected")

// HTTPNotifier posts join and move notifications to an HTTP endpoint:
//
//	POST {BaseURL}/api/games/join    {gameId, playerName}
//	POST {BaseURL}/game/{id}/move    {gameState, moveDetails}
type HTTPNotifier struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

var _ synchronizer.Notifier = (*HTTPNotifier)(nil)

// NewHTTPNotifier creates a new HTTPNotifier
func NewHTTPNotifier(cfg Config, logger *slog.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(slog.String("component", "notifier")),
	}
}

// NotifyJoin records a player joining
func (n *HTTPNotifier) NotifyJoin(ctx context.Context, join model.JoinNotification) error {
	return n.post(ctx, "/api/games/join", join)
}

// NotifyMove records a committed move
func (n *HTTPNotifier) NotifyMove(ctx context.Context, move model.MoveNotification) error {
	return n.post(ctx, "/game/"+url.PathEscape(string(move.GameState.ID))+"/move", move)
}

func (n *HTTPNotifier) post(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(n.cfg.BaseURL, "/") + path

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := n.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode <= 299:
				return nil
			case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
				return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
			default:
				return retry.Unrecoverable(fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode))
			}
		},
		retry.Context(ctx),
		retry.Attempts(n.cfg.Attempts),
		retry.Delay(n.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(attempt uint, err error, config *retry.Config) time.Duration {
			n.logger.Warn("notification attempt failed",
				slog.String("path", path),
				slog.Uint64("attempt", uint64(attempt)),
				slog.String("error", err.Error()),
			)
			return retry.BackOffDelay(attempt, err, config)
		}),
	)
}

// Nop acknowledges every notification without sending anything. Used when
// no endpoint is configured.
type Nop struct{}

var _ synchronizer.Notifier = Nop{}

func (Nop) NotifyJoin(context.Context, model.JoinNotification) error { return nil }
func (Nop) NotifyMove(context.Context, model.MoveNotification) error { return nil }
