// Package redis relays session events between server instances over Redis
// pub/sub. Every instance publishes to the bus and relays everything it
// receives, its own events included, to its local SSE hubs.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/synchronizer"
)

// ChannelPattern matches every session channel
const ChannelPattern = "wsgame:events:*"

// Channel returns the pub/sub channel for a session
func Channel(id model.SessionID) string {
	return fmt.Sprintf("wsgame:events:%s", id)
}

// Publisher writes events to the session's Redis channel
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a Publisher on an existing client
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, event model.Event) error {
	data, err := synchronizer.EncodeEvent(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel(event.SessionID), data).Err()
}

var _ synchronizer.Publisher = (*Publisher)(nil)

// Subscriber relays bus events to a local publisher
type Subscriber struct {
	client *redis.Client
	local  synchronizer.Publisher
	logger *slog.Logger
}

// NewSubscriber creates a Subscriber that forwards to local
func NewSubscriber(client *redis.Client, local synchronizer.Publisher, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		client: client,
		local:  local,
		logger: logger.With(slog.String("component", "pubsub")),
	}
}

// Run listens until ctx is cancelled. Undecodable messages are logged and skipped.
func (s *Subscriber) Run(ctx context.Context) error {
	ps := s.client.PSubscribe(ctx, ChannelPattern)
	defer func() { _ = ps.Close() }()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelPattern, err)
	}
	s.logger.Info("pubsub relay started", slog.String("pattern", ChannelPattern))

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("pubsub relay stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.relay(ctx, msg)
		}
	}
}

func (s *Subscriber) relay(ctx context.Context, msg *redis.Message) {
	event, err := synchronizer.DecodeEvent([]byte(msg.Payload))
	if err != nil {
		s.logger.Warn("pubsub message dropped",
			slog.String("channel", msg.Channel),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.local.Publish(ctx, event); err != nil {
		s.logger.Warn("pubsub relay failed",
			slog.String("session_id", string(event.SessionID)),
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()),
		)
	}
}
