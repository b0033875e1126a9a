package synchronizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/wordsession/internal/dependencies/clock"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/model"
)

// Notifier records state changes with the external notification endpoint.
// A nil error is the endpoint's acknowledgement.
type Notifier interface {
	NotifyJoin(ctx context.Context, n model.JoinNotification) error
	NotifyMove(ctx context.Context, n model.MoveNotification) error
}

// Publisher delivers events to every subscriber of a session channel
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// CommitFunc persists the snapshot being published
type CommitFunc func(ctx context.Context) error

// Synchronizer propagates authoritative state changes. Every publish runs
// notify, then commit, then broadcast: a change the endpoint did not
// acknowledge is never stored, and a change that failed to store is never
// broadcast.
type Synchronizer struct {
	notifier  Notifier
	publisher Publisher
	clock     clock.Clock
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// New creates a new Synchronizer
func New(notifier Notifier, publisher Publisher, clk clock.Clock, recorder metrics.Recorder, logger *slog.Logger) *Synchronizer {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Synchronizer{
		notifier:  notifier,
		publisher: publisher,
		clock:     clk,
		metrics:   recorder,
		logger:    logger.With(slog.String("component", "synchronizer")),
	}
}

// PublishJoin announces a new player
func (s *Synchronizer) PublishJoin(ctx context.Context, session *model.GameSession, player model.Player, commit CommitFunc) error {
	err := s.notifier.NotifyJoin(ctx, model.JoinNotification{
		GameID:     session.ID,
		PlayerName: player.Name,
	})
	if err != nil {
		return s.notificationFailed(session.ID, "join", err)
	}

	if err := commit(ctx); err != nil {
		return err
	}

	s.broadcast(ctx, model.Event{
		Type:      model.EventPlayerJoined,
		SessionID: session.ID,
		Timestamp: s.clock.Now(),
		Payload:   player.Clone(),
	})
	return nil
}

// PublishMove announces a committed move together with the new snapshot
func (s *Synchronizer) PublishMove(ctx context.Context, session *model.GameSession, details model.MoveDetails, commit CommitFunc) error {
	err := s.notifier.NotifyMove(ctx, model.MoveNotification{
		GameState:   session,
		MoveDetails: details,
	})
	if err != nil {
		return s.notificationFailed(session.ID, "move", err)
	}

	if err := commit(ctx); err != nil {
		return err
	}

	s.broadcast(ctx, model.Event{
		Type:      model.EventMoveMade,
		SessionID: session.ID,
		Timestamp: s.clock.Now(),
		Payload: model.MoveMadePayload{
			GameState:   session.Clone(),
			MoveDetails: details,
		},
	})
	return nil
}

// PublishEnded announces that a session reached a terminal state.
// Ending is not reported to the notification endpoint.
func (s *Synchronizer) PublishEnded(ctx context.Context, session *model.GameSession, commit CommitFunc) error {
	if err := commit(ctx); err != nil {
		return err
	}

	s.broadcast(ctx, model.Event{
		Type:      model.EventSessionEnded,
		SessionID: session.ID,
		Timestamp: s.clock.Now(),
		Payload: model.SessionEndedPayload{
			GameState: session.Clone(),
			Reason:    session.EndReason,
		},
	})
	return nil
}

func (s *Synchronizer) notificationFailed(sessionID model.SessionID, kind string, err error) error {
	s.metrics.RecordNotificationFailure(kind)
	s.logger.Warn("notification not acknowledged",
		slog.String("session_id", string(sessionID)),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %w", model.ErrNotificationFailure, err)
}

// broadcast failures are logged only; peers resynchronise from the next snapshot
func (s *Synchronizer) broadcast(ctx context.Context, event model.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("broadcast failed",
			slog.String("session_id", string(event.SessionID)),
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.metrics.RecordBroadcast(string(event.Type))
}
