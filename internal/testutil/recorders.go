package testutil

import (
	"context"
	"sync"

	"github.com/mcoot/wordsession/internal/model"
)

// RecordingNotifier acknowledges notifications and keeps them for assertions.
// Set Err to make every notification fail.
type RecordingNotifier struct {
	mu    sync.Mutex
	Err   error
	joins []model.JoinNotification
	moves []model.MoveNotification
}

func (n *RecordingNotifier) NotifyJoin(ctx context.Context, join model.JoinNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.joins = append(n.joins, join)
	return nil
}

func (n *RecordingNotifier) NotifyMove(ctx context.Context, move model.MoveNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.moves = append(n.moves, move)
	return nil
}

// Fail makes subsequent notifications return err (nil to recover)
func (n *RecordingNotifier) Fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Err = err
}

func (n *RecordingNotifier) Joins() []model.JoinNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.JoinNotification(nil), n.joins...)
}

func (n *RecordingNotifier) Moves() []model.MoveNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.MoveNotification(nil), n.moves...)
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Event(nil), p.events...)
}

// Types returns the type of each published event in order
func (p *RecordingPublisher) Types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}
