package game

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordsession/internal/dependencies/mocks"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/board"
	"github.com/mcoot/wordsession/internal/services/dictionary"
	"github.com/mcoot/wordsession/internal/services/scoring"
	"github.com/mcoot/wordsession/internal/services/synchronizer"
	"github.com/mcoot/wordsession/internal/services/tilebag"
	"github.com/mcoot/wordsession/internal/storage"
	redisstorage "github.com/mcoot/wordsession/internal/storage/redis"
	"github.com/mcoot/wordsession/internal/testutil"
)

// gatedNotifier holds every join notification until released
type gatedNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func newGatedNotifier() *gatedNotifier {
	return &gatedNotifier{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (n *gatedNotifier) NotifyJoin(ctx context.Context, _ model.JoinNotification) error {
	n.entered <- struct{}{}
	select {
	case <-n.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *gatedNotifier) NotifyMove(context.Context, model.MoveNotification) error { return nil }

// SharedStoreSuite runs two controllers, as two server instances would, over
// one Redis store
type SharedStoreSuite struct {
	suite.Suite
	mini      *miniredis.Miniredis
	store     storage.Storage
	gate      *gatedNotifier
	publisher *testutil.RecordingPublisher
	first     *Controller
	second    *Controller
	ctx       context.Context
}

func TestSharedStoreSuite(t *testing.T) {
	suite.Run(t, new(SharedStoreSuite))
}

func (s *SharedStoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.ctx = context.Background()
	s.gate = newGatedNotifier()
	s.publisher = &testutil.RecordingPublisher{}

	random := mocks.NewMockRandom()
	random.QueueString("ABC123")
	s.first, s.store = s.newInstance(s.gate, s.publisher, random, "a")
	s.second, _ = s.newInstance(&testutil.RecordingNotifier{}, &testutil.RecordingPublisher{}, mocks.NewMockRandom(), "b")
}

func (s *SharedStoreSuite) newInstance(notifier synchronizer.Notifier, publisher synchronizer.Publisher, random *mocks.MockRandom, idPrefix string) (*Controller, storage.Storage) {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	store := redisstorage.NewWithClient(client, redisstorage.DefaultConfig())

	dict := dictionary.New(store, metrics.Nop{})
	s.Require().NoError(dict.LoadWords([]string{"aa", "ab"}))

	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	ids := mocks.NewMockIDs(idPrefix)
	return NewController(
		store,
		board.New(),
		scoring.New(dict),
		tilebag.New(random, ids),
		synchronizer.New(notifier, publisher, clk, metrics.Nop{}, testutil.NopLogger()),
		clk,
		random,
		ids,
		metrics.Nop{},
		testutil.NopLogger(),
	), store
}

func (s *SharedStoreSuite) TestInterleavedJoinDoesNotOverwriteOtherInstance() {
	session, err := s.first.CreateSession(s.ctx)
	s.Require().NoError(err)

	type joinResult struct {
		player *model.Player
		err    error
	}
	done := make(chan joinResult, 1)
	go func() {
		_, player, err := s.first.Join(s.ctx, session.ID, "alice")
		done <- joinResult{player, err}
	}()
	<-s.gate.entered

	_, bob, err := s.second.Join(s.ctx, session.ID, "bob")
	s.Require().NoError(err)

	close(s.gate.release)
	res := <-done
	s.ErrorIs(res.err, model.ErrSessionConflict)
	s.Nil(res.player)
	s.Empty(s.publisher.Events(), "a join that was not stored must not be broadcast")

	stored, err := s.store.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Players, 1)
	s.Equal(bob.ID, stored.Players[0].ID)
	s.Equal(int64(2), stored.Version)
	s.Equal(100, stored.TileCount())
}

func (s *SharedStoreSuite) TestStalePendingPlacementIsRejected() {
	session, err := s.first.CreateSession(s.ctx)
	s.Require().NoError(err)
	close(s.gate.release)
	_, alice, err := s.first.Join(s.ctx, session.ID, "alice")
	s.Require().NoError(err)

	// a read taken before the other instance placed a tile
	stale, err := s.store.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)

	_, err = s.second.PlacePending(s.ctx, session.ID, alice.ID, alice.Rack[0].ID, model.Center, 0)
	s.Require().NoError(err)

	s.ErrorIs(s.store.SaveSession(s.ctx, stale), model.ErrSessionConflict)

	stored, err := s.store.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(stored.Pending, 1)
	s.Equal(100, stored.TileCount())
}
