package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordsession/internal/dependencies/mocks"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/storage/memory"
	"github.com/mcoot/wordsession/internal/testutil"
)

type fakeForgetter struct {
	forgotten []model.SessionID
}

func (f *fakeForgetter) Forget(ids ...model.SessionID) {
	f.forgotten = append(f.forgotten, ids...)
}

type fakeHubs struct {
	removed []model.SessionID
	empty   int
}

func (h *fakeHubs) RemoveHub(id model.SessionID) {
	h.removed = append(h.removed, id)
}

func (h *fakeHubs) CleanupEmptyHubs() int {
	return h.empty
}

type expiryRecorder struct {
	metrics.Nop
	expired int
}

func (r *expiryRecorder) RecordSessionsExpired(count int) {
	r.expired += count
}

type failingStore struct{}

func (failingStore) DeleteIdleSessions(ctx context.Context, before time.Time) ([]model.SessionID, error) {
	return nil, errors.New("connection refused")
}

type CleanupSuite struct {
	suite.Suite
	storage   *memory.Storage
	clock     *mocks.MockClock
	forgetter *fakeForgetter
	hubs      *fakeHubs
	recorder  *expiryRecorder
	job       *Job
	ctx       context.Context
}

func TestCleanupSuite(t *testing.T) {
	suite.Run(t, new(CleanupSuite))
}

func (s *CleanupSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	s.forgetter = &fakeForgetter{}
	s.hubs = &fakeHubs{empty: 2}
	s.recorder = &expiryRecorder{}
	s.job = NewJob(s.storage, s.forgetter, s.hubs, s.clock, s.recorder, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *CleanupSuite) save(id model.SessionID, updated time.Time) {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.GameSession{ID: id, UpdatedAt: updated}))
}

func (s *CleanupSuite) TestDefaults() {
	s.Equal(DefaultIdleTTL, s.job.IdleTTL)
}

func (s *CleanupSuite) TestRunRemovesIdleSessions() {
	now := s.clock.Now()
	s.save("OLD001", now.Add(-48*time.Hour))
	s.save("OLD002", now.Add(-25*time.Hour))
	s.save("NEW001", now.Add(-time.Hour))

	s.Require().NoError(s.job.Run(s.ctx))

	s.Equal([]model.SessionID{"OLD001", "OLD002"}, s.forgetter.forgotten)
	s.Equal([]model.SessionID{"OLD001", "OLD002"}, s.hubs.removed)

	exists, err := s.storage.SessionExists(s.ctx, "NEW001")
	s.Require().NoError(err)
	s.True(exists)
	exists, err = s.storage.SessionExists(s.ctx, "OLD001")
	s.Require().NoError(err)
	s.False(exists)

	s.Equal(2, s.recorder.expired)
}

func (s *CleanupSuite) TestRunIsIdempotent() {
	s.save("OLD001", s.clock.Now().Add(-48*time.Hour))

	s.Require().NoError(s.job.Run(s.ctx))
	s.Require().NoError(s.job.Run(s.ctx))

	s.Equal([]model.SessionID{"OLD001"}, s.forgetter.forgotten)
}

func (s *CleanupSuite) TestRunHonoursIdleTTL() {
	s.save("OLD001", s.clock.Now().Add(-2*time.Hour))
	s.job.IdleTTL = time.Hour

	s.Require().NoError(s.job.Run(s.ctx))

	s.Equal([]model.SessionID{"OLD001"}, s.forgetter.forgotten)
}

func (s *CleanupSuite) TestRunStoreError() {
	job := NewJob(failingStore{}, s.forgetter, s.hubs, s.clock, nil, testutil.NopLogger())

	err := job.Run(s.ctx)
	s.ErrorContains(err, "connection refused")
	s.Empty(s.forgetter.forgotten)
}

func (s *CleanupSuite) TestStartStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		s.job.Start(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("worker did not stop")
	}
}
