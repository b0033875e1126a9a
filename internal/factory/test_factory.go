package factory

import (
	"time"

	"github.com/mcoot/wordsession/internal/dependencies/mocks"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/storage/memory"
	"github.com/mcoot/wordsession/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
	Notifier   *testutil.RecordingNotifier
}

// NewTestApp creates an App on memory storage with mocked clock, randomness
// and ids. Draws take tiles in bag order unless MockRandom is told otherwise.
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs("id")
	notifier := &testutil.RecordingNotifier{}

	app := newWithDependencies(Dependencies{
		Storage:  memory.New(),
		Clock:    mockClock,
		Random:   mockRandom,
		IDs:      mockIDs,
		Notifier: notifier,
		Metrics:  metrics.Nop{},
		Logger:   testutil.NopLogger(),
	}, "", false)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		Notifier:   notifier,
	}
}

// LoadTestDictionary loads testutil.Words
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords(testutil.Words)
}
