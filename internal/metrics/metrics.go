package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the game services
type Recorder interface {
	RecordSessionCreated()
	RecordPlayerJoined()
	RecordMoveSubmitted(score int)
	RecordMoveRejected(reason string)
	RecordBroadcast(eventType string)
	RecordNotificationFailure(kind string)
	RecordWordLookup(source string, valid bool)
	RecordWordLookupLatency(source string, d time.Duration)
	RecordSessionsExpired(count int)
}

// Collector records game metrics into a Prometheus registry
type Collector struct {
	sessionsCreated      prometheus.Counter
	playersJoined        prometheus.Counter
	movesSubmitted       prometheus.Counter
	moveScore            prometheus.Histogram
	movesRejected        *prometheus.CounterVec
	broadcasts           *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	wordLookups          *prometheus.CounterVec
	wordLookupLatency    *prometheus.HistogramVec
	sessionsExpired      prometheus.Counter
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordsession_sessions_created_total",
			Help: "Game sessions created",
		}),
		playersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordsession_players_joined_total",
			Help: "Players that joined a session",
		}),
		movesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordsession_moves_submitted_total",
			Help: "Moves accepted and committed",
		}),
		moveScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wordsession_move_score",
			Help:    "Score of committed moves",
			Buckets: []float64{2, 5, 10, 20, 30, 50, 80, 120},
		}),
		movesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordsession_moves_rejected_total",
			Help: "Submitted moves rejected, by reason",
		}, []string{"reason"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordsession_broadcasts_total",
			Help: "Events broadcast on session channels, by type",
		}, []string{"event"}),
		notificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordsession_notification_failures_total",
			Help: "Notification endpoint failures, by kind",
		}, []string{"kind"}),
		wordLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordsession_word_lookups_total",
			Help: "Dictionary lookups, by source and result",
		}, []string{"source", "result"}),
		wordLookupLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wordsession_word_lookup_latency_seconds",
			Help:    "Dictionary lookup latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordsession_sessions_expired_total",
			Help: "Idle sessions removed by the cleanup worker",
		}),
	}

	reg.MustRegister(
		c.sessionsCreated,
		c.playersJoined,
		c.movesSubmitted,
		c.moveScore,
		c.movesRejected,
		c.broadcasts,
		c.notificationFailures,
		c.wordLookups,
		c.wordLookupLatency,
		c.sessionsExpired,
	)

	return c
}

func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

func (c *Collector) RecordPlayerJoined() {
	c.playersJoined.Inc()
}

func (c *Collector) RecordMoveSubmitted(score int) {
	c.movesSubmitted.Inc()
	c.moveScore.Observe(float64(score))
}

func (c *Collector) RecordMoveRejected(reason string) {
	c.movesRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordBroadcast(eventType string) {
	c.broadcasts.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordNotificationFailure(kind string) {
	c.notificationFailures.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordWordLookup(source string, valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	c.wordLookups.WithLabelValues(source, result).Inc()
}

func (c *Collector) RecordWordLookupLatency(source string, d time.Duration) {
	c.wordLookupLatency.WithLabelValues(source).Observe(d.Seconds())
}

func (c *Collector) RecordSessionsExpired(count int) {
	c.sessionsExpired.Add(float64(count))
}

// Handler returns the Prometheus scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards all metrics
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordSessionCreated()                         {}
func (Nop) RecordPlayerJoined()                           {}
func (Nop) RecordMoveSubmitted(int)                       {}
func (Nop) RecordMoveRejected(string)                     {}
func (Nop) RecordBroadcast(string)                        {}
func (Nop) RecordNotificationFailure(string)              {}
func (Nop) RecordWordLookup(string, bool)                 {}
func (Nop) RecordWordLookupLatency(string, time.Duration) {}
func (Nop) RecordSessionsExpired(int)                     {}
