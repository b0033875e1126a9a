package game

import (
	"sync"

	"github.com/mcoot/wordsession/internal/model"
)

type sessionLock struct {
	sync.Mutex
	refs int // holders and waiters
}

// sessionLocks hands out one mutex per session id
type sessionLocks struct {
	mu    sync.Mutex
	locks map[model.SessionID]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[model.SessionID]*sessionLock)}
}

// lock blocks until the session's mutex is held and returns its unlock func
func (l *sessionLocks) lock(id model.SessionID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sessionLock{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		l.mu.Unlock()
	}
}

// forget drops the session's mutex unless someone holds or waits on it
func (l *sessionLocks) forget(id model.SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.locks[id]; ok && m.refs == 0 {
		delete(l.locks, id)
	}
}
