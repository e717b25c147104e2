package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-history/internal/dashboard"
)

var (
	// ErrNotFound is returned when no dashboard exists for an id.
	ErrNotFound = errors.New("no dashboard with that id")
)

// session is a live dashboard plus its last access time.
type session struct {
	controller *dashboard.Controller
	lastSeen   time.Time
}

// MemoryStore is a concurrency-safe in-memory registry of live dashboards.
type MemoryStore struct {
	mu sync.RWMutex

	// key: dashboard id
	data map[string]*session

	// retention configuration
	maxSessions int           // max number of live dashboards
	maxIdle     time.Duration // idle time after which a dashboard is swept

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxSessions or maxIdle is <= 0, it is treated as unlimited.
func NewMemoryStore(maxSessions int, maxIdle time.Duration) *MemoryStore {
	return &MemoryStore{
		data:        make(map[string]*session),
		maxSessions: maxSessions,
		maxIdle:     maxIdle,
		now:         time.Now,
	}
}

// Save registers a dashboard under id. When the store is full the least
// recently used dashboards are evicted and returned so the caller can
// close them.
func (s *MemoryStore) Save(id string, c *dashboard.Controller) []*dashboard.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[id] = &session{controller: c, lastSeen: s.now()}

	if s.maxSessions <= 0 || len(s.data) <= s.maxSessions {
		return nil
	}

	ids := make([]string, 0, len(s.data))
	for k := range s.data {
		if k != id {
			ids = append(ids, k)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.data[ids[i]].lastSeen.Before(s.data[ids[j]].lastSeen)
	})

	over := len(s.data) - s.maxSessions
	evicted := make([]*dashboard.Controller, 0, over)
	for _, k := range ids[:over] {
		evicted = append(evicted, s.data[k].controller)
		delete(s.data, k)
	}
	return evicted
}

// Get returns the dashboard for id and marks it as recently used.
func (s *MemoryStore) Get(id string) (*dashboard.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess.controller, nil
}

// Delete removes the dashboard for id and returns it.
func (s *MemoryStore) Delete(id string) (*dashboard.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.data, id)
	return sess.controller, nil
}

// Len returns the number of live dashboards.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Sweep removes dashboards idle for longer than maxIdle and returns them.
func (s *MemoryStore) Sweep() []*dashboard.Controller {
	if s.maxIdle <= 0 {
		return nil
	}

	cutoff := s.now().Add(-s.maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []*dashboard.Controller
	for id, sess := range s.data {
		if sess.lastSeen.Before(cutoff) {
			evicted = append(evicted, sess.controller)
			delete(s.data, id)
		}
	}
	return evicted
}

// Drain removes and returns every dashboard, for shutdown.
func (s *MemoryStore) Drain() []*dashboard.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*dashboard.Controller, 0, len(s.data))
	for id, sess := range s.data {
		out = append(out, sess.controller)
		delete(s.data, id)
	}
	return out
}
