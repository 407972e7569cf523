// Package ratelimit provides an in-memory sliding-window rate limiter.
// Each client identifier keeps a log of request timestamps; a request is
// allowed while fewer than the configured maximum fall inside the trailing
// window. It is used by the HTTP middleware to limit requests by client IP.
package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// Defaults applied by NewStore for zero/negative values.
const (
	DefaultMaxRequests = 60
	DefaultWindow      = time.Minute
	DefaultMaxClients  = 10000
)

type window struct {
	clientID string
	// timestamps of allowed requests inside the trailing window, oldest first
	timestamps []time.Time
}

// Store maintains per-client sliding windows. The client map is bounded:
// once maxClients distinct identifiers are tracked, the least-recently-seen
// client is dropped, so a churn of spoofed or NAT-shared addresses cannot
// grow memory without limit.
type Store struct {
	mu         sync.Mutex
	max        int
	window     time.Duration
	maxClients int
	clients    map[string]*list.Element
	seenList   *list.List // front = most recently seen

	now func() time.Time // overridable in tests
}

// NewStore creates a Store allowing max requests per client within window.
func NewStore(max int, windowSize time.Duration, maxClients int) *Store {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &Store{
		max:        max,
		window:     windowSize,
		maxClients: maxClients,
		clients:    make(map[string]*list.Element),
		seenList:   list.New(),
		now:        time.Now,
	}
}

// Allow reports whether a request from clientID may proceed. Stale timestamps
// are pruned on every call; a denied attempt is not recorded, so only allowed
// requests consume budget. Allow never fails — on deny the caller is expected
// to respond 429.
func (s *Store) Allow(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	elem, ok := s.clients[clientID]
	if !ok {
		elem = s.insert(clientID)
	} else {
		s.seenList.MoveToFront(elem)
	}
	w := elem.Value.(*window)

	// Prune entries that fell out of the trailing window. Timestamps are
	// appended in order, so the first in-window index splits the slice.
	i := 0
	for i < len(w.timestamps) && !w.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.timestamps = append(w.timestamps[:0], w.timestamps[i:]...)
	}

	if len(w.timestamps) >= s.max {
		return false
	}

	w.timestamps = append(w.timestamps, now)
	return true
}

// Len returns the number of distinct client identifiers currently tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seenList.Len()
}

// insert must be called with s.mu held.
func (s *Store) insert(clientID string) *list.Element {
	if s.seenList.Len() >= s.maxClients {
		oldest := s.seenList.Back()
		if oldest != nil {
			s.seenList.Remove(oldest)
			delete(s.clients, oldest.Value.(*window).clientID)
		}
	}
	elem := s.seenList.PushFront(&window{clientID: clientID})
	s.clients[clientID] = elem
	return elem
}
