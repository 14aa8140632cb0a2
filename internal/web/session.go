// Package web serves the commute form as a server-rendered page. Each
// browser gets its own form, kept in memory and dropped after a period of
// inactivity.
package web

import (
	"context"
	"sync"
	"time"

	"distancematrix/internal/form"
	"distancematrix/internal/maps"
	"distancematrix/platform/logger"

	"github.com/google/uuid"
)

// Session is one browser's form plus its autocomplete widgets and pending
// warnings.
type Session struct {
	ID          string
	Form        *form.Form
	Origin      *maps.Selection
	Destination *maps.Selection

	mu       sync.Mutex
	flash    []string
	lastSeen time.Time
}

// Warn queues a message for the next page render.
func (s *Session) Warn(message string) {
	s.mu.Lock()
	s.flash = append(s.flash, message)
	s.mu.Unlock()
}

// TakeFlash returns and clears the queued messages.
func (s *Session) TakeFlash() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	flash := s.flash
	s.flash = nil
	return flash
}

// Selection returns the widget for field, or nil for an unknown field.
func (s *Session) Selection(field string) *maps.Selection {
	switch field {
	case "origin":
		return s.Origin
	case "destination":
		return s.Destination
	default:
		return nil
	}
}

// PlaceChanged forwards a widget change to the form.
func (s *Session) PlaceChanged(field string) {
	switch field {
	case "origin":
		s.Form.OriginPlaceChanged()
	case "destination":
		s.Form.DestinationPlaceChanged()
	}
}

// Store keeps sessions in memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	fetcher form.Fetcher
	log     *logger.Logger
}

// NewStore creates a store whose forms fetch through fetcher. Sessions idle
// for longer than ttl are expired; a non-positive ttl keeps them forever.
func NewStore(fetcher form.Fetcher, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		fetcher:  fetcher,
		log:      log,
	}
}

// Create starts a new session.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:          uuid.NewString(),
		Origin:      &maps.Selection{},
		Destination: &maps.Selection{},
	}
	sess.Form = form.New(s.fetcher, sess, s.log)
	sess.Form.MountOrigin(sess.Origin)
	sess.Form.MountDestination(sess.Destination)

	s.mu.Lock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a live session and marks it as used.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.log.Debug("expired form sessions", "count", removed)
			}
		}
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}
