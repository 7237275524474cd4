// Package session keeps the per-user check-in state in memory.
//
// Every user gets an entry with its own lock. Operations that must not
// interleave for one user (open, answer, reminder fire) run inside Do.
package session

import (
	"sync"
	"time"

	"telegram-mood-diary/internal/models"
)

type entry struct {
	mu   sync.Mutex
	sess models.Session
}

type Store struct {
	mu    sync.Mutex
	users map[int64]*entry
}

func NewStore() *Store {
	return &Store{users: make(map[int64]*entry)}
}

func (s *Store) get(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.users[userID]
	if !ok {
		e = &entry{sess: models.Session{UserID: userID, State: models.StateIdle}}
		s.users[userID] = e
	}
	return e
}

// Do runs fn while holding userID's lock. fn may mutate the session.
// Calls for different users never block each other.
func (s *Store) Do(userID int64, fn func(sess *models.Session)) {
	e := s.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.sess)
}

// Open marks the user as awaiting an answer and returns the new generation.
// An already open session is superseded.
func (s *Store) Open(userID int64, now time.Time) uint64 {
	var gen uint64
	s.Do(userID, func(sess *models.Session) {
		gen = OpenLocked(sess, now)
	})
	return gen
}

func (s *Store) IsAwaiting(userID int64) bool {
	var awaiting bool
	s.Do(userID, func(sess *models.Session) {
		awaiting = sess.Awaiting()
	})
	return awaiting
}

// Close clears the awaiting state. Closing an idle session is a no-op.
func (s *Store) Close(userID int64) {
	s.Do(userID, CloseLocked)
}

// Snapshot returns a copy of the user's session.
func (s *Store) Snapshot(userID int64) models.Session {
	var cp models.Session
	s.Do(userID, func(sess *models.Session) { cp = *sess })
	return cp
}

// OpenLocked and CloseLocked are for callers already inside Do.
func OpenLocked(sess *models.Session, now time.Time) uint64 {
	sess.Generation++
	sess.State = models.StateAwaiting
	sess.OpenedAt = now
	return sess.Generation
}

func CloseLocked(sess *models.Session) {
	sess.State = models.StateIdle
	sess.OpenedAt = time.Time{}
}
