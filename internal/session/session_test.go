package session

import (
	"sync"
	"testing"
	"time"

	"telegram-mood-diary/internal/models"
)

func TestOpenCloseCycle(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	if s.IsAwaiting(1) {
		t.Fatal("new user must start idle")
	}

	g1 := s.Open(1, now)
	if !s.IsAwaiting(1) {
		t.Fatal("expected awaiting after Open")
	}
	if snap := s.Snapshot(1); !snap.OpenedAt.Equal(now) {
		t.Errorf("OpenedAt = %v, want %v", snap.OpenedAt, now)
	}

	g2 := s.Open(1, now.Add(time.Minute))
	if g2 <= g1 {
		t.Errorf("re-open generation %d not after %d", g2, g1)
	}

	s.Close(1)
	if s.IsAwaiting(1) {
		t.Fatal("expected idle after Close")
	}

	// a user cycles repeatedly
	s.Open(1, now)
	s.Close(1)
	if got := s.Snapshot(1).State; got != models.StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestCloseUnopenedIsNoop(t *testing.T) {
	s := NewStore()
	s.Close(5)
	s.Close(5)
	if s.IsAwaiting(5) {
		t.Error("closing an unopened session must leave it idle")
	}
}

func TestUsersAreIndependent(t *testing.T) {
	s := NewStore()
	s.Open(1, time.Now())
	s.Close(2)
	if !s.IsAwaiting(1) {
		t.Error("closing user 2 affected user 1")
	}
}

func TestDoDoesNotBlockOtherUsers(t *testing.T) {
	s := NewStore()
	inside := make(chan struct{})
	release := make(chan struct{})

	go s.Do(1, func(*models.Session) {
		close(inside)
		<-release
	})
	<-inside

	done := make(chan struct{})
	go func() {
		s.Open(2, time.Now())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("user 2 blocked by user 1's lock")
	}
	close(release)
}

func TestDoSerializesSameUser(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(1, func(*models.Session) { counter++ })
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}
