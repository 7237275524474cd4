// Package checkin drives the mood check-in cycle: opening a session, arming
// its reminder, accepting the answer and building reports.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"telegram-mood-diary/internal/models"
	"telegram-mood-diary/internal/report"
	"telegram-mood-diary/internal/scheduler"
	"telegram-mood-diary/internal/session"
)

// ErrNoSession is returned when a mood arrives without an open check-in.
var ErrNoSession = fmt.Errorf("no open check-in: %w", models.ErrNotFound)

const NudgeText = "📩 Не забудь выбрать своё настроение — это займёт всего пару секунд!"

type Repository interface {
	Append(ctx context.Context, userID int64, level int, date string) error
	Query(ctx context.Context, userID int64, since string) ([]models.MoodEntry, error)
}

type Messenger interface {
	Send(ctx context.Context, userID int64, text string) error
}

type Config struct {
	ReminderDelay time.Duration
	Location      *time.Location
	Windows       report.Windows
	Clock         clockwork.Clock
	Logger        *slog.Logger
}

type Service struct {
	repo      Repository
	msg       Messenger
	sessions  *session.Store
	reminders *scheduler.Reminders

	clock   clockwork.Clock
	loc     *time.Location
	windows report.Windows
	log     *slog.Logger
}

func New(repo Repository, msg Messenger, cfg Config) (*Service, error) {
	s := &Service{
		repo:     repo,
		msg:      msg,
		sessions: session.NewStore(),
		clock:    cfg.Clock,
		loc:      cfg.Location,
		windows:  cfg.Windows,
		log:      cfg.Logger,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.windows == (report.Windows{}) {
		s.windows = report.DefaultWindows()
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	r, err := scheduler.Start(s.remind,
		scheduler.WithClock(s.clock),
		scheduler.WithDelay(cfg.ReminderDelay),
		scheduler.WithLogger(s.log),
	)
	if err != nil {
		return nil, err
	}
	s.reminders = r
	return s, nil
}

func (s *Service) Close() error {
	return s.reminders.Shutdown()
}

// Today is the calendar day entries are attributed to.
func (s *Service) Today() time.Time {
	return s.clock.Now().In(s.loc)
}

// Begin opens a check-in for userID and arms its reminder. A check-in that
// is already open is superseded together with its reminder.
func (s *Service) Begin(ctx context.Context, userID int64) error {
	var err error
	s.sessions.Do(userID, func(sess *models.Session) {
		// Arm replaces the previous session's reminder
		gen := session.OpenLocked(sess, s.clock.Now())
		if err = s.reminders.Arm(userID, gen); err != nil {
			session.CloseLocked(sess)
		}
	})
	if err != nil {
		return err
	}
	s.log.Info("check-in opened", "user_id", userID)
	return nil
}

// Cancel abandons an open check-in. No-op when none is open.
func (s *Service) Cancel(ctx context.Context, userID int64) bool {
	var was bool
	s.sessions.Do(userID, func(sess *models.Session) {
		was = sess.Awaiting()
		s.reminders.Disarm(userID)
		session.CloseLocked(sess)
	})
	return was
}

// Awaiting reports whether userID has an open check-in.
func (s *Service) Awaiting(userID int64) bool {
	return s.sessions.IsAwaiting(userID)
}

// Submit records level for userID if a check-in is open. The entry is
// stored, the reminder disarmed and the session closed in one step.
func (s *Service) Submit(ctx context.Context, userID int64, level int) error {
	if !models.ValidLevel(level) {
		return &models.ValidationError{Field: "level", Value: level}
	}

	var err error
	s.sessions.Do(userID, func(sess *models.Session) {
		if !sess.Awaiting() {
			err = ErrNoSession
			return
		}
		date := s.Today().Format(models.DayLayout)
		if err = s.repo.Append(ctx, userID, level, date); err != nil {
			// keep the session open so the user can retry
			return
		}
		s.reminders.Disarm(userID)
		session.CloseLocked(sess)
	})
	if err != nil {
		return err
	}
	s.log.Info("mood recorded", "user_id", userID, "level", level)
	return nil
}

// Report summarizes userID's entries over w.
func (s *Service) Report(ctx context.Context, userID int64, w models.Window) (models.Summary, error) {
	today := s.Today()
	since, err := s.windows.Since(w, today)
	if err != nil {
		return models.Summary{}, err
	}
	entries, err := s.repo.Query(ctx, userID, since)
	if err != nil {
		return models.Summary{}, fmt.Errorf("loading moods: %w", err)
	}
	return s.windows.Summarize(entries, w, today)
}

func (s *Service) remind(ctx context.Context, userID int64, generation uint64) {
	s.sessions.Do(userID, func(sess *models.Session) {
		if !sess.Awaiting() || sess.Generation != generation {
			return
		}
		if err := s.msg.Send(ctx, userID, NudgeText); err != nil {
			var de *models.DeliveryError
			if !errors.As(err, &de) {
				err = &models.DeliveryError{UserID: userID, Err: err}
			}
			s.log.Warn("reminder not delivered", "user_id", userID, "error", err)
		} else {
			s.log.Info("reminder sent", "user_id", userID)
		}
		session.CloseLocked(sess)
	})
}
