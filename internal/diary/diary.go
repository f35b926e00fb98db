// Package diary applies logging events to a pet: it scores the observation,
// awards points, persists both and reports what happened to a notifier.
package diary

import (
	"fmt"
	"log"
	"sync"
	"time"

	"pet-health-diary/internal/health"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/storage"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notification is a short message surfaced to the pet's owner.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier delivers notifications to a chat.
type Notifier interface {
	Notify(chatID int64, n Notification) error
}

// LogEvent is one "log health data" action for a day.
type LogEvent struct {
	Day         string // YYYY-MM-DD
	Observation health.Observation
}

// Outcome is the result of reducing one event against a progression snapshot.
type Outcome struct {
	Day           string
	Observation   health.Observation
	Assessment    health.Assessment
	Award         health.Award
	Notifications []Notification
}

// Reduce computes the next state for ev without touching storage. The event
// always counts as logged; an invalid observation is rejected before any
// points are awarded.
func Reduce(prog health.Progression, ev LogEvent) (Outcome, error) {
	obs := ev.Observation
	obs.Logged = true

	a, err := health.Assess(obs)
	if err != nil {
		return Outcome{}, err
	}
	award := health.AwardForLogging(prog)

	out := Outcome{
		Day:         ev.Day,
		Observation: obs,
		Assessment:  a,
		Award:       award,
	}
	out.Notifications = append(out.Notifications, Notification{
		Title:       "Health data logged!",
		Description: savedText(ev.Day, a),
		Severity:    SeveritySuccess,
	})
	if award.LeveledUp {
		out.Notifications = append(out.Notifications, Notification{
			Title:       "Level up!",
			Description: fmt.Sprintf("Reached level %d with %d points.", award.NewLevel, award.NewPoints),
			Severity:    SeveritySuccess,
		})
	} else {
		out.Notifications = append(out.Notifications, Notification{
			Title:       fmt.Sprintf("+%d points", health.PointsPerLog),
			Description: fmt.Sprintf("%d points, %d to the next level.", award.NewPoints, health.PointsToNext(award.NewPoints)),
			Severity:    SeverityInfo,
		})
	}
	if a.NeedsAttention {
		out.Notifications = append(out.Notifications, Notification{
			Title:       "Needs attention",
			Description: "Today's signals look poor. Consider talking to a vet.",
			Severity:    SeverityWarning,
		})
	}
	return out, nil
}

func savedText(day string, a health.Assessment) string {
	if !a.Score.Valid {
		return fmt.Sprintf("%s saved. Not enough signals for a score.", day)
	}
	return fmt.Sprintf("%s saved. Health score %d (%s).", day, a.Score.Value, a.Status)
}

// Store is the persistence the service needs.
type Store interface {
	GetPet(id string) (*models.Pet, error)
	RecordLog(petID, day string, obs health.Observation, prog health.Progression, at time.Time) error
}

// Service serialises logging events so each read-modify-write of a pet's
// progression sees the previous one.
type Service struct {
	mu     sync.Mutex
	store  Store
	notify Notifier
	now    func() time.Time
}

func NewService(store Store, n Notifier) *Service {
	return &Service{store: store, notify: n, now: time.Now}
}

// Log records obs for the pet's day, replacing anything logged for that day
// earlier, and sends the resulting notifications.
func (s *Service) Log(petID, day string, obs health.Observation) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pet, err := s.store.GetPet(petID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load pet: %w", err)
	}
	if pet == nil {
		return Outcome{}, storage.ErrPetNotFound
	}

	out, err := Reduce(pet.Progression(), LogEvent{Day: day, Observation: obs})
	if err != nil {
		return Outcome{}, err
	}
	if err := s.store.RecordLog(petID, day, out.Observation, out.Award.Progression, s.now()); err != nil {
		return Outcome{}, fmt.Errorf("record log: %w", err)
	}

	if s.notify != nil {
		for _, n := range out.Notifications {
			if err := s.notify.Notify(pet.ChatID, n); err != nil {
				log.Printf("notify %d: %v", pet.ChatID, err)
			}
		}
	}
	return out, nil
}
