package models

import (
	"time"

	"pet-health-diary/internal/health"
)

// User represents bot settings for a telegram user.
type User struct {
	ID          int64  `db:"id"            json:"id"`
	ChatID      int64  `db:"chat_id"       json:"chat_id"`
	TZ          string `db:"tz"            json:"tz"`
	ReminderAt  string `db:"reminder_at"   json:"reminder_at"` // "HH:MM"
	ActivePetID string `db:"active_pet_id" json:"active_pet_id"`
	PostalCode  string `db:"postal_code"   json:"postal_code"` // default area for vet lookups
	CreatedAt   int64  `db:"created_at"    json:"created_at"`
}

// Pet is a profile owned by one chat. Level is never stored, see Progression.
type Pet struct {
	ID                 string     `db:"id"                   json:"id"`
	ChatID             int64      `db:"chat_id"              json:"chat_id"`
	Name               string     `db:"name"                 json:"name"`
	Species            string     `db:"species"              json:"species"` // dog, cat, ...
	Breed              string     `db:"breed"                json:"breed"`
	BirthDate          *time.Time `db:"birth_date,omitempty" json:"birth_date,omitempty"`
	WeightLbs          float64    `db:"weight_lbs"           json:"weight_lbs"`
	Points             int        `db:"points"               json:"points"`
	TotalHealthRecords int        `db:"total_health_records" json:"total_health_records"`
	CreatedAt          int64      `db:"created_at"           json:"created_at"`
}

func (p *Pet) Progression() health.Progression {
	return health.Progression{Points: p.Points, TotalHealthRecords: p.TotalHealthRecords}
}

// AgeWeeks is the pet's age in whole weeks at now, or -1 without a birth date.
func (p *Pet) AgeWeeks(now time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	return int(now.Sub(*p.BirthDate).Hours() / (24 * 7))
}

// DayRecord stores one day of observations for a pet.
type DayRecord struct {
	ID          int64              `db:"id"`
	PetID       string             `db:"pet_id"`
	Day         string             `db:"day"` // YYYY-MM-DD
	Observation health.Observation `db:"-"`
	UpdatedAt   int64              `db:"updated_at"`
}

// PendingMessage tracks reminder prompts waiting for a log.
type PendingMessage struct {
	ID         int64  `db:"id"`
	ChatID     int64  `db:"chat_id"`
	PetID      string `db:"pet_id"`
	Day        string `db:"day"`         // YYYY-MM-DD
	MsgID      int    `db:"msg_id"`      // ID of the prompt message
	CreatedAt  int64  `db:"created_at"`  // when the prompt was sent
	RemindedAt int64  `db:"reminded_at"` // last nudge
}

type RecordType string

const (
	RecordVaccination RecordType = "vaccination"
	RecordCheckup     RecordType = "checkup"
	RecordMedication  RecordType = "medication"
	RecordSurgery     RecordType = "surgery"
	RecordEmergency   RecordType = "emergency"
)

type RecordStatus string

const (
	RecordCompleted RecordStatus = "completed"
	RecordUpcoming  RecordStatus = "upcoming"
	RecordOverdue   RecordStatus = "overdue"
)

// MedicalRecord is a vet visit, vaccination, medication or procedure.
type MedicalRecord struct {
	ID           string       `db:"id"`
	PetID        string       `db:"pet_id"`
	Type         RecordType   `db:"type"`
	Title        string       `db:"title"`
	Date         time.Time    `db:"date"`
	NextDate     *time.Time   `db:"next_date,omitempty"` // nil -> no follow-up
	Veterinarian string       `db:"veterinarian"`
	Notes        string       `db:"notes"`
	Status       RecordStatus `db:"status"`
}

// UserState stores transient FSM states (waiting text input)
type UserState struct {
	ChatID int64  `db:"chat_id"`
	State  string `db:"state"`
}
