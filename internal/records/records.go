// Package records derives medical record statuses, vaccination plans and the
// appointment list shown on the health calendar.
package records

import (
	"fmt"
	"strings"
	"time"

	"pet-health-diary/internal/models"
)

// BoosterInterval is how long a completed vaccination stays current.
const BoosterInterval = 365 * 24 * time.Hour

// DueDate is the date a record is expected to happen: the follow-up date when
// one is set, otherwise the record's own date.
func DueDate(r models.MedicalRecord) time.Time {
	if r.NextDate != nil && r.Status != models.RecordCompleted {
		return *r.NextDate
	}
	return r.Date
}

// DeriveStatus keeps completed records completed. Anything else is overdue
// once its due day is before today's, upcoming otherwise. Record dates are
// calendar days read in their own location; now should be in the owner's zone.
func DeriveStatus(r models.MedicalRecord, now time.Time) models.RecordStatus {
	if r.Status == models.RecordCompleted {
		return models.RecordCompleted
	}
	if dayKey(DueDate(r)) < dayKey(now) {
		return models.RecordOverdue
	}
	return models.RecordUpcoming
}

// ParseType accepts the record type names in any case.
func ParseType(s string) (models.RecordType, error) {
	t := models.RecordType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case models.RecordVaccination, models.RecordCheckup, models.RecordMedication,
		models.RecordSurgery, models.RecordEmergency:
		return t, nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// Appointment is a read-only calendar annotation derived from a record.
type Appointment struct {
	Date   time.Time
	Title  string
	Type   models.RecordType
	Status models.RecordStatus
}

// Appointments turns records into calendar entries on their due dates.
// Completed records with a follow-up also produce an upcoming entry for it.
func Appointments(recs []models.MedicalRecord, now time.Time) []Appointment {
	var res []Appointment
	for _, r := range recs {
		res = append(res, Appointment{
			Date:   r.Date,
			Title:  r.Title,
			Type:   r.Type,
			Status: DeriveStatus(r, now),
		})
		if r.Status == models.RecordCompleted && r.NextDate != nil {
			follow := models.MedicalRecord{Date: *r.NextDate, Status: models.RecordUpcoming}
			res = append(res, Appointment{
				Date:   *r.NextDate,
				Title:  r.Title + " (due)",
				Type:   r.Type,
				Status: DeriveStatus(follow, now),
			})
		}
	}
	return res
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
