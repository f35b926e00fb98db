package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"pet-health-diary/internal/calendar"
	"pet-health-diary/internal/models"
)

const recordColumns = `id, pet_id, type, title, date, next_date, veterinarian, notes, status`

func (d *DB) InsertRecord(r *models.MedicalRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := d.Exec(`
        INSERT INTO medical_records (`+recordColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, r.ID, r.PetID, string(r.Type), r.Title, calendar.DayKey(r.Date), nullDay(r.NextDate),
		r.Veterinarian, r.Notes, string(r.Status))
	return err
}

func (d *DB) UpdateRecordStatus(id string, status models.RecordStatus) error {
	_, err := d.Exec(`UPDATE medical_records SET status=? WHERE id=?`, string(status), id)
	return err
}

// ListRecords returns a pet's records, newest first.
func (d *DB) ListRecords(petID string) ([]models.MedicalRecord, error) {
	return d.queryRecords(`SELECT `+recordColumns+` FROM medical_records WHERE pet_id=? ORDER BY date DESC`, petID)
}

// ListOpenRecords returns every record not yet completed, across all pets.
func (d *DB) ListOpenRecords() ([]models.MedicalRecord, error) {
	return d.queryRecords(`SELECT `+recordColumns+` FROM medical_records WHERE status != ? ORDER BY date`,
		string(models.RecordCompleted))
}

func (d *DB) queryRecords(query string, args ...any) ([]models.MedicalRecord, error) {
	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.MedicalRecord
	for rows.Next() {
		var (
			r      models.MedicalRecord
			date   string
			next   sql.NullString
			typ    string
			status string
		)
		if err := rows.Scan(&r.ID, &r.PetID, &typ, &r.Title, &date, &next,
			&r.Veterinarian, &r.Notes, &status); err != nil {
			return nil, err
		}
		r.Type = models.RecordType(typ)
		r.Status = models.RecordStatus(status)
		d, err := calendar.ParseDay(date, time.UTC)
		if err != nil {
			return nil, err
		}
		r.Date = d
		if r.NextDate, err = dayFromNull(next); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}
