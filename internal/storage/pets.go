package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"pet-health-diary/internal/calendar"
	"pet-health-diary/internal/models"
)

const petColumns = `id, chat_id, name, species, breed, birth_date, weight_lbs,
        points, total_health_records, created_at`

// CreatePet inserts a new profile, assigning an ID when the caller left it empty.
func (d *DB) CreatePet(p *models.Pet) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	_, err := d.Exec(`
        INSERT INTO pets (`+petColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, p.ID, p.ChatID, p.Name, p.Species, p.Breed, nullDay(p.BirthDate), p.WeightLbs,
		p.Points, p.TotalHealthRecords, p.CreatedAt)
	return err
}

// UpdatePetProfile rewrites the descriptive fields. Points are only changed by RecordLog.
func (d *DB) UpdatePetProfile(p *models.Pet) error {
	res, err := d.Exec(`
        UPDATE pets SET name=?, species=?, breed=?, birth_date=?, weight_lbs=?
        WHERE id=?
    `, p.Name, p.Species, p.Breed, nullDay(p.BirthDate), p.WeightLbs, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPetNotFound
	}
	return nil
}

func (d *DB) GetPet(id string) (*models.Pet, error) {
	p, err := scanPet(d.QueryRow(`SELECT `+petColumns+` FROM pets WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// FindPetByName looks a pet up by case-insensitive name within one chat.
func (d *DB) FindPetByName(chatID int64, name string) (*models.Pet, error) {
	p, err := scanPet(d.QueryRow(`
        SELECT `+petColumns+` FROM pets
        WHERE chat_id=? AND name=? COLLATE NOCASE
        ORDER BY created_at LIMIT 1`, chatID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (d *DB) ListPets(chatID int64) ([]models.Pet, error) {
	rows, err := d.Query(`SELECT `+petColumns+` FROM pets WHERE chat_id=? ORDER BY created_at, name`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (*models.Pet, error) {
	var p models.Pet
	var birth sql.NullString
	if err := row.Scan(&p.ID, &p.ChatID, &p.Name, &p.Species, &p.Breed, &birth, &p.WeightLbs,
		&p.Points, &p.TotalHealthRecords, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.BirthDate, err = dayFromNull(birth); err != nil {
		return nil, err
	}
	return &p, nil
}

// nullDay stores a calendar day as the day key of t's own location. Birth and
// record dates are read back by dayFromNull as midnight UTC of that day.
func nullDay(t *time.Time) any {
	if t == nil {
		return nil
	}
	return calendar.DayKey(*t)
}

func dayFromNull(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := calendar.ParseDay(v.String, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
