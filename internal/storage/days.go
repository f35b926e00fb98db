package storage

import (
	"database/sql"
	"errors"
	"time"

	"pet-health-diary/internal/health"
	"pet-health-diary/internal/models"
)

const dayColumns = `id, pet_id, day, energy, food, water, weight,
        urine_color, poop_color, poop_consistency, logged, updated_at`

// UpsertDayRecord writes the observation for (pet, day), replacing any earlier one.
func (d *DB) UpsertDayRecord(petID, day string, obs health.Observation, at time.Time) error {
	return upsertDay(d.DB, petID, day, obs, at)
}

// RecordLog applies one logging event atomically: the day is overwritten, the
// pet's progression is replaced by prog and any pending prompt for the day is
// dropped.
func (d *DB) RecordLog(petID, day string, obs health.Observation, prog health.Progression, at time.Time) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
        UPDATE pets SET points=?, total_health_records=? WHERE id=?
    `, prog.Points, prog.TotalHealthRecords, petID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPetNotFound
	}
	if err := upsertDay(tx, petID, day, obs, at); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM pending_messages WHERE pet_id=? AND day=?`, petID, day); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertDay(db execer, petID, day string, obs health.Observation, at time.Time) error {
	_, err := db.Exec(`
        INSERT INTO day_records (pet_id, day, energy, food, water, weight,
            urine_color, poop_color, poop_consistency, logged, updated_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(pet_id, day) DO UPDATE SET
            energy=excluded.energy,
            food=excluded.food,
            water=excluded.water,
            weight=excluded.weight,
            urine_color=excluded.urine_color,
            poop_color=excluded.poop_color,
            poop_consistency=excluded.poop_consistency,
            logged=excluded.logged,
            updated_at=excluded.updated_at
    `, petID, day, nullInt(obs.Energy), nullInt(obs.Food), nullInt(obs.Water), nullFloat(obs.Weight),
		string(obs.UrineColor), string(obs.PoopColor), string(obs.PoopConsistency), obs.Logged, at.Unix())
	return err
}

func (d *DB) GetDayRecord(petID, day string) (*models.DayRecord, error) {
	rec, err := scanDay(d.QueryRow(`SELECT `+dayColumns+` FROM day_records WHERE pet_id=? AND day=?`, petID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListDayRecords returns the pet's records with from <= day <= to, oldest first.
func (d *DB) ListDayRecords(petID, from, to string) ([]models.DayRecord, error) {
	rows, err := d.Query(`
        SELECT `+dayColumns+` FROM day_records
        WHERE pet_id=? AND day BETWEEN ? AND ?
        ORDER BY day`, petID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.DayRecord
	for rows.Next() {
		rec, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *rec)
	}
	return res, rows.Err()
}

func scanDay(row rowScanner) (*models.DayRecord, error) {
	var (
		rec                  models.DayRecord
		energy, food, water  sql.NullInt64
		weight               sql.NullFloat64
		urine, poop, texture string
	)
	if err := row.Scan(&rec.ID, &rec.PetID, &rec.Day, &energy, &food, &water, &weight,
		&urine, &poop, &texture, &rec.Observation.Logged, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Observation.Energy = intFromNull(energy)
	rec.Observation.Food = intFromNull(food)
	rec.Observation.Water = intFromNull(water)
	if weight.Valid {
		rec.Observation.Weight = health.FloatPtr(weight.Float64)
	}
	rec.Observation.UrineColor = health.UrineColor(urine)
	rec.Observation.PoopColor = health.PoopColor(poop)
	rec.Observation.PoopConsistency = health.PoopConsistency(texture)
	return &rec, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return health.IntPtr(int(v.Int64))
}
