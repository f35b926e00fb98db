package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pet-health-diary/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

// ErrPetNotFound is returned by writes that target a pet that does not exist.
var ErrPetNotFound = errors.New("pet not found")

type DB struct{ *sql.DB }

func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway; one connection keeps transactions simple
	db.SetMaxOpenConns(1)
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// ClearData removes every pet, log and setting of a chat.
func (d *DB) ClearData(chatID int64) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// day_records, pending_messages and medical_records cascade from pets
	tables := []string{
		"pets",
		"user_states",
		"users",
	}
	for _, tbl := range tables {
		if _, err := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE chat_id = ?", tbl),
			chatID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ---------- users -----------------------------------------------------------

func (d *DB) UpsertUser(u *models.User) error {
	_, err := d.Exec(`
        INSERT INTO users (chat_id, tz, reminder_at, active_pet_id, created_at)
        VALUES (?,?,?,?,?)
        ON CONFLICT(chat_id) DO UPDATE SET tz=excluded.tz,
            reminder_at=excluded.reminder_at,
            active_pet_id=excluded.active_pet_id
    `, u.ChatID, u.TZ, u.ReminderAt, u.ActivePetID, time.Now().Unix())
	return err
}

func (d *DB) GetUser(chatID int64) (*models.User, error) {
	var u models.User

	err := d.QueryRow(`
        SELECT id, chat_id, tz, reminder_at, active_pet_id, postal_code, created_at
        FROM users WHERE chat_id=?`, chatID,
	).Scan(&u.ID, &u.ChatID, &u.TZ, &u.ReminderAt, &u.ActivePetID, &u.PostalCode, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) ListUsers() ([]models.User, error) {
	rows, err := d.Query(`SELECT id, chat_id, tz, reminder_at, active_pet_id, postal_code, created_at FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.ChatID, &u.TZ, &u.ReminderAt, &u.ActivePetID, &u.PostalCode, &u.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (d *DB) SetActivePet(chatID int64, petID string) error {
	_, err := d.Exec(`UPDATE users SET active_pet_id=? WHERE chat_id=?`, petID, chatID)
	return err
}

// SetPostalCode stores the area used for vet lookups. UpsertUser leaves it alone.
func (d *DB) SetPostalCode(chatID int64, code string) error {
	_, err := d.Exec(`UPDATE users SET postal_code=? WHERE chat_id=?`, code, chatID)
	return err
}

// ---------- user state (fsm) ------------------------------------------------

func (d *DB) SetUserState(chatID int64, state string) error {
	_, err := d.Exec(`
        INSERT INTO user_states(chat_id, state) VALUES (?,?)
        ON CONFLICT(chat_id) DO UPDATE SET state=excluded.state`, chatID, state)
	return err
}

func (d *DB) GetUserState(chatID int64) (string, error) {
	var st string
	err := d.QueryRow(`SELECT state FROM user_states WHERE chat_id=?`, chatID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return st, err
}

// ---------- pending ---------------------------------------------------------

// InsertPending records a reminder prompt. reminded_at starts at the send time.
func (d *DB) InsertPending(p *models.PendingMessage) error {
	now := time.Now().Unix()

	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	if p.RemindedAt == 0 {
		p.RemindedAt = p.CreatedAt
	}

	_, err := d.Exec(`
        INSERT OR REPLACE INTO pending_messages
          (chat_id, pet_id, day, msg_id, created_at, reminded_at)
        VALUES (?,?,?,?,?,?)
    `, p.ChatID, p.PetID, p.Day, p.MsgID, p.CreatedAt, p.RemindedAt)
	return err
}

// ListPendingForReminder returns prompts not nudged for at least every.
func (d *DB) ListPendingForReminder(now time.Time, every time.Duration) ([]models.PendingMessage, error) {
	rows, err := d.Query(`
        SELECT id, chat_id, pet_id, day, msg_id, created_at, reminded_at
        FROM pending_messages
        WHERE reminded_at <= ?
        ORDER BY id
    `, now.Add(-every).Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.PendingMessage
	for rows.Next() {
		var p models.PendingMessage
		if err := rows.Scan(
			&p.ID, &p.ChatID, &p.PetID, &p.Day, &p.MsgID,
			&p.CreatedAt, &p.RemindedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// TouchReminder marks that a nudge was sent.
func (d *DB) TouchReminder(id int64, at time.Time) error {
	_, err := d.Exec(`UPDATE pending_messages SET reminded_at = ? WHERE id = ?`, at.Unix(), id)
	return err
}

func (d *DB) DeletePending(petID, day string) error {
	_, err := d.Exec(`DELETE FROM pending_messages WHERE pet_id=? AND day=?`, petID, day)
	return err
}

func (d *DB) HasPending(petID, day string) bool {
	var c int
	_ = d.QueryRow(`SELECT 1 FROM pending_messages WHERE pet_id=? AND day=?`, petID, day).Scan(&c)
	return c == 1
}

// HasLogged reports whether the pet has a logged observation for day.
func (d *DB) HasLogged(petID, day string) bool {
	var c int
	_ = d.QueryRow(`SELECT 1 FROM day_records WHERE pet_id=? AND day=? AND logged=1`, petID, day).Scan(&c)
	return c == 1
}

func (d *DB) HasPendingOrLogged(petID, day string) bool {
	return d.HasPending(petID, day) || d.HasLogged(petID, day)
}
