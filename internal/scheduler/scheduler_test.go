package scheduler

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pet-health-diary/internal/health"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/storage"
)

type fakeReminder struct {
	db        *storage.DB
	reminders []string // pet:day
	nudges    []int64
	fail      bool
}

func (f *fakeReminder) SendReminder(u *models.User, pet *models.Pet, day string) error {
	if f.fail {
		return errors.New("telegram down")
	}
	f.reminders = append(f.reminders, pet.Name+":"+day)
	return f.db.InsertPending(&models.PendingMessage{
		ChatID: u.ChatID, PetID: pet.ID, Day: day, MsgID: len(f.reminders),
	})
}

func (f *fakeReminder) SendNudge(p models.PendingMessage, pet *models.Pet) error {
	if f.fail {
		return errors.New("telegram down")
	}
	f.nudges = append(f.nudges, p.ID)
	return nil
}

func setup(t *testing.T) (*Jobs, *fakeReminder, *storage.DB) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "diary.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	r := &fakeReminder{db: db}
	return &Jobs{Store: db, Reminder: r, Repeat: 20 * time.Minute}, r, db
}

func addPet(t *testing.T, db *storage.DB, chatID int64, name string) *models.Pet {
	t.Helper()
	p := &models.Pet{ChatID: chatID, Name: name, Species: "dog"}
	if err := db.CreatePet(p); err != nil {
		t.Fatalf("CreatePet() error = %v", err)
	}
	return p
}

func TestTickSendsAtReminderTime(t *testing.T) {
	j, r, db := setup(t)
	if err := db.UpsertUser(&models.User{ChatID: 1, TZ: "+03:00", ReminderAt: "20:00"}); err != nil {
		t.Fatal(err)
	}
	maxPet := addPet(t, db, 1, "Max")
	bella := addPet(t, db, 1, "Bella")

	// Bella was already logged today.
	obs := health.Observation{Energy: health.IntPtr(8), Logged: true}
	if err := db.UpsertDayRecord(bella.ID, "2025-05-08", obs, time.Now()); err != nil {
		t.Fatal(err)
	}

	j.Tick(time.Date(2025, 5, 8, 16, 59, 0, 0, time.UTC))
	if len(r.reminders) != 0 {
		t.Fatalf("reminders before time = %v", r.reminders)
	}

	j.Tick(time.Date(2025, 5, 8, 17, 0, 0, 0, time.UTC))
	if len(r.reminders) != 1 || r.reminders[0] != "Max:2025-05-08" {
		t.Fatalf("reminders = %v, want [Max:2025-05-08]", r.reminders)
	}
	if !db.HasPending(maxPet.ID, "2025-05-08") {
		t.Error("prompt not stored as pending")
	}

	// A second scan in the same minute must not prompt again.
	j.Tick(time.Date(2025, 5, 8, 17, 0, 30, 0, time.UTC))
	if len(r.reminders) != 1 {
		t.Errorf("reminders after repeat scan = %v", r.reminders)
	}
}

func TestTickSkipsBadTimeZone(t *testing.T) {
	j, r, db := setup(t)
	if err := db.UpsertUser(&models.User{ChatID: 1, TZ: "Mars/Olympus", ReminderAt: "20:00"}); err != nil {
		t.Fatal(err)
	}
	addPet(t, db, 1, "Max")

	j.Tick(time.Date(2025, 5, 8, 20, 0, 0, 0, time.UTC))
	if len(r.reminders) != 0 {
		t.Errorf("reminders = %v, want none", r.reminders)
	}
}

func TestTickNudgesPending(t *testing.T) {
	j, r, db := setup(t)
	if err := db.UpsertUser(&models.User{ChatID: 1, TZ: "UTC", ReminderAt: "08:00"}); err != nil {
		t.Fatal(err)
	}
	pet := addPet(t, db, 1, "Max")

	sent := time.Date(2025, 5, 8, 18, 0, 0, 0, time.UTC)
	p := &models.PendingMessage{ChatID: 1, PetID: pet.ID, Day: "2025-05-08", MsgID: 7, CreatedAt: sent.Unix()}
	if err := db.InsertPending(p); err != nil {
		t.Fatal(err)
	}

	j.Tick(sent.Add(10 * time.Minute))
	if len(r.nudges) != 0 {
		t.Fatalf("nudged too early: %v", r.nudges)
	}

	j.Tick(sent.Add(20 * time.Minute))
	if len(r.nudges) != 1 {
		t.Fatalf("nudges = %v, want 1", r.nudges)
	}

	// reminded_at moved forward, so the next scan stays quiet.
	j.Tick(sent.Add(25 * time.Minute))
	if len(r.nudges) != 1 {
		t.Errorf("nudges after touch = %v, want 1", r.nudges)
	}
}

func TestTickDropsStalePrompts(t *testing.T) {
	j, r, db := setup(t)
	if err := db.UpsertUser(&models.User{ChatID: 1, TZ: "UTC", ReminderAt: "08:00"}); err != nil {
		t.Fatal(err)
	}
	pet := addPet(t, db, 1, "Max")

	sent := time.Date(2025, 5, 7, 20, 0, 0, 0, time.UTC)
	if err := db.InsertPending(&models.PendingMessage{ChatID: 1, PetID: pet.ID, Day: "2025-05-07", CreatedAt: sent.Unix()}); err != nil {
		t.Fatal(err)
	}

	j.Tick(time.Date(2025, 5, 8, 9, 0, 0, 0, time.UTC))
	if len(r.nudges) != 0 {
		t.Errorf("nudged a past day: %v", r.nudges)
	}
	if db.HasPending(pet.ID, "2025-05-07") {
		t.Error("stale prompt was not removed")
	}
}

func TestTickNudgeFailureKeepsPrompt(t *testing.T) {
	j, r, db := setup(t)
	if err := db.UpsertUser(&models.User{ChatID: 1, TZ: "UTC", ReminderAt: "08:00"}); err != nil {
		t.Fatal(err)
	}
	pet := addPet(t, db, 1, "Max")

	sent := time.Date(2025, 5, 8, 18, 0, 0, 0, time.UTC)
	if err := db.InsertPending(&models.PendingMessage{ChatID: 1, PetID: pet.ID, Day: "2025-05-08", CreatedAt: sent.Unix()}); err != nil {
		t.Fatal(err)
	}

	r.fail = true
	now := sent.Add(30 * time.Minute)
	j.Tick(now)

	pending, err := db.ListPendingForReminder(now, j.Repeat)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("pending after failed nudge = %d, want 1 still due", len(pending))
	}
}

func TestRefreshRecords(t *testing.T) {
	j, _, db := setup(t)
	pet := addPet(t, db, 1, "Max")

	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	recs := []*models.MedicalRecord{
		{PetID: pet.ID, Type: models.RecordCheckup, Title: "Annual", Date: day("2025-05-01"), Status: models.RecordUpcoming},
		{PetID: pet.ID, Type: models.RecordVaccination, Title: "Rabies", Date: day("2025-06-01"), Status: models.RecordUpcoming},
		{PetID: pet.ID, Type: models.RecordSurgery, Title: "Spay", Date: day("2025-04-01"), Status: models.RecordCompleted},
	}
	for _, r := range recs {
		if err := db.InsertRecord(r); err != nil {
			t.Fatal(err)
		}
	}

	j.RefreshRecords(time.Date(2025, 5, 8, 12, 0, 0, 0, time.UTC))

	got, err := db.ListRecords(pet.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]models.RecordStatus{
		"Annual": models.RecordOverdue,
		"Rabies": models.RecordUpcoming,
		"Spay":   models.RecordCompleted,
	}
	if len(got) != len(want) {
		t.Fatalf("ListRecords() = %d records, want %d", len(got), len(want))
	}
	for _, r := range got {
		if r.Status != want[r.Title] {
			t.Errorf("%s status = %s, want %s", r.Title, r.Status, want[r.Title])
		}
	}
}

func TestRefreshRecordsInOwnerZone(t *testing.T) {
	j, _, db := setup(t)
	if err := db.UpsertUser(&models.User{ChatID: 1, TZ: "Europe/Moscow", ReminderAt: "20:00"}); err != nil {
		t.Fatal(err)
	}
	pet := addPet(t, db, 1, "Max")

	due := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	rec := &models.MedicalRecord{PetID: pet.ID, Type: models.RecordCheckup, Title: "Annual", Date: due, Status: models.RecordUpcoming}
	if err := db.InsertRecord(rec); err != nil {
		t.Fatal(err)
	}

	// 21:30 UTC on the 9th is already the 10th in Moscow.
	j.RefreshRecords(time.Date(2025, 6, 9, 21, 30, 0, 0, time.UTC))

	got, err := db.ListRecords(pet.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListRecords() = %d, %v", len(got), err)
	}
	if got[0].Status != models.RecordOverdue {
		t.Errorf("status = %s, want overdue", got[0].Status)
	}
}

func TestStart(t *testing.T) {
	j, _, _ := setup(t)
	s, err := Start(j, time.Hour)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Shutdown()

	if n := len(s.Jobs()); n != 2 {
		t.Errorf("jobs = %d, want 2", n)
	}
}
