package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pet-health-diary/internal/health"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/records"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "diary.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestPet(t *testing.T, db *DB, chatID int64, name string) *models.Pet {
	t.Helper()
	p := &models.Pet{ChatID: chatID, Name: name, Species: "dog"}
	if err := db.CreatePet(p); err != nil {
		t.Fatalf("CreatePet() error = %v", err)
	}
	return p
}

func TestUsersAndState(t *testing.T) {
	db := openTestDB(t)

	u, err := db.GetUser(42)
	if err != nil || u != nil {
		t.Fatalf("GetUser() on empty db = %v, %v; want nil, nil", u, err)
	}

	if err := db.UpsertUser(&models.User{ChatID: 42, TZ: "Europe/Moscow", ReminderAt: "20:00"}); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if err := db.UpsertUser(&models.User{ChatID: 42, TZ: "UTC", ReminderAt: "08:30"}); err != nil {
		t.Fatalf("UpsertUser() second call error = %v", err)
	}

	u, err = db.GetUser(42)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.TZ != "UTC" || u.ReminderAt != "08:30" {
		t.Errorf("GetUser() = %+v, want upserted settings", u)
	}

	users, err := db.ListUsers()
	if err != nil || len(users) != 1 {
		t.Fatalf("ListUsers() = %d users, %v; want 1", len(users), err)
	}

	if err := db.SetUserState(42, "wait_log:abc:2025-05-08"); err != nil {
		t.Fatalf("SetUserState() error = %v", err)
	}
	st, err := db.GetUserState(42)
	if err != nil || st != "wait_log:abc:2025-05-08" {
		t.Errorf("GetUserState() = %q, %v", st, err)
	}
}

func TestPostalCodeSurvivesUpsert(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertUser(&models.User{ChatID: 42, TZ: "UTC", ReminderAt: "20:00"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SetPostalCode(42, "M5A 1P9"); err != nil {
		t.Fatalf("SetPostalCode() error = %v", err)
	}
	if err := db.UpsertUser(&models.User{ChatID: 42, TZ: "Europe/Moscow", ReminderAt: "21:00"}); err != nil {
		t.Fatal(err)
	}

	u, err := db.GetUser(42)
	if err != nil || u.PostalCode != "M5A 1P9" {
		t.Fatalf("GetUser() = %+v, %v; want postal code kept", u, err)
	}
	users, err := db.ListUsers()
	if err != nil || len(users) != 1 || users[0].PostalCode != "M5A 1P9" {
		t.Errorf("ListUsers() = %+v, %v", users, err)
	}
}

func TestPets(t *testing.T) {
	db := openTestDB(t)

	birth := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	luna := &models.Pet{ChatID: 1, Name: "Luna", Species: "dog", Breed: "Golden Retriever", BirthDate: &birth, WeightLbs: 65}
	if err := db.CreatePet(luna); err != nil {
		t.Fatalf("CreatePet() error = %v", err)
	}
	if luna.ID == "" {
		t.Fatal("CreatePet() should assign an ID")
	}
	createTestPet(t, db, 1, "Milo")
	createTestPet(t, db, 2, "Other")

	got, err := db.GetPet(luna.ID)
	if err != nil {
		t.Fatalf("GetPet() error = %v", err)
	}
	if got.Name != "Luna" || got.BirthDate == nil || !got.BirthDate.Equal(birth) || got.WeightLbs != 65 {
		t.Errorf("GetPet() = %+v", got)
	}

	byName, err := db.FindPetByName(1, "luna")
	if err != nil || byName == nil || byName.ID != luna.ID {
		t.Errorf("FindPetByName() = %+v, %v", byName, err)
	}

	pets, err := db.ListPets(1)
	if err != nil || len(pets) != 2 {
		t.Fatalf("ListPets() = %d pets, %v; want 2", len(pets), err)
	}

	missing, err := db.GetPet("nope")
	if err != nil || missing != nil {
		t.Errorf("GetPet(missing) = %v, %v", missing, err)
	}

	luna.WeightLbs = 63.5
	if err := db.UpdatePetProfile(luna); err != nil {
		t.Fatalf("UpdatePetProfile() error = %v", err)
	}
	if err := db.UpdatePetProfile(&models.Pet{ID: "nope"}); !errors.Is(err, ErrPetNotFound) {
		t.Errorf("UpdatePetProfile(missing) error = %v, want ErrPetNotFound", err)
	}
}

func TestRecordLogReplacesDay(t *testing.T) {
	db := openTestDB(t)
	pet := createTestPet(t, db, 1, "Luna")
	at := time.Date(2025, 5, 8, 20, 0, 0, 0, time.UTC)

	first := health.Observation{
		Energy:     health.IntPtr(3),
		Food:       health.IntPtr(4),
		UrineColor: health.UrineDark,
		Weight:     health.FloatPtr(64.2),
		Logged:     true,
	}
	if err := db.RecordLog(pet.ID, "2025-05-08", first, health.Progression{Points: 10, TotalHealthRecords: 1}, at); err != nil {
		t.Fatalf("RecordLog() error = %v", err)
	}

	second := health.Observation{
		Energy:          health.IntPtr(9),
		PoopConsistency: health.ConsistencyFirm,
		Logged:          true,
	}
	if err := db.RecordLog(pet.ID, "2025-05-08", second, health.Progression{Points: 20, TotalHealthRecords: 2}, at.Add(time.Hour)); err != nil {
		t.Fatalf("RecordLog() second call error = %v", err)
	}

	recs, err := db.ListDayRecords(pet.ID, "2025-05-01", "2025-05-31")
	if err != nil {
		t.Fatalf("ListDayRecords() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("ListDayRecords() = %d rows, want 1 after re-logging the same day", len(recs))
	}

	obs := recs[0].Observation
	if obs.Energy == nil || *obs.Energy != 9 {
		t.Errorf("Energy = %v, want 9", obs.Energy)
	}
	if obs.Food != nil || obs.Weight != nil || obs.UrineColor != "" {
		t.Errorf("fields from the first log survived: %+v", obs)
	}
	if obs.PoopConsistency != health.ConsistencyFirm || !obs.Logged {
		t.Errorf("observation = %+v", obs)
	}

	p, err := db.GetPet(pet.ID)
	if err != nil {
		t.Fatalf("GetPet() error = %v", err)
	}
	if p.Points != 20 || p.TotalHealthRecords != 2 {
		t.Errorf("progression = %d points / %d records, want 20 / 2", p.Points, p.TotalHealthRecords)
	}
	if !db.HasLogged(pet.ID, "2025-05-08") {
		t.Error("HasLogged() = false after RecordLog")
	}
}

func TestRecordLogUnknownPet(t *testing.T) {
	db := openTestDB(t)
	err := db.RecordLog("ghost", "2025-05-08", health.Observation{Logged: true}, health.Progression{Points: 10}, time.Now())
	if !errors.Is(err, ErrPetNotFound) {
		t.Fatalf("RecordLog() error = %v, want ErrPetNotFound", err)
	}
	rec, err := db.GetDayRecord("ghost", "2025-05-08")
	if err != nil || rec != nil {
		t.Errorf("GetDayRecord() = %v, %v; the failed log must not leave a row", rec, err)
	}
}

func TestPendingLifecycle(t *testing.T) {
	db := openTestDB(t)
	pet := createTestPet(t, db, 7, "Milo")
	sent := time.Date(2025, 5, 8, 20, 0, 0, 0, time.UTC)

	if err := db.InsertPending(&models.PendingMessage{ChatID: 7, PetID: pet.ID, Day: "2025-05-08", MsgID: 99, CreatedAt: sent.Unix()}); err != nil {
		t.Fatalf("InsertPending() error = %v", err)
	}
	if !db.HasPendingOrLogged(pet.ID, "2025-05-08") {
		t.Fatal("HasPendingOrLogged() = false after InsertPending")
	}

	due, err := db.ListPendingForReminder(sent.Add(10*time.Minute), 20*time.Minute)
	if err != nil || len(due) != 0 {
		t.Fatalf("ListPendingForReminder() too early = %d, %v", len(due), err)
	}
	due, err = db.ListPendingForReminder(sent.Add(21*time.Minute), 20*time.Minute)
	if err != nil || len(due) != 1 {
		t.Fatalf("ListPendingForReminder() = %d, %v; want 1", len(due), err)
	}
	if err := db.TouchReminder(due[0].ID, sent.Add(21*time.Minute)); err != nil {
		t.Fatalf("TouchReminder() error = %v", err)
	}
	due, _ = db.ListPendingForReminder(sent.Add(30*time.Minute), 20*time.Minute)
	if len(due) != 0 {
		t.Errorf("ListPendingForReminder() after touch = %d, want 0", len(due))
	}

	if err := db.RecordLog(pet.ID, "2025-05-08", health.Observation{Energy: health.IntPtr(5), Logged: true}, health.Progression{Points: 10}, sent); err != nil {
		t.Fatalf("RecordLog() error = %v", err)
	}
	if db.HasPending(pet.ID, "2025-05-08") {
		t.Error("RecordLog() should clear the pending prompt for the day")
	}
}

func TestMedicalRecords(t *testing.T) {
	db := openTestDB(t)
	pet := createTestPet(t, db, 3, "Luna")
	done := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	next := done.AddDate(1, 0, 0)

	recs := []*models.MedicalRecord{
		{PetID: pet.ID, Type: models.RecordVaccination, Title: "Rabies", Date: done, NextDate: &next, Status: models.RecordCompleted},
		{PetID: pet.ID, Type: models.RecordCheckup, Title: "Annual checkup", Date: done.AddDate(0, 6, 0), Veterinarian: "Dr. Smith", Status: models.RecordUpcoming},
	}
	for _, r := range recs {
		if err := db.InsertRecord(r); err != nil {
			t.Fatalf("InsertRecord() error = %v", err)
		}
	}

	all, err := db.ListRecords(pet.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListRecords() = %d, %v; want 2", len(all), err)
	}
	if all[0].Title != "Annual checkup" {
		t.Errorf("ListRecords()[0] = %q, want newest first", all[0].Title)
	}
	if all[1].NextDate == nil || !all[1].NextDate.Equal(next) {
		t.Errorf("NextDate = %v, want %v", all[1].NextDate, next)
	}

	open, err := db.ListOpenRecords()
	if err != nil || len(open) != 1 {
		t.Fatalf("ListOpenRecords() = %d, %v; want 1", len(open), err)
	}
	if err := db.UpdateRecordStatus(open[0].ID, models.RecordOverdue); err != nil {
		t.Fatalf("UpdateRecordStatus() error = %v", err)
	}
	open, _ = db.ListOpenRecords()
	if len(open) != 1 || open[0].Status != models.RecordOverdue {
		t.Errorf("ListOpenRecords() after update = %+v", open)
	}
}

func TestClearData(t *testing.T) {
	db := openTestDB(t)
	_ = db.UpsertUser(&models.User{ChatID: 5, TZ: "UTC", ReminderAt: "20:00"})
	pet := createTestPet(t, db, 5, "Luna")
	_ = db.RecordLog(pet.ID, "2025-05-08", health.Observation{Energy: health.IntPtr(5), Logged: true}, health.Progression{Points: 10}, time.Now())

	if err := db.ClearData(5); err != nil {
		t.Fatalf("ClearData() error = %v", err)
	}
	if u, _ := db.GetUser(5); u != nil {
		t.Error("user survived ClearData")
	}
	if rec, _ := db.GetDayRecord(pet.ID, "2025-05-08"); rec != nil {
		t.Error("day record survived ClearData")
	}
}

func TestRecordDatesAreCalendarDays(t *testing.T) {
	db := openTestDB(t)
	pet := createTestPet(t, db, 3, "Luna")
	msk, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}

	due := time.Date(2025, 6, 10, 0, 0, 0, 0, msk)
	rec := &models.MedicalRecord{PetID: pet.ID, Type: models.RecordCheckup, Title: "Annual", Date: due, Status: models.RecordUpcoming}
	if err := db.InsertRecord(rec); err != nil {
		t.Fatalf("InsertRecord() error = %v", err)
	}

	all, err := db.ListRecords(pet.ID)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListRecords() = %d, %v; want 1", len(all), err)
	}
	got := all[0]
	if day := got.Date.Format("2006-01-02"); day != "2025-06-10" {
		t.Errorf("read back date = %s, want 2025-06-10", day)
	}

	tests := []struct {
		now  time.Time
		want models.RecordStatus
	}{
		{time.Date(2025, 6, 10, 12, 0, 0, 0, msk), models.RecordUpcoming},
		{time.Date(2025, 6, 10, 23, 59, 0, 0, msk), models.RecordUpcoming},
		{time.Date(2025, 6, 11, 0, 30, 0, 0, msk), models.RecordOverdue},
	}
	for _, tt := range tests {
		if st := records.DeriveStatus(got, tt.now); st != tt.want {
			t.Errorf("DeriveStatus(at %s) = %s, want %s", tt.now, st, tt.want)
		}
	}
}

func TestBirthDateIsCalendarDay(t *testing.T) {
	db := openTestDB(t)
	msk, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}
	birth := time.Date(2023, 4, 1, 0, 0, 0, 0, msk)
	p := &models.Pet{ChatID: 1, Name: "Luna", BirthDate: &birth}
	if err := db.CreatePet(p); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetPet(p.ID)
	if err != nil || got == nil || got.BirthDate == nil {
		t.Fatalf("GetPet() = %+v, %v", got, err)
	}
	if day := got.BirthDate.Format("2006-01-02"); day != "2023-04-01" {
		t.Errorf("birth date = %s, want 2023-04-01", day)
	}
}
