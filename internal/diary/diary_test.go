package diary

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pet-health-diary/internal/health"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/storage"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (f *fakeNotifier) Notify(chatID int64, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []string
	for _, n := range f.sent {
		res = append(res, n.Title)
	}
	return res
}

func newTestService(t *testing.T, points int) (*Service, *storage.DB, *fakeNotifier, *models.Pet) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "diary.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pet := &models.Pet{ChatID: 7, Name: "Max", Species: "dog", Points: points}
	if err := db.CreatePet(pet); err != nil {
		t.Fatalf("CreatePet() error = %v", err)
	}

	n := &fakeNotifier{}
	svc := NewService(db, n)
	svc.now = func() time.Time { return time.Date(2025, 5, 8, 20, 0, 0, 0, time.UTC) }
	return svc, db, n, pet
}

func TestReduceNotifications(t *testing.T) {
	tests := []struct {
		name   string
		points int
		obs    health.Observation
		want   []string
	}{
		{
			name:   "points only",
			points: 10,
			obs:    health.Observation{Energy: health.IntPtr(8)},
			want:   []string{"Health data logged!", "+10 points"},
		},
		{
			name:   "level up",
			points: 45,
			obs:    health.Observation{Energy: health.IntPtr(8)},
			want:   []string{"Health data logged!", "Level up!"},
		},
		{
			name:   "poor day asks for attention",
			points: 0,
			obs:    health.Observation{Energy: health.IntPtr(1), UrineColor: health.UrineRed},
			want:   []string{"Health data logged!", "+10 points", "Needs attention"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Reduce(health.Progression{Points: tt.points}, LogEvent{Day: "2025-05-08", Observation: tt.obs})
			if err != nil {
				t.Fatalf("Reduce() error = %v", err)
			}
			if len(out.Notifications) != len(tt.want) {
				t.Fatalf("Reduce() notifications = %+v, want titles %v", out.Notifications, tt.want)
			}
			for i, n := range out.Notifications {
				if n.Title != tt.want[i] {
					t.Errorf("notification %d = %q, want %q", i, n.Title, tt.want[i])
				}
			}
			if out.Award.NewPoints != tt.points+health.PointsPerLog {
				t.Errorf("NewPoints = %d", out.Award.NewPoints)
			}
			if !out.Observation.Logged {
				t.Error("reduced observation should be marked logged")
			}
		})
	}
}

func TestReduceRejectsInvalid(t *testing.T) {
	_, err := Reduce(health.Progression{}, LogEvent{Day: "2025-05-08", Observation: health.Observation{Food: health.IntPtr(0)}})
	var verr health.ValidationError
	if !errors.As(err, &verr) || verr.Field != "food" {
		t.Fatalf("Reduce() error = %v, want food validation error", err)
	}
}

func TestReduceWithoutSignals(t *testing.T) {
	out, err := Reduce(health.Progression{}, LogEvent{Day: "2025-05-08"})
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if out.Assessment.Score.Valid || out.Assessment.Status != health.StatusUnknown {
		t.Errorf("Assessment = %+v, want unknown", out.Assessment)
	}
	if out.Award.NewPoints != health.PointsPerLog {
		t.Errorf("NewPoints = %d, want %d", out.Award.NewPoints, health.PointsPerLog)
	}
}

func TestServiceLogReplacesDay(t *testing.T) {
	svc, db, n, pet := newTestService(t, 0)

	first := health.Observation{Energy: health.IntPtr(3), Food: health.IntPtr(4), UrineColor: health.UrineDark}
	if _, err := svc.Log(pet.ID, "2025-05-08", first); err != nil {
		t.Fatalf("Log() first error = %v", err)
	}
	second := health.Observation{Energy: health.IntPtr(9)}
	out, err := svc.Log(pet.ID, "2025-05-08", second)
	if err != nil {
		t.Fatalf("Log() second error = %v", err)
	}
	if out.Assessment.Score.Value != 90 {
		t.Errorf("second score = %d, want 90", out.Assessment.Score.Value)
	}

	rec, err := db.GetDayRecord(pet.ID, "2025-05-08")
	if err != nil || rec == nil {
		t.Fatalf("GetDayRecord() = %v, %v", rec, err)
	}
	if rec.Observation.Food != nil || rec.Observation.UrineColor != "" {
		t.Errorf("stored observation kept fields from the first log: %+v", rec.Observation)
	}
	if rec.Observation.Energy == nil || *rec.Observation.Energy != 9 {
		t.Errorf("stored energy = %v, want 9", rec.Observation.Energy)
	}

	got, err := db.GetPet(pet.ID)
	if err != nil {
		t.Fatalf("GetPet() error = %v", err)
	}
	if got.Points != 20 || got.TotalHealthRecords != 2 {
		t.Errorf("pet progression = %d points, %d records; want 20, 2", got.Points, got.TotalHealthRecords)
	}
	// the first day scores 30, so it also asks for attention
	if len(n.titles()) != 5 {
		t.Errorf("notifications = %v, want 5", n.titles())
	}
}

func TestServiceLogLevelUp(t *testing.T) {
	svc, db, n, pet := newTestService(t, 45)

	out, err := svc.Log(pet.ID, "2025-05-08", health.Observation{Energy: health.IntPtr(7)})
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if !out.Award.LeveledUp || out.Award.NewLevel != 2 {
		t.Errorf("Award = %+v, want level up to 2", out.Award)
	}
	titles := n.titles()
	if len(titles) != 2 || titles[1] != "Level up!" {
		t.Errorf("notifications = %v", titles)
	}

	got, _ := db.GetPet(pet.ID)
	if got.Points != 55 || got.Progression().Level() != 2 {
		t.Errorf("pet = %+v", got)
	}
}

func TestServiceLogErrors(t *testing.T) {
	svc, db, n, pet := newTestService(t, 0)

	if _, err := svc.Log("missing", "2025-05-08", health.Observation{}); !errors.Is(err, storage.ErrPetNotFound) {
		t.Errorf("Log() unknown pet error = %v", err)
	}
	if _, err := svc.Log(pet.ID, "2025-05-08", health.Observation{Energy: health.IntPtr(11)}); err == nil {
		t.Error("Log() with energy 11 should fail")
	}

	got, _ := db.GetPet(pet.ID)
	if got.Points != 0 {
		t.Errorf("failed log awarded points: %d", got.Points)
	}
	if rec, _ := db.GetDayRecord(pet.ID, "2025-05-08"); rec != nil {
		t.Errorf("failed log stored a day: %+v", rec)
	}
	if len(n.titles()) != 0 {
		t.Errorf("failed log notified: %v", n.titles())
	}
}

func TestServiceLogConcurrent(t *testing.T) {
	svc, db, _, pet := newTestService(t, 0)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			day := time.Date(2025, 5, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			if _, err := svc.Log(pet.ID, day, health.Observation{Energy: health.IntPtr(i)}); err != nil {
				t.Errorf("Log(%s) error = %v", day, err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := db.GetPet(pet.ID)
	if got.Points != 80 || got.TotalHealthRecords != 8 {
		t.Errorf("pet progression = %d points, %d records; want 80, 8", got.Points, got.TotalHealthRecords)
	}
}
