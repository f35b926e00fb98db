package scheduler

import (
	"log"
	"time"

	"pet-health-diary/internal/calendar"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/records"
	"pet-health-diary/internal/utils"

	"github.com/go-co-op/gocron/v2"
)

// Reminder sends the chat-facing prompts.
type Reminder interface {
	SendReminder(u *models.User, pet *models.Pet, day string) error
	SendNudge(p models.PendingMessage, pet *models.Pet) error
}

// Store is the part of storage.DB the jobs read and write.
type Store interface {
	ListUsers() ([]models.User, error)
	ListPets(chatID int64) ([]models.Pet, error)
	GetPet(id string) (*models.Pet, error)
	HasPendingOrLogged(petID, day string) bool
	ListPendingForReminder(now time.Time, every time.Duration) ([]models.PendingMessage, error)
	TouchReminder(id int64, at time.Time) error
	DeletePending(petID, day string) error
	ListOpenRecords() ([]models.MedicalRecord, error)
	UpdateRecordStatus(id string, status models.RecordStatus) error
}

type Jobs struct {
	Store    Store
	Reminder Reminder
	Repeat   time.Duration // how often an unanswered prompt is repeated
}

// Start registers the reminder scan every scanEvery and the record status
// refresh every hour.
func Start(j *Jobs, scanEvery time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(scanEvery),
		gocron.NewTask(func() { j.Tick(time.Now()) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() { j.RefreshRecords(time.Now()) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}

// Tick sends today's prompts to users whose reminder time is now and repeats
// prompts that are still unanswered.
func (j *Jobs) Tick(now time.Time) {
	users, err := j.Store.ListUsers()
	if err != nil {
		log.Println("list users:", err)
		return
	}

	for i := range users {
		u := &users[i]
		loc, err := utils.TZToLocation(u.TZ)
		if err != nil {
			log.Printf("bad time zone %s for %d", u.TZ, u.ChatID)
			continue
		}
		local := now.In(loc)
		if local.Format("15:04") != u.ReminderAt {
			continue
		}
		j.remind(u, calendar.DayKey(local))
	}

	j.nudge(now, users)
}

func (j *Jobs) remind(u *models.User, day string) {
	pets, err := j.Store.ListPets(u.ChatID)
	if err != nil {
		log.Printf("list pets for %d: %v", u.ChatID, err)
		return
	}
	for i := range pets {
		p := &pets[i]
		if j.Store.HasPendingOrLogged(p.ID, day) {
			continue
		}
		if err := j.Reminder.SendReminder(u, p, day); err != nil {
			log.Printf("reminder for %s: %v", p.ID, err)
		}
	}
}

// nudge repeats prompts older than Repeat. Prompts for a day that is already
// over in the user's zone are dropped.
func (j *Jobs) nudge(now time.Time, users []models.User) {
	if j.Repeat <= 0 {
		return
	}
	pending, err := j.Store.ListPendingForReminder(now, j.Repeat)
	if err != nil {
		log.Println("list pending:", err)
		return
	}

	tz := make(map[int64]string, len(users))
	for _, u := range users {
		tz[u.ChatID] = u.TZ
	}

	for _, p := range pending {
		loc, err := utils.TZToLocation(tz[p.ChatID])
		if err != nil {
			loc = time.UTC
		}
		if p.Day != calendar.DayKey(now.In(loc)) {
			if err := j.Store.DeletePending(p.PetID, p.Day); err != nil {
				log.Printf("drop stale prompt %d: %v", p.ID, err)
			}
			continue
		}

		pet, err := j.Store.GetPet(p.PetID)
		if err != nil || pet == nil {
			continue
		}
		if err := j.Reminder.SendNudge(p, pet); err != nil {
			log.Printf("nudge %d: %v", p.ID, err)
			continue
		}
		if err := j.Store.TouchReminder(p.ID, now); err != nil {
			log.Printf("touch reminder %d: %v", p.ID, err)
		}
	}
}

// RefreshRecords stores the derived status of every open medical record,
// judged against the current day in the owner's time zone.
func (j *Jobs) RefreshRecords(now time.Time) {
	recs, err := j.Store.ListOpenRecords()
	if err != nil {
		log.Println("list open records:", err)
		return
	}
	zones := j.petZones()

	for _, r := range recs {
		loc, ok := zones[r.PetID]
		if !ok {
			loc = time.UTC
		}
		st := records.DeriveStatus(r, now.In(loc))
		if st == r.Status {
			continue
		}
		if err := j.Store.UpdateRecordStatus(r.ID, st); err != nil {
			log.Printf("update record %s: %v", r.ID, err)
		}
	}
}

// petZones maps pet IDs to their owner's location.
func (j *Jobs) petZones() map[string]*time.Location {
	zones := make(map[string]*time.Location)
	users, err := j.Store.ListUsers()
	if err != nil {
		log.Println("list users:", err)
		return zones
	}
	for _, u := range users {
		loc, err := utils.TZToLocation(u.TZ)
		if err != nil {
			loc = time.UTC
		}
		pets, err := j.Store.ListPets(u.ChatID)
		if err != nil {
			log.Printf("list pets for %d: %v", u.ChatID, err)
			continue
		}
		for _, p := range pets {
			zones[p.ID] = loc
		}
	}
	return zones
}
