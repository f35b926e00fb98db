// Package calendar lays a pet's day records and appointments out on a
// Monday-first week.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"pet-health-diary/internal/health"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/records"
)

// DayLayout is the storage key format for a calendar day.
const DayLayout = "2006-01-02"

// Day is one annotated cell of the week view.
type Day struct {
	Date         time.Time
	Key          string
	Record       *models.DayRecord
	Assessment   health.Assessment
	Appointments []records.Appointment
	Today        bool
}

// Logged reports whether the day has a logged observation.
func (d Day) Logged() bool {
	return d.Record != nil && d.Record.Observation.Logged
}

func DayKey(t time.Time) string { return t.Format(DayLayout) }

// ParseDay reads a YYYY-MM-DD key in loc.
func ParseDay(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, key, loc)
}

// WeekOf returns the seven midnights of t's week, Monday first.
func WeekOf(t time.Time) [7]time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7 // Monday = 0
	start := midnight.AddDate(0, 0, -offset)

	var week [7]time.Time
	for i := range week {
		week[i] = start.AddDate(0, 0, i)
	}
	return week
}

// Bounds returns the first and last day keys of anchor's week.
func Bounds(anchor time.Time) (string, string) {
	w := WeekOf(anchor)
	return DayKey(w[0]), DayKey(w[6])
}

// Build annotates anchor's week with day records and appointments. Every day
// is scored from its stored observation on each call.
func Build(anchor, today time.Time, days []models.DayRecord, appts []records.Appointment) []Day {
	byKey := make(map[string]*models.DayRecord, len(days))
	for i := range days {
		byKey[days[i].Day] = &days[i]
	}

	todayKey := DayKey(today)
	var res []Day
	for _, date := range WeekOf(anchor) {
		key := DayKey(date)
		day := Day{
			Date:   date,
			Key:    key,
			Record: byKey[key],
			Today:  key == todayKey,
		}
		if day.Record != nil {
			if a, err := health.Assess(day.Record.Observation); err == nil {
				day.Assessment = a
			}
		}
		if day.Assessment.Status == "" {
			day.Assessment.Status = health.StatusUnknown
		}
		for _, a := range appts {
			if DayKey(a.Date) == key {
				day.Appointments = append(day.Appointments, a)
			}
		}
		res = append(res, day)
	}
	return res
}

var statusMarks = map[health.Status]string{
	health.StatusGood:    "🟢",
	health.StatusFair:    "🟡",
	health.StatusPoor:    "🔴",
	health.StatusUnknown: "⚪",
}

// Render formats a built week as chat text.
func Render(petName string, week []Day) string {
	if len(week) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s's Health Calendar\n%s - %s\n\n",
		petName, week[0].Date.Format("Jan 2"), week[len(week)-1].Date.Format("Jan 2, 2006"))

	for _, d := range week {
		marker := " "
		if d.Today {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %s %2d  ", marker, d.Date.Format("Mon"), d.Date.Day())
		if d.Logged() {
			obs := d.Record.Observation
			fmt.Fprintf(&b, "%s %s", statusMarks[d.Assessment.Status], scoreText(d.Assessment.Score))
			if obs.Food != nil {
				fmt.Fprintf(&b, " 🍽%d", *obs.Food)
			}
			if obs.Water != nil {
				fmt.Fprintf(&b, " 💧%d", *obs.Water)
			}
		} else {
			b.WriteString("—")
		}
		for _, a := range d.Appointments {
			fmt.Fprintf(&b, " | 📅 %s (%s)", a.Title, a.Status)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func scoreText(s health.Score) string {
	if !s.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%d", s.Value)
}
