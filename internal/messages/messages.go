// Package messages turns diary values into chat text. Emoji and wording live
// here so the scoring packages stay free of presentation.
package messages

import (
	"fmt"
	"strings"
	"time"

	"pet-health-diary/internal/diary"
	"pet-health-diary/internal/health"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/records"
	"pet-health-diary/internal/vets"
)

var avatars = []string{"🐾", "🐕", "🦮", "🐕‍🦺", "🦊", "🐺"}

// Avatar is the pet's avatar for a level.
func Avatar(level int) string {
	if level < 1 {
		level = 1
	}
	if level > len(avatars) {
		level = len(avatars)
	}
	return avatars[level-1]
}

func StatusEmoji(s health.Status) string {
	switch s {
	case health.StatusGood:
		return "🟢"
	case health.StatusFair:
		return "🟡"
	case health.StatusPoor:
		return "🔴"
	default:
		return "⚪"
	}
}

func severityEmoji(s diary.Severity) string {
	switch s {
	case diary.SeveritySuccess:
		return "✅"
	case diary.SeverityWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func Notification(n diary.Notification) string {
	return fmt.Sprintf("%s %s\n%s", severityEmoji(n.Severity), n.Title, n.Description)
}

// Assessment describes one day's score for a pet.
func Assessment(petName, day string, a health.Assessment) string {
	if !a.Score.Valid {
		return fmt.Sprintf("%s %s on %s: no score yet, log some signals first.", StatusEmoji(a.Status), petName, day)
	}
	return fmt.Sprintf("%s %s on %s: health score %d/100 (%s)", StatusEmoji(a.Status), petName, day, a.Score.Value, a.Status)
}

// progressBar draws ratio in [0,1] with ten cells.
func progressBar(ratio float64) string {
	filled := int(ratio*10 + 0.5)
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
}

var levelRewards = map[int][]string{
	1: {"Basic Health Tips", "Pet Care Guide"},
	2: {"5% Vet Visit Discount", "Premium Food Sample"},
	3: {"10% Vet Visit Discount", "Free Health Checkup"},
	4: {"15% Vet Visit Discount", "Grooming Session"},
	5: {"20% Vet Visit Discount", "Premium Pet Insurance"},
}

type Achievement struct {
	Icon string
	Name string
}

// Achievements lists what the pet has unlocked so far.
func Achievements(p *models.Pet) []Achievement {
	var res []Achievement
	level := p.Progression().Level()
	if p.TotalHealthRecords >= 10 {
		res = append(res, Achievement{"📊", "Health Tracker"})
	}
	if p.TotalHealthRecords >= 30 {
		res = append(res, Achievement{"💝", "Dedicated Caregiver"})
	}
	if p.TotalHealthRecords >= 50 {
		res = append(res, Achievement{"🏆", "Health Expert"})
	}
	if level >= 3 {
		res = append(res, Achievement{"⭐", "Rising Star"})
	}
	if level >= 5 {
		res = append(res, Achievement{"👑", "Elite Pet"})
	}
	return res
}

// Progress is the /level card.
func Progress(p *models.Pet) string {
	prog := p.Progression()
	level := prog.Level()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, level %d\n", Avatar(level), p.Name, level)
	fmt.Fprintf(&b, "%s %d pts\n", progressBar(health.ProgressToNext(prog.Points)), prog.Points)
	if level == health.MaxLevel {
		b.WriteString("Max level reached!\n")
	} else {
		fmt.Fprintf(&b, "%d points to level %d\n", health.PointsToNext(prog.Points), level+1)
	}
	fmt.Fprintf(&b, "Health records: %d\n", prog.TotalHealthRecords)

	if rewards, ok := levelRewards[level]; ok {
		fmt.Fprintf(&b, "Rewards: %s\n", strings.Join(rewards, ", "))
	}
	if ach := Achievements(p); len(ach) > 0 {
		b.WriteString("Achievements:")
		for _, a := range ach {
			fmt.Fprintf(&b, " %s %s", a.Icon, a.Name)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// PetLine is one row of the /pets list.
func PetLine(p *models.Pet, active bool) string {
	mark := ""
	if active {
		mark = " ⭐"
	}
	desc := strings.TrimSpace(strings.Join([]string{p.Species, p.Breed}, " "))
	if desc != "" {
		desc = " (" + desc + ")"
	}
	return fmt.Sprintf("%s %s%s, level %d, %d pts%s", Avatar(p.Progression().Level()), p.Name, desc,
		p.Progression().Level(), p.Points, mark)
}

var recordIcons = map[models.RecordType]string{
	models.RecordVaccination: "💉",
	models.RecordCheckup:     "🩺",
	models.RecordMedication:  "💊",
	models.RecordSurgery:     "🏥",
	models.RecordEmergency:   "🚑",
}

// Records lists medical records with statuses derived at now.
func Records(petName string, recs []models.MedicalRecord, now time.Time) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No medical records for %s yet. Use /addrecord.", petName)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Medical records for %s\n", petName)
	for _, r := range recs {
		fmt.Fprintf(&b, "\n%s %s (%s)\n  %s, %s", recordIcons[r.Type], r.Title, records.DeriveStatus(r, now),
			r.Type, r.Date.Format("Jan 2, 2006"))
		if r.NextDate != nil {
			fmt.Fprintf(&b, ", next %s", r.NextDate.Format("Jan 2, 2006"))
		}
		if r.Veterinarian != "" {
			fmt.Fprintf(&b, "\n  %s", r.Veterinarian)
		}
	}
	return b.String()
}

// Vaccines renders the plan for the pet's species at its current age.
func Vaccines(p *models.Pet, now time.Time) string {
	plan := records.VaccinationPlan(p.Species)
	if plan == nil {
		return fmt.Sprintf("No vaccination plan for %q. Plans exist for dogs and cats.", p.Species)
	}
	age := p.AgeWeeks(now)

	var b strings.Builder
	fmt.Fprintf(&b, "Vaccination plan for %s", p.Name)
	if age >= 0 {
		fmt.Fprintf(&b, " (%d weeks old)", age)
	}
	b.WriteString("\n")
	for _, v := range plan {
		fmt.Fprintf(&b, "\nLevel %d: %s\n  %s\n  %s", v.Level, v.Name, v.Description, v.Details)
		if age >= 0 {
			fmt.Fprintf(&b, "\n  Status: %s", records.StatusForAge(age, v.RequiredWeeks))
		}
	}
	return b.String()
}

// Vets lists registry search results.
func Vets(list []vets.Vet) string {
	if len(list) == 0 {
		return "No vets found. Try another name or postal code."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) found\n", len(list))
	for _, v := range list {
		fmt.Fprintf(&b, "\n🩺 %s\n  %s", v.DisplayName(), v.Location())
		if v.Phone != "" {
			fmt.Fprintf(&b, "\n  ☎️ %s", v.Phone)
		}
		if v.Province == "BC" {
			fmt.Fprintf(&b, "\n  %s, %s", v.PracticeType, v.RegistrationStatus)
		}
	}
	return b.String()
}

// VetDetails is the full card of one registrant. Empty fields are left out.
func VetDetails(v *vets.Vet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🩺 %s", v.DisplayName())
	for _, f := range []struct{ label, value string }{
		{"ID", v.ID},
		{"Clinic", v.ClinicName},
		{"Address", v.Location()},
		{"Phone", v.Phone},
		{"Email", v.Email},
		{"Status", v.RegistrationStatus},
		{"Class", v.ClassOfRegistration},
		{"Specialty", v.Specialty},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "\n%s: %s", f.label, f.value)
		}
	}
	return b.String()
}
