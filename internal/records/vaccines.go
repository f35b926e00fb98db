package records

import (
	"fmt"
	"strings"
	"time"

	"pet-health-diary/internal/models"
)

// VaccineLevel is one stage of a species' core vaccination plan.
type VaccineLevel struct {
	Level         int
	Name          string
	Description   string
	Details       string
	RequiredWeeks int // minimum age in weeks
}

type VaccineStatus string

const (
	VaccineUpcoming VaccineStatus = "upcoming"
	VaccineDueSoon  VaccineStatus = "due-soon"
	VaccineOverdue  VaccineStatus = "overdue"
)

// dueSoonWeeks is how early a vaccine shows as due-soon.
const dueSoonWeeks = 4

var plans = map[string][]VaccineLevel{
	"dog": {
		{1, "Puppy Core Series", "DHPP 1st Dose (6-8 weeks)", "Distemper, Hepatitis/Adenovirus, Parvovirus, Parainfluenza", 6},
		{2, "Puppy Completion", "DHPP 2nd + 3rd + Rabies (10-16 weeks)", "Complete puppy series + Rabies", 16},
		{3, "Adult Maintenance", "Annual Boosters (1+ years)", "DHPP + Rabies boosters every 1-3 years", 52},
	},
	"cat": {
		{1, "Kitten Core Series", "FVRCP 1st Dose (6-8 weeks)", "Feline Viral Rhinotracheitis, Calicivirus, Panleukopenia", 6},
		{2, "Kitten Completion", "FVRCP 2nd + 3rd + FeLV + Rabies (10-16 weeks)", "Complete kitten series + FeLV + Rabies", 16},
		{3, "Adult Maintenance", "Annual Boosters (1+ years)", "FVRCP + Rabies boosters every 1-3 years", 52},
	},
}

// VaccinationPlan returns the plan for dogs and cats, nil for other species.
func VaccinationPlan(species string) []VaccineLevel {
	return plans[strings.ToLower(strings.TrimSpace(species))]
}

// StatusForAge places a vaccine relative to the pet's age in weeks.
func StatusForAge(ageWeeks, requiredWeeks int) VaccineStatus {
	switch {
	case ageWeeks >= requiredWeeks:
		return VaccineOverdue
	case ageWeeks >= requiredWeeks-dueSoonWeeks:
		return VaccineDueSoon
	default:
		return VaccineUpcoming
	}
}

// CompleteVaccination builds the completed record for a plan level, with the
// booster due a year later.
func CompleteVaccination(pet *models.Pet, level int, on time.Time) (models.MedicalRecord, error) {
	plan := VaccinationPlan(pet.Species)
	if plan == nil {
		return models.MedicalRecord{}, fmt.Errorf("no vaccination plan for species %q", pet.Species)
	}
	for _, v := range plan {
		if v.Level != level {
			continue
		}
		next := on.Add(BoosterInterval)
		return models.MedicalRecord{
			PetID:        pet.ID,
			Type:         models.RecordVaccination,
			Title:        fmt.Sprintf("%s - Level %d", v.Name, v.Level),
			Date:         on,
			NextDate:     &next,
			Veterinarian: "Marked as completed",
			Notes:        fmt.Sprintf("Completed Level %d vaccination on %s", v.Level, on.Format("Jan 2, 2006")),
			Status:       models.RecordCompleted,
		}, nil
	}
	return models.MedicalRecord{}, fmt.Errorf("no vaccination level %d for %s", level, pet.Species)
}
