package handlers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"pet-health-diary/internal/calendar"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/records"
	"pet-health-diary/internal/utils"
)

// HandleText feeds free text to whatever input the chat is waiting for. The
// state is kept on bad input so the user can correct it, or /cancel.
func (h *Handler) HandleText(chatID int64, text string) {
	state, err := h.DB.GetUserState(chatID)
	if err != nil {
		log.Printf("load state %d: %v", chatID, err)
		return
	}
	text = strings.TrimSpace(text)

	name, args := models.ParseState(state)
	done := true
	switch name {
	case models.StateIdle:
		h.send(chatID, "Use /log to record today's health, or /help.")
		return
	case models.StateWaitLog:
		if len(args) != 2 {
			break
		}
		pet := h.ownPet(chatID, args[0])
		if pet == nil {
			h.send(chatID, msgNoPets)
			break
		}
		done = h.logEntry(chatID, pet, args[1], text)
	case models.StateWaitPet:
		done = h.createPet(chatID, text)
	case models.StateWaitEditPet:
		if len(args) != 1 {
			break
		}
		done = h.editPet(chatID, args[0], text)
	case models.StateWaitRecord:
		if len(args) != 1 {
			break
		}
		done = h.addRecord(chatID, args[0], text)
	case models.StateWaitVetName:
		h.searchVets(chatID, text)
	case models.StateWaitTime:
		done = h.setReminderTime(chatID, text)
	case models.StateWaitTZ:
		done = h.setTZ(chatID, text)
	case models.StateWaitPostal:
		done = h.setPostal(chatID, text)
	default:
		log.Printf("unknown state %q for %d", state, chatID)
	}

	if done {
		h.setState(chatID, models.StateIdle)
	}
}

func (h *Handler) setReminderTime(chatID int64, text string) bool {
	hm, err := utils.ParseHM(text)
	if err != nil {
		h.send(chatID, "Format HH:MM, e.g. 20:00")
		return false
	}
	u, err := h.ensureUser(chatID)
	if err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	u.ReminderAt = hm
	if err := h.DB.UpsertUser(u); err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	h.send(chatID, "Daily reminder set for "+hm+".")
	return true
}

func (h *Handler) setTZ(chatID int64, text string) bool {
	if _, err := utils.TZToLocation(text); err != nil {
		h.send(chatID, "Unknown time zone. Try Europe/Moscow or +03:00")
		return false
	}
	u, err := h.ensureUser(chatID)
	if err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	u.TZ = text
	if err := h.DB.UpsertUser(u); err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	h.send(chatID, "Time zone set to "+text+".")
	return true
}

// setPostal saves the vet search area. "-" clears it.
func (h *Handler) setPostal(chatID int64, text string) bool {
	code := strings.ToUpper(strings.Join(strings.Fields(text), " "))
	if code == "-" {
		code = ""
	} else if code == "" || len(code) > 10 {
		h.send(chatID, "Send a postal code like M5A 1P9, or - to clear it.")
		return false
	}
	if _, err := h.ensureUser(chatID); err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	if err := h.DB.SetPostalCode(chatID, code); err != nil {
		log.Printf("set postal %d: %v", chatID, err)
		h.send(chatID, msgFailed)
		return false
	}
	if code == "" {
		h.send(chatID, "Vet area cleared.")
	} else {
		h.send(chatID, "Vet area set to "+code+".")
	}
	return true
}

// parsePet reads "name, species, breed, YYYY-MM-DD, weight". Only the name is required.
func parsePet(text string, loc *time.Location) (*models.Pet, error) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	p := &models.Pet{Name: parts[0]}
	if p.Name == "" {
		return nil, errors.New("the pet needs a name")
	}
	if len(parts) > 5 {
		return nil, errors.New("too many fields")
	}
	if len(parts) > 1 {
		p.Species = strings.ToLower(parts[1])
	}
	if len(parts) > 2 {
		p.Breed = parts[2]
	}
	if len(parts) > 3 && parts[3] != "" && parts[3] != "-" {
		d, err := calendar.ParseDay(parts[3], loc)
		if err != nil {
			return nil, fmt.Errorf("birth date %q is not YYYY-MM-DD", parts[3])
		}
		p.BirthDate = &d
	}
	if len(parts) > 4 && parts[4] != "" && parts[4] != "-" {
		w, err := strconv.ParseFloat(parts[4], 64)
		if err != nil || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weight %q is not a positive number", parts[4])
		}
		p.WeightLbs = w
	}
	return p, nil
}

// profileLine writes a pet back in the form parsePet reads.
func profileLine(p *models.Pet) string {
	birth, weight := "-", "-"
	if p.BirthDate != nil {
		birth = calendar.DayKey(*p.BirthDate)
	}
	if p.WeightLbs > 0 {
		weight = strconv.FormatFloat(p.WeightLbs, 'f', -1, 64)
	}
	return strings.Join([]string{p.Name, p.Species, p.Breed, birth, weight}, ", ")
}

// parseRecord reads "type; title; date; next date; vet; notes". Records dated
// today or earlier are saved as completed, later ones as upcoming.
func parseRecord(text string, now time.Time) (*models.MedicalRecord, error) {
	parts := strings.Split(text, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return nil, errors.New("type, title and date are required")
	}
	if len(parts) > 6 {
		return nil, errors.New("too many fields")
	}

	typ, err := records.ParseType(parts[0])
	if err != nil {
		return nil, err
	}
	if parts[1] == "" {
		return nil, errors.New("the record needs a title")
	}
	date, err := calendar.ParseDay(parts[2], now.Location())
	if err != nil {
		return nil, fmt.Errorf("date %q is not YYYY-MM-DD", parts[2])
	}

	rec := &models.MedicalRecord{Type: typ, Title: parts[1], Date: date}
	if len(parts) > 3 && parts[3] != "" && parts[3] != "-" {
		next, err := calendar.ParseDay(parts[3], now.Location())
		if err != nil {
			return nil, fmt.Errorf("next date %q is not YYYY-MM-DD", parts[3])
		}
		if next.Before(date) {
			return nil, errors.New("next date is before the record date")
		}
		rec.NextDate = &next
	}
	if len(parts) > 4 && parts[4] != "-" {
		rec.Veterinarian = parts[4]
	}
	if len(parts) > 5 {
		rec.Notes = parts[5]
	}

	if calendar.DayKey(date) <= calendar.DayKey(now) {
		rec.Status = models.RecordCompleted
	} else {
		rec.Status = models.RecordUpcoming
	}
	return rec, nil
}
