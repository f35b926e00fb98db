package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"pet-health-diary/internal/calendar"
	"pet-health-diary/internal/diary"
	"pet-health-diary/internal/health"
	"pet-health-diary/internal/messages"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/records"
	"pet-health-diary/internal/vets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) HandleCommand(chatID int64, cmd, args string) {
	args = strings.TrimSpace(args)
	switch cmd {
	case "start":
		h.HandleStart(chatID)
	case "help":
		h.send(chatID, helpText)
	case "addpet":
		h.handleAddPet(chatID, args)
	case "editpet":
		h.handleEditPet(chatID, args)
	case "pets":
		h.handlePets(chatID)
	case "pet":
		h.handleSelectPet(chatID, args)
	case "log":
		h.handleLog(chatID, args)
	case "score":
		h.handleScore(chatID)
	case "week":
		h.handleWeek(chatID, args)
	case "level":
		h.handleLevel(chatID)
	case "records":
		h.handleRecords(chatID)
	case "addrecord":
		h.handleAddRecord(chatID, args)
	case "vaccines":
		h.handleVaccines(chatID)
	case "vet":
		h.handleVet(chatID, args)
	case "vetinfo":
		h.handleVetInfo(chatID, args)
	case "settings":
		h.HandleSettings(chatID)
	case "cancel":
		h.setState(chatID, models.StateIdle)
		h.send(chatID, "Cancelled.")
	default:
		h.send(chatID, "Unknown command.\n\n"+helpText)
	}
}

// ---------------- /start --------------------
func (h *Handler) HandleStart(chatID int64) {
	if _, err := h.ensureUser(chatID); err != nil {
		log.Printf("create user %d: %v", chatID, err)
		h.send(chatID, msgFailed)
		return
	}
	h.setState(chatID, models.StateIdle)

	text := "🐾 Welcome to the pet health diary!\n" +
		"Log your pet's energy, appetite, water, urine and stool every day to get a health score, " +
		"earn points and level up your pet's avatar.\n\n" + helpText

	pets, _ := h.DB.ListPets(chatID)
	if len(pets) == 0 {
		text += "\n\nStart by adding a pet with /addpet."
	}
	h.sendMarkup(chatID, text, mainMenu)
}

func (h *Handler) HandleSettings(chatID int64) {
	u, err := h.ensureUser(chatID)
	if err != nil {
		h.send(chatID, msgFailed)
		return
	}
	postal := u.PostalCode
	if postal == "" {
		postal = "-"
	}
	text := fmt.Sprintf("Settings\nReminder time: %s\nTime zone: %s\nVet area: %s", u.ReminderAt, u.TZ, postal)
	h.sendMarkup(chatID, text, settingsKB)
}

// ---------------- pets ----------------------
func (h *Handler) handleAddPet(chatID int64, args string) {
	if args == "" {
		h.setState(chatID, models.StateWaitPet)
		h.send(chatID, msgPetHelp)
		return
	}
	h.createPet(chatID, args)
}

func (h *Handler) createPet(chatID int64, text string) bool {
	u, err := h.ensureUser(chatID)
	if err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	p, err := parsePet(text, location(u))
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\n\n"+msgPetHelp)
		return false
	}
	p.ChatID = chatID
	if err := h.DB.CreatePet(p); err != nil {
		log.Printf("create pet for %d: %v", chatID, err)
		h.send(chatID, msgFailed)
		return false
	}
	if u.ActivePetID == "" {
		_ = h.DB.SetActivePet(chatID, p.ID)
	}
	h.send(chatID, fmt.Sprintf("%s %s added! Log their health with /log.", messages.Avatar(1), p.Name))
	return true
}

func (h *Handler) handleEditPet(chatID int64, args string) {
	_, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	if args == "" {
		h.setState(chatID, models.NewState(models.StateWaitEditPet, pet.ID))
		h.send(chatID, fmt.Sprintf("Editing %s. Current profile:\n%s\n\n%s", pet.Name, profileLine(pet), msgPetHelp))
		return
	}
	h.editPet(chatID, pet.ID, args)
}

// editPet replaces the pet's profile with the parsed text. Points and
// records are kept.
func (h *Handler) editPet(chatID int64, petID, text string) bool {
	u, err := h.ensureUser(chatID)
	if err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	pet := h.ownPet(chatID, petID)
	if pet == nil {
		h.send(chatID, msgNoPets)
		return true
	}
	p, err := parsePet(text, location(u))
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\n\n"+msgPetHelp)
		return false
	}

	pet.Name, pet.Species, pet.Breed = p.Name, p.Species, p.Breed
	pet.BirthDate, pet.WeightLbs = p.BirthDate, p.WeightLbs
	if err := h.DB.UpdatePetProfile(pet); err != nil {
		log.Printf("update pet %s: %v", pet.ID, err)
		h.send(chatID, msgFailed)
		return false
	}
	h.send(chatID, "Profile updated:\n"+profileLine(pet))
	return true
}

func (h *Handler) handlePets(chatID int64) {
	u, err := h.ensureUser(chatID)
	if err != nil {
		h.send(chatID, msgFailed)
		return
	}
	pets, err := h.DB.ListPets(chatID)
	if err != nil {
		log.Printf("list pets %d: %v", chatID, err)
		h.send(chatID, msgFailed)
		return
	}
	if len(pets) == 0 {
		h.send(chatID, msgNoPets)
		return
	}

	lines := []string{"Your pets:"}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range pets {
		p := &pets[i]
		lines = append(lines, messages.PetLine(p, p.ID == u.ActivePetID))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, cbSelect+":"+p.ID),
		))
	}
	h.sendMarkup(chatID, strings.Join(lines, "\n"), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (h *Handler) handleSelectPet(chatID int64, name string) {
	if name == "" {
		h.handlePets(chatID)
		return
	}
	if _, err := h.ensureUser(chatID); err != nil {
		h.send(chatID, msgFailed)
		return
	}
	p, err := h.DB.FindPetByName(chatID, name)
	if err != nil || p == nil {
		h.send(chatID, fmt.Sprintf("No pet called %q. See /pets.", name))
		return
	}
	h.selectPet(chatID, p)
}

func (h *Handler) selectPet(chatID int64, p *models.Pet) {
	if err := h.DB.SetActivePet(chatID, p.ID); err != nil {
		h.send(chatID, msgFailed)
		return
	}
	h.send(chatID, fmt.Sprintf("%s Now tracking %s.", messages.Avatar(p.Progression().Level()), p.Name))
}

// ---------------- logging -------------------
func (h *Handler) handleLog(chatID int64, args string) {
	u, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	day := calendar.DayKey(h.localNow(u))
	if args != "" {
		h.logEntry(chatID, pet, day, args)
		return
	}
	h.promptLog(chatID, pet, day)
}

func (h *Handler) promptLog(chatID int64, pet *models.Pet, day string) {
	h.setState(chatID, models.NewState(models.StateWaitLog, pet.ID, day))
	h.send(chatID, fmt.Sprintf("Logging %s for %s.\n%s", pet.Name, day, msgLogHelp))
}

// logEntry parses and records one entry. It reports whether the entry was saved.
func (h *Handler) logEntry(chatID int64, pet *models.Pet, day, text string) bool {
	obs, err := diary.ParseEntry(text)
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\n\n"+msgLogHelp)
		return false
	}
	out, err := h.Diary.Log(pet.ID, day, obs)
	if err != nil {
		log.Printf("log %s/%s: %v", pet.ID, day, err)
		h.send(chatID, "❌ "+err.Error())
		return false
	}
	if out.Assessment.NeedsAttention {
		h.sendEscalation(chatID, pet)
	}
	return true
}

func (h *Handler) handleScore(chatID int64) {
	u, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	day := calendar.DayKey(h.localNow(u))
	rec, err := h.DB.GetDayRecord(pet.ID, day)
	if err != nil {
		log.Printf("load day %s/%s: %v", pet.ID, day, err)
		h.send(chatID, msgFailed)
		return
	}
	if rec == nil || !rec.Observation.Logged {
		h.send(chatID, fmt.Sprintf("Nothing logged for %s today. Use /log.", pet.Name))
		return
	}

	a, err := health.Assess(rec.Observation)
	if err != nil {
		log.Printf("assess %s/%s: %v", pet.ID, day, err)
		h.send(chatID, msgFailed)
		return
	}
	text := messages.Assessment(pet.Name, day, a)
	if a.NeedsAttention {
		h.sendMarkup(chatID, text, vetKB)
		return
	}
	h.send(chatID, text)
}

func (h *Handler) handleWeek(chatID int64, args string) {
	offset := 0
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			h.send(chatID, "Usage: /week [offset], e.g. /week -1 for last week.")
			return
		}
		offset = n
	}
	h.sendWeek(chatID, offset, 0)
}

// sendWeek shows the calendar offset weeks from now. A non-zero msgID edits
// that message in place.
func (h *Handler) sendWeek(chatID int64, offset, msgID int) {
	u, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	text, err := h.weekText(u, pet, offset)
	if err != nil {
		log.Printf("week for %s: %v", pet.ID, err)
		h.send(chatID, msgFailed)
		return
	}

	kb := weekKB(offset)
	if msgID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)
		if _, err := h.Bot.Request(edit); err != nil {
			log.Printf("edit week message: %v", err)
		}
		return
	}
	h.sendMarkup(chatID, text, kb)
}

func (h *Handler) weekText(u *models.User, pet *models.Pet, offset int) (string, error) {
	now := h.localNow(u)
	anchor := now.AddDate(0, 0, 7*offset)
	from, to := calendar.Bounds(anchor)

	days, err := h.DB.ListDayRecords(pet.ID, from, to)
	if err != nil {
		return "", err
	}
	recs, err := h.DB.ListRecords(pet.ID)
	if err != nil {
		return "", err
	}
	week := calendar.Build(anchor, now, days, records.Appointments(recs, now))
	return calendar.Render(pet.Name, week), nil
}

func (h *Handler) handleLevel(chatID int64) {
	_, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	h.send(chatID, messages.Progress(pet))
}

// ---------------- records -------------------
func (h *Handler) handleRecords(chatID int64) {
	u, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	recs, err := h.DB.ListRecords(pet.ID)
	if err != nil {
		log.Printf("list records %s: %v", pet.ID, err)
		h.send(chatID, msgFailed)
		return
	}
	h.send(chatID, messages.Records(pet.Name, recs, h.localNow(u)))
}

func (h *Handler) handleAddRecord(chatID int64, args string) {
	_, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	if args == "" {
		h.setState(chatID, models.NewState(models.StateWaitRecord, pet.ID))
		h.send(chatID, fmt.Sprintf("New medical record for %s.\n%s", pet.Name, msgRecordHelp))
		return
	}
	h.addRecord(chatID, pet.ID, args)
}

func (h *Handler) addRecord(chatID int64, petID, text string) bool {
	u, err := h.ensureUser(chatID)
	if err != nil {
		h.send(chatID, msgFailed)
		return false
	}
	pet := h.ownPet(chatID, petID)
	if pet == nil {
		h.send(chatID, msgNoPets)
		return true
	}

	rec, err := parseRecord(text, h.localNow(u))
	if err != nil {
		h.send(chatID, "❌ "+err.Error()+"\n\n"+msgRecordHelp)
		return false
	}
	rec.PetID = pet.ID
	if err := h.DB.InsertRecord(rec); err != nil {
		log.Printf("insert record for %s: %v", pet.ID, err)
		h.send(chatID, msgFailed)
		return false
	}
	h.send(chatID, fmt.Sprintf("Saved %s %q for %s (%s).", rec.Type, rec.Title, pet.Name, rec.Status))
	return true
}

func (h *Handler) handleVaccines(chatID int64) {
	u, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	text := messages.Vaccines(pet, h.localNow(u))
	plan := records.VaccinationPlan(pet.Species)
	if plan == nil {
		h.send(chatID, text)
		return
	}
	h.sendMarkup(chatID, text, vaccinesKB(plan))
}

func (h *Handler) completeVaccination(chatID int64, level int) {
	u, pet := h.activePet(chatID)
	if pet == nil {
		return
	}
	rec, err := records.CompleteVaccination(pet, level, h.localNow(u))
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	if err := h.DB.InsertRecord(&rec); err != nil {
		log.Printf("insert vaccination for %s: %v", pet.ID, err)
		h.send(chatID, msgFailed)
		return
	}
	h.send(chatID, fmt.Sprintf("💉 %s marked as completed. Booster due %s.", rec.Title, rec.NextDate.Format("Jan 2, 2006")))
}

// ---------------- vets ----------------------
func (h *Handler) handleVet(chatID int64, args string) {
	if args == "" {
		h.setState(chatID, models.StateWaitVetName)
		h.send(chatID, msgVetHelp)
		return
	}
	h.searchVets(chatID, args)
}

// vetNearby searches around the saved postal code, or asks for a name when
// there is none.
func (h *Handler) vetNearby(chatID int64) {
	u, err := h.DB.GetUser(chatID)
	if err != nil {
		log.Printf("load user %d: %v", chatID, err)
	}
	if u == nil || u.PostalCode == "" {
		h.handleVet(chatID, "")
		return
	}
	h.searchVets(chatID, ", "+u.PostalCode)
}

// searchVets reads "name, postal code" for the Ontario registry or "bc: name"
// for the British Columbia one. Ontario searches need a name or a postal code.
func (h *Handler) searchVets(chatID int64, text string) {
	if h.Vets == nil {
		h.send(chatID, "Vet lookup is not available.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		list []vets.Vet
		err  error
	)
	if prefix, name, ok := strings.Cut(text, ":"); ok && strings.EqualFold(strings.TrimSpace(prefix), "bc") {
		name = strings.TrimSpace(name)
		if name == "" {
			h.send(chatID, msgVetHelp)
			return
		}
		list, err = h.Vets.SearchBC(ctx, name)
	} else {
		name, postal, _ := strings.Cut(text, ",")
		q := vets.Query{Name: strings.TrimSpace(name), PostalCode: strings.TrimSpace(postal)}
		if q.Name == "" && q.PostalCode == "" {
			h.send(chatID, msgVetHelp)
			return
		}
		list, err = h.Vets.Search(ctx, q)
	}
	if err != nil {
		log.Printf("vet search %q: %v", text, err)
		h.send(chatID, "Vet lookup failed, please try again later.")
		return
	}
	h.send(chatID, messages.Vets(list))
}

func (h *Handler) handleVetInfo(chatID int64, id string) {
	if id == "" {
		h.send(chatID, "Usage: /vetinfo <registrant ID>")
		return
	}
	if h.Vets == nil {
		h.send(chatID, "Vet lookup is not available.")
		return
	}
	if strings.HasPrefix(id, "bc-") {
		h.send(chatID, "Details are only available for Ontario registrants.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	v, err := h.Vets.Get(ctx, id)
	if err != nil {
		log.Printf("vet get %q: %v", id, err)
		h.send(chatID, "Vet lookup failed, please try again later.")
		return
	}
	h.send(chatID, messages.VetDetails(v))
}
