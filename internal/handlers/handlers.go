package handlers

import (
	"strconv"

	"pet-health-diary/internal/records"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuLog      = "📝 Log today"
	menuWeek     = "📅 Week"
	menuPets     = "🐾 Pets"
	menuLevel    = "🏅 Level"
	menuRecords  = "💉 Records"
	menuSettings = "⚙️ Settings"

	btnLogNow  = "📝 Log now"
	btnSkip    = "Skip today"
	btnAskVet  = "🩺 Talk to a vet"
	btnPrev    = "◀ Prev"
	btnToday   = "Today"
	btnNext    = "Next ▶"
	btnTime    = "Reminder time"
	btnTZ      = "Time zone"
	btnPostal  = "Vet area"
	btnClear   = "Clear data"
	btnConfirm = "Yes, delete everything"
	btnCancel  = "Cancel"
)

// Callback data names. Arguments follow after ":".
const (
	cbLog       = "log"    // log:<petID>:<day>
	cbSkip      = "skip"   // skip:<petID>:<day>
	cbSelect    = "select" // select:<petID>
	cbWeek      = "week"   // week:<offset>
	cbVet       = "vet"
	cbVax       = "vax" // vax:<level>
	cbSetTime   = "set_time"
	cbSetTZ     = "set_tz"
	cbSetPostal = "set_postal"
	cbClear     = "clear"
	cbClearYes  = "clear_yes"
	cbCancel    = "cancel"
)

// menuCommands maps reply keyboard buttons to commands.
var menuCommands = map[string]string{
	menuLog:      "log",
	menuWeek:     "week",
	menuPets:     "pets",
	menuLevel:    "level",
	menuRecords:  "records",
	menuSettings: "settings",
}

var mainMenu = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(menuLog),
		tgbotapi.NewKeyboardButton(menuWeek),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(menuPets),
		tgbotapi.NewKeyboardButton(menuLevel),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(menuRecords),
		tgbotapi.NewKeyboardButton(menuSettings),
	),
)

var settingsKB = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnTime, cbSetTime),
		tgbotapi.NewInlineKeyboardButtonData(btnTZ, cbSetTZ),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnPostal, cbSetPostal),
		tgbotapi.NewInlineKeyboardButtonData(btnClear, cbClear),
	),
)

var clearKB = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnConfirm, cbClearYes),
		tgbotapi.NewInlineKeyboardButtonData(btnCancel, cbCancel),
	),
)

var vetKB = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnAskVet, cbVet),
	),
)

func reminderKB(petID, day string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnLogNow, cbLog+":"+petID+":"+day),
			tgbotapi.NewInlineKeyboardButtonData(btnSkip, cbSkip+":"+petID+":"+day),
		),
	)
}

func weekKB(offset int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnPrev, cbWeek+":"+strconv.Itoa(offset-1)),
			tgbotapi.NewInlineKeyboardButtonData(btnToday, cbWeek+":0"),
			tgbotapi.NewInlineKeyboardButtonData(btnNext, cbWeek+":"+strconv.Itoa(offset+1)),
		),
	)
}

func vaccinesKB(plan []records.VaccineLevel) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, v := range plan {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Level "+strconv.Itoa(v.Level)+" done", cbVax+":"+strconv.Itoa(v.Level)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

const (
	msgFailed  = "Something went wrong, please try again."
	msgNoPets  = "No pets yet. Add one with /addpet."
	msgLogHelp = "Send today's signals, any subset of:\n" +
		"energy=1..10 food=1..10 water=1..10\n" +
		"urine=clear|yellow|dark|red\n" +
		"poop=brown|green|black|red|yellow\n" +
		"consistency=firm|soft|loose|liquid\n" +
		"weight=<lbs>\n\n" +
		"Example: energy=7 food=8 urine=clear poop=brown consistency=firm"
	msgPetHelp = "Send the pet as: name, species, breed, birth date (YYYY-MM-DD), weight in lbs.\n" +
		"Only the name is required. Example: Luna, dog, beagle, 2023-04-01, 22"
	msgRecordHelp = "Send the record as: type; title; date (YYYY-MM-DD); next date; vet; notes.\n" +
		"Types: vaccination, checkup, medication, surgery, emergency. Type, title and date are required.\n" +
		"Example: checkup; Annual exam; 2025-06-01; -; Dr. Smith"
	msgVetHelp = "Send a vet name and, optionally, a postal code. Example: Smith, M5A 1P9\n" +
		"Only a postal code works too: , M5A 1P9\n" +
		"For British Columbia prefix the name with bc: e.g. bc: Jane"
	helpText = "/log - log today's health\n" +
		"/score - today's health score\n" +
		"/week - weekly health calendar\n" +
		"/level - avatar level and points\n" +
		"/pets, /pet <name>, /addpet, /editpet - manage pets\n" +
		"/records, /addrecord, /vaccines - medical records\n" +
		"/vet - find a vet, /vetinfo <id> - vet details\n" +
		"/settings - reminder time, time zone and vet area\n" +
		"/cancel - stop the current input"
)
