package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"pet-health-diary/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) HandleCallback(cq *tgbotapi.CallbackQuery) {
	// always answer callback to remove 'loading...'
	_, _ = h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	parts := strings.Split(cq.Data, ":")
	name, args := parts[0], parts[1:]

	switch name {
	case cbLog:
		if len(args) != 2 {
			return
		}
		if pet := h.ownPet(chatID, args[0]); pet != nil {
			h.promptLog(chatID, pet, args[1])
		}
	case cbSkip:
		if len(args) != 2 {
			return
		}
		h.skipDay(chatID, args[0], args[1])
	case cbSelect:
		if len(args) != 1 {
			return
		}
		if pet := h.ownPet(chatID, args[0]); pet != nil {
			h.selectPet(chatID, pet)
		}
	case cbWeek:
		if len(args) != 1 {
			return
		}
		offset, err := strconv.Atoi(args[0])
		if err != nil {
			return
		}
		h.sendWeek(chatID, offset, cq.Message.MessageID)
	case cbVet:
		h.vetNearby(chatID)
	case cbVax:
		if len(args) != 1 {
			return
		}
		if level, err := strconv.Atoi(args[0]); err == nil {
			h.completeVaccination(chatID, level)
		}
	case cbSetTime:
		h.setState(chatID, models.StateWaitTime)
		h.send(chatID, "Send the daily reminder time as HH:MM, e.g. 20:00")
	case cbSetTZ:
		h.setState(chatID, models.StateWaitTZ)
		h.send(chatID, "Send your time zone, e.g. Europe/Moscow or +03:00")
	case cbSetPostal:
		h.setState(chatID, models.StateWaitPostal)
		h.send(chatID, "Send the postal code to search vets around, or - to clear it.")
	case cbClear:
		h.sendMarkup(chatID, "Delete all pets, logs and records? This cannot be undone.", clearKB)
	case cbClearYes:
		if err := h.DB.ClearData(chatID); err != nil {
			log.Printf("clear data %d: %v", chatID, err)
			h.send(chatID, msgFailed)
			return
		}
		h.send(chatID, "All data removed. Send /start to begin again.")
	case cbCancel:
		h.setState(chatID, models.StateIdle)
		h.send(chatID, "Cancelled.")
	}
}

func (h *Handler) skipDay(chatID int64, petID, day string) {
	pet := h.ownPet(chatID, petID)
	if pet == nil {
		return
	}
	if err := h.DB.DeletePending(pet.ID, day); err != nil {
		log.Printf("delete pending %s/%s: %v", pet.ID, day, err)
	}
	h.send(chatID, fmt.Sprintf("OK, no log for %s on %s.", pet.Name, day))
}
