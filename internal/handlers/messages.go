package handlers

import (
	"fmt"

	"pet-health-diary/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendReminder prompts the user to log the pet's day and records the prompt
// as pending.
func (h *Handler) SendReminder(u *models.User, pet *models.Pet, day string) error {
	msg := tgbotapi.NewMessage(u.ChatID, fmt.Sprintf("🐾 Time to log %s's health for today!", pet.Name))
	msg.ReplyMarkup = reminderKB(pet.ID, day)
	m, err := h.Bot.Send(msg)
	if err != nil {
		return err
	}

	return h.DB.InsertPending(&models.PendingMessage{
		ChatID:    u.ChatID,
		PetID:     pet.ID,
		Day:       day,
		MsgID:     m.MessageID,
		CreatedAt: h.Now().Unix(),
	})
}

// SendNudge repeats a pending prompt as a reply to it.
func (h *Handler) SendNudge(p models.PendingMessage, pet *models.Pet) error {
	msg := tgbotapi.NewMessage(p.ChatID, fmt.Sprintf("⏰ Still waiting for %s's log for %s.", pet.Name, p.Day))
	msg.ReplyToMessageID = p.MsgID
	msg.ReplyMarkup = reminderKB(pet.ID, p.Day)
	_, err := h.Bot.Send(msg)
	return err
}

func (h *Handler) sendEscalation(chatID int64, pet *models.Pet) {
	text := fmt.Sprintf("%s's health looks poor today. Would you like to find a vet?", pet.Name)
	h.sendMarkup(chatID, text, vetKB)
}
