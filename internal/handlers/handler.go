package handlers

import (
	"context"
	"log"
	"time"

	"pet-health-diary/internal/config"
	"pet-health-diary/internal/diary"
	"pet-health-diary/internal/messages"
	"pet-health-diary/internal/models"
	"pet-health-diary/internal/storage"
	"pet-health-diary/internal/utils"
	"pet-health-diary/internal/vets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// VetFinder is implemented by *vets.Client.
type VetFinder interface {
	Search(ctx context.Context, q vets.Query) ([]vets.Vet, error)
	SearchBC(ctx context.Context, name string) ([]vets.Vet, error)
	Get(ctx context.Context, id string) (*vets.Vet, error)
}

type Handler struct {
	Bot   Sender
	DB    *storage.DB
	Diary *diary.Service
	Vets  VetFinder
	Cfg   config.Config
	Now   func() time.Time
}

func New(bot Sender, db *storage.DB, finder VetFinder, cfg config.Config) *Handler {
	h := &Handler{Bot: bot, DB: db, Vets: finder, Cfg: cfg, Now: time.Now}
	h.Diary = diary.NewService(db, h)
	return h
}

func (h *Handler) HandleUpdate(upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		h.HandleMessage(upd.Message)
	case upd.CallbackQuery != nil:
		h.HandleCallback(upd.CallbackQuery)
	}
}

func (h *Handler) HandleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		h.HandleCommand(chatID, msg.Command(), msg.CommandArguments())
		return
	}
	if cmd, ok := menuCommands[msg.Text]; ok {
		h.HandleCommand(chatID, cmd, "")
		return
	}
	h.HandleText(chatID, msg.Text)
}

// Notify sends a diary notification to the chat.
func (h *Handler) Notify(chatID int64, n diary.Notification) error {
	_, err := h.Bot.Send(tgbotapi.NewMessage(chatID, messages.Notification(n)))
	return err
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("send to %d: %v", chatID, err)
	}
}

func (h *Handler) sendMarkup(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := h.Bot.Send(msg); err != nil {
		log.Printf("send to %d: %v", chatID, err)
	}
}

func (h *Handler) setState(chatID int64, state string) {
	if err := h.DB.SetUserState(chatID, state); err != nil {
		log.Printf("set state %q for %d: %v", state, chatID, err)
	}
}

// ensureUser loads the chat's settings, creating them with defaults on first contact.
func (h *Handler) ensureUser(chatID int64) (*models.User, error) {
	u, err := h.DB.GetUser(chatID)
	if err != nil || u != nil {
		return u, err
	}
	u = &models.User{
		ChatID:     chatID,
		TZ:         h.Cfg.DefaultTZ,
		ReminderAt: h.Cfg.DefaultReminderAt,
	}
	if err := h.DB.UpsertUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func location(u *models.User) *time.Location {
	loc, err := utils.TZToLocation(u.TZ)
	if err != nil {
		log.Printf("bad time zone %q for %d: %v", u.TZ, u.ChatID, err)
		return time.UTC
	}
	return loc
}

// localNow is the current time in the user's zone.
func (h *Handler) localNow(u *models.User) time.Time {
	return h.Now().In(location(u))
}

// activePet returns the chat's selected pet, falling back to its first pet.
// It tells the user what to do and returns nil when there is none.
func (h *Handler) activePet(chatID int64) (*models.User, *models.Pet) {
	u, err := h.ensureUser(chatID)
	if err != nil {
		log.Printf("load user %d: %v", chatID, err)
		h.send(chatID, msgFailed)
		return nil, nil
	}

	if u.ActivePetID != "" {
		p, err := h.DB.GetPet(u.ActivePetID)
		if err != nil {
			log.Printf("load pet %s: %v", u.ActivePetID, err)
		}
		if p != nil {
			return u, p
		}
	}

	pets, err := h.DB.ListPets(chatID)
	if err != nil {
		log.Printf("list pets %d: %v", chatID, err)
	}
	if len(pets) == 0 {
		h.send(chatID, msgNoPets)
		return u, nil
	}
	p := pets[0]
	if err := h.DB.SetActivePet(chatID, p.ID); err == nil {
		u.ActivePetID = p.ID
	}
	return u, &p
}

// ownPet loads a pet only if it belongs to the chat.
func (h *Handler) ownPet(chatID int64, petID string) *models.Pet {
	p, err := h.DB.GetPet(petID)
	if err != nil {
		log.Printf("load pet %s: %v", petID, err)
		return nil
	}
	if p == nil || p.ChatID != chatID {
		return nil
	}
	return p
}
