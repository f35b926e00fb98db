package main

import (
	"log"
	"os"

	"pet-health-diary/internal/config"
	"pet-health-diary/internal/handlers"
	"pet-health-diary/internal/scheduler"
	"pet-health-diary/internal/storage"
	"pet-health-diary/internal/utils"
	"pet-health-diary/internal/vets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // TELEGRAM_BOT_TOKEN etc.

	path := os.Getenv("PET_CONFIG")
	if path == "" {
		path = "petdiary.toml"
	}
	cfg, err := config.Load(path)
	utils.Must(err)
	utils.Must(cfg.RequireToken())

	db, err := storage.New(cfg.DBPath)
	utils.Must(err)
	defer db.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	utils.Must(err)
	log.Printf("authorized as @%s", bot.Self.UserName)

	h := handlers.New(bot, db, vets.NewClient(cfg.VetRegistryURL).WithBC(cfg.BCRegistryURL), cfg)

	s, err := scheduler.Start(&scheduler.Jobs{
		Store:    db,
		Reminder: h,
		Repeat:   cfg.ReminderRepeat,
	}, cfg.ScanInterval)
	utils.Must(err)
	defer s.Shutdown()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	for upd := range bot.GetUpdatesChan(updateConfig) {
		h.HandleUpdate(upd)
	}
}
