package main

import (
	"fmt"
	"net/http"

	"github.com/CrowSerainance/shift-coverage-bot/internal/config"
	"github.com/CrowSerainance/shift-coverage-bot/internal/database"
	"github.com/CrowSerainance/shift-coverage-bot/internal/domain/service"
	"github.com/CrowSerainance/shift-coverage-bot/internal/handlers"
	"github.com/CrowSerainance/shift-coverage-bot/migrator/sqlite"
	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not found, using environment")
	}

	cfg := config.Load()

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("running migrations")
	if err := sqlite.Migrate(db.DB()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	slackClient := slack.New(cfg.SlackBotToken)

	dm := database.NewInstance(db)
	services := service.NewInstance(dm, service.FairnessConfig{
		MaxHours:   cfg.MaxHours7d,
		LockWindow: cfg.LockWindow(),
	}, logger)

	handler := handlers.New(slackClient, services, cfg, logger)

	http.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	http.HandleFunc("/slack/interactions", handler.HandleInteraction)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
