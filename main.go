package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"webstore/ai/assistant"
	"webstore/bot"
	"webstore/impl/core"
	"webstore/internal/config"
	repository "webstore/internal/database"
	"webstore/internal/http-server/api"
	"webstore/internal/lib/logger"
	"webstore/internal/lib/sl"
	"webstore/internal/service/auth"
	"webstore/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Telegram notifications for the store admin, if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting webstore", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)
	handler.SetPaypalClientId(conf.PayPal.ClientId)
	if tgBot != nil {
		handler.SetAdminNotifier(tgBot)
	}

	authService := auth.NewAuthService(conf.Auth.JwtSecret, conf.Auth.TokenTTL, lg)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.EnsureIndexes(ctx); err != nil {
			lg.With(
				sl.Err(err),
			).Error("ensure indexes")
		}
		cancel()

		authService.SetRepository(db)
		handler.SetRepository(db)
		handler.SetAuthService(authService)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	ass := assistant.New(conf, lg)
	if ass != nil {
		handler.SetAssistant(ass)
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("assistant initialized")
	}

	hub := ws.NewHub(lg.With(sl.Module("ws.hub")))
	hub.SetHandler(handler)
	handler.SetChatNotifier(hub)
	go hub.Run()

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
