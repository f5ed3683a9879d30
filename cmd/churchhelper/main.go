package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"churchhelper/bot"
	"churchhelper/impl/core"
	"churchhelper/internal/config"
	"churchhelper/internal/database"
	repository "churchhelper/internal/database/mongo"
	"churchhelper/internal/http-server/api"
	"churchhelper/internal/lib/logger"
	"churchhelper/internal/lib/sl"
	"churchhelper/internal/scheduler"
	"churchhelper/internal/services"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			// Set up Telegram handler for the logger
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", slog.String("error", err.Error()))
				}
			}()
		}
	}

	lg.Info("starting churchhelper", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg, *conf)

	db, err := database.NewSQLClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mysql client")
	}
	if db != nil {
		handler.SetRepository(db)
		handler.SetQuota(services.NewQuotaService(conf, db, lg))
		lg.With(
			slog.String("host", conf.SQL.HostName),
			slog.String("port", conf.SQL.Port),
			slog.String("user", conf.SQL.UserName),
			slog.String("database", conf.SQL.Database),
		).Info("mysql client initialized")
		defer db.Close()

		go func() {
			ticker := time.NewTicker(30 * time.Minute)
			defer ticker.Stop()

			for range ticker.C {
				if stats := db.Stats(); stats != "" {
					lg.Info("mysql", slog.String("stats", stats))
				}
			}
		}()
	}

	mongoRepo, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.Error("mongo client", sl.Err(err))
	}
	if mongoRepo != nil {
		handler.SetWishAuditRepository(mongoRepo)
		lg.Info("wish audit repository initialized")
	}

	whatsapp, err := services.NewWhatsAppService(conf, lg)
	if err != nil {
		lg.Error("whatsapp service", sl.Err(err))
	}
	if whatsapp != nil {
		handler.SetGateway(whatsapp)
		lg.Info("whatsapp gateway initialized")
	}

	generator := services.NewGenerator(lg,
		services.NewGroqClient(conf, lg),
		services.NewOpenAIClient(conf, lg),
	)
	handler.SetGenerator(generator)

	sched, err := scheduler.New(conf, lg)
	if err != nil {
		lg.Error("scheduler", sl.Err(err))
		os.Exit(1)
	}
	sched.SetJob(handler)
	sched.Start()
	if tgBot != nil {
		tgBot.SetOps(sched)
	}

	handler.Start()

	if err = api.New(conf, lg, handler, sched); err != nil {
		lg.Error("api server", sl.Err(err))
	}

	lg.Error("service stopped")
}
