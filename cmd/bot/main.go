package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"schedule_reminder_bot/internal/app"
	"schedule_reminder_bot/internal/infra/config"
	idb "schedule_reminder_bot/internal/infra/database"
	"schedule_reminder_bot/internal/infra/logger"
	"schedule_reminder_bot/internal/infra/scheduler"
	"schedule_reminder_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
		"driver":      cfg.DatabaseDriver,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, dialect, err := idb.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db, dialect); err != nil {
		mainLogger.WithError(err).Fatal("Could not prepare database schema")
	}
	mainLogger.Info("Database connection established successfully")

	scheduleRepo := idb.NewScheduleRepository(db, dialect)
	cache := app.NewScheduleCache()
	scheduleService := app.NewScheduleService(scheduleRepo, cache, logger.Component("schedule_service"))

	// A failed initial load leaves the cache empty; the next mutation retries it.
	if err := scheduleService.Reload(ctx); err != nil {
		mainLogger.WithError(err).Error("Initial schedule load failed")
	} else {
		mainLogger.WithField("schedules_count", cache.Len()).Info("Schedules loaded")
	}

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{
					"message":   c.Text(),
					"sender_id": c.Sender().ID,
					"chat_id":   c.Chat().ID,
				})
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	// Delivery runs on its own worker so a slow send never holds up the tick.
	deliveryQueue := app.NewQueuedSink(app.MultiSink{
		app.NewLogSink(logger.Component("log_sink")),
		telegram.NewSink(telegram.NewTelebotAdapter(bot), cfg.NotifyChatID, cfg.Location),
	}, logger.Component("delivery"), cfg.PublishTimeout, 0)
	notificationService := app.NewNotificationService(cache, deliveryQueue, logger.Component("notification_service"), app.NotificationOptions{
		PublishTimeout: cfg.PublishTimeout,
		Dedup:          cfg.NotifyDedup,
	})

	notifScheduler := scheduler.NewNotificationScheduler(
		notificationService,
		logger.Component("scheduler"),
		cfg.TickSpec,
		cfg.Location,
	)
	if err := notifScheduler.Start(ctx); err != nil {
		mainLogger.WithError(err).Fatal("Could not start notification scheduler")
	}

	// Register Handlers
	handlerLogger := logger.Component("telegram")
	telegram.RegisterBotCommands(bot, cfg, handlerLogger)
	telegram.RegisterScheduleHandlers(ctx, bot, scheduleService, cache, cfg.AdminTelegramID, cfg.Location, handlerLogger)
	mainLogger.Info("Command handlers registered")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mainLogger.Info("Bot polling started")
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		mainLogger.Info("Shutting down application...")
		notifScheduler.Stop()
		deliveryQueue.Close()
		bot.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		mainLogger.WithError(err).Error("Application stopped with error")
		return
	}
	mainLogger.Info("Application shut down gracefully")
}
