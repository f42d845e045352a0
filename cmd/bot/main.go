package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/coworking-bot/internal/bot"
	"github.com/Spok95/coworking-bot/internal/config"
	"github.com/Spok95/coworking-bot/internal/dialog"
	"github.com/Spok95/coworking-bot/internal/domain/bookings"
	"github.com/Spok95/coworking-bot/internal/domain/notifications"
	"github.com/Spok95/coworking-bot/internal/domain/tariffs"
	"github.com/Spok95/coworking-bot/internal/domain/tickets"
	"github.com/Spok95/coworking-bot/internal/domain/users"
	"github.com/Spok95/coworking-bot/internal/infra/db"
	httpx "github.com/Spok95/coworking-bot/internal/infra/http"
	"github.com/Spok95/coworking-bot/internal/infra/logger"
	"github.com/Spok95/coworking-bot/internal/infra/payments"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string, log *slog.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Error("bad timezone, falling back to UTC", "tz", cfg.App.Timezone, "err", err)
		loc = time.UTC
	}

	if err := runMigrations(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	notesRepo := notifications.NewRepo(pool)
	usersRepo := users.NewRepo(pool, notesRepo)
	tariffsRepo := tariffs.NewRepo(pool)
	bookingsRepo := bookings.NewRepo(pool, notesRepo)
	ticketsRepo := tickets.NewRepo(pool, notesRepo)
	statesRepo := dialog.NewRepo(pool)

	scheduler := bookings.NewService(bookingsRepo, tariffsRepo, usersRepo, log)
	pay := payments.NewService(cfg.Payments.BaseURL)
	payHandler := payments.NewHandler(log, scheduler)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, payHandler)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram bot authorized", "username", api.Self.UserName)

	b := bot.New(api, log, usersRepo, statesRepo, scheduler, tariffsRepo, ticketsRepo, notesRepo, pay,
		cfg.Telegram.AdminChatID, loc)
	go func() {
		if err := b.Run(ctx, 30); err != nil && ctx.Err() == nil {
			log.Error("bot stopped", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
