package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lotto-office/internal/config"
	"lotto-office/internal/db"
	"lotto-office/internal/handlers"
	"lotto-office/internal/logger"
	"lotto-office/internal/metrics"
	tgmiddleware "lotto-office/internal/middleware"
	"lotto-office/internal/services"
)

func main() {
	// 0. Load Config (Envars)
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Init Database (Turso)
	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBAuthToken)
	if err != nil {
		log.Fatal("failed to init database", zap.Error(err))
	}
	defer conn.Close()
	store := db.New(conn)
	log.Info("database initialized", zap.String("url", cfg.DatabaseURL))

	// 2. Init Telegram Bot
	var notify handlers.Notifier = services.LogNotifier{Log: log}
	if cfg.TelegramToken == "" {
		log.Warn("TELEGRAM_TOKEN not set, bot features disabled")
	} else {
		var adminChat int64
		if len(cfg.AdminIDs) > 0 {
			adminChat = cfg.AdminIDs[0]
		}
		tg, err := services.NewTelegram(cfg.TelegramToken, adminChat, log)
		if err != nil {
			log.Warn("failed to init telegram bot", zap.Error(err))
		} else {
			notify = tg
			go tg.Listen(ctx.Done(), cfg.IsAdminID)
		}
	}

	// 3. Setup Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", metrics.Handler())

	auth := &tgmiddleware.Auth{
		BotToken:      cfg.TelegramToken,
		AdminPassword: cfg.AdminPassword,
		IsAdminID:     cfg.IsAdminID,
		Users:         store,
		Log:           log,
	}
	h := handlers.New(store, notify, cfg.Rates, log)
	r.Get("/login", h.Login)

	// 4. Authenticated Routes (agents, admin under /admin)
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		h.Mount(r)
	})

	// 5. Start
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("server listening", zap.String("addr", "http://localhost:"+cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}
