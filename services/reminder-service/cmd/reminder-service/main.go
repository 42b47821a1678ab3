package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Michael-Aga/shirel-beauty/libs/config"
	"github.com/Michael-Aga/shirel-beauty/libs/db"
	"github.com/Michael-Aga/shirel-beauty/libs/httpx"
	otelx "github.com/Michael-Aga/shirel-beauty/libs/otel"
	"github.com/Michael-Aga/shirel-beauty/libs/outbox"
	"github.com/Michael-Aga/shirel-beauty/libs/runtime"
	"github.com/Michael-Aga/shirel-beauty/services/reminder-service/internal/notify"
	"github.com/Michael-Aga/shirel-beauty/services/reminder-service/internal/reminder"
	"github.com/Michael-Aga/shirel-beauty/services/reminder-service/internal/storage"
)

func main() {
	config.LoadEnvFile()

	service := config.String("SERVICE_NAME", "reminder-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, err := time.LoadLocation(config.String("TIMEZONE", "Asia/Jerusalem"))
	if err != nil {
		logger.Error("invalid TIMEZONE", "err", err)
		panic(err)
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository(pool)
	store := storage.NewReminderStore(pool, outboxRepo)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	var sender notify.Sender
	switch config.String("SMS_PROVIDER", "noop") {
	case "webhook":
		sender = notify.NewWebhookSender(
			config.String("SMS_WEBHOOK_URL", ""),
			config.String("SMS_WEBHOOK_TOKEN", ""),
			5*time.Second,
		)
	default:
		logger.Warn("no sms provider configured, reminders are no-ops")
		sender = notify.NewNoopSender()
	}

	var owner notify.OwnerNotifier = notify.NoopNotifier{}
	if token := config.String("TELEGRAM_TOKEN", ""); token != "" {
		tg, err := notify.NewTelegramNotifier(token, config.String("TELEGRAM_OWNER_CHAT_ID", ""))
		if err != nil {
			logger.Error("telegram notifier init failed", "err", err)
		} else {
			owner = tg
		}
	}

	job := reminder.New(store, sender, owner, logger, loc, config.Hour("REMINDER_HOUR", 19))

	if config.Bool("REMINDERS_ENABLED", true) {
		go job.RunDaily(ctx)
	} else {
		logger.Warn("daily reminder loop disabled")
	}

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	if config.Bool("DEV_ENDPOINTS_ENABLED", false) {
		mux.HandleFunc("/api/v1/dev/send-reminders", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			date := time.Now().In(loc).AddDate(0, 0, 1)
			if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
				parsed, err := time.ParseInLocation("2006-01-02", raw, loc)
				if err != nil {
					http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
					return
				}
				date = parsed
			}
			summary, err := job.Run(r.Context(), date)
			if err != nil {
				logger.Error("manual reminder run failed", "err", err)
				http.Error(w, "reminder run failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(summary)
		})
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "reminder")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
