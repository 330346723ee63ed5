package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crewops/workforce-service/internal/config"
	"crewops/workforce-service/internal/httpapi"
	"crewops/workforce-service/internal/notify"
	"crewops/workforce-service/internal/payroll"
	"crewops/workforce-service/internal/roster"
	"crewops/workforce-service/internal/store/postgres"
	"crewops/workforce-service/internal/telemetry"
	"crewops/workforce-service/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup("workforce-service")

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	requestStore := postgres.NewStore(pool)
	rosterCache := roster.New(requestStore.ListTeamMembers, roster.Options{
		Fresh: cfg.RosterFresh,
		Evict: cfg.RosterEvict,
	})
	notifier := notify.New(notify.Config{
		Provider:     cfg.NotifyProvider,
		WebhookURL:   cfg.NotifyWebhookURL,
		WebhookToken: cfg.NotifyWebhookToken,
	})
	handler := httpapi.NewHandler(requestStore, httpapi.Options{
		Roster:   rosterCache,
		Notifier: notifier,
		Payroll: payroll.Options{
			HourlyRate:        cfg.HourlyRate,
			OvertimeWeekHours: cfg.OvertimeWeekHours,
		},
		StoreTimeout: cfg.StoreTimeout,
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:   cfg.RateLimitPerMinute,
		IPBurst:       cfg.RateLimitBurst,
		UserPerMinute: cfg.UserRateLimitPerMinute,
		UserBurst:     cfg.UserRateLimitBurst,
	})

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(handler.Routes())), "workforce-service")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go worker.Start(workerCtx, requestStore, worker.Config{
		Interval:  cfg.ReconcileInterval,
		BatchSize: cfg.ReconcileBatchSize,
		Timeout:   cfg.StoreTimeout,
	})

	go func() {
		log.Printf("workforce-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := shutdownTelemetry(ctx); err != nil {
		log.Printf("telemetry shutdown error: %v", err)
	}
}
