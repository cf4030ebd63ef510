package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	alertapp "github.com/Ppatel122/AirQualityDashboard/internal/alerts/application"
	alertrepo "github.com/Ppatel122/AirQualityDashboard/internal/alerts/infrastructure/postgres"
	alertnotify "github.com/Ppatel122/AirQualityDashboard/internal/alerts/notify"
	"github.com/Ppatel122/AirQualityDashboard/internal/feeds/geomet"
	"github.com/Ppatel122/AirQualityDashboard/internal/feeds/purpleair"
	ingestapp "github.com/Ppatel122/AirQualityDashboard/internal/ingest/application"
	"github.com/Ppatel122/AirQualityDashboard/internal/observability/metrics"
	sensorrepo "github.com/Ppatel122/AirQualityDashboard/internal/sensors/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ingestCfg, err := ingestapp.LoadConfig()
	if err != nil {
		logger.Fatalf("ingest config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	sensorRepository := sensorrepo.NewSensorRepository(db)
	alertRepository := alertrepo.NewAlertRepository(db)

	microClient, err := purpleair.NewClient(
		ingestCfg.PurpleAir.APIKey,
		ingestCfg.PurpleAir.GroupID,
		ingestCfg.PurpleAir.Fields,
		purpleair.WithBaseURL(ingestCfg.PurpleAir.BaseURL),
	)
	if err != nil {
		logger.Fatalf("purpleair client error: %v", err)
	}
	stationClient, err := geomet.NewClient(
		ingestCfg.Stations.BBox,
		geomet.WithBaseURL(ingestCfg.Stations.BaseURL),
	)
	if err != nil {
		logger.Fatalf("geomet client error: %v", err)
	}

	notifiers := []alertapp.AlertNotifier{alertnotify.NewLogNotifier(logger)}
	if ingestCfg.Email.Endpoint != "" {
		channel, err := alertnotify.NewEmailChannel(
			ingestCfg.Email.Endpoint,
			ingestCfg.Email.AccessKey,
			ingestCfg.Email.Sender,
		)
		if err != nil {
			logger.Fatalf("email channel error: %v", err)
		}
		templates, err := alertnotify.NewTemplates()
		if err != nil {
			logger.Fatalf("notify templates error: %v", err)
		}
		emailNotifier, err := alertnotify.NewEmailNotifier(channel, templates)
		if err != nil {
			logger.Fatalf("email notifier error: %v", err)
		}
		notifiers = append(notifiers, emailNotifier)
	} else {
		logger.Printf("email endpoint not configured, notifications are log-only")
	}

	evaluator, err := alertapp.NewService(
		alertRepository,
		logger,
		alertapp.WithNotifier(alertnotify.NewMultiNotifier(notifiers...)),
	)
	if err != nil {
		logger.Fatalf("alert evaluator error: %v", err)
	}

	runner, err := ingestapp.NewRunner(
		microClient,
		stationClient,
		sensorRepository,
		alertRepository,
		evaluator,
		logger,
	)
	if err != nil {
		logger.Fatalf("ingest runner error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := ingestapp.NewScheduler(runner, ingestCfg.Schedule.HourlyAtMinute, logger)
	go scheduler.Start(ctx)
	logger.Printf("ingestion scheduled hourly at minute %d", ingestCfg.Schedule.HourlyAtMinute)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server error: %v", err)
	}
	logger.Printf("shutdown complete")
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
