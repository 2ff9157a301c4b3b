package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/condo-survey/cliparse"
	"github.com/danielhkuo/condo-survey/db"
	"github.com/danielhkuo/condo-survey/directory"
	"github.com/danielhkuo/condo-survey/jobs"
	"github.com/danielhkuo/condo-survey/logging"
	"github.com/danielhkuo/condo-survey/middleware"
	"github.com/danielhkuo/condo-survey/notify"
	"github.com/danielhkuo/condo-survey/router"
	"github.com/danielhkuo/condo-survey/store"
	"github.com/danielhkuo/condo-survey/survey"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logFile := logging.Init(cfg.LogLevel, cfg.LogFile)
	defer logFile.Close()

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	voterRule, err := directory.CompileRule(cfg.VoterRule)
	if err != nil {
		slog.Error("invalid voter rule", "rule", cfg.VoterRule, "error", err)
		os.Exit(1)
	}
	adminRule, err := directory.CompileRule(cfg.AdminRule)
	if err != nil {
		slog.Error("invalid admin rule", "rule", cfg.AdminRule, "error", err)
		os.Exit(1)
	}
	dir := directory.NewWordPress(dbConn, cfg.WPTablePrefix, voterRule, adminRule)

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPEnabled() {
		smtpMailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPass,
			From:        cfg.SMTPFrom,
			Connections: cfg.SMTPConnections,
		})
		if err != nil {
			slog.Error("smtp setup failed", "error", err)
			os.Exit(1)
		}
		defer smtpMailer.Close()
		mailer = smtpMailer
	} else {
		slog.Warn("SMTP_HOST not set, survey notifications will only be logged")
	}
	notifier := notify.New(dir, mailer, cfg.SiteURL, cfg.NotifyBatchSize)

	scheduler, err := jobs.New(jobs.Config{
		SweepSchedule:  cfg.SweepSchedule,
		NotifySchedule: cfg.NotifySchedule,
	}, survey.NewLifecycle(store.New(dbConn), nil), notifier)
	if err != nil {
		slog.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	mux := router.NewRouter(dbConn, dir, notifier)

	server := http.Server{
		Handler:           middleware.CORS(middleware.RequestID(mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctrlc
		slog.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		scheduler.Stop(ctx)
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
		notifier.Wait()
		if n := notifier.Pending(); n > 0 {
			slog.Warn("dropping queued notifications", "count", n)
		}
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	<-stopped
	slog.Info("Server closed")
}
