package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/coopworks/member-import/internal/bootstrap"
	"github.com/coopworks/member-import/internal/config"
	"github.com/coopworks/member-import/internal/infrastructure/notifier"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	sender, err := buildNotifier(cfg)
	if err != nil {
		log.Fatalf("failed to build notifier: %v", err)
	}

	server, dispatcher, expiryWorker, err := bootstrap.NewHTTPServer(cfg, db, pool, sender)
	if err != nil {
		log.Fatalf("failed to bootstrap server: %v", err)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	expiryWorker.Start(workerCtx)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()
	dispatcher.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

func buildNotifier(cfg *config.Config) (*notifier.Router, error) {
	var sms notifier.SMSSender
	if cfg.SMS.BaseURL != "" {
		sms = notifier.NewSMSClient(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.Sender)
	}

	var email notifier.EmailSender
	if cfg.SES.AccessKey != "" && cfg.SES.SecretKey != "" {
		sender, err := notifier.NewSESEmailSender(
			context.Background(),
			cfg.SES.AccessKey,
			cfg.SES.SecretKey,
			cfg.SES.Region,
			cfg.SES.FromAddress,
			cfg.SES.FromName,
		)
		if err != nil {
			return nil, err
		}
		email = sender
	}

	return notifier.NewRouter(sms, email, cfg.Organization.Name), nil
}
