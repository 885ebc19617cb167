package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	app "github.com/coopworks/member-import/internal/application/member"
	"github.com/coopworks/member-import/internal/config"
	domain "github.com/coopworks/member-import/internal/domain/member"
	"github.com/coopworks/member-import/internal/domain/roster"
	"github.com/coopworks/member-import/internal/infrastructure/repository"
	httpecho "github.com/coopworks/member-import/internal/interfaces/http/echo"
)

// NewHTTPServer wires repositories, use cases, handlers and background
// workers into an echo server. The returned dispatcher is shared between the
// commit and resend paths and must be drained on shutdown; the expiry worker
// is returned unstarted.
func NewHTTPServer(cfg *config.Config, db *gorm.DB, pool *pgxpool.Pool, notifier domain.Notifier) (*echo.Echo, *app.Dispatcher, *app.ExpiryWorker, error) {
	validator, err := roster.NewValidator(roster.ValidatorConfig{
		PhonePattern:   cfg.Validation.PhonePattern,
		EmailPattern:   cfg.Validation.EmailPattern,
		MinPhoneDigits: cfg.Validation.MinPhoneDigits,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	jobRepo := repository.NewImportJobRepository(db)
	recordRepo := repository.NewMemberRecordRepository(db)
	batchRepo := repository.NewMemberBatchRepository(pool)

	dispatcher := app.NewDispatcher(recordRepo, jobRepo, notifier, app.DispatcherConfig{
		Workers:          cfg.Activation.DispatchWorkers,
		CredentialTTL:    cfg.Activation.CredentialTTL(),
		CredentialLength: cfg.Activation.CredentialLength,
	})
	expiryWorker := app.NewExpiryWorker(recordRepo, app.ExpiryWorkerConfig{
		SweepInterval: cfg.Activation.ExpirySweepInterval(),
	})

	importHandler := httpecho.NewImportHandler(
		app.NewValidateRoster(validator),
		app.NewCommitImport(validator, recordRepo, jobRepo, batchRepo, dispatcher),
		app.NewListImportJobs(jobRepo),
	)
	memberHandler := httpecho.NewMemberHandler(
		app.NewListMemberRecords(recordRepo),
		app.NewResendActivation(recordRepo, dispatcher),
		app.NewBulkResendActivation(recordRepo, dispatcher),
		app.NewActivateMember(recordRepo),
	)

	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("10M"))

	httpecho.RegisterRoutes(server, importHandler, memberHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	return server, dispatcher, expiryWorker, nil
}
