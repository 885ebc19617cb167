package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/coopworks/member-import/internal/domain/member"
	"github.com/coopworks/member-import/internal/infrastructure/repository"
)

const batchSchema = `
CREATE TABLE IF NOT EXISTS import_jobs (
  id UUID PRIMARY KEY,
  source_file_name VARCHAR(255) NOT NULL,
  initiated_by VARCHAR(255) NOT NULL,
  status TEXT NOT NULL,
  total_rows BIGINT NOT NULL DEFAULT 0,
  successful_imports BIGINT NOT NULL DEFAULT 0,
  skipped_rows BIGINT NOT NULL DEFAULT 0,
  failed_imports BIGINT NOT NULL DEFAULT 0,
  sms_sent_count BIGINT NOT NULL DEFAULT 0,
  sms_failed_count BIGINT NOT NULL DEFAULT 0,
  email_sent_count BIGINT NOT NULL DEFAULT 0,
  email_failed_count BIGINT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS member_activation_records (
  id UUID PRIMARY KEY,
  import_job_id UUID NOT NULL,
  member_id VARCHAR(64) NOT NULL UNIQUE,
  name VARCHAR(255) NOT NULL,
  phone_number VARCHAR(32) NOT NULL UNIQUE,
  email VARCHAR(320) UNIQUE,
  activation_status TEXT NOT NULL,
  activation_method TEXT,
  sms_sent_at TIMESTAMPTZ,
  email_sent_at TIMESTAMPTZ,
  activated_at TIMESTAMPTZ,
  temporary_password_expires_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS stg_member_rows (
  job_id UUID NOT NULL,
  record_id UUID NOT NULL,
  member_id VARCHAR(64) NOT NULL,
  name VARCHAR(255) NOT NULL,
  phone_number VARCHAR(32) NOT NULL,
  email VARCHAR(320),
  activation_status TEXT NOT NULL
);
`

func openIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(context.Background(), batchSchema); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	return pool
}

func newBatchRecord(jobID string) domain.ActivationRecord {
	suffix := uuid.NewString()
	return domain.ActivationRecord{
		ID:               uuid.NewString(),
		ImportJobID:      jobID,
		MemberID:         "itest-" + suffix,
		Name:             "Member " + suffix[:8],
		PhoneNumber:      "itest-" + suffix[:18],
		Email:            "itest-" + suffix[:8] + "@example.coop",
		ActivationStatus: domain.StatusPendingActivation,
	}
}

func TestCommitBatchIntegration(t *testing.T) {
	pool := openIntegrationPool(t)
	repo := repository.NewMemberBatchRepository(pool)
	ctx := context.Background()

	job := domain.ImportJob{
		ID:                uuid.NewString(),
		SourceFileName:    "roster.csv",
		InitiatedBy:       "integration-test",
		Status:            domain.JobCompleted,
		TotalRows:         2,
		SuccessfulImports: 2,
		CreatedAt:         time.Now().UTC(),
	}
	records := []domain.ActivationRecord{newBatchRecord(job.ID), newBatchRecord(job.ID)}

	result, err := repo.CommitBatch(ctx, job, records)
	if err != nil {
		t.Fatalf("commit batch: %v", err)
	}
	if result.ConflictSkips != 0 {
		t.Fatalf("expected no conflict skips, got %d", result.ConflictSkips)
	}
	if len(result.Inserted) != 2 {
		t.Fatalf("expected 2 inserted records, got %d", len(result.Inserted))
	}

	var count int64
	err = pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM member_activation_records WHERE import_job_id = $1", job.ID).Scan(&count)
	if err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 persisted records, got %d", count)
	}

	var staged int64
	err = pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM stg_member_rows WHERE job_id = $1", job.ID).Scan(&staged)
	if err != nil {
		t.Fatalf("count staging rows: %v", err)
	}
	if staged != 0 {
		t.Fatalf("expected staging table cleared, found %d rows", staged)
	}
}

func TestCommitBatchSkipsCrossBatchConflictsIntegration(t *testing.T) {
	pool := openIntegrationPool(t)
	repo := repository.NewMemberBatchRepository(pool)
	ctx := context.Background()

	existing := newBatchRecord(uuid.NewString())
	firstJob := domain.ImportJob{
		ID:                existing.ImportJobID,
		SourceFileName:    "first.csv",
		InitiatedBy:       "integration-test",
		Status:            domain.JobCompleted,
		TotalRows:         1,
		SuccessfulImports: 1,
	}
	if _, err := repo.CommitBatch(ctx, firstJob, []domain.ActivationRecord{existing}); err != nil {
		t.Fatalf("seed batch: %v", err)
	}

	secondJob := domain.ImportJob{
		ID:                uuid.NewString(),
		SourceFileName:    "second.csv",
		InitiatedBy:       "integration-test",
		Status:            domain.JobCompleted,
		TotalRows:         2,
		SuccessfulImports: 2,
	}
	duplicate := newBatchRecord(secondJob.ID)
	duplicate.MemberID = existing.MemberID
	fresh := newBatchRecord(secondJob.ID)

	result, err := repo.CommitBatch(ctx, secondJob, []domain.ActivationRecord{duplicate, fresh})
	if err != nil {
		t.Fatalf("commit batch with conflict: %v", err)
	}
	if result.ConflictSkips != 1 {
		t.Fatalf("expected 1 conflict skip, got %d", result.ConflictSkips)
	}
	if len(result.Inserted) != 1 || result.Inserted[0].MemberID != fresh.MemberID {
		t.Fatalf("expected only the fresh record inserted, got %+v", result.Inserted)
	}

	var successful, skipped int64
	err = pool.QueryRow(ctx,
		"SELECT successful_imports, skipped_rows FROM import_jobs WHERE id = $1", secondJob.ID).
		Scan(&successful, &skipped)
	if err != nil {
		t.Fatalf("read job counts: %v", err)
	}
	if successful != 1 || skipped != 1 {
		t.Fatalf("expected counts adjusted to 1/1, got successful=%d skipped=%d", successful, skipped)
	}
}
