package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/coopworks/member-import/internal/domain/member"
)

// MemberBatchRepository is the transactional commit path: one import job and
// its activation records land together or not at all. Records stage through
// COPY and move into the live table with a conflict-skipping insert, so a
// row that lost a uniqueness race against a concurrent commit becomes a skip
// instead of a constraint error.
type MemberBatchRepository struct {
	pool *pgxpool.Pool
}

func NewMemberBatchRepository(pool *pgxpool.Pool) *MemberBatchRepository {
	return &MemberBatchRepository{pool: pool}
}

func (r *MemberBatchRepository) CommitBatch(ctx context.Context, job domain.ImportJob, records []domain.ActivationRecord) (domain.BatchResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO import_jobs (
  id, initiated_by, source_file_name, status,
  total_rows, successful_imports, failed_imports, skipped_rows,
  sms_sent_count, sms_failed_count, email_sent_count, email_failed_count,
  created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, 0, 0, NOW(), NOW())
`, job.ID, job.InitiatedBy, job.SourceFileName, string(job.Status),
		job.TotalRows, job.SuccessfulImports, job.FailedImports, job.SkippedRows); err != nil {
		return domain.BatchResult{}, fmt.Errorf("insert import job: %w", err)
	}

	if len(records) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return domain.BatchResult{}, fmt.Errorf("commit empty batch: %w", err)
		}
		return domain.BatchResult{}, nil
	}

	stagedRows := make([][]any, 0, len(records))
	for _, record := range records {
		stagedRows = append(stagedRows, []any{
			job.ID,
			record.ID,
			record.MemberID,
			record.Name,
			record.PhoneNumber,
			nullableText(record.Email),
			string(record.ActivationStatus),
		})
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"stg_member_rows"},
		[]string{"job_id", "record_id", "member_id", "name", "phone_number", "email", "activation_status"},
		pgx.CopyFromRows(stagedRows),
	); err != nil {
		return domain.BatchResult{}, fmt.Errorf("copy records staging: %w", err)
	}

	insertedIDs, err := insertStagedRecords(ctx, tx, job.ID)
	if err != nil {
		return domain.BatchResult{}, err
	}

	conflicts := int64(len(records) - len(insertedIDs))
	if conflicts > 0 {
		if _, err := tx.Exec(ctx, `
UPDATE import_jobs
SET successful_imports = successful_imports - $2,
    skipped_rows = skipped_rows + $2,
    updated_at = NOW()
WHERE id = $1
`, job.ID, conflicts); err != nil {
			return domain.BatchResult{}, fmt.Errorf("adjust job counts for conflicts: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM stg_member_rows WHERE job_id = $1", job.ID); err != nil {
		return domain.BatchResult{}, fmt.Errorf("cleanup staging: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.BatchResult{}, fmt.Errorf("commit batch: %w", err)
	}

	inserted := make([]domain.ActivationRecord, 0, len(insertedIDs))
	for _, record := range records {
		if insertedIDs[record.ID] {
			inserted = append(inserted, record)
		}
	}

	return domain.BatchResult{Inserted: inserted, ConflictSkips: conflicts}, nil
}

func insertStagedRecords(ctx context.Context, tx pgx.Tx, jobID string) (map[string]bool, error) {
	rows, err := tx.Query(ctx, `
WITH inserted AS (
    INSERT INTO member_activation_records (
      id, import_job_id, member_id, name, phone_number, email,
      activation_status, created_at, updated_at
    )
    SELECT record_id, job_id, member_id, name, phone_number, email,
           activation_status, NOW(), NOW()
    FROM stg_member_rows
    WHERE job_id = $1
    ON CONFLICT DO NOTHING
    RETURNING id
)
SELECT id FROM inserted
`, jobID)
	if err != nil {
		return nil, fmt.Errorf("insert staged records: %w", err)
	}
	defer rows.Close()

	inserted := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		inserted[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inserted, nil
}
