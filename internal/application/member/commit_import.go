package member

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/coopworks/member-import/internal/domain/member"
	"github.com/coopworks/member-import/internal/domain/roster"
)

type CommitImportInput struct {
	FileName    string
	Content     string
	InitiatedBy string
}

type CommitImportOutput struct {
	ID                string    `json:"id"`
	InitiatedBy       string    `json:"initiated_by"`
	SourceFileName    string    `json:"source_file_name"`
	Status            string    `json:"status"`
	TotalRows         int64     `json:"total_rows"`
	SuccessfulImports int64     `json:"successful_imports"`
	FailedImports     int64     `json:"failed_imports"`
	SkippedRows       int64     `json:"skipped_rows"`
	SMSSentCount      int64     `json:"sms_sent_count"`
	SMSFailedCount    int64     `json:"sms_failed_count"`
	EmailSentCount    int64     `json:"email_sent_count"`
	EmailFailedCount  int64     `json:"email_failed_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// CommitImport turns a validated roster into a durable import job plus one
// activation record per accepted row, then hands the accepted records to the
// dispatcher. The response carries the commit-time counts; the notification
// counters resolve asynchronously.
type CommitImport interface {
	Execute(ctx context.Context, in CommitImportInput) (CommitImportOutput, error)
}

type commitRecordRepo interface {
	ActiveIdentifiers(ctx context.Context) (domain.IdentifierSet, error)
}

type commitImport struct {
	validator *roster.Validator
	records   commitRecordRepo
	jobs      domain.JobRepository
	batch     domain.BatchRepository
	dispatch  *Dispatcher
}

func NewCommitImport(validator *roster.Validator, records commitRecordRepo, jobs domain.JobRepository, batch domain.BatchRepository, dispatch *Dispatcher) CommitImport {
	return &commitImport{
		validator: validator,
		records:   records,
		jobs:      jobs,
		batch:     batch,
		dispatch:  dispatch,
	}
}

func (uc *commitImport) Execute(ctx context.Context, in CommitImportInput) (CommitImportOutput, error) {
	if strings.TrimSpace(in.InitiatedBy) == "" {
		return CommitImportOutput{}, ErrMissingInitiator
	}

	table, err := roster.Parse(in.Content)
	if err != nil {
		return CommitImportOutput{}, err
	}

	// Identity problems (missing fields, in-file duplicates) make the whole
	// file ineligible; format problems degrade through channel selection.
	if errs := uc.validator.ValidateIdentity(table); len(errs) > 0 {
		return CommitImportOutput{}, &ValidationFailedError{Errors: errs}
	}

	existing, err := uc.records.ActiveIdentifiers(ctx)
	if err != nil {
		return CommitImportOutput{}, fmt.Errorf("%w: %v", ErrCommitImport, err)
	}

	now := time.Now().UTC()
	job := domain.ImportJob{
		ID:             uuid.NewString(),
		InitiatedBy:    in.InitiatedBy,
		SourceFileName: in.FileName,
		Status:         domain.JobCompleted,
		TotalRows:      int64(len(table.Rows)),
		CreatedAt:      now,
	}

	records := make([]domain.ActivationRecord, 0, len(table.Rows))
	deliveries := make([]Delivery, 0, len(table.Rows))

	for _, row := range table.Rows {
		memberID := row[roster.ColumnMemberID]
		phone := row[roster.ColumnPhoneNumber]
		email := row[roster.ColumnEmail]

		// Colliding with an already committed record means "already a
		// member", not "malformed data": skip, don't fail.
		if existing.Collides(memberID, phone, email) {
			job.SkippedRows++
			continue
		}

		channel, ok := uc.chooseChannel(phone, email)
		if !ok {
			job.FailedImports++
			continue
		}

		record := domain.ActivationRecord{
			ID:               uuid.NewString(),
			ImportJobID:      job.ID,
			MemberID:         memberID,
			Name:             row[roster.ColumnName],
			PhoneNumber:      phone,
			Email:            email,
			ActivationStatus: domain.StatusPendingActivation,
			CreatedAt:        now,
		}
		records = append(records, record)
		deliveries = append(deliveries, Delivery{Record: record, Channel: channel})
	}

	job.SuccessfulImports = int64(len(records))

	result, err := uc.batch.CommitBatch(ctx, job, records)
	if err != nil {
		uc.recordFailedJob(ctx, job)
		return CommitImportOutput{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	// Rows dropped by the uniqueness constraint lost a race against a
	// concurrent commit; they are skips, same as the snapshot check.
	if result.ConflictSkips > 0 {
		job.SuccessfulImports -= result.ConflictSkips
		job.SkippedRows += result.ConflictSkips
		deliveries = retainInserted(deliveries, result.Inserted)
	}

	uc.dispatch.Dispatch(context.WithoutCancel(ctx), deliveries)

	return CommitImportOutput{
		ID:                job.ID,
		InitiatedBy:       job.InitiatedBy,
		SourceFileName:    job.SourceFileName,
		Status:            string(job.Status),
		TotalRows:         job.TotalRows,
		SuccessfulImports: job.SuccessfulImports,
		FailedImports:     job.FailedImports,
		SkippedRows:       job.SkippedRows,
		CreatedAt:         job.CreatedAt,
	}, nil
}

func (uc *commitImport) chooseChannel(phone, email string) (domain.Channel, bool) {
	if phone != "" && uc.validator.PhoneUsable(phone) {
		return domain.ChannelSMS, true
	}
	if email != "" && uc.validator.EmailUsable(email) {
		return domain.ChannelEmail, true
	}
	return "", false
}

// recordFailedJob keeps an audit row for a commit whose batch write failed.
// No activation records survive such a failure.
func (uc *commitImport) recordFailedJob(ctx context.Context, job domain.ImportJob) {
	failed := job
	failed.Status = domain.JobFailed
	failed.SuccessfulImports = 0
	failed.FailedImports = 0
	failed.SkippedRows = 0

	if err := uc.jobs.Create(ctx, &failed); err != nil {
		log.Printf("[import] recording failed job %s: %v", job.ID, err)
	}
}

func retainInserted(deliveries []Delivery, inserted []domain.ActivationRecord) []Delivery {
	kept := make(map[string]bool, len(inserted))
	for _, record := range inserted {
		kept[record.ID] = true
	}

	out := deliveries[:0]
	for _, delivery := range deliveries {
		if kept[delivery.Record.ID] {
			out = append(out, delivery)
		}
	}
	return out
}
