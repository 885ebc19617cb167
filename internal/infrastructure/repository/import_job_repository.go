package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/coopworks/member-import/internal/domain/member"
	"github.com/coopworks/member-import/internal/infrastructure/db/models"
)

var jobSortColumns = map[string]string{
	"created_at":         "created_at",
	"source_file_name":   "source_file_name",
	"status":             "status",
	"total_rows":         "total_rows",
	"successful_imports": "successful_imports",
}

var outcomeColumns = map[domain.NotificationOutcome]string{
	domain.OutcomeSMSSent:     "sms_sent_count",
	domain.OutcomeSMSFailed:   "sms_failed_count",
	domain.OutcomeEmailSent:   "email_sent_count",
	domain.OutcomeEmailFailed: "email_failed_count",
}

type ImportJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) Create(ctx context.Context, job *domain.ImportJob) error {
	row := jobToModel(*job)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create import job: %w", err)
	}
	job.CreatedAt = row.CreatedAt
	return nil
}

func (r *ImportJobRepository) GetByID(ctx context.Context, id string) (*domain.ImportJob, error) {
	var row models.ImportJob
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get import job: %w", err)
	}
	job := jobToDomain(row)
	return &job, nil
}

// IncrementNotificationCounter bumps one aggregate counter in place. The
// increment happens in SQL so concurrent delivery outcomes for the same job
// never lose updates.
func (r *ImportJobRepository) IncrementNotificationCounter(ctx context.Context, jobID string, outcome domain.NotificationOutcome) error {
	column, ok := outcomeColumns[outcome]
	if !ok {
		return fmt.Errorf("unknown notification outcome %q", outcome)
	}

	err := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	return nil
}

func (r *ImportJobRepository) List(ctx context.Context, query domain.JobListQuery) ([]domain.ImportJob, int64, error) {
	column, ok := jobSortColumns[query.SortBy]
	order := sortDirection(query.SortOrder, "desc")
	if !ok {
		column, order = "created_at", "desc"
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ImportJob{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count import jobs: %w", err)
	}

	var rows []models.ImportJob
	err := r.db.WithContext(ctx).
		Order(column + " " + order).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list import jobs: %w", err)
	}

	jobs := make([]domain.ImportJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, jobToDomain(row))
	}
	return jobs, total, nil
}

func jobToModel(job domain.ImportJob) models.ImportJob {
	return models.ImportJob{
		ID:                job.ID,
		InitiatedBy:       job.InitiatedBy,
		SourceFileName:    job.SourceFileName,
		Status:            string(job.Status),
		TotalRows:         job.TotalRows,
		SuccessfulImports: job.SuccessfulImports,
		FailedImports:     job.FailedImports,
		SkippedRows:       job.SkippedRows,
		SMSSentCount:      job.SMSSentCount,
		SMSFailedCount:    job.SMSFailedCount,
		EmailSentCount:    job.EmailSentCount,
		EmailFailedCount:  job.EmailFailedCount,
	}
}

func jobToDomain(row models.ImportJob) domain.ImportJob {
	return domain.ImportJob{
		ID:                row.ID,
		InitiatedBy:       row.InitiatedBy,
		SourceFileName:    row.SourceFileName,
		Status:            domain.JobStatus(row.Status),
		TotalRows:         row.TotalRows,
		SuccessfulImports: row.SuccessfulImports,
		FailedImports:     row.FailedImports,
		SkippedRows:       row.SkippedRows,
		SMSSentCount:      row.SMSSentCount,
		SMSFailedCount:    row.SMSFailedCount,
		EmailSentCount:    row.EmailSentCount,
		EmailFailedCount:  row.EmailFailedCount,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
