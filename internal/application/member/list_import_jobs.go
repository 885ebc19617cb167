package member

import (
	"context"
	"fmt"
	"time"

	domain "github.com/coopworks/member-import/internal/domain/member"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ListImportJobsInput struct {
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type ImportJobOutput struct {
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

type ListImportJobsOutput struct {
	Jobs []ImportJobOutput     `json:"jobs"`
	Meta domain.PaginationMeta `json:"meta"`
}

// ListImportJobs is the read side of the import history.
type ListImportJobs interface {
	Execute(ctx context.Context, in ListImportJobsInput) (ListImportJobsOutput, error)
}

type jobListRepo interface {
	List(ctx context.Context, query domain.JobListQuery) ([]domain.ImportJob, int64, error)
}

type listImportJobs struct {
	jobs jobListRepo
}

func NewListImportJobs(jobs jobListRepo) ListImportJobs {
	return &listImportJobs{jobs: jobs}
}

func (uc *listImportJobs) Execute(ctx context.Context, in ListImportJobsInput) (ListImportJobsOutput, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	jobs, total, err := uc.jobs.List(ctx, domain.JobListQuery{
		SortBy:    in.SortBy,
		SortOrder: normalizeSortOrder(in.SortOrder, domain.SortDesc),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return ListImportJobsOutput{}, fmt.Errorf("%w: %v", ErrListImportJobs, err)
	}

	out := ListImportJobsOutput{
		Jobs: make([]ImportJobOutput, 0, len(jobs)),
		Meta: domain.NewPaginationMeta(page, limit, total),
	}
	for _, job := range jobs {
		out.Jobs = append(out.Jobs, ImportJobOutput{
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
			CreatedAt:         job.CreatedAt,
		})
	}

	return out, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func normalizeSortOrder(raw string, fallback domain.SortOrder) domain.SortOrder {
	switch domain.SortOrder(raw) {
	case domain.SortAsc, domain.SortDesc:
		return domain.SortOrder(raw)
	}
	return fallback
}
