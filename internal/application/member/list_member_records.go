package member

import (
	"context"
	"fmt"
	"time"

	domain "github.com/coopworks/member-import/internal/domain/member"
)

type ListMemberRecordsInput struct {
	Status    string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type MemberRecordOutput struct {
	ID                         string     `json:"id"`
	ImportJobID                string     `json:"import_job_id"`
	MemberID                   string     `json:"member_id"`
	Name                       string     `json:"name"`
	PhoneNumber                string     `json:"phone_number"`
	Email                      string     `json:"email,omitempty"`
	ActivationStatus           string     `json:"activation_status"`
	ActivationMethod           string     `json:"activation_method,omitempty"`
	SMSSentAt                  *time.Time `json:"sms_sent_at,omitempty"`
	EmailSentAt                *time.Time `json:"email_sent_at,omitempty"`
	ActivatedAt                *time.Time `json:"activated_at,omitempty"`
	TemporaryPasswordExpiresAt *time.Time `json:"temporary_password_expires_at,omitempty"`
	CreatedAt                  time.Time  `json:"created_at"`
}

type ListMemberRecordsOutput struct {
	Records []MemberRecordOutput  `json:"records"`
	Meta    domain.PaginationMeta `json:"meta"`
}

// ListMemberRecords is the cross-job member status view with status filter,
// case-insensitive search on member_id/name, and offset pagination.
type ListMemberRecords interface {
	Execute(ctx context.Context, in ListMemberRecordsInput) (ListMemberRecordsOutput, error)
}

type recordListRepo interface {
	List(ctx context.Context, query domain.RecordListQuery) ([]domain.ActivationRecord, int64, error)
}

type listMemberRecords struct {
	records recordListRepo
}

func NewListMemberRecords(records recordListRepo) ListMemberRecords {
	return &listMemberRecords{records: records}
}

func (uc *listMemberRecords) Execute(ctx context.Context, in ListMemberRecordsInput) (ListMemberRecordsOutput, error) {
	if in.Status != "" && !domain.IsKnownStatus(in.Status) {
		return ListMemberRecordsOutput{}, fmt.Errorf("%w: %q", ErrInvalidStatusFilter, in.Status)
	}

	page, limit := normalizePage(in.Page, in.Limit)

	records, total, err := uc.records.List(ctx, domain.RecordListQuery{
		Status:    domain.ActivationStatus(in.Status),
		Search:    in.Search,
		SortBy:    in.SortBy,
		SortOrder: normalizeSortOrder(in.SortOrder, domain.SortAsc),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return ListMemberRecordsOutput{}, fmt.Errorf("%w: %v", ErrListRecords, err)
	}

	out := ListMemberRecordsOutput{
		Records: make([]MemberRecordOutput, 0, len(records)),
		Meta:    domain.NewPaginationMeta(page, limit, total),
	}
	for _, record := range records {
		out.Records = append(out.Records, MemberRecordOutput{
			ID:                         record.ID,
			ImportJobID:                record.ImportJobID,
			MemberID:                   record.MemberID,
			Name:                       record.Name,
			PhoneNumber:                record.PhoneNumber,
			Email:                      record.Email,
			ActivationStatus:           string(record.ActivationStatus),
			ActivationMethod:           string(record.ActivationMethod),
			SMSSentAt:                  record.SMSSentAt,
			EmailSentAt:                record.EmailSentAt,
			ActivatedAt:                record.ActivatedAt,
			TemporaryPasswordExpiresAt: record.TemporaryPasswordExpiresAt,
			CreatedAt:                  record.CreatedAt,
		})
	}

	return out, nil
}
