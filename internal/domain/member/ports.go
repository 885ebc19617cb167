package member

import (
	"context"
	"time"
)

// Notifier is the single side-effecting boundary to the outside world:
// delivering an activation credential over a channel. Implementations wrap
// the concrete SMS/email providers.
type Notifier interface {
	Send(ctx context.Context, channel Channel, destination string, credential string) error
}

// IdentifierSet is a snapshot of the identifying values held by currently
// active records, used for cross-batch duplicate checks at commit time.
type IdentifierSet struct {
	MemberIDs map[string]bool
	Phones    map[string]bool
	Emails    map[string]bool
}

// Collides reports whether any of the given non-empty values is already
// claimed by an active record.
func (s IdentifierSet) Collides(memberID, phone, email string) bool {
	if memberID != "" && s.MemberIDs[memberID] {
		return true
	}
	if phone != "" && s.Phones[phone] {
		return true
	}
	if email != "" && s.Emails[email] {
		return true
	}
	return false
}

// BatchResult reports what one transactional commit actually persisted.
// ConflictSkips counts rows dropped by the storage uniqueness constraint,
// which happens when another commit won a race after the snapshot was taken.
type BatchResult struct {
	Inserted      []ActivationRecord
	ConflictSkips int64
}

// BatchRepository persists an import job together with its activation
// records in a single transaction. All-or-nothing: a storage failure leaves
// no partial records behind.
type BatchRepository interface {
	CommitBatch(ctx context.Context, job ImportJob, records []ActivationRecord) (BatchResult, error)
}

// JobRepository is the row-oriented access to import jobs.
type JobRepository interface {
	Create(ctx context.Context, job *ImportJob) error
	GetByID(ctx context.Context, id string) (*ImportJob, error)
	IncrementNotificationCounter(ctx context.Context, jobID string, outcome NotificationOutcome) error
	List(ctx context.Context, query JobListQuery) ([]ImportJob, int64, error)
}

// RecordRepository is the row-oriented access to activation records.
type RecordRepository interface {
	GetByID(ctx context.Context, id string) (*ActivationRecord, error)
	Update(ctx context.Context, record *ActivationRecord) error
	ActiveIdentifiers(ctx context.Context) (IdentifierSet, error)
	List(ctx context.Context, query RecordListQuery) ([]ActivationRecord, int64, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// JobListQuery selects a page of import jobs. SortBy outside the repository
// allow-list falls back to created_at descending.
type JobListQuery struct {
	SortBy    string
	SortOrder SortOrder
	Page      int
	Limit     int
}

// RecordListQuery selects a page of activation records. Search matches
// member_id or name case-insensitively as a substring; Status restricts to
// one activation status.
type RecordListQuery struct {
	Status    ActivationStatus
	Search    string
	SortBy    string
	SortOrder SortOrder
	Page      int
	Limit     int
}

// PaginationMeta describes one page of an offset-paginated result set.
type PaginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPaginationMeta computes pages = ceil(total/limit). A page past the end
// is legal and simply pairs with an empty result set.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return PaginationMeta{Page: page, Limit: limit, Total: total, Pages: pages}
}
