package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/coopworks/member-import/internal/domain/member"
	"github.com/coopworks/member-import/internal/infrastructure/db/models"
)

var recordSortColumns = map[string]string{
	"member_id":         "member_id",
	"name":              "name",
	"created_at":        "created_at",
	"activation_status": "activation_status",
}

type MemberRecordRepository struct {
	db *gorm.DB
}

func NewMemberRecordRepository(db *gorm.DB) *MemberRecordRepository {
	return &MemberRecordRepository{db: db}
}

func (r *MemberRecordRepository) GetByID(ctx context.Context, id string) (*domain.ActivationRecord, error) {
	var row models.MemberActivationRecord
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get activation record: %w", err)
	}
	record := recordToDomain(row)
	return &record, nil
}

func (r *MemberRecordRepository) Update(ctx context.Context, record *domain.ActivationRecord) error {
	row := recordToModel(*record)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("update activation record: %w", err)
	}
	return nil
}

// ActiveIdentifiers loads the identifying values of every record into
// in-memory sets. Rosters are thousands of rows, so one snapshot per commit
// beats a per-row exists query.
func (r *MemberRecordRepository) ActiveIdentifiers(ctx context.Context) (domain.IdentifierSet, error) {
	type identifierRow struct {
		MemberID    string
		PhoneNumber string
		Email       *string
	}

	var rows []identifierRow
	err := r.db.WithContext(ctx).
		Model(&models.MemberActivationRecord{}).
		Select("member_id", "phone_number", "email").
		Find(&rows).Error
	if err != nil {
		return domain.IdentifierSet{}, fmt.Errorf("load active identifiers: %w", err)
	}

	set := domain.IdentifierSet{
		MemberIDs: make(map[string]bool, len(rows)),
		Phones:    make(map[string]bool, len(rows)),
		Emails:    make(map[string]bool, len(rows)),
	}
	for _, row := range rows {
		set.MemberIDs[row.MemberID] = true
		if row.PhoneNumber != "" {
			set.Phones[row.PhoneNumber] = true
		}
		if row.Email != nil && *row.Email != "" {
			set.Emails[*row.Email] = true
		}
	}
	return set, nil
}

func (r *MemberRecordRepository) List(ctx context.Context, query domain.RecordListQuery) ([]domain.ActivationRecord, int64, error) {
	column, ok := recordSortColumns[query.SortBy]
	order := sortDirection(query.SortOrder, "asc")
	if !ok {
		column, order = "member_id", "asc"
	}

	scope := r.db.WithContext(ctx).Model(&models.MemberActivationRecord{})
	if query.Status != "" {
		scope = scope.Where("activation_status = ?", string(query.Status))
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		scope = scope.Where("member_id ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count activation records: %w", err)
	}

	var rows []models.MemberActivationRecord
	err := scope.
		Order(column + " " + order).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list activation records: %w", err)
	}

	records := make([]domain.ActivationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordToDomain(row))
	}
	return records, total, nil
}

// ExpireOverdue moves every overdue pending record to token_expired in one
// statement and reports how many rows changed.
func (r *MemberRecordRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MemberActivationRecord{}).
		Where("activation_status = ?", string(domain.StatusPendingActivation)).
		Where("temporary_password_expires_at IS NOT NULL AND temporary_password_expires_at <= ?", now).
		UpdateColumn("activation_status", string(domain.StatusTokenExpired))
	if result.Error != nil {
		return 0, fmt.Errorf("expire overdue records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func sortDirection(order domain.SortOrder, fallback string) string {
	switch order {
	case domain.SortAsc:
		return "asc"
	case domain.SortDesc:
		return "desc"
	}
	return fallback
}

func recordToModel(record domain.ActivationRecord) models.MemberActivationRecord {
	return models.MemberActivationRecord{
		ID:                         record.ID,
		ImportJobID:                record.ImportJobID,
		MemberID:                   record.MemberID,
		Name:                       record.Name,
		PhoneNumber:                record.PhoneNumber,
		Email:                      nullableText(record.Email),
		ActivationStatus:           string(record.ActivationStatus),
		ActivationMethod:           nullableText(string(record.ActivationMethod)),
		SMSSentAt:                  record.SMSSentAt,
		EmailSentAt:                record.EmailSentAt,
		ActivatedAt:                record.ActivatedAt,
		TemporaryPasswordExpiresAt: record.TemporaryPasswordExpiresAt,
		CreatedAt:                  record.CreatedAt,
	}
}

func recordToDomain(row models.MemberActivationRecord) domain.ActivationRecord {
	record := domain.ActivationRecord{
		ID:                         row.ID,
		ImportJobID:                row.ImportJobID,
		MemberID:                   row.MemberID,
		Name:                       row.Name,
		PhoneNumber:                row.PhoneNumber,
		ActivationStatus:           domain.ActivationStatus(row.ActivationStatus),
		SMSSentAt:                  row.SMSSentAt,
		EmailSentAt:                row.EmailSentAt,
		ActivatedAt:                row.ActivatedAt,
		TemporaryPasswordExpiresAt: row.TemporaryPasswordExpiresAt,
		CreatedAt:                  row.CreatedAt,
		UpdatedAt:                  row.UpdatedAt,
	}
	if row.Email != nil {
		record.Email = *row.Email
	}
	if row.ActivationMethod != nil {
		record.ActivationMethod = domain.Channel(*row.ActivationMethod)
	}
	return record
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
