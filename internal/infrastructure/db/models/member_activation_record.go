package models

import "time"

// MemberActivationRecord rows are never deleted; the uniqueness of
// member_id/phone_number/email across all records is the hard constraint
// that makes concurrent commits of the same member safe. Email is nullable
// so the unique index ignores rows without one.
type MemberActivationRecord struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	ImportJobID string  `gorm:"type:uuid;index;not null"`
	MemberID    string  `gorm:"size:64;not null;uniqueIndex"`
	Name        string  `gorm:"size:255;not null"`
	PhoneNumber string  `gorm:"size:32;not null;uniqueIndex"`
	Email       *string `gorm:"size:320;uniqueIndex"`

	ActivationStatus string  `gorm:"type:text;not null;index"`
	ActivationMethod *string `gorm:"type:text"`

	SMSSentAt                  *time.Time `gorm:"column:sms_sent_at"`
	EmailSentAt                *time.Time
	ActivatedAt                *time.Time
	TemporaryPasswordExpiresAt *time.Time `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MemberActivationRecord) TableName() string {
	return "member_activation_records"
}
