package models

import "time"

type ImportJob struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	InitiatedBy    string `gorm:"size:255;not null"`
	SourceFileName string `gorm:"type:text;not null"`
	Status         string `gorm:"type:text;not null"`

	TotalRows         int64 `gorm:"not null;default:0"`
	SuccessfulImports int64 `gorm:"not null;default:0"`
	FailedImports     int64 `gorm:"not null;default:0"`
	SkippedRows       int64 `gorm:"not null;default:0"`

	SMSSentCount     int64 `gorm:"column:sms_sent_count;not null;default:0"`
	SMSFailedCount   int64 `gorm:"column:sms_failed_count;not null;default:0"`
	EmailSentCount   int64 `gorm:"column:email_sent_count;not null;default:0"`
	EmailFailedCount int64 `gorm:"column:email_failed_count;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ImportJob) TableName() string {
	return "import_jobs"
}
