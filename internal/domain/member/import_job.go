package member

import "time"

// JobStatus is the lifecycle state of an import job. Pending exists only
// inside the commit transaction window; completed and failed are terminal.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ImportJob is one confirmed import of a roster file. The row counts are
// fixed at commit time; the notification counters are filled in
// asynchronously as deliveries resolve.
type ImportJob struct {
	ID             string
	InitiatedBy    string
	SourceFileName string
	Status         JobStatus

	TotalRows         int64
	SuccessfulImports int64
	FailedImports     int64
	SkippedRows       int64

	SMSSentCount     int64
	SMSFailedCount   int64
	EmailSentCount   int64
	EmailFailedCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotificationOutcome identifies which aggregate counter a resolved delivery
// increments on the owning job.
type NotificationOutcome string

const (
	OutcomeSMSSent     NotificationOutcome = "sms_sent"
	OutcomeSMSFailed   NotificationOutcome = "sms_failed"
	OutcomeEmailSent   NotificationOutcome = "email_sent"
	OutcomeEmailFailed NotificationOutcome = "email_failed"
)

// OutcomeFor maps a channel and delivery result to the counter it affects.
func OutcomeFor(channel Channel, delivered bool) NotificationOutcome {
	switch {
	case channel == ChannelSMS && delivered:
		return OutcomeSMSSent
	case channel == ChannelSMS:
		return OutcomeSMSFailed
	case delivered:
		return OutcomeEmailSent
	default:
		return OutcomeEmailFailed
	}
}
