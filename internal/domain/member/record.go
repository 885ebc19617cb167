package member

import (
	"fmt"
	"time"
)

// ActivationStatus is the lifecycle state of one activation record.
type ActivationStatus string

const (
	StatusPendingActivation ActivationStatus = "pending_activation"
	StatusActivated         ActivationStatus = "activated"
	StatusSMSFailed         ActivationStatus = "sms_failed"
	StatusEmailFailed       ActivationStatus = "email_failed"
	StatusTokenExpired      ActivationStatus = "token_expired"
)

// ActivationStatusFrom maps a raw string to a known status, defaulting to
// pending for anything unrecognized.
func ActivationStatusFrom(s string) ActivationStatus {
	switch ActivationStatus(s) {
	case StatusActivated, StatusSMSFailed, StatusEmailFailed, StatusTokenExpired:
		return ActivationStatus(s)
	}
	return StatusPendingActivation
}

// IsKnownStatus reports whether s names one of the five lifecycle states.
func IsKnownStatus(s string) bool {
	switch ActivationStatus(s) {
	case StatusPendingActivation, StatusActivated, StatusSMSFailed, StatusEmailFailed, StatusTokenExpired:
		return true
	}
	return false
}

// Channel is a credential delivery channel.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// ParseChannel validates a raw delivery-method string.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelSMS, ChannelEmail:
		return Channel(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// ActivationRecord is the durable state of one committed roster row. Records
// are never deleted; every delivery and activation outcome is recorded as a
// state transition so the history stays auditable.
type ActivationRecord struct {
	ID          string
	ImportJobID string
	MemberID    string
	Name        string
	PhoneNumber string
	Email       string

	ActivationStatus ActivationStatus
	ActivationMethod Channel

	SMSSentAt                  *time.Time
	EmailSentAt                *time.Time
	ActivatedAt                *time.Time
	TemporaryPasswordExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Destination returns the delivery address for the given channel, or an
// ErrChannelUnavailable when the record has nothing usable for it.
func (r *ActivationRecord) Destination(channel Channel) (string, error) {
	switch channel {
	case ChannelSMS:
		if r.PhoneNumber == "" {
			return "", fmt.Errorf("%w: record %s has no phone number", ErrChannelUnavailable, r.ID)
		}
		return r.PhoneNumber, nil
	case ChannelEmail:
		if r.Email == "" {
			return "", fmt.Errorf("%w: record %s has no email", ErrChannelUnavailable, r.ID)
		}
		return r.Email, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
}

// MarkDelivered records a successful credential delivery. The record stays
// (or returns to) pending_activation with a refreshed expiry.
func (r *ActivationRecord) MarkDelivered(channel Channel, sentAt time.Time, expiresAt time.Time) error {
	if r.ActivationStatus == StatusActivated {
		return ErrAlreadyActivated
	}

	r.ActivationStatus = StatusPendingActivation
	r.ActivationMethod = channel
	r.TemporaryPasswordExpiresAt = &expiresAt
	switch channel {
	case ChannelSMS:
		r.SMSSentAt = &sentAt
	case ChannelEmail:
		r.EmailSentAt = &sentAt
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	return nil
}

// MarkDeliveryFailed records a failed delivery attempt on the given channel.
func (r *ActivationRecord) MarkDeliveryFailed(channel Channel) error {
	if r.ActivationStatus == StatusActivated {
		return ErrAlreadyActivated
	}

	r.ActivationMethod = channel
	switch channel {
	case ChannelSMS:
		r.ActivationStatus = StatusSMSFailed
	case ChannelEmail:
		r.ActivationStatus = StatusEmailFailed
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	return nil
}

// Activate consumes the member's activation action. Only a pending record
// can activate; activated is absorbing.
func (r *ActivationRecord) Activate(at time.Time) error {
	if r.ActivationStatus == StatusActivated {
		return ErrAlreadyActivated
	}
	if r.ActivationStatus != StatusPendingActivation {
		return fmt.Errorf("%w: cannot activate from %s", ErrInvalidStateTransition, r.ActivationStatus)
	}
	r.ActivationStatus = StatusActivated
	r.ActivatedAt = &at
	return nil
}

// Expire marks an overdue pending record token_expired. It is a no-op error
// for records in any other state.
func (r *ActivationRecord) Expire(now time.Time) error {
	if r.ActivationStatus != StatusPendingActivation {
		return fmt.Errorf("%w: cannot expire from %s", ErrInvalidStateTransition, r.ActivationStatus)
	}
	if r.TemporaryPasswordExpiresAt == nil || now.Before(*r.TemporaryPasswordExpiresAt) {
		return fmt.Errorf("%w: credential has not expired yet", ErrInvalidStateTransition)
	}
	r.ActivationStatus = StatusTokenExpired
	return nil
}

// Resendable reports whether a new delivery attempt is permitted. Every
// state except activated accepts a resend.
func (r *ActivationRecord) Resendable() bool {
	return r.ActivationStatus != StatusActivated
}
