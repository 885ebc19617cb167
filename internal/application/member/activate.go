package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/coopworks/member-import/internal/domain/member"
)

type ActivateMemberInput struct {
	RecordID string
}

type ActivateMemberOutput struct {
	RecordID         string    `json:"record_id"`
	MemberID         string    `json:"member_id"`
	ActivationStatus string    `json:"activation_status"`
	ActivatedAt      time.Time `json:"activated_at"`
}

// ActivateMember consumes the member's activation action: the record moves
// from pending_activation to the terminal activated state.
type ActivateMember interface {
	Execute(ctx context.Context, in ActivateMemberInput) (ActivateMemberOutput, error)
}

type activateRecordRepo interface {
	GetByID(ctx context.Context, id string) (*domain.ActivationRecord, error)
	Update(ctx context.Context, record *domain.ActivationRecord) error
}

type activateMember struct {
	records activateRecordRepo
}

func NewActivateMember(records activateRecordRepo) ActivateMember {
	return &activateMember{records: records}
}

func (uc *activateMember) Execute(ctx context.Context, in ActivateMemberInput) (ActivateMemberOutput, error) {
	record, err := uc.records.GetByID(ctx, in.RecordID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return ActivateMemberOutput{}, ErrRecordNotFound
		}
		return ActivateMemberOutput{}, fmt.Errorf("%w: %v", ErrActivationRejected, err)
	}

	now := time.Now().UTC()
	if err := record.Activate(now); err != nil {
		if errors.Is(err, domain.ErrAlreadyActivated) {
			return ActivateMemberOutput{}, ErrAlreadyActivated
		}
		return ActivateMemberOutput{}, fmt.Errorf("%w: %v", ErrActivationRejected, err)
	}

	if err := uc.records.Update(ctx, record); err != nil {
		return ActivateMemberOutput{}, fmt.Errorf("%w: %v", ErrActivationRejected, err)
	}

	return ActivateMemberOutput{
		RecordID:         record.ID,
		MemberID:         record.MemberID,
		ActivationStatus: string(record.ActivationStatus),
		ActivatedAt:      now,
	}, nil
}
