package member

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/coopworks/member-import/internal/domain/member"
)

type ResendActivationInput struct {
	RecordID       string
	DeliveryMethod string
}

type ResendActivationOutput struct {
	RecordID         string `json:"record_id"`
	MemberID         string `json:"member_id"`
	DeliveryMethod   string `json:"delivery_method"`
	Delivered        bool   `json:"delivered"`
	ActivationStatus string `json:"activation_status"`
}

// ResendActivation re-delivers an activation credential to one existing
// record. Resending to an activated record is always rejected.
type ResendActivation interface {
	Execute(ctx context.Context, in ResendActivationInput) (ResendActivationOutput, error)
}

type resendRecordRepo interface {
	GetByID(ctx context.Context, id string) (*domain.ActivationRecord, error)
}

type resendActivation struct {
	records  resendRecordRepo
	dispatch *Dispatcher
}

func NewResendActivation(records resendRecordRepo, dispatch *Dispatcher) ResendActivation {
	return &resendActivation{records: records, dispatch: dispatch}
}

func (uc *resendActivation) Execute(ctx context.Context, in ResendActivationInput) (ResendActivationOutput, error) {
	channel, err := domain.ParseChannel(in.DeliveryMethod)
	if err != nil {
		return ResendActivationOutput{}, fmt.Errorf("%w: %v", ErrInvalidResendRequest, err)
	}

	record, err := uc.records.GetByID(ctx, in.RecordID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return ResendActivationOutput{}, ErrRecordNotFound
		}
		return ResendActivationOutput{}, fmt.Errorf("%w: %v", ErrInvalidResendRequest, err)
	}

	if !record.Resendable() {
		return ResendActivationOutput{}, ErrAlreadyActivated
	}

	if _, err := record.Destination(channel); err != nil {
		return ResendActivationOutput{}, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}

	delivered, err := uc.dispatch.Deliver(ctx, record, channel)
	if err != nil {
		return ResendActivationOutput{}, fmt.Errorf("%w: %v", ErrInvalidResendRequest, err)
	}

	return ResendActivationOutput{
		RecordID:         record.ID,
		MemberID:         record.MemberID,
		DeliveryMethod:   string(channel),
		Delivered:        delivered,
		ActivationStatus: string(record.ActivationStatus),
	}, nil
}

type BulkResendActivationInput struct {
	RecordIDs      []string
	DeliveryMethod string
}

type FailedResend struct {
	MemberID string `json:"member_id"`
	RecordID string `json:"record_id"`
	Error    string `json:"error"`
}

type BulkResendActivationOutput struct {
	TotalMembers  int            `json:"total_members"`
	SuccessCount  int            `json:"success_count"`
	FailureCount  int            `json:"failure_count"`
	FailedMembers []FailedResend `json:"failed_members"`
}

// BulkResendActivation processes every requested record independently and
// always returns a complete ledger: one record's failure never aborts or
// rolls back another's resend. Only an entirely malformed request (empty
// set, unknown channel) is raised as an error.
type BulkResendActivation interface {
	Execute(ctx context.Context, in BulkResendActivationInput) (BulkResendActivationOutput, error)
}

type bulkResendActivation struct {
	records  resendRecordRepo
	dispatch *Dispatcher
}

func NewBulkResendActivation(records resendRecordRepo, dispatch *Dispatcher) BulkResendActivation {
	return &bulkResendActivation{records: records, dispatch: dispatch}
}

func (uc *bulkResendActivation) Execute(ctx context.Context, in BulkResendActivationInput) (BulkResendActivationOutput, error) {
	if len(in.RecordIDs) == 0 {
		return BulkResendActivationOutput{}, fmt.Errorf("%w: record id set is empty", ErrInvalidResendRequest)
	}

	channel, err := domain.ParseChannel(in.DeliveryMethod)
	if err != nil {
		return BulkResendActivationOutput{}, fmt.Errorf("%w: %v", ErrInvalidResendRequest, err)
	}

	out := BulkResendActivationOutput{
		TotalMembers:  len(in.RecordIDs),
		FailedMembers: make([]FailedResend, 0),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, recordID := range in.RecordIDs {
		wg.Add(1)
		go func(recordID string) {
			defer wg.Done()

			memberID, resendErr := uc.resendOne(ctx, recordID, channel)

			mu.Lock()
			defer mu.Unlock()
			if resendErr != nil {
				out.FailureCount++
				out.FailedMembers = append(out.FailedMembers, FailedResend{
					MemberID: memberID,
					RecordID: recordID,
					Error:    resendErr.Error(),
				})
				return
			}
			out.SuccessCount++
		}(recordID)
	}

	wg.Wait()

	return out, nil
}

func (uc *bulkResendActivation) resendOne(ctx context.Context, recordID string, channel domain.Channel) (string, error) {
	record, err := uc.records.GetByID(ctx, recordID)
	if err != nil {
		return recordID, err
	}

	if !record.Resendable() {
		return record.MemberID, domain.ErrAlreadyActivated
	}
	if _, err := record.Destination(channel); err != nil {
		return record.MemberID, err
	}

	delivered, err := uc.dispatch.Deliver(ctx, record, channel)
	if err != nil {
		return record.MemberID, err
	}
	if !delivered {
		return record.MemberID, fmt.Errorf("%s delivery failed", channel)
	}
	return record.MemberID, nil
}
