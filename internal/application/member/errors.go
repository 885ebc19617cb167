package member

import (
	"errors"
	"fmt"

	"github.com/coopworks/member-import/internal/domain/roster"
)

var (
	ErrMissingInitiator     = errors.New("initiated_by is required")
	ErrCommitImport         = errors.New("failed to commit import")
	ErrStorageFailure       = errors.New("import storage failure")
	ErrRecordNotFound       = errors.New("activation record not found")
	ErrAlreadyActivated     = errors.New("member already activated")
	ErrChannelUnavailable   = errors.New("record has no destination for the requested channel")
	ErrInvalidResendRequest = errors.New("invalid resend request")
	ErrActivationRejected   = errors.New("record cannot be activated")
	ErrInvalidStatusFilter  = errors.New("unknown activation status filter")
	ErrListRecords          = errors.New("failed to list activation records")
	ErrListImportJobs       = errors.New("failed to list import jobs")
)

// ValidationFailedError carries the complete per-row error report for a
// roster that cannot be committed. It is returned as one error so the caller
// always sees the full picture in a single pass.
type ValidationFailedError struct {
	Errors []roster.ValidationError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("roster validation failed with %d errors", len(e.Errors))
}
