package member

import (
	"context"

	"github.com/coopworks/member-import/internal/domain/roster"
)

type ValidateRosterInput struct {
	FileName string
	Content  string
}

type ValidateRosterOutput struct {
	FileName  string                   `json:"file_name"`
	Headers   []string                 `json:"headers"`
	TotalRows int                      `json:"total_rows"`
	Valid     bool                     `json:"valid"`
	Errors    []roster.ValidationError `json:"errors"`
}

// ValidateRoster is the preview step: parse and validate a roster file
// without committing anything, so the operator can fix and re-upload.
type ValidateRoster interface {
	Execute(ctx context.Context, in ValidateRosterInput) (ValidateRosterOutput, error)
}

type validateRoster struct {
	validator *roster.Validator
}

func NewValidateRoster(validator *roster.Validator) ValidateRoster {
	return &validateRoster{validator: validator}
}

func (uc *validateRoster) Execute(ctx context.Context, in ValidateRosterInput) (ValidateRosterOutput, error) {
	table, err := roster.Parse(in.Content)
	if err != nil {
		return ValidateRosterOutput{}, err
	}

	errs := uc.validator.Validate(table)

	return ValidateRosterOutput{
		FileName:  in.FileName,
		Headers:   table.Headers,
		TotalRows: len(table.Rows),
		Valid:     len(errs) == 0,
		Errors:    errs,
	}, nil
}
