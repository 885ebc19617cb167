package roster

import (
	"fmt"
	"regexp"
)

// ValidationError describes one rule violation. RowNumber is 1-based and
// counts the header as row 1, so the first data row is row 2.
type ValidationError struct {
	RowNumber int    `json:"row_number"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Message   string `json:"message"`
}

// ValidatorConfig carries the tunable validation knobs. Zero values fall
// back to the defaults below.
type ValidatorConfig struct {
	PhonePattern   string
	EmailPattern   string
	MinPhoneDigits int
}

const (
	defaultPhonePattern   = `^\+?[0-9()\s-]+$`
	defaultEmailPattern   = `^[^@\s]+@[^@\s]+\.[^@\s]+$`
	defaultMinPhoneDigits = 7
)

var digitPattern = regexp.MustCompile(`[0-9]`)

// Validator applies the schema and business rules to a parsed table. It is
// pure: it never mutates its input and never short-circuits, so the caller
// always receives the complete error set for the file.
type Validator struct {
	phonePattern   *regexp.Regexp
	emailPattern   *regexp.Regexp
	minPhoneDigits int
}

func NewValidator(cfg ValidatorConfig) (*Validator, error) {
	if cfg.PhonePattern == "" {
		cfg.PhonePattern = defaultPhonePattern
	}
	if cfg.EmailPattern == "" {
		cfg.EmailPattern = defaultEmailPattern
	}
	if cfg.MinPhoneDigits <= 0 {
		cfg.MinPhoneDigits = defaultMinPhoneDigits
	}

	phonePattern, err := regexp.Compile(cfg.PhonePattern)
	if err != nil {
		return nil, fmt.Errorf("compile phone pattern: %w", err)
	}
	emailPattern, err := regexp.Compile(cfg.EmailPattern)
	if err != nil {
		return nil, fmt.Errorf("compile email pattern: %w", err)
	}

	return &Validator{
		phonePattern:   phonePattern,
		emailPattern:   emailPattern,
		minPhoneDigits: cfg.MinPhoneDigits,
	}, nil
}

// Validate scans every row and returns one entry per violation, in row
// order. Duplicate detection is intra-batch only: the first occurrence of a
// value is never flagged, every later occurrence of the same non-empty value
// is. Checking against previously committed records happens at commit time,
// not here.
func (v *Validator) Validate(table RawTable) []ValidationError {
	return v.validate(table, true)
}

// ValidateIdentity runs the commit-time gate: required fields and intra-batch
// duplicates only. Format problems are left to the commit service's channel
// selection, which degrades to the email fallback or a failed-import count
// instead of rejecting the file.
func (v *Validator) ValidateIdentity(table RawTable) []ValidationError {
	return v.validate(table, false)
}

func (v *Validator) validate(table RawTable, includeFormats bool) []ValidationError {
	errs := make([]ValidationError, 0)

	seenMemberIDs := make(map[string]bool)
	seenPhones := make(map[string]bool)
	seenEmails := make(map[string]bool)

	for i, row := range table.Rows {
		rowNumber := i + 2

		for _, field := range requiredColumns {
			if row[field] == "" {
				errs = append(errs, ValidationError{
					RowNumber: rowNumber,
					Field:     field,
					Value:     "",
					Message:   fmt.Sprintf("%s is required", field),
				})
			}
		}

		if includeFormats {
			if phone := row[ColumnPhoneNumber]; phone != "" && !v.PhoneUsable(phone) {
				errs = append(errs, ValidationError{
					RowNumber: rowNumber,
					Field:     ColumnPhoneNumber,
					Value:     phone,
					Message:   "Invalid phone number format",
				})
			}

			if email := row[ColumnEmail]; email != "" && !v.emailPattern.MatchString(email) {
				errs = append(errs, ValidationError{
					RowNumber: rowNumber,
					Field:     ColumnEmail,
					Value:     email,
					Message:   "Invalid email format",
				})
			}
		}

		errs = appendDuplicate(errs, seenMemberIDs, row, ColumnMemberID, rowNumber)
		errs = appendDuplicate(errs, seenPhones, row, ColumnPhoneNumber, rowNumber)
		errs = appendDuplicate(errs, seenEmails, row, ColumnEmail, rowNumber)
	}

	return errs
}

// PhoneUsable reports whether the value is an acceptable delivery phone
// number: permissive formatting characters and at least the configured
// number of digits.
func (v *Validator) PhoneUsable(phone string) bool {
	if !v.phonePattern.MatchString(phone) {
		return false
	}
	return len(digitPattern.FindAllString(phone, -1)) >= v.minPhoneDigits
}

// EmailUsable reports whether the value passes the email shape check.
func (v *Validator) EmailUsable(email string) bool {
	return v.emailPattern.MatchString(email)
}

func appendDuplicate(errs []ValidationError, seen map[string]bool, row Row, field string, rowNumber int) []ValidationError {
	value := row[field]
	if value == "" {
		return errs
	}
	if seen[value] {
		return append(errs, ValidationError{
			RowNumber: rowNumber,
			Field:     field,
			Value:     value,
			Message:   fmt.Sprintf("Duplicate %s", field),
		})
	}
	seen[value] = true
	return errs
}
