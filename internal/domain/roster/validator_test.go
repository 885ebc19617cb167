package roster_test

import (
	"testing"

	"github.com/coopworks/member-import/internal/domain/roster"
)

func mustValidator(t *testing.T) *roster.Validator {
	t.Helper()
	v, err := roster.NewValidator(roster.ValidatorConfig{})
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func mustParse(t *testing.T, content string) roster.RawTable {
	t.Helper()
	table, err := roster.Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return table
}

func TestValidateCleanFile(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "member_id,name,phone_number,email\nM001,Jane Doe,555-1234567,jane@x.com\nM002,John Roe,+1 (555) 765-4321,\n")

	errs := mustValidator(t).Validate(table)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %#v", errs)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "member_id,name,phone_number\n,Jane,5551234567\nM002,,\n")

	errs := mustValidator(t).Validate(table)

	want := []struct {
		rowNumber int
		field     string
		message   string
	}{
		{2, "member_id", "member_id is required"},
		{3, "name", "name is required"},
		{3, "phone_number", "phone_number is required"},
	}

	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %#v", len(want), errs)
	}
	for i, w := range want {
		if errs[i].RowNumber != w.rowNumber || errs[i].Field != w.field || errs[i].Message != w.message {
			t.Fatalf("error %d: expected %+v, got %+v", i, w, errs[i])
		}
	}
}

func TestValidatePhoneFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		phone string
		valid bool
	}{
		{"555-1234567", true},
		{"+1 (555) 123 4567", true},
		{"5551234", true},
		{"555-123", false},       // fewer than 7 digits
		{"call me maybe", false}, // letters
		{"555#1234567", false},   // illegal character
	}

	v := mustValidator(t)
	for _, c := range cases {
		table := mustParse(t, "member_id,name,phone_number\nM001,Jane,"+c.phone+"\n")
		errs := v.Validate(table)
		if c.valid && len(errs) != 0 {
			t.Fatalf("phone %q: expected valid, got %#v", c.phone, errs)
		}
		if !c.valid {
			if len(errs) != 1 || errs[0].Message != "Invalid phone number format" {
				t.Fatalf("phone %q: expected invalid format error, got %#v", c.phone, errs)
			}
		}
	}
}

func TestValidateEmailFormat(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "member_id,name,phone_number,email\nM001,Jane,5551234567,not-an-email\n")

	errs := mustValidator(t).Validate(table)
	if len(errs) != 1 || errs[0].Message != "Invalid email format" || errs[0].RowNumber != 2 {
		t.Fatalf("expected one email format error on row 2, got %#v", errs)
	}
}

func TestValidateDuplicatesFlagSecondOccurrenceOnly(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "member_id,name,phone_number,email\n"+
		"M001,Jane Doe,555-1234567,jane@x.com\n"+
		"M001,John Roe,555-7654321,john@x.com\n")

	errs := mustValidator(t).Validate(table)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %#v", errs)
	}
	if errs[0].RowNumber != 3 || errs[0].Field != "member_id" || errs[0].Message != "Duplicate member_id" || errs[0].Value != "M001" {
		t.Fatalf("unexpected duplicate error: %+v", errs[0])
	}
}

func TestValidateDuplicatePhoneAndEmail(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "member_id,name,phone_number,email\n"+
		"M001,Jane,5551234567,shared@x.com\n"+
		"M002,John,5551234567,shared@x.com\n"+
		"M003,Jill,5551234567,\n")

	errs := mustValidator(t).Validate(table)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %#v", errs)
	}
	if errs[0].Field != "phone_number" || errs[0].RowNumber != 3 {
		t.Fatalf("unexpected first error: %+v", errs[0])
	}
	if errs[1].Field != "email" || errs[1].RowNumber != 3 {
		t.Fatalf("unexpected second error: %+v", errs[1])
	}
	if errs[2].Field != "phone_number" || errs[2].RowNumber != 4 {
		t.Fatalf("unexpected third error: %+v", errs[2])
	}
}

func TestValidateEmptyValuesNeverDuplicate(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "member_id,name,phone_number,email\n"+
		"M001,Jane,5551234567,\n"+
		"M002,John,5559876543,\n")

	errs := mustValidator(t).Validate(table)
	if len(errs) != 0 {
		t.Fatalf("expected no errors for repeated empty emails, got %#v", errs)
	}
}

func TestValidateIdentitySkipsFormatChecks(t *testing.T) {
	t.Parallel()

	table := mustParse(t, "member_id,name,phone_number,email\n"+
		"M001,Jane,not-a-phone,bad-email\n"+
		"M001,John,5559876543,john@x.com\n"+
		",Jill,5551112222,\n")

	errs := mustValidator(t).ValidateIdentity(table)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %#v", errs)
	}
	if errs[0].Message != "Duplicate member_id" || errs[0].RowNumber != 3 {
		t.Fatalf("unexpected first error: %+v", errs[0])
	}
	if errs[1].Message != "member_id is required" || errs[1].RowNumber != 4 {
		t.Fatalf("unexpected second error: %+v", errs[1])
	}
}

func TestValidatorConfigurablePatterns(t *testing.T) {
	t.Parallel()

	v, err := roster.NewValidator(roster.ValidatorConfig{MinPhoneDigits: 10})
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	table := mustParse(t, "member_id,name,phone_number\nM001,Jane,5551234\n")
	errs := v.Validate(table)
	if len(errs) != 1 || errs[0].Message != "Invalid phone number format" {
		t.Fatalf("expected short phone rejected at 10 digits, got %#v", errs)
	}
}

func TestValidatorRejectsBadPattern(t *testing.T) {
	t.Parallel()

	if _, err := roster.NewValidator(roster.ValidatorConfig{PhonePattern: "("}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
