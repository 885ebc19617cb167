package echo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	app "github.com/coopworks/member-import/internal/application/member"
	"github.com/coopworks/member-import/internal/domain/roster"
	httpecho "github.com/coopworks/member-import/internal/interfaces/http/echo"
)

type fakeValidateRoster struct {
	output app.ValidateRosterOutput
	err    error
}

func (f *fakeValidateRoster) Execute(_ context.Context, _ app.ValidateRosterInput) (app.ValidateRosterOutput, error) {
	if f.err != nil {
		return app.ValidateRosterOutput{}, f.err
	}
	return f.output, nil
}

type fakeCommitImport struct {
	input  app.CommitImportInput
	output app.CommitImportOutput
	err    error
}

func (f *fakeCommitImport) Execute(_ context.Context, in app.CommitImportInput) (app.CommitImportOutput, error) {
	f.input = in
	if f.err != nil {
		return app.CommitImportOutput{}, f.err
	}
	return f.output, nil
}

type fakeListImportJobs struct {
	input  app.ListImportJobsInput
	output app.ListImportJobsOutput
	err    error
}

func (f *fakeListImportJobs) Execute(_ context.Context, in app.ListImportJobsInput) (app.ListImportJobsOutput, error) {
	f.input = in
	if f.err != nil {
		return app.ListImportJobsOutput{}, f.err
	}
	return f.output, nil
}

type importFakes struct {
	validate *fakeValidateRoster
	commit   *fakeCommitImport
	list     *fakeListImportJobs
}

func newImportServer(fakes importFakes) *echo.Echo {
	if fakes.validate == nil {
		fakes.validate = &fakeValidateRoster{}
	}
	if fakes.commit == nil {
		fakes.commit = &fakeCommitImport{}
	}
	if fakes.list == nil {
		fakes.list = &fakeListImportJobs{}
	}

	e := echo.New()
	importHandler := httpecho.NewImportHandler(fakes.validate, fakes.commit, fakes.list)
	memberHandler := httpecho.NewMemberHandler(&fakeListMembers{}, &fakeResend{}, &fakeBulkResend{}, &fakeActivate{})
	httpecho.RegisterRoutes(e, importHandler, memberHandler)
	return e
}

func postJSON(e *echo.Echo, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestValidateRosterHandlerSuccess(t *testing.T) {
	t.Parallel()

	e := newImportServer(importFakes{validate: &fakeValidateRoster{output: app.ValidateRosterOutput{
		FileName:  "roster.csv",
		TotalRows: 3,
		Valid:     true,
		Errors:    []roster.ValidationError{},
	}}})

	rec := postJSON(e, "/api/v1/imports/validate", `{"file_name":"roster.csv","content":"member_id,name\nM1,Jane"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data, ok := got["data"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload: %#v", got["data"])
	}
	if data["valid"] != true {
		t.Fatalf("expected valid report, got %#v", data)
	}
}

func TestValidateRosterHandlerMalformedFile(t *testing.T) {
	t.Parallel()

	e := newImportServer(importFakes{validate: &fakeValidateRoster{err: roster.ErrMalformedInput}})

	rec := postJSON(e, "/api/v1/imports/validate", `{"file_name":"roster.csv","content":""}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	errBody, ok := got["error"].(map[string]any)
	if !ok || errBody["code"] != "malformed_roster" {
		t.Fatalf("unexpected error payload: %#v", got["error"])
	}
}

func TestValidateRosterHandlerBadJSON(t *testing.T) {
	t.Parallel()

	e := newImportServer(importFakes{})

	rec := postJSON(e, "/api/v1/imports/validate", `{"file_name":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCommitImportHandlerSuccess(t *testing.T) {
	t.Parallel()

	commit := &fakeCommitImport{output: app.CommitImportOutput{
		ID:                "job-1",
		Status:            "completed",
		TotalRows:         5,
		SuccessfulImports: 4,
		SkippedRows:       1,
	}}
	e := newImportServer(importFakes{commit: commit})

	rec := postJSON(e, "/api/v1/imports", `{"file_name":"roster.csv","content":"data","initiated_by":"admin@coop.example"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if commit.input.InitiatedBy != "admin@coop.example" {
		t.Fatalf("expected initiator forwarded, got %q", commit.input.InitiatedBy)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	data := got["data"].(map[string]any)
	if data["id"] != "job-1" || data["total_rows"] != float64(5) {
		t.Fatalf("unexpected commit payload: %#v", data)
	}
}

func TestCommitImportHandlerValidationFailed(t *testing.T) {
	t.Parallel()

	e := newImportServer(importFakes{commit: &fakeCommitImport{err: &app.ValidationFailedError{
		Errors: []roster.ValidationError{
			{RowNumber: 3, Field: "member_id", Value: "M001", Message: "Duplicate member_id"},
		},
	}}})

	rec := postJSON(e, "/api/v1/imports", `{"file_name":"roster.csv","content":"data","initiated_by":"admin"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	errBody := got["error"].(map[string]any)
	if errBody["code"] != "validation_failed" {
		t.Fatalf("unexpected error code: %#v", errBody["code"])
	}
	details, ok := errBody["details"].([]any)
	if !ok || len(details) != 1 {
		t.Fatalf("expected full error list in details, got %#v", errBody["details"])
	}
}

func TestCommitImportHandlerMissingInitiator(t *testing.T) {
	t.Parallel()

	e := newImportServer(importFakes{commit: &fakeCommitImport{err: app.ErrMissingInitiator}})

	rec := postJSON(e, "/api/v1/imports", `{"file_name":"roster.csv","content":"data"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCommitImportHandlerStorageFailure(t *testing.T) {
	t.Parallel()

	e := newImportServer(importFakes{commit: &fakeCommitImport{err: errors.New("storage down")}})

	rec := postJSON(e, "/api/v1/imports", `{"file_name":"roster.csv","content":"data","initiated_by":"admin"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestListImportsHandlerForwardsQuery(t *testing.T) {
	t.Parallel()

	list := &fakeListImportJobs{output: app.ListImportJobsOutput{Jobs: []app.ImportJobOutput{}}}
	e := newImportServer(importFakes{list: list})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports?sort_by=created_at&sort_order=asc&page=2&limit=50", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if list.input.SortBy != "created_at" || list.input.SortOrder != "asc" {
		t.Fatalf("unexpected sort forwarding: %+v", list.input)
	}
	if list.input.Page != 2 || list.input.Limit != 50 {
		t.Fatalf("unexpected pagination forwarding: %+v", list.input)
	}
}
