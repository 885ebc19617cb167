package echo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	app "github.com/coopworks/member-import/internal/application/member"
	"github.com/coopworks/member-import/internal/domain/roster"
)

type ImportHandler struct {
	validate app.ValidateRoster
	commit   app.CommitImport
	list     app.ListImportJobs
}

type rosterRequest struct {
	FileName    string `json:"file_name"`
	Content     string `json:"content"`
	InitiatedBy string `json:"initiated_by"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func NewImportHandler(validate app.ValidateRoster, commit app.CommitImport, list app.ListImportJobs) *ImportHandler {
	return &ImportHandler{validate: validate, commit: commit, list: list}
}

// ValidateRoster runs the preview step: the full validation report comes
// back without anything being persisted.
func (h *ImportHandler) ValidateRoster(c echo.Context) error {
	var req rosterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.validate.Execute(c.Request().Context(), app.ValidateRosterInput{
		FileName: req.FileName,
		Content:  req.Content,
	})
	if err != nil {
		if code, ok := parseErrorCode(err); ok {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    code,
				Message: err.Error(),
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to validate roster",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// CommitImport persists the roster and queues credential deliveries.
func (h *ImportHandler) CommitImport(c echo.Context) error {
	var req rosterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.commit.Execute(c.Request().Context(), app.CommitImportInput{
		FileName:    req.FileName,
		Content:     req.Content,
		InitiatedBy: req.InitiatedBy,
	})
	if err != nil {
		var validationErr *app.ValidationFailedError
		if errors.As(err, &validationErr) {
			return c.JSON(http.StatusUnprocessableEntity, apiResponse{Error: &errorBody{
				Code:    "validation_failed",
				Message: validationErr.Error(),
				Details: validationErr.Errors,
			}})
		}
		if errors.Is(err, app.ErrMissingInitiator) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "missing_initiator",
				Message: "initiated_by is required",
			}})
		}
		if code, ok := parseErrorCode(err); ok {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    code,
				Message: err.Error(),
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to commit import",
		}})
	}

	return c.JSON(http.StatusCreated, apiResponse{Data: out})
}

// ListImports returns the paginated import job history.
func (h *ImportHandler) ListImports(c echo.Context) error {
	out, err := h.list.Execute(c.Request().Context(), app.ListImportJobsInput{
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list import jobs",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func parseErrorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, roster.ErrMalformedInput):
		return "malformed_roster", true
	case errors.Is(err, roster.ErrMissingColumns):
		return "missing_columns", true
	case errors.Is(err, roster.ErrUnknownColumns):
		return "unknown_columns", true
	}
	return "", false
}

func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}
