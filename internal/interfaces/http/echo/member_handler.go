package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/coopworks/member-import/internal/application/member"
)

type MemberHandler struct {
	list       app.ListMemberRecords
	resend     app.ResendActivation
	bulkResend app.BulkResendActivation
	activate   app.ActivateMember
}

func NewMemberHandler(list app.ListMemberRecords, resend app.ResendActivation, bulkResend app.BulkResendActivation, activate app.ActivateMember) *MemberHandler {
	return &MemberHandler{list: list, resend: resend, bulkResend: bulkResend, activate: activate}
}

// ListMembers returns the cross-job member status view.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	out, err := h.list.Execute(c.Request().Context(), app.ListMemberRecordsInput{
		Status:    c.QueryParam("status"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidStatusFilter) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_status",
				Message: "unknown activation status filter",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list members",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

type resendRequest struct {
	DeliveryMethod string `json:"delivery_method"`
}

// ResendActivation re-delivers a credential to one member record.
func (h *MemberHandler) ResendActivation(c echo.Context) error {
	var req resendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.resend.Execute(c.Request().Context(), app.ResendActivationInput{
		RecordID:       c.Param("id"),
		DeliveryMethod: req.DeliveryMethod,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidResendRequest) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_delivery_method",
				Message: "delivery_method must be sms or email",
			}})
		}
		if errors.Is(err, app.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "activation record not found",
			}})
		}
		if errors.Is(err, app.ErrAlreadyActivated) {
			return c.JSON(http.StatusConflict, apiResponse{Error: &errorBody{
				Code:    "already_activated",
				Message: "member is already activated",
			}})
		}
		if errors.Is(err, app.ErrChannelUnavailable) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "channel_unavailable",
				Message: "record has no destination for the requested channel",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to resend activation",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

type bulkResendRequest struct {
	RecordIDs      []string `json:"record_ids"`
	DeliveryMethod string   `json:"delivery_method"`
}

// BulkResendActivation re-delivers credentials to many records and returns
// the complete per-record outcome ledger.
func (h *MemberHandler) BulkResendActivation(c echo.Context) error {
	var req bulkResendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.bulkResend.Execute(c.Request().Context(), app.BulkResendActivationInput{
		RecordIDs:      req.RecordIDs,
		DeliveryMethod: req.DeliveryMethod,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidResendRequest) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_resend_request",
				Message: "record_ids must be non-empty and delivery_method must be sms or email",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to resend activations",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// ActivateMember consumes the member's activation action.
func (h *MemberHandler) ActivateMember(c echo.Context) error {
	out, err := h.activate.Execute(c.Request().Context(), app.ActivateMemberInput{
		RecordID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, app.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "activation record not found",
			}})
		}
		if errors.Is(err, app.ErrAlreadyActivated) {
			return c.JSON(http.StatusConflict, apiResponse{Error: &errorBody{
				Code:    "already_activated",
				Message: "member is already activated",
			}})
		}
		if errors.Is(err, app.ErrActivationRejected) {
			return c.JSON(http.StatusConflict, apiResponse{Error: &errorBody{
				Code:    "activation_rejected",
				Message: "record is not pending activation",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to activate member",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
