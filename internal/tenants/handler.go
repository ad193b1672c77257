package tenants

import (
	"net/http"

	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/httpkit"
	"marketing_dashboard_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// IdentityFrom converts the authenticated gin identity. It aborts with 401
// and returns false for anonymous callers.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return Identity{}, false
	}
	return Identity{UserID: id.UserID(), Role: id.Role()}, true
}

func (h *Handler) List(c *gin.Context) {
	id, ok := IdentityFrom(c)
	if !ok {
		return
	}

	res, err := h.svc.Resolve(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	active, err := h.svc.Active(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, ListResponse{Clients: res.Tenants, Default: res.Default, Active: active})
}

func (h *Handler) ChangeActive(c *gin.Context) {
	id, ok := IdentityFrom(c)
	if !ok {
		return
	}

	var req ChangeActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("client is required").WithDetails(validator.FieldErrors(err)))
		return
	}

	active, err := h.svc.ChangeActive(c.Request.Context(), id, req.Client)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ActiveResponse{Client: active})
}

func (h *Handler) ListAssignments(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	clients, err := h.svc.ListAssignments(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, AssignmentsResponse{UserID: userID.String(), Clients: clients})
}

func (h *Handler) ReplaceAssignments(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	var req AssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid client list").WithDetails(validator.FieldErrors(err)))
		return
	}

	clients, err := h.svc.ReplaceAssignments(c.Request.Context(), userID, req.Clients)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, AssignmentsResponse{UserID: userID.String(), Clients: clients})
}
