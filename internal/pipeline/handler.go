package pipeline

import (
	"context"
	"net/http"
	"time"

	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/httpkit"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// ActiveTenant resolves the caller's committed client.
type ActiveTenant interface {
	Active(ctx context.Context, id tenants.Identity) (string, error)
}

type Handler struct {
	svc           *Service
	active        ActiveTenant
	normalizer    *window.Normalizer
	val           *validator.Validator
	defaultMonths int
	now           func() time.Time
}

func NewHandler(svc *Service, active ActiveTenant, normalizer *window.Normalizer, val *validator.Validator, defaultMonths int) *Handler {
	return &Handler{
		svc:           svc,
		active:        active,
		normalizer:    normalizer,
		val:           val,
		defaultMonths: defaultMonths,
		now:           time.Now,
	}
}

func (h *Handler) GetBoard(c *gin.Context) {
	_, tenant, ok := h.caller(c)
	if !ok {
		return
	}

	r, opts, err := analytics.RangeFromQuery(c, h.normalizer, h.now(), h.defaultMonths)
	if httpkit.HandleError(c, err) {
		return
	}
	p, err := h.normalizer.Normalize(r, opts)
	if httpkit.HandleError(c, err) {
		return
	}

	board, err := h.svc.Board(c.Request.Context(), tenant, p)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, board)
}

func (h *Handler) Move(c *gin.Context) {
	id, tenant, ok := h.caller(c)
	if !ok {
		return
	}
	leadID, ok := leadIDParam(c)
	if !ok {
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid stage").WithDetails(validator.FieldErrors(err)))
		return
	}
	target, err := ParseStage(req.Stage)
	if httpkit.HandleError(c, err) {
		return
	}

	lead, err := h.svc.Move(c.Request.Context(), tenant, leadID, target, id.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Close(c *gin.Context) {
	id, tenant, ok := h.caller(c)
	if !ok {
		return
	}
	leadID, ok := leadIDParam(c)
	if !ok {
		return
	}

	var req CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid sale confirmation").WithDetails(validator.FieldErrors(err)))
		return
	}

	lead, err := h.svc.Close(c.Request.Context(), tenant, leadID, SaleConfirmation{
		Amount:   req.Amount,
		ClosedAt: req.ClosedAt,
		Notes:    req.Notes,
	}, id.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) caller(c *gin.Context) (tenants.Identity, string, bool) {
	id, ok := tenants.IdentityFrom(c)
	if !ok {
		return tenants.Identity{}, "", false
	}
	tenant, err := h.active.Active(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return tenants.Identity{}, "", false
	}
	c.Request = c.Request.WithContext(logger.WithTenant(c.Request.Context(), tenant))
	return id, tenant, true
}

func leadIDParam(c *gin.Context) (uuid.UUID, bool) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return uuid.UUID{}, false
	}
	return leadID, true
}
