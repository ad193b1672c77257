package reports

import (
	"net/http"
	"time"

	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc           *Service
	normalizer    *window.Normalizer
	defaultMonths int
}

func NewHandler(svc *Service, normalizer *window.Normalizer, defaultMonths int) *Handler {
	return &Handler{svc: svc, normalizer: normalizer, defaultMonths: defaultMonths}
}

// ExportCampaigns accepts the same window query as GET /metrics.
func (h *Handler) ExportCampaigns(c *gin.Context) {
	id, ok := tenants.IdentityFrom(c)
	if !ok {
		return
	}
	r, opts, err := analytics.RangeFromQuery(c, h.normalizer, time.Now(), h.defaultMonths)
	if httpkit.HandleError(c, err) {
		return
	}

	download, err := h.svc.ExportCampaigns(c.Request.Context(), id, r, opts)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, download)
}

func (h *Handler) History(c *gin.Context) {
	id, ok := tenants.IdentityFrom(c)
	if !ok {
		return
	}

	downloads, err := h.svc.History(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, downloads)
}
