package analytics

import (
	"strings"
	"time"

	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	dashboard     *Dashboard
	normalizer    *window.Normalizer
	metricsMonths int
	contactMonths int
	now           func() time.Time
}

func NewHandler(dashboard *Dashboard, normalizer *window.Normalizer, metricsMonths, contactMonths int) *Handler {
	return &Handler{
		dashboard:     dashboard,
		normalizer:    normalizer,
		metricsMonths: metricsMonths,
		contactMonths: contactMonths,
		now:           time.Now,
	}
}

// RangeFromQuery reads ?from=&to= or ?all=true. Without bounds it falls back
// to the trailing window of defaultMonths.
func RangeFromQuery(c *gin.Context, n *window.Normalizer, now time.Time, defaultMonths int) (window.Range, window.Options, error) {
	if strings.EqualFold(c.Query("all"), "true") {
		return window.Range{}, window.Options{SkipFilter: true}, nil
	}
	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		return n.Trailing(now, defaultMonths), window.Options{}, nil
	}
	r, err := n.Parse(from, to)
	return r, window.Options{}, err
}

// GetMetrics serves the whole snapshot of the active client.
func (h *Handler) GetMetrics(c *gin.Context) {
	snap, ok := h.load(c)
	if !ok {
		return
	}
	httpkit.OK(c, snap)
}

// GetCampaigns serves only the per-campaign breakdown.
func (h *Handler) GetCampaigns(c *gin.Context) {
	snap, ok := h.load(c)
	if !ok {
		return
	}
	httpkit.OK(c, gin.H{"key": snap.Key, "campaigns": snap.Campaigns})
}

func (h *Handler) ListContacts(c *gin.Context) {
	id, ok := tenants.IdentityFrom(c)
	if !ok {
		return
	}
	r, opts, err := RangeFromQuery(c, h.normalizer, h.now(), h.contactMonths)
	if httpkit.HandleError(c, err) {
		return
	}

	list, err := h.dashboard.Contacts(c.Request.Context(), id, r, opts)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, list)
}

func (h *Handler) load(c *gin.Context) (Snapshot, bool) {
	id, ok := tenants.IdentityFrom(c)
	if !ok {
		return Snapshot{}, false
	}
	r, opts, err := RangeFromQuery(c, h.normalizer, h.now(), h.metricsMonths)
	if httpkit.HandleError(c, err) {
		return Snapshot{}, false
	}

	snap, err := h.dashboard.Load(c.Request.Context(), id, r, opts)
	if httpkit.HandleError(c, err) {
		return Snapshot{}, false
	}
	return snap, true
}
