package analytics

import (
	"sort"

	"marketing_dashboard_backend/internal/records"
)

// StatusUnset groups leads that carry no status.
const StatusUnset = "Unset"

type StatusBreakdown struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// ByStatus counts leads and valid-sale revenue per stored status, most
// frequent first.
func ByStatus(leads []records.LeadRecord) []StatusBreakdown {
	byStatus := make(map[string]*StatusBreakdown)
	for _, lead := range leads {
		status := lead.Status
		if status == "" {
			status = StatusUnset
		}
		b, ok := byStatus[status]
		if !ok {
			b = &StatusBreakdown{Status: status}
			byStatus[status] = b
		}
		b.Count++
		if amount, ok := ValidSale(lead); ok {
			b.Revenue += amount
		}
	}

	out := make([]StatusBreakdown, 0, len(byStatus))
	for _, b := range byStatus {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}
