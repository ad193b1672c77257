package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"marketing_dashboard_backend/internal/analytics"
)

var campaignHeader = []string{
	"campaign",
	"investment",
	"reach",
	"clicks",
	"messages_started",
	"leads",
	"sales",
	"revenue",
	"roi",
	"cost_per_lead",
}

// CampaignCSV renders the per-campaign breakdown followed by a totals row
// taken from the client metrics. It returns the number of campaign rows.
func CampaignCSV(snap analytics.Snapshot) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(campaignHeader); err != nil {
		return nil, 0, err
	}
	for _, c := range snap.Campaigns {
		if err := w.Write([]string{
			c.CampaignName,
			money(c.Investment),
			strconv.FormatInt(c.Reach, 10),
			strconv.FormatInt(c.Clicks, 10),
			strconv.FormatInt(c.MessagesStarted, 10),
			strconv.Itoa(c.Leads),
			strconv.Itoa(c.Sales),
			money(c.Revenue),
			ratio(c.ROI),
			money(c.CostPerLead),
		}); err != nil {
			return nil, 0, err
		}
	}

	m := snap.Metrics
	if err := w.Write([]string{
		"TOTAL",
		money(m.TotalInvestment),
		strconv.FormatInt(m.TotalReach, 10),
		strconv.FormatInt(m.TotalClicks, 10),
		strconv.FormatInt(m.TotalMessagesStarted, 10),
		strconv.Itoa(m.TotalLeadsWithPhone),
		strconv.Itoa(m.ValidSalesCount),
		money(m.TotalRevenue),
		ratio(m.ROI),
		money(m.CostPerLead),
	}); err != nil {
		return nil, 0, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(snap.Campaigns), nil
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func ratio(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
