package analytics

import (
	"sort"

	"marketing_dashboard_backend/internal/records"
)

// Join attributes a lead to an ad campaign name. The returned name must match
// an ad_spend campaign for the lead to be counted against it.
type Join func(lead records.LeadRecord) (campaign string, ok bool)

// MatchByCampaignName joins on exact campaign name equality.
func MatchByCampaignName(lead records.LeadRecord) (string, bool) {
	if lead.CampaignName == "" {
		return "", false
	}
	return lead.CampaignName, true
}

type CampaignMetrics struct {
	CampaignName    string  `json:"campaignName"`
	Investment      float64 `json:"investment"`
	Clicks          int64   `json:"clicks"`
	Reach           int64   `json:"reach"`
	MessagesStarted int64   `json:"messagesStarted"`
	Leads           int     `json:"leads"`
	Sales           int     `json:"sales"`
	Revenue         float64 `json:"revenue"`
	ROI             float64 `json:"roi"`
	CostPerLead     float64 `json:"costPerLead"`
}

// ByCampaign groups ad rows by campaign and attributes phone-bearing leads
// through join. Leads whose campaign has no ad rows are ignored. Results are
// ordered by investment descending, then name.
func ByCampaign(adSpend []records.AdSpendRecord, leads []records.LeadRecord, join Join) []CampaignMetrics {
	if join == nil {
		join = MatchByCampaignName
	}

	byName := make(map[string]*CampaignMetrics)
	for _, row := range adSpend {
		c, ok := byName[row.CampaignName]
		if !ok {
			c = &CampaignMetrics{CampaignName: row.CampaignName}
			byName[row.CampaignName] = c
		}
		c.Investment += row.Spend
		c.Clicks += row.LinkClicks
		c.Reach += row.Reach
		c.MessagesStarted += row.MessagesStarted
	}

	for _, lead := range leads {
		if !HasUsablePhone(lead) {
			continue
		}
		name, ok := join(lead)
		if !ok {
			continue
		}
		c, ok := byName[name]
		if !ok {
			continue
		}
		c.Leads++
		if amount, ok := ValidSale(lead); ok {
			c.Sales++
			c.Revenue += amount
		}
	}

	out := make([]CampaignMetrics, 0, len(byName))
	for _, c := range byName {
		c.Investment = finiteOrZero(c.Investment)
		c.ROI = roi(c.Investment, c.Revenue)
		c.CostPerLead = costPer(c.Investment, int64(c.Leads))
		out = append(out, *c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Investment != out[j].Investment {
			return out[i].Investment > out[j].Investment
		}
		return out[i].CampaignName < out[j].CampaignName
	})
	return out
}

// MatchRate is the share of phone-bearing leads that join to an ad campaign.
// With no such leads it is 1.
func MatchRate(adSpend []records.AdSpendRecord, leads []records.LeadRecord, join Join) float64 {
	if join == nil {
		join = MatchByCampaignName
	}
	campaigns := make(map[string]struct{}, len(adSpend))
	for _, row := range adSpend {
		campaigns[row.CampaignName] = struct{}{}
	}

	total, matched := 0, 0
	for _, lead := range leads {
		if !HasUsablePhone(lead) {
			continue
		}
		total++
		if name, ok := join(lead); ok {
			if _, ok := campaigns[name]; ok {
				matched++
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(matched) / float64(total)
}
