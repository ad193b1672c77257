package records

import (
	"math"
	"strings"
)

// NormalizeAdSpend is the single conversion from a scanned ad_spend row to
// the typed record used downstream.
func NormalizeAdSpend(row AdSpendRow) AdSpendRecord {
	rec := AdSpendRecord{
		ClientName:      text(row.ClientName),
		Date:            row.Date,
		CampaignName:    text(row.CampaignName),
		AdsetName:       text(row.AdsetName),
		AdName:          text(row.AdName),
		Impressions:     count(row.Impressions),
		LinkClicks:      count(row.LinkClicks),
		MessagesStarted: count(row.MessagesStarted),
	}

	if spend, ok := finite(row.Spend); ok {
		rec.Spend = spend
	} else {
		rec.MissingSpend = true
	}

	if row.Reach != nil {
		rec.Reach = count(row.Reach)
	} else {
		rec.MissingReach = true
	}

	return rec
}

// NormalizeLead is the single conversion from a scanned leads row to the
// typed record used downstream. Non-finite sale amounts are treated as absent.
func NormalizeLead(row LeadRow) LeadRecord {
	rec := LeadRecord{
		ID:           row.ID,
		ClientName:   text(row.ClientName),
		CreatedAt:    row.CreatedAt,
		Phone:        text(row.Phone),
		Name:         text(row.Name),
		Status:       text(row.Status),
		ClosedAt:     row.ClosedAt,
		Notes:        text(row.Notes),
		CampaignName: text(row.CampaignName),
		AdsetName:    text(row.AdsetName),
		AdName:       text(row.AdName),
	}
	if amount, ok := finite(row.SaleAmount); ok {
		rec.SaleAmount = &amount
	}
	return rec
}

func text(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func count(v *int64) int64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func owner(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
