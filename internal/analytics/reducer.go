// Package analytics folds client-scoped ad spend and lead records into the
// dashboard metrics and serves them over HTTP.
package analytics

import (
	"math"

	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/platform/phone"
)

const (
	// MinPhoneDigits is the digit count a lead phone needs to count as a lead.
	MinPhoneDigits = 8
	// MinSaleValue is the smallest amount counted as a sale.
	MinSaleValue = 0.01
	// MinInvestmentForROI is the spend below which ROI reads 0.
	MinInvestmentForROI = 1.00
)

// ClientMetrics is derived per request and never persisted. Ratios are 0
// when undefined, never NaN or Inf.
type ClientMetrics struct {
	TotalInvestment       float64 `json:"totalInvestment"`
	TotalClicks           int64   `json:"totalClicks"`
	TotalMessagesStarted  int64   `json:"totalMessagesStarted"`
	TotalReach            int64   `json:"totalReach"`
	TotalLeadsWithPhone   int     `json:"totalLeadsWithPhone"`
	CostPerLead           float64 `json:"costPerLead"`
	CostPerMessageStarted float64 `json:"costPerMessageStarted"`
	TotalRevenue          float64 `json:"totalRevenue"`
	ROI                   float64 `json:"roi"`
	ValidSalesCount       int     `json:"validSalesCount"`
}

// Reduce computes ClientMetrics. It never fails; empty inputs give zeros.
func Reduce(adSpend []records.AdSpendRecord, leads []records.LeadRecord) ClientMetrics {
	var m ClientMetrics

	for _, row := range adSpend {
		m.TotalInvestment += row.Spend
		m.TotalClicks += row.LinkClicks
		m.TotalMessagesStarted += row.MessagesStarted
		m.TotalReach += row.Reach
	}

	for _, lead := range leads {
		if HasUsablePhone(lead) {
			m.TotalLeadsWithPhone++
		}
		if amount, ok := ValidSale(lead); ok {
			m.TotalRevenue += amount
			m.ValidSalesCount++
		}
	}

	m.CostPerLead = costPer(m.TotalInvestment, int64(m.TotalLeadsWithPhone))
	m.CostPerMessageStarted = costPer(m.TotalInvestment, m.TotalMessagesStarted)
	m.ROI = roi(m.TotalInvestment, m.TotalRevenue)

	m.TotalInvestment = finiteOrZero(m.TotalInvestment)
	m.TotalRevenue = finiteOrZero(m.TotalRevenue)
	return m
}

// HasUsablePhone reports whether the lead phone has at least MinPhoneDigits
// digits after normalization.
func HasUsablePhone(lead records.LeadRecord) bool {
	return phone.HasMinDigits(lead.Phone, MinPhoneDigits)
}

// ValidSale returns the sale amount when it is finite and at least MinSaleValue.
func ValidSale(lead records.LeadRecord) (float64, bool) {
	if lead.SaleAmount == nil {
		return 0, false
	}
	amount := *lead.SaleAmount
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < MinSaleValue {
		return 0, false
	}
	return amount, true
}

func costPer(investment float64, count int64) float64 {
	if count <= 0 || investment <= 0 {
		return 0
	}
	return finiteOrZero(investment / float64(count))
}

func roi(investment, revenue float64) float64 {
	if investment < MinInvestmentForROI || revenue <= 0 {
		return 0
	}
	return finiteOrZero((revenue - investment) / investment * 100)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
