package reports

import (
	"encoding/csv"
	"strings"
	"testing"

	"marketing_dashboard_backend/internal/analytics"
)

func TestCampaignCSV(t *testing.T) {
	snap := analytics.Snapshot{
		Campaigns: []analytics.CampaignMetrics{
			{CampaignName: "Implante, Março", Investment: 1200.5, Reach: 9000, Clicks: 300, Leads: 12, Sales: 2, Revenue: 5000, ROI: 3.1649, CostPerLead: 100.0417},
			{CampaignName: "Retargeting", Investment: 300},
		},
		Metrics: analytics.ClientMetrics{TotalInvestment: 1500.5, TotalLeadsWithPhone: 12, ValidSalesCount: 2, TotalRevenue: 5000},
	}

	body, rows, err := CampaignCSV(snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 campaign rows, got %d", rows)
	}

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("generated csv must parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header, 2 campaigns and totals, got %d lines", len(records))
	}
	if records[0][0] != "campaign" || len(records[0]) != len(campaignHeader) {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][0] != "Implante, Março" || records[1][1] != "1200.50" || records[1][8] != "3.1649" {
		t.Fatalf("unexpected first row %v", records[1])
	}
	if records[3][0] != "TOTAL" || records[3][1] != "1500.50" || records[3][6] != "2" {
		t.Fatalf("unexpected totals %v", records[3])
	}
}

func TestCampaignCSVWithoutCampaigns(t *testing.T) {
	body, rows, err := CampaignCSV(analytics.Snapshot{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected no campaign rows, got %d", rows)
	}
	if lines := strings.Count(string(body), "\n"); lines != 2 {
		t.Fatalf("expected header and totals only, got %d lines", lines)
	}
}
