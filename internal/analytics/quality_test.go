package analytics

import (
	"testing"

	"marketing_dashboard_backend/internal/records"
)

func TestDataQualityPerfectScore(t *testing.T) {
	report := DataQuality(
		[]records.AdSpendRecord{{CampaignName: "Brand", Spend: 10, Reach: 100}},
		[]records.LeadRecord{{Phone: validPhone, Name: "Ana", CampaignName: "Brand"}},
	)
	if report.Score != 100 || len(report.Issues) != 0 {
		t.Fatalf("expected perfect score, got %+v", report)
	}
}

func TestDataQualityDeductions(t *testing.T) {
	ads := []records.AdSpendRecord{
		{CampaignName: "Brand", MissingSpend: true, MissingReach: true},
	}
	leads := []records.LeadRecord{
		{Phone: "", Name: "", CampaignName: "Brand"},
		{Phone: validPhone, Name: "Ana", CampaignName: "Other"},
	}

	report := DataQuality(ads, leads)

	// missing spend 20, missing reach 10, no phone 20, no name 10, match rate 0% 20
	if report.Score != 20 {
		t.Fatalf("expected score 20, got %d (%+v)", report.Score, report.Issues)
	}
	codes := map[string]bool{}
	for _, issue := range report.Issues {
		codes[issue.Code] = true
	}
	for _, want := range []string{"missing_spend", "missing_reach", "leads_without_phone", "leads_without_name", "low_campaign_match_rate"} {
		if !codes[want] {
			t.Errorf("missing issue %q", want)
		}
	}
}

func TestDataQualityEmptyInputs(t *testing.T) {
	report := DataQuality(nil, nil)
	if report.Score != 100 || report.Issues == nil {
		t.Fatalf("expected clean report with empty issue list, got %+v", report)
	}
}
