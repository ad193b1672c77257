package analytics

import (
	"testing"

	"marketing_dashboard_backend/internal/records"
)

func TestByCampaignAttributesLeadsByName(t *testing.T) {
	ads := []records.AdSpendRecord{
		{CampaignName: "Brand", Spend: 100},
		{CampaignName: "Brand", Spend: 50},
		{CampaignName: "Promo", Spend: 300},
		{CampaignName: "Retarget", Spend: 0},
	}
	leads := []records.LeadRecord{
		{Phone: validPhone, CampaignName: "Brand", SaleAmount: sale(600)},
		{Phone: validPhone, CampaignName: "Brand"},
		{Phone: validPhone, CampaignName: "Unknown"},
		{Phone: "", CampaignName: "Promo"},
	}

	got := ByCampaign(ads, leads, MatchByCampaignName)
	if len(got) != 3 {
		t.Fatalf("expected 3 campaigns, got %d", len(got))
	}
	if got[0].CampaignName != "Promo" || got[1].CampaignName != "Brand" || got[2].CampaignName != "Retarget" {
		t.Fatalf("unexpected order %v", []string{got[0].CampaignName, got[1].CampaignName, got[2].CampaignName})
	}

	brand := got[1]
	if brand.Investment != 150 || brand.Leads != 2 || brand.Sales != 1 || brand.Revenue != 600 {
		t.Fatalf("unexpected brand metrics %+v", brand)
	}
	if brand.CostPerLead != 75 || brand.ROI != 300 {
		t.Fatalf("unexpected brand ratios CPL %v ROI %v", brand.CostPerLead, brand.ROI)
	}

	promo := got[0]
	if promo.Leads != 0 || promo.CostPerLead != 0 || promo.ROI != 0 {
		t.Fatalf("phoneless lead must not be attributed: %+v", promo)
	}
}

func TestByCampaignTieBreaksByName(t *testing.T) {
	got := ByCampaign([]records.AdSpendRecord{
		{CampaignName: "b", Spend: 10},
		{CampaignName: "a", Spend: 10},
	}, nil, nil)
	if got[0].CampaignName != "a" || got[1].CampaignName != "b" {
		t.Fatalf("expected name order on ties, got %s, %s", got[0].CampaignName, got[1].CampaignName)
	}
}

func TestMatchRate(t *testing.T) {
	ads := []records.AdSpendRecord{{CampaignName: "Brand"}}
	leads := []records.LeadRecord{
		{Phone: validPhone, CampaignName: "Brand"},
		{Phone: validPhone, CampaignName: "Other"},
		{Phone: validPhone},
		{Phone: validPhone, CampaignName: "Brand"},
	}
	if got := MatchRate(ads, leads, MatchByCampaignName); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := MatchRate(ads, nil, MatchByCampaignName); got != 1 {
		t.Fatalf("expected 1 without leads, got %v", got)
	}
}

func TestByStatusGroupsUnset(t *testing.T) {
	got := ByStatus([]records.LeadRecord{
		{Status: records.StatusScheduled},
		{Status: records.StatusScheduled},
		{Status: records.StatusClosed, SaleAmount: sale(200)},
		{},
	})
	if len(got) != 3 || got[0].Status != records.StatusScheduled || got[0].Count != 2 {
		t.Fatalf("unexpected breakdown %+v", got)
	}
	for _, b := range got {
		if b.Status == records.StatusClosed && b.Revenue != 200 {
			t.Fatalf("expected closed revenue 200, got %v", b.Revenue)
		}
		if b.Status == StatusUnset && b.Count != 1 {
			t.Fatalf("expected one unset lead, got %d", b.Count)
		}
	}
}
