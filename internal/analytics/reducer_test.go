package analytics

import (
	"math"
	"testing"

	"marketing_dashboard_backend/internal/records"
)

const validPhone = "+5511987654321"

func sale(v float64) *float64 { return &v }

func lead(phone string, amount *float64) records.LeadRecord {
	return records.LeadRecord{Phone: phone, Name: "Ana", SaleAmount: amount, CampaignName: "Brand"}
}

func assertFinite(t *testing.T, m ClientMetrics) {
	t.Helper()
	for name, v := range map[string]float64{
		"investment": m.TotalInvestment,
		"revenue":    m.TotalRevenue,
		"roi":        m.ROI,
		"cpl":        m.CostPerLead,
		"cpm":        m.CostPerMessageStarted,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
}

func TestReduceComputesTotals(t *testing.T) {
	ads := []records.AdSpendRecord{
		{CampaignName: "Brand", Spend: 100, LinkClicks: 40, MessagesStarted: 10, Reach: 1000},
		{CampaignName: "Promo", Spend: 50, LinkClicks: 10, MessagesStarted: 5, Reach: 500},
	}
	leads := []records.LeadRecord{
		lead(validPhone, sale(300)),
		lead(validPhone, nil),
		lead("1234", sale(50)),
	}

	m := Reduce(ads, leads)

	if m.TotalInvestment != 150 || m.TotalClicks != 50 || m.TotalMessagesStarted != 15 || m.TotalReach != 1500 {
		t.Fatalf("unexpected ad totals %+v", m)
	}
	if m.TotalLeadsWithPhone != 2 {
		t.Fatalf("expected 2 leads with phone, got %d", m.TotalLeadsWithPhone)
	}
	if m.ValidSalesCount != 2 || m.TotalRevenue != 350 {
		t.Fatalf("expected 2 sales totalling 350, got %d / %v", m.ValidSalesCount, m.TotalRevenue)
	}
	if m.CostPerLead != 75 {
		t.Fatalf("expected CPL 75, got %v", m.CostPerLead)
	}
	if m.CostPerMessageStarted != 10 {
		t.Fatalf("expected cost per message 10, got %v", m.CostPerMessageStarted)
	}
	if want := (350.0 - 150.0) / 150.0 * 100; math.Abs(m.ROI-want) > 1e-9 {
		t.Fatalf("expected ROI %v, got %v", want, m.ROI)
	}
}

func TestReduceROIZeroGuard(t *testing.T) {
	cases := []struct {
		name  string
		spend float64
		sales []*float64
	}{
		{"spend without revenue", 500, nil},
		{"revenue below investment floor", 0.5, []*float64{sale(100)}},
		{"no spend at all", 0, []*float64{sale(100)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			leads := make([]records.LeadRecord, 0, len(tc.sales))
			for _, s := range tc.sales {
				leads = append(leads, lead(validPhone, s))
			}
			m := Reduce([]records.AdSpendRecord{{Spend: tc.spend}}, leads)
			if m.ROI != 0 {
				t.Fatalf("expected ROI 0, got %v", m.ROI)
			}
			assertFinite(t, m)
		})
	}
}

func TestReduceCostPerLeadGuard(t *testing.T) {
	cases := []struct {
		name  string
		ads   []records.AdSpendRecord
		leads []records.LeadRecord
	}{
		{"no input", nil, nil},
		{"spend but no leads", []records.AdSpendRecord{{Spend: 200, MessagesStarted: 0}}, nil},
		{"leads but no spend", nil, []records.LeadRecord{lead(validPhone, nil)}},
		{"only phoneless leads", []records.AdSpendRecord{{Spend: 200}}, []records.LeadRecord{lead("", nil)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Reduce(tc.ads, tc.leads)
			if m.CostPerLead != 0 || m.CostPerMessageStarted != 0 {
				t.Fatalf("expected zero ratios, got CPL %v CPM %v", m.CostPerLead, m.CostPerMessageStarted)
			}
			assertFinite(t, m)
		})
	}
}

func TestValidSaleThreshold(t *testing.T) {
	cases := []struct {
		amount *float64
		want   bool
	}{
		{nil, false},
		{sale(0), false},
		{sale(0.009), false},
		{sale(0.01), true},
		{sale(-5), false},
		{sale(math.NaN()), false},
		{sale(math.Inf(1)), false},
	}
	for _, tc := range cases {
		_, ok := ValidSale(records.LeadRecord{SaleAmount: tc.amount})
		if ok != tc.want {
			var v any = "nil"
			if tc.amount != nil {
				v = *tc.amount
			}
			t.Errorf("ValidSale(%v) = %v, want %v", v, ok, tc.want)
		}
	}
}
