package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/internal/window"
)

func predicates(t *testing.T) *window.Predicates {
	t.Helper()
	n := window.NewNormalizer(time.UTC)
	p, err := n.Normalize(window.Range{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}, window.Options{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return p
}

func TestAdSpendQueryIsTenantScoped(t *testing.T) {
	query, args := adSpendQuery("acme", predicates(t))
	normalized := strings.Join(strings.Fields(query), " ")

	if !strings.Contains(normalized, "WHERE client_name = $1") {
		t.Fatalf("expected client_name predicate, got %q", normalized)
	}
	if !strings.Contains(normalized, "date >= $2::date AND date <= $3::date") {
		t.Fatalf("expected inclusive date bounds, got %q", normalized)
	}
	if args[0] != "acme" || args[1] != "2024-01-01" || args[2] != "2024-01-31" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestLeadsQueryUsesHalfOpenWindowAndPhoneFilter(t *testing.T) {
	query, args := leadsQuery("acme", predicates(t), false)
	normalized := strings.Join(strings.Fields(query), " ")

	for _, want := range []string{
		"WHERE client_name = $1",
		"phone IS NOT NULL AND btrim(phone) <> ''",
		"created_at >= $2 AND created_at < $3",
	} {
		if !strings.Contains(normalized, want) {
			t.Errorf("expected %q in %q", want, normalized)
		}
	}
	before, ok := args[2].(time.Time)
	if !ok || !before.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected exclusive upper bound on the next day, got %v", args[2])
	}
}

func TestLeadsQueryWithoutWindowOrPhoneFilter(t *testing.T) {
	query, args := leadsQuery("acme", nil, true)
	if strings.Contains(query, "phone IS NOT NULL") {
		t.Fatal("phoneless leads were requested")
	}
	if strings.Contains(query, "created_at >=") || len(args) != 1 {
		t.Fatalf("nil predicates must not bound the query: %q %v", query, args)
	}
	if !strings.Contains(query, "client_name = $1") {
		t.Fatal("tenant predicate is mandatory")
	}
}

func TestLockLeadQueryLocksTheRow(t *testing.T) {
	normalized := strings.Join(strings.Fields(lockLeadQuery), " ")
	if !strings.HasSuffix(normalized, "WHERE id = $1 FOR UPDATE") {
		t.Fatalf("expected a row lock, got %q", normalized)
	}
}

func TestCheckLockedRejectsMovedLead(t *testing.T) {
	acme := "acme"
	globex := "globex"
	contacted := records.StatusContacted
	scheduled := records.StatusScheduled
	sold := 900.0
	closure := records.SaleClosure{Amount: 100}

	cases := []struct {
		name    string
		row     records.LeadRow
		applies func(records.LeadRecord) bool
		want    error
	}{
		{"scheduled lead closes", records.LeadRow{ClientName: &acme, Status: &scheduled}, closure.Applies, nil},
		{"moved back to contacted", records.LeadRow{ClientName: &acme, Status: &contacted}, closure.Applies, records.ErrStageChanged},
		{"already closed", records.LeadRow{ClientName: &acme, Status: &scheduled, SaleAmount: &sold}, closure.Applies, records.ErrStageChanged},
		{
			"status change from stale stage",
			records.LeadRow{ClientName: &acme, Status: &scheduled},
			records.StatusChange{From: contacted, Status: scheduled}.Applies,
			records.ErrStageChanged,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := checkLocked(tc.row, "acme", tc.applies); !errors.Is(err, tc.want) {
				t.Fatalf("checkLocked = %v, want %v", err, tc.want)
			}
		})
	}

	t.Run("foreign owner wins over state", func(t *testing.T) {
		row := records.LeadRow{ClientName: &globex, Status: &contacted}
		var mismatch *records.TenantMismatchError
		if err := checkLocked(row, "acme", closure.Applies); !errors.As(err, &mismatch) || mismatch.Found != "globex" {
			t.Fatalf("expected tenant mismatch, got %v", err)
		}
	})
}
