package window

import (
	"testing"
	"time"

	"marketing_dashboard_backend/platform/apperr"
)

func day(t *testing.T, loc *time.Location, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func TestLeadsWindowIsHalfOpenOnNextDay(t *testing.T) {
	n := NewNormalizer(time.UTC)
	p, err := n.Normalize(Range{From: day(t, time.UTC, "2024-03-01"), To: day(t, time.UTC, "2024-03-31")}, Options{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	lastSecond := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	nextMidnight := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	firstInstant := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if !containsTime(p, lastSecond) {
		t.Error("a lead at 23:59:59 on the last day must be included")
	}
	if containsTime(p, nextMidnight) {
		t.Error("a lead at 00:00 on the day after must be excluded")
	}
	if !containsTime(p, firstInstant) {
		t.Error("a lead at 00:00 on the first day must be included")
	}
}

func TestAdSpendWindowIsInclusive(t *testing.T) {
	n := NewNormalizer(time.UTC)
	p, err := n.Normalize(Range{From: day(t, time.UTC, "2024-03-01"), To: day(t, time.UTC, "2024-03-31")}, Options{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	cases := map[string]bool{
		"2024-02-29": false,
		"2024-03-01": true,
		"2024-03-31": true,
		"2024-04-01": false,
	}
	for d, want := range cases {
		if got := containsDate(p, d); got != want {
			t.Errorf("containsDate(%s) = %v, want %v", d, got, want)
		}
	}
}

func TestNormalizeUsesReportingLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	n := NewNormalizer(loc)
	p, err := n.Normalize(Range{From: day(t, loc, "2024-03-01"), To: day(t, loc, "2024-03-01")}, Options{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	// 01:30 UTC on the 2nd is still the 1st in BRT.
	if !containsTime(p, time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC)) {
		t.Error("expected late local evening to fall inside the day")
	}
	if containsTime(p, time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)) {
		t.Error("expected local midnight of the next day to be excluded")
	}
}

func TestSkipFilterReturnsNil(t *testing.T) {
	p, err := NewNormalizer(nil).Normalize(Range{}, Options{SkipFilter: true})
	if err != nil || p != nil {
		t.Fatalf("expected nil predicates, got %v, %v", p, err)
	}
	if p.Signature() != SignatureAll {
		t.Fatalf("unexpected signature %q", p.Signature())
	}
	if !containsTime(p, time.Now()) || !containsDate(p, "1999-01-01") {
		t.Fatal("nil predicates must not bound anything")
	}
}

func TestNormalizeRejectsInvertedRange(t *testing.T) {
	n := NewNormalizer(time.UTC)
	_, err := n.Normalize(Range{From: day(t, time.UTC, "2024-04-02"), To: day(t, time.UTC, "2024-04-01")}, Options{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = n.Normalize(Range{To: day(t, time.UTC, "2024-04-01")}, Options{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing bound, got %v", err)
	}
}

func TestSignatureAndTrailing(t *testing.T) {
	n := NewNormalizer(time.UTC)
	r := n.Trailing(time.Date(2024, 7, 15, 18, 0, 0, 0, time.UTC), 6)
	if r.From.Format(dateLayout) != "2024-01-15" || r.To.Format(dateLayout) != "2024-07-15" {
		t.Fatalf("unexpected trailing range %v - %v", r.From, r.To)
	}

	p, err := n.Normalize(r, Options{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := p.Signature(); got != "2024-01-15_2024-07-15" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestParseRejectsMalformedDates(t *testing.T) {
	n := NewNormalizer(time.UTC)
	if _, err := n.Parse("2024/01/01", "2024-02-01"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	r, err := n.Parse("2024-01-01", "2024-02-01")
	if err != nil || r.From.Day() != 1 || r.To.Month() != time.February {
		t.Fatalf("unexpected parse result %v %v", r, err)
	}
}

// containsDate applies the ad_spend bounds the way the query does:
// date >= From AND date <= To.
func containsDate(p *Predicates, day string) bool {
	if p == nil {
		return true
	}
	return day >= p.AdSpend.From && day <= p.AdSpend.To
}

// containsTime applies the leads bounds the way the query does:
// created_at >= From AND created_at < Before.
func containsTime(p *Predicates, t time.Time) bool {
	if p == nil {
		return true
	}
	return !t.Before(p.Leads.From) && t.Before(p.Leads.Before)
}
