package pipeline

import (
	"testing"

	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/platform/apperr"
)

const validPhone = "+5511987654321"

func amount(v float64) *float64 { return &v }

func TestDerive(t *testing.T) {
	cases := []struct {
		name   string
		lead   records.LeadRecord
		want   Stage
		onList bool
	}{
		{"no phone", records.LeadRecord{Status: records.StatusScheduled}, "", false},
		{"short phone", records.LeadRecord{Phone: "1234"}, "", false},
		{"sale wins over status", records.LeadRecord{Phone: validPhone, Status: records.StatusScheduled, SaleAmount: amount(10)}, StageClosed, true},
		{"scheduled", records.LeadRecord{Phone: validPhone, Status: records.StatusScheduled}, StageScheduled, true},
		{"unknown status is contacted", records.LeadRecord{Phone: validPhone, Status: "Ghosted"}, StageContacted, true},
		{"closed status without sale is contacted", records.LeadRecord{Phone: validPhone, Status: records.StatusClosed}, StageContacted, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Derive(tc.lead)
			if ok != tc.onList || got != tc.want {
				t.Fatalf("Derive() = %q, %v; want %q, %v", got, ok, tc.want, tc.onList)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		from, to Stage
		allowed  bool
	}{
		{StageContacted, StageScheduled, true},
		{StageScheduled, StageContacted, true},
		{StageScheduled, StageClosed, true},
		{StageContacted, StageClosed, false},
		{StageClosed, StageScheduled, false},
		{StageClosed, StageContacted, false},
		{StageContacted, StageContacted, false},
		{StageScheduled, "Lost", false},
	}

	for _, tc := range cases {
		err := ValidateTransition(tc.from, tc.to)
		if tc.allowed && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.allowed && !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("%s -> %s: expected validation error, got %v", tc.from, tc.to, err)
		}
	}
}

func TestParseStage(t *testing.T) {
	if got, err := ParseStage(" scheduled "); err != nil || got != StageScheduled {
		t.Fatalf("ParseStage() = %q, %v", got, err)
	}
	if _, err := ParseStage("Lost"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
