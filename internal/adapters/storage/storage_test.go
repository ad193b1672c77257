package storage

import "testing"

func TestValidateContentType(t *testing.T) {
	if err := ValidateContentType("text/csv; charset=utf-8"); err != nil {
		t.Fatalf("csv must be allowed: %v", err)
	}
	if err := ValidateContentType("application/pdf"); err == nil {
		t.Fatal("pdf is not a report format")
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 10); err == nil {
		t.Fatal("empty files are rejected")
	}
	if err := ValidateFileSize(11, 10); err == nil {
		t.Fatal("oversized files are rejected")
	}
	if err := ValidateFileSize(11, 0); err != nil {
		t.Fatalf("zero max means unlimited: %v", err)
	}
}

func TestSafeSegment(t *testing.T) {
	cases := map[string]string{
		"Hospital do Cabelo": "hospital-do-cabelo",
		"  ACME / Ltda. ":    "acme-ltda",
		"Clínica São José":   "cl-nica-s-o-jos",
		"***":                "client",
	}
	for in, want := range cases {
		if got := SafeSegment(in); got != want {
			t.Errorf("SafeSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	got := ObjectKey("acme/2024-01-01_2024-01-31", "campaigns.csv", "abcd1234")
	if got != "acme/2024-01-01_2024-01-31/campaigns_abcd1234.csv" {
		t.Fatalf("unexpected key %q", got)
	}
}
