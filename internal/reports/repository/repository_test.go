package repository

import (
	"strings"
	"testing"
)

func TestListExportsIsClientScoped(t *testing.T) {
	normalized := strings.Join(strings.Fields(listExportsSQL), " ")
	if !strings.Contains(normalized, "FROM report_exports WHERE client_name = $1") {
		t.Fatalf("expected client scoped query, got %q", normalized)
	}
}
