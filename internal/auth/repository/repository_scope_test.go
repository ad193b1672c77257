package repository

import (
	"strings"
	"testing"
)

func TestUserColumnsMatchScanOrder(t *testing.T) {
	want := "id, email, password_hash, role, created_at, updated_at"
	if userColumns != want {
		t.Fatalf("scanUser reads %q, columns are %q", want, userColumns)
	}
}

func TestListUsersQueryDoesNotExposeTokens(t *testing.T) {
	query := strings.ToLower(listUsersQuery)

	if strings.Contains(query, "refresh_tokens") {
		t.Fatal("listing users must not join refresh tokens")
	}
	if !strings.Contains(query, "order by email") {
		t.Fatal("users are listed by email")
	}
}
