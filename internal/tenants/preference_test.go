package tenants

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestPreferences(t *testing.T) (*RedisPreferences, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPreferences(client), mr
}

func TestRedisPreferencesRoundTrip(t *testing.T) {
	prefs, mr := newTestPreferences(t)
	ctx := context.Background()
	user := uuid.New()

	got, err := prefs.Remembered(ctx, user)
	if err != nil || got != "" {
		t.Fatalf("expected empty value for unknown user, got %q, %v", got, err)
	}

	if err := prefs.Remember(ctx, user, "acme"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if stored, _ := mr.Get("dashboard:last_client:" + user.String()); stored != "acme" {
		t.Fatalf("unexpected stored value %q", stored)
	}

	got, err = prefs.Remembered(ctx, user)
	if err != nil || got != "acme" {
		t.Fatalf("expected acme, got %q, %v", got, err)
	}

	if err := prefs.Forget(ctx, user); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if mr.Exists("dashboard:last_client:" + user.String()) {
		t.Fatal("expected key to be deleted")
	}
}
