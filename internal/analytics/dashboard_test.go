package analytics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/logger"

	"github.com/google/uuid"
)

type sessionTenants struct {
	sessions *tenants.Sessions
}

func (s sessionTenants) Active(_ context.Context, id tenants.Identity) (string, error) {
	tenant, _ := s.sessions.Active(id.UserID)
	return tenant, nil
}

func (s sessionTenants) IsActive(userID uuid.UUID, tenant string) bool {
	active, committed := s.sessions.Active(userID)
	return committed && active == tenant
}

func (s sessionTenants) Track(ctx context.Context, userID uuid.UUID, key tenants.Key) (context.Context, func()) {
	return s.sessions.Track(ctx, userID, key)
}

type stubSource struct {
	calls       atomic.Int32
	started     chan struct{}
	release     chan struct{}
	honorCancel bool
	ads         []records.AdSpendRecord
	leads       []records.LeadRecord
}

func (s *stubSource) wait(ctx context.Context) error {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release == nil {
		return nil
	}
	if s.honorCancel {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.release:
			return nil
		}
	}
	<-s.release
	return nil
}

func (s *stubSource) FetchAdSpend(ctx context.Context, _ string, _ *window.Predicates) ([]records.AdSpendRecord, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.ads, nil
}

func (s *stubSource) FetchLeads(ctx context.Context, _ string, _ *window.Predicates, filter records.LeadFilter) ([]records.LeadRecord, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if filter.IncludePhoneless {
		return s.leads, nil
	}
	out := make([]records.LeadRecord, 0, len(s.leads))
	for _, l := range s.leads {
		if l.Phone != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

func newTestDashboard(source RecordSource, sessions *tenants.Sessions) (*Dashboard, *QueryCache) {
	cache := NewQueryCache(time.Minute)
	d := NewDashboard(source, sessionTenants{sessions: sessions}, window.NewNormalizer(time.UTC), cache, logger.New("test"), nil)
	return d, cache
}

func allTime() (window.Range, window.Options) {
	return window.Range{}, window.Options{SkipFilter: true}
}

func TestLoadReducesAndCaches(t *testing.T) {
	sessions := tenants.NewSessions()
	user := tenants.Identity{UserID: uuid.New(), Role: tenants.RoleAdmin}
	sessions.Commit(user.UserID, "acme")

	source := &stubSource{
		ads:   []records.AdSpendRecord{{ClientName: "acme", CampaignName: "Brand", Spend: 100, Reach: 10}},
		leads: []records.LeadRecord{{ClientName: "acme", Phone: validPhone, Name: "Ana", CampaignName: "Brand", SaleAmount: sale(400)}, {ClientName: "acme", Name: "Bia"}},
	}
	d, _ := newTestDashboard(source, sessions)
	r, opts := allTime()

	snap, err := d.Load(context.Background(), user, r, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Key != (tenants.Key{Tenant: "acme", Window: window.SignatureAll}) {
		t.Fatalf("unexpected key %+v", snap.Key)
	}
	if snap.Metrics.TotalLeadsWithPhone != 1 || snap.Metrics.ROI != 300 {
		t.Fatalf("unexpected metrics %+v", snap.Metrics)
	}
	if snap.Quality.Score != 80 {
		t.Fatalf("phoneless lead must reach the quality report, got score %d", snap.Quality.Score)
	}
	if source.calls.Load() != 3 {
		t.Fatalf("expected three concurrent reads, got %d", source.calls.Load())
	}

	if _, err := d.Load(context.Background(), user, r, opts); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if source.calls.Load() != 3 {
		t.Fatal("second load should be served from cache")
	}
}

func TestLoadWithoutActiveClientReturnsNoData(t *testing.T) {
	sessions := tenants.NewSessions()
	user := tenants.Identity{UserID: uuid.New(), Role: tenants.RoleMember}
	source := &stubSource{}
	d, _ := newTestDashboard(source, sessions)
	r, opts := allTime()

	snap, err := d.Load(context.Background(), user, r, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Key.Tenant != "" || snap.Metrics != (ClientMetrics{}) || source.calls.Load() != 0 {
		t.Fatalf("expected empty snapshot without store reads, got %+v (calls %d)", snap, source.calls.Load())
	}
}

func switchTenant(sessions *tenants.Sessions, cache *QueryCache, userID uuid.UUID, to string) {
	previous := sessions.BeginSwitch(userID)
	cache.Invalidate(previous)
	sessions.Commit(userID, to)
}

func TestLateResponseAfterSwitchIsDiscarded(t *testing.T) {
	sessions := tenants.NewSessions()
	user := tenants.Identity{UserID: uuid.New(), Role: tenants.RoleAdmin}
	sessions.Commit(user.UserID, "acme")

	source := &stubSource{
		started: make(chan struct{}, 3),
		release: make(chan struct{}),
		ads:     []records.AdSpendRecord{{ClientName: "acme", Spend: 999}},
	}
	d, cache := newTestDashboard(source, sessions)
	r, opts := allTime()

	var wg sync.WaitGroup
	var loadErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, loadErr = d.Load(context.Background(), user, r, opts)
	}()

	for i := 0; i < 3; i++ {
		<-source.started
	}
	switchTenant(sessions, cache, user.UserID, "beta")
	close(source.release)
	wg.Wait()

	if !errors.Is(loadErr, ErrStaleResponse) {
		t.Fatalf("expected stale response, got %v", loadErr)
	}
	if _, ok := cache.Get(tenants.Key{Tenant: "acme", Window: window.SignatureAll}); ok {
		t.Fatal("a late response must not repopulate the cache")
	}
	if active, _ := sessions.Active(user.UserID); active != "beta" {
		t.Fatalf("expected beta to remain active, got %q", active)
	}
}

func TestSwitchCancelsInFlightFetch(t *testing.T) {
	sessions := tenants.NewSessions()
	user := tenants.Identity{UserID: uuid.New(), Role: tenants.RoleAdmin}
	sessions.Commit(user.UserID, "acme")

	source := &stubSource{
		started:     make(chan struct{}, 3),
		release:     make(chan struct{}),
		honorCancel: true,
	}
	defer close(source.release)
	d, cache := newTestDashboard(source, sessions)
	r, opts := allTime()

	done := make(chan error, 1)
	go func() {
		_, err := d.Load(context.Background(), user, r, opts)
		done <- err
	}()

	for i := 0; i < 3; i++ {
		<-source.started
	}
	switchTenant(sessions, cache, user.UserID, "beta")

	select {
	case err := <-done:
		if !errors.Is(err, ErrStaleResponse) {
			t.Fatalf("expected stale response, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not cancelled by the switch")
	}
	if sessions.InFlight(user.UserID) != 0 {
		t.Fatal("expected tracked fetches to be released")
	}
}

func TestWarmFillsCacheForActiveClient(t *testing.T) {
	sessions := tenants.NewSessions()
	userID := uuid.New()
	sessions.Commit(userID, "acme")
	source := &stubSource{ads: []records.AdSpendRecord{{ClientName: "acme", Spend: 100}}}
	d, _ := newTestDashboard(source, sessions)
	r := d.normalizer.Trailing(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), 6)

	if err := d.Warm(context.Background(), userID, "acme", r); err != nil {
		t.Fatalf("warm: %v", err)
	}
	warmed := source.calls.Load()
	if warmed == 0 {
		t.Fatal("expected warm to read the store")
	}

	snap, err := d.Load(context.Background(), tenants.Identity{UserID: userID}, r, window.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if source.calls.Load() != warmed {
		t.Fatal("expected the first load after a warm to be served from cache")
	}
	if snap.Metrics.TotalInvestment != 100 {
		t.Fatalf("unexpected snapshot %+v", snap.Metrics)
	}
}

func TestWarmSkipsInactiveClient(t *testing.T) {
	sessions := tenants.NewSessions()
	userID := uuid.New()
	sessions.Commit(userID, "globex")
	source := &stubSource{}
	d, cache := newTestDashboard(source, sessions)
	r := d.normalizer.Trailing(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), 6)

	if err := d.Warm(context.Background(), userID, "acme", r); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if source.calls.Load() != 0 {
		t.Fatal("a client the user already left must not be fetched")
	}
	if len(cache.entries) != 0 {
		t.Fatal("cache must be untouched")
	}
}
