package analytics

import (
	"context"
	"errors"
	"time"

	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/telemetry"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrStaleResponse is returned when the identity switched clients while the
// response was being computed. The result is discarded, never applied.
var ErrStaleResponse = apperr.Conflict("active client changed while the request was in flight")

// RecordSource is the read side of the scoped fetcher.
type RecordSource interface {
	FetchAdSpend(ctx context.Context, tenant string, p *window.Predicates) ([]records.AdSpendRecord, error)
	FetchLeads(ctx context.Context, tenant string, p *window.Predicates, filter records.LeadFilter) ([]records.LeadRecord, error)
}

// ActiveTenants is the tenant resolver as seen by the dashboard.
type ActiveTenants interface {
	Active(ctx context.Context, id tenants.Identity) (string, error)
	IsActive(userID uuid.UUID, tenant string) bool
	Track(ctx context.Context, userID uuid.UUID, key tenants.Key) (context.Context, func())
}

// Snapshot is everything the dashboard shows for one key.
type Snapshot struct {
	Key         tenants.Key       `json:"key"`
	Metrics     ClientMetrics     `json:"metrics"`
	Campaigns   []CampaignMetrics `json:"campaigns"`
	Statuses    []StatusBreakdown `json:"statuses"`
	Quality     QualityReport     `json:"quality"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Inputs are the raw record sets a snapshot is reduced from.
type Inputs struct {
	AdSpend    []records.AdSpendRecord
	Leads      []records.LeadRecord
	AllLeads   []records.LeadRecord
	Predicates *window.Predicates
}

type Dashboard struct {
	source     RecordSource
	tenants    ActiveTenants
	normalizer *window.Normalizer
	cache      *QueryCache
	log        *logger.Logger
	metrics    *telemetry.Metrics
	now        func() time.Time
}

func NewDashboard(source RecordSource, active ActiveTenants, normalizer *window.Normalizer, cache *QueryCache, log *logger.Logger, metrics *telemetry.Metrics) *Dashboard {
	return &Dashboard{
		source:     source,
		tenants:    active,
		normalizer: normalizer,
		cache:      cache,
		log:        log,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Load computes the snapshot of the identity's active client for r.
func (d *Dashboard) Load(ctx context.Context, id tenants.Identity, r window.Range, opts window.Options) (Snapshot, error) {
	tenant, err := d.tenants.Active(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	ctx = logger.WithTenant(ctx, tenant)
	p, err := d.normalizer.Normalize(r, opts)
	if err != nil {
		return Snapshot{}, err
	}
	key := tenants.Key{Tenant: tenant, Window: p.Signature()}

	if tenant == "" {
		return d.build(key, Inputs{Predicates: p}), nil
	}

	if snap, ok := d.cache.Get(key); ok {
		d.metrics.CacheLookup(true)
		if !d.tenants.IsActive(id.UserID, tenant) {
			return Snapshot{}, d.stale(ctx, key)
		}
		return snap, nil
	}
	d.metrics.CacheLookup(false)

	generation := d.cache.Generation(tenant)
	in, err := d.Fetch(ctx, id.UserID, key, p)
	if err != nil {
		return Snapshot{}, err
	}

	snap := d.build(key, in)
	d.cache.Put(key, generation, snap)

	if !d.tenants.IsActive(id.UserID, tenant) {
		return Snapshot{}, d.stale(ctx, key)
	}
	return snap, nil
}

// Warm loads the snapshot of tenant for r into the cache so the user's first
// read after a switch is served from it. Nothing is fetched once tenant is no
// longer the user's active client, and a switch during the fetch discards it.
func (d *Dashboard) Warm(ctx context.Context, userID uuid.UUID, tenant string, r window.Range) error {
	if tenant == "" || !d.tenants.IsActive(userID, tenant) {
		return nil
	}
	ctx = logger.WithTenant(ctx, tenant)
	p, err := d.normalizer.Normalize(r, window.Options{})
	if err != nil {
		return err
	}
	key := tenants.Key{Tenant: tenant, Window: p.Signature()}
	if _, ok := d.cache.Get(key); ok {
		return nil
	}

	generation := d.cache.Generation(tenant)
	in, err := d.Fetch(ctx, userID, key, p)
	if errors.Is(err, ErrStaleResponse) {
		return nil
	}
	if err != nil {
		return err
	}
	d.cache.Put(key, generation, d.build(key, in))
	return nil
}

// Fetch issues the three reads for key concurrently under a tracked context.
// A switch away from key.Tenant cancels them and yields ErrStaleResponse.
func (d *Dashboard) Fetch(ctx context.Context, userID uuid.UUID, key tenants.Key, p *window.Predicates) (Inputs, error) {
	fetchCtx, done := d.tenants.Track(ctx, userID, key)
	defer done()

	in := Inputs{Predicates: p}
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		rows, err := d.source.FetchAdSpend(gctx, key.Tenant, p)
		in.AdSpend = rows
		return err
	})
	g.Go(func() error {
		rows, err := d.source.FetchLeads(gctx, key.Tenant, p, records.LeadFilter{})
		in.Leads = rows
		return err
	})
	g.Go(func() error {
		rows, err := d.source.FetchLeads(gctx, key.Tenant, p, records.LeadFilter{IncludePhoneless: true})
		in.AllLeads = rows
		return err
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() == nil && fetchCtx.Err() != nil && errors.Is(err, context.Canceled) {
			return Inputs{}, d.stale(ctx, key)
		}
		return Inputs{}, err
	}
	return in, nil
}

// build runs every reducer over in.
func (d *Dashboard) build(key tenants.Key, in Inputs) Snapshot {
	return Snapshot{
		Key:         key,
		Metrics:     Reduce(in.AdSpend, in.Leads),
		Campaigns:   ByCampaign(in.AdSpend, in.Leads, MatchByCampaignName),
		Statuses:    ByStatus(in.AllLeads),
		Quality:     DataQuality(in.AdSpend, in.AllLeads),
		GeneratedAt: d.now().UTC(),
	}
}

func (d *Dashboard) stale(ctx context.Context, key tenants.Key) error {
	d.metrics.StaleResponse()
	d.log.WithContext(ctx).Info("discarding stale dashboard response", "client", key.Tenant, "window", key.Window)
	return ErrStaleResponse
}
