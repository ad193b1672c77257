package analytics

import (
	"context"

	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/logger"
)

// Contact is a lead row of the contacts listing.
type Contact struct {
	records.LeadRecord
	HasPhone bool `json:"hasPhone"`
}

type ContactList struct {
	Key          tenants.Key `json:"key"`
	Contacts     []Contact   `json:"contacts"`
	WithoutPhone int         `json:"withoutPhone"`
}

// Contacts lists every lead of the active client, phoneless leads included
// and flagged.
func (d *Dashboard) Contacts(ctx context.Context, id tenants.Identity, r window.Range, opts window.Options) (ContactList, error) {
	tenant, err := d.tenants.Active(ctx, id)
	if err != nil {
		return ContactList{}, err
	}
	ctx = logger.WithTenant(ctx, tenant)
	p, err := d.normalizer.Normalize(r, opts)
	if err != nil {
		return ContactList{}, err
	}
	key := tenants.Key{Tenant: tenant, Window: p.Signature()}
	list := ContactList{Key: key, Contacts: []Contact{}}
	if tenant == "" {
		return list, nil
	}

	fetchCtx, done := d.tenants.Track(ctx, id.UserID, key)
	defer done()
	leads, err := d.source.FetchLeads(fetchCtx, tenant, p, records.LeadFilter{IncludePhoneless: true})
	if err != nil {
		if ctx.Err() == nil && fetchCtx.Err() != nil {
			return ContactList{}, d.stale(ctx, key)
		}
		return ContactList{}, err
	}
	if !d.tenants.IsActive(id.UserID, tenant) {
		return ContactList{}, d.stale(ctx, key)
	}

	for _, lead := range leads {
		c := Contact{LeadRecord: lead, HasPhone: HasUsablePhone(lead)}
		if !c.HasPhone {
			list.WithoutPhone++
		}
		list.Contacts = append(list.Contacts, c)
	}
	return list, nil
}
