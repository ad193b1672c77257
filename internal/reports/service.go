// Package reports exports the active client's campaign breakdown as CSV to
// object storage and hands back a short-lived download link.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"marketing_dashboard_backend/internal/adapters/storage"
	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/reports/repository"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/logger"
)

const (
	csvContentType   = "text/csv"
	campaignFileName = "campaigns.csv"
	historyLimit     = 20
)

// SnapshotLoader is the dashboard as used by exports.
type SnapshotLoader interface {
	Load(ctx context.Context, id tenants.Identity, r window.Range, opts window.Options) (analytics.Snapshot, error)
}

// ExportStore persists export history.
type ExportStore interface {
	Record(ctx context.Context, e repository.Export) (repository.Export, error)
	List(ctx context.Context, client string, limit int) ([]repository.Export, error)
}

// ActiveClient resolves the caller's active client for listing history.
type ActiveClient interface {
	Active(ctx context.Context, id tenants.Identity) (string, error)
}

type Download struct {
	Client    string    `json:"client"`
	Window    string    `json:"window"`
	Rows      int       `json:"rows"`
	FileKey   string    `json:"fileKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	dashboard SnapshotLoader
	active    ActiveClient
	store     storage.StorageService
	exports   ExportStore
	bucket    string
	log       *logger.Logger
}

func NewService(dashboard SnapshotLoader, active ActiveClient, store storage.StorageService, exports ExportStore, bucket string, log *logger.Logger) *Service {
	return &Service{
		dashboard: dashboard,
		active:    active,
		store:     store,
		exports:   exports,
		bucket:    bucket,
		log:       log,
	}
}

// ExportCampaigns writes the campaign CSV of the caller's active client for
// r. The snapshot goes through the same stale-response checks as the
// dashboard, so a switch mid-export fails instead of exporting the wrong
// client.
func (s *Service) ExportCampaigns(ctx context.Context, id tenants.Identity, r window.Range, opts window.Options) (Download, error) {
	snap, err := s.dashboard.Load(ctx, id, r, opts)
	if err != nil {
		return Download{}, err
	}
	if snap.Key.Tenant == "" {
		return Download{}, apperr.Validation("select a client before exporting")
	}

	body, rows, err := CampaignCSV(snap)
	if err != nil {
		return Download{}, fmt.Errorf("render campaign csv: %w", err)
	}

	folder := path.Join(storage.SafeSegment(snap.Key.Tenant), snap.Key.Window)
	key, err := s.store.UploadFile(ctx, s.bucket, folder, campaignFileName, csvContentType, bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return Download{}, apperr.Unavailable("report storage is unavailable", err)
	}

	record, err := s.exports.Record(ctx, repository.Export{
		UserID:     id.UserID,
		ClientName: snap.Key.Tenant,
		WindowSig:  snap.Key.Window,
		ObjectKey:  key,
		RowCount:   rows,
	})
	if err != nil {
		return Download{}, err
	}

	s.log.WithContext(ctx).Info("campaign report exported", "client", snap.Key.Tenant, "window", snap.Key.Window, "rows", rows)
	return s.download(ctx, record)
}

// History lists recent exports of the active client with fresh links.
func (s *Service) History(ctx context.Context, id tenants.Identity) ([]Download, error) {
	tenant, err := s.active.Active(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithTenant(ctx, tenant)
	if tenant == "" {
		return []Download{}, nil
	}

	records, err := s.exports.List(ctx, tenant, historyLimit)
	if err != nil {
		return nil, err
	}

	out := make([]Download, 0, len(records))
	for _, record := range records {
		// Rows come from a client-scoped query; this guards the link anyway.
		if record.ClientName != tenant {
			continue
		}
		d, err := s.download(ctx, record)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Service) download(ctx context.Context, record repository.Export) (Download, error) {
	link, err := s.store.GenerateDownloadURL(ctx, s.bucket, record.ObjectKey)
	if err != nil {
		return Download{}, apperr.Unavailable("report storage is unavailable", err)
	}
	return Download{
		Client:    record.ClientName,
		Window:    record.WindowSig,
		Rows:      record.RowCount,
		FileKey:   record.ObjectKey,
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt,
		CreatedAt: record.CreatedAt,
	}, nil
}
