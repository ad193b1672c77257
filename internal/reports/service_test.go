package reports

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"marketing_dashboard_backend/internal/adapters/storage"
	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/reports/repository"
	"marketing_dashboard_backend/internal/tenants"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/apperr"
	"marketing_dashboard_backend/platform/logger"

	"github.com/google/uuid"
)

type stubDashboard struct {
	snap analytics.Snapshot
	err  error
}

func (d stubDashboard) Load(context.Context, tenants.Identity, window.Range, window.Options) (analytics.Snapshot, error) {
	return d.snap, d.err
}

type fixedActive string

func (a fixedActive) Active(context.Context, tenants.Identity) (string, error) { return string(a), nil }

type memoryStorage struct {
	objects map[string][]byte
	failPut bool
}

func (m *memoryStorage) UploadFile(_ context.Context, bucket, folder, fileName, _ string, r io.Reader, _ int64) (string, error) {
	if m.failPut {
		return "", errors.New("connection refused")
	}
	body, _ := io.ReadAll(r)
	key := storage.ObjectKey(folder, fileName, "test")
	m.objects[bucket+"/"+key] = body
	return key, nil
}

func (m *memoryStorage) GenerateDownloadURL(_ context.Context, bucket, key string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://minio.local/" + bucket + "/" + key, FileKey: key, ExpiresAt: time.Now().Add(storage.PresignedURLTTL)}, nil
}

func (m *memoryStorage) EnsureBucketExists(context.Context, string) error { return nil }

type memoryExports struct {
	rows []repository.Export
}

func (m *memoryExports) Record(_ context.Context, e repository.Export) (repository.Export, error) {
	e.CreatedAt = time.Now()
	m.rows = append(m.rows, e)
	return e, nil
}

func (m *memoryExports) List(_ context.Context, client string, _ int) ([]repository.Export, error) {
	out := []repository.Export{}
	for _, e := range m.rows {
		if e.ClientName == client {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestExportCampaignsUploadsAndRecords(t *testing.T) {
	snap := analytics.Snapshot{
		Key:       tenants.Key{Tenant: "Hospital do Cabelo", Window: "2024-01-01_2024-01-31"},
		Campaigns: []analytics.CampaignMetrics{{CampaignName: "Implante"}},
	}
	store := &memoryStorage{objects: map[string][]byte{}}
	exports := &memoryExports{}
	svc := NewService(stubDashboard{snap: snap}, fixedActive("Hospital do Cabelo"), store, exports, "reports", logger.New("test"))

	id := tenants.Identity{UserID: uuid.New(), Role: "member"}
	download, err := svc.ExportCampaigns(context.Background(), id, window.Range{}, window.Options{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	wantKey := "hospital-do-cabelo/2024-01-01_2024-01-31/campaigns_test.csv"
	if download.FileKey != wantKey || download.Rows != 1 || download.Client != "Hospital do Cabelo" {
		t.Fatalf("unexpected download %+v", download)
	}
	if _, ok := store.objects["reports/"+wantKey]; !ok {
		t.Fatal("csv was not uploaded")
	}
	if len(exports.rows) != 1 || exports.rows[0].UserID != id.UserID {
		t.Fatalf("export was not recorded: %+v", exports.rows)
	}

	history, err := svc.History(context.Background(), id)
	if err != nil || len(history) != 1 {
		t.Fatalf("unexpected history %+v, %v", history, err)
	}
}

func TestExportCampaignsRequiresActiveClient(t *testing.T) {
	store := &memoryStorage{objects: map[string][]byte{}}
	svc := NewService(stubDashboard{}, fixedActive(""), store, &memoryExports{}, "reports", logger.New("test"))

	_, err := svc.ExportCampaigns(context.Background(), tenants.Identity{UserID: uuid.New()}, window.Range{}, window.Options{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatal("nothing must be uploaded without a client")
	}
}

func TestExportCampaignsPropagatesStaleResponse(t *testing.T) {
	exports := &memoryExports{}
	svc := NewService(stubDashboard{err: analytics.ErrStaleResponse}, fixedActive("acme"), &memoryStorage{objects: map[string][]byte{}}, exports, "reports", logger.New("test"))

	_, err := svc.ExportCampaigns(context.Background(), tenants.Identity{UserID: uuid.New()}, window.Range{}, window.Options{})
	if !errors.Is(err, analytics.ErrStaleResponse) {
		t.Fatalf("expected stale response, got %v", err)
	}
	if len(exports.rows) != 0 {
		t.Fatal("stale exports must not be recorded")
	}
}

func TestExportCampaignsStorageFailureIsUnavailable(t *testing.T) {
	snap := analytics.Snapshot{Key: tenants.Key{Tenant: "acme", Window: window.SignatureAll}}
	svc := NewService(stubDashboard{snap: snap}, fixedActive("acme"), &memoryStorage{failPut: true}, &memoryExports{}, "reports", logger.New("test"))

	_, err := svc.ExportCampaigns(context.Background(), tenants.Identity{UserID: uuid.New()}, window.Range{}, window.Options{})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
