package scheduler

import (
	"context"
	"fmt"
	"time"

	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/events"
	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/internal/window"
	"marketing_dashboard_backend/platform/logger"
	"marketing_dashboard_backend/platform/telemetry"
)

// RecordSource is the scoped fetcher as used by audits.
type RecordSource interface {
	FetchAdSpend(ctx context.Context, tenant string, p *window.Predicates) ([]records.AdSpendRecord, error)
	FetchLeads(ctx context.Context, tenant string, p *window.Predicates, filter records.LeadFilter) ([]records.LeadRecord, error)
}

// QualityAuditor scores one client's trailing window and raises
// QualityDegraded when the score is under the threshold.
type QualityAuditor struct {
	source     RecordSource
	normalizer *window.Normalizer
	months     int
	threshold  int
	bus        events.Bus
	metrics    *telemetry.Metrics
	log        *logger.Logger
	now        func() time.Time
}

func NewQualityAuditor(source RecordSource, normalizer *window.Normalizer, months, threshold int, bus events.Bus, metrics *telemetry.Metrics, log *logger.Logger) *QualityAuditor {
	return &QualityAuditor{
		source:     source,
		normalizer: normalizer,
		months:     months,
		threshold:  threshold,
		bus:        bus,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

func (a *QualityAuditor) Audit(ctx context.Context, client string) (analytics.QualityReport, error) {
	p, err := a.normalizer.Normalize(a.normalizer.Trailing(a.now(), a.months), window.Options{})
	if err != nil {
		return analytics.QualityReport{}, err
	}

	adSpend, err := a.source.FetchAdSpend(ctx, client, p)
	if err != nil {
		return analytics.QualityReport{}, fmt.Errorf("audit %s ad spend: %w", client, err)
	}
	leads, err := a.source.FetchLeads(ctx, client, p, records.LeadFilter{IncludePhoneless: true})
	if err != nil {
		return analytics.QualityReport{}, fmt.Errorf("audit %s leads: %w", client, err)
	}

	report := analytics.DataQuality(adSpend, leads)
	a.metrics.QualityScore(client, report.Score)
	a.log.Info("quality audit finished", "client", client, "window", p.Signature(), "score", report.Score, "issues", len(report.Issues))

	if report.Score >= a.threshold || a.bus == nil {
		return report, nil
	}

	issues := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		issues = append(issues, issue.Message)
	}
	a.bus.Publish(ctx, events.QualityDegraded{
		BaseEvent:  events.NewBaseEvent(),
		ClientName: client,
		Score:      report.Score,
		Threshold:  a.threshold,
		Issues:     issues,
	})
	return report, nil
}
