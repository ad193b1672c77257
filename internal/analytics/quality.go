package analytics

import (
	"fmt"

	"marketing_dashboard_backend/internal/records"
)

// Fixed score deductions, applied once per issue.
const (
	deductMissingSpend   = 20
	deductMissingReach   = 10
	deductLeadsNoPhone   = 20
	deductLeadsNoName    = 10
	deductLowMatchRate   = 20
	minCampaignMatchRate = 0.5
	qualityScoreMax      = 100
)

type QualityIssue struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Affected  int    `json:"affected"`
	Deduction int    `json:"deduction"`
}

// QualityReport is advisory; it never blocks metric computation.
type QualityReport struct {
	Score  int            `json:"score"`
	Issues []QualityIssue `json:"issues"`
}

// DataQuality scores the raw inputs. leads should be the unfiltered set so
// phoneless leads are visible.
func DataQuality(adSpend []records.AdSpendRecord, leads []records.LeadRecord) QualityReport {
	report := QualityReport{Score: qualityScoreMax, Issues: []QualityIssue{}}

	missingSpend, missingReach := 0, 0
	for _, row := range adSpend {
		if row.MissingSpend {
			missingSpend++
		}
		if row.MissingReach {
			missingReach++
		}
	}

	noPhone, noName := 0, 0
	for _, lead := range leads {
		if !HasUsablePhone(lead) {
			noPhone++
		}
		if lead.Name == "" {
			noName++
		}
	}

	report.add(missingSpend, "missing_spend", "ad rows without spend", deductMissingSpend)
	report.add(missingReach, "missing_reach", "ad rows without reach", deductMissingReach)
	report.add(noPhone, "leads_without_phone", "leads without a usable phone", deductLeadsNoPhone)
	report.add(noName, "leads_without_name", "leads without a name", deductLeadsNoName)

	if len(adSpend) > 0 {
		if rate := MatchRate(adSpend, leads, MatchByCampaignName); rate < minCampaignMatchRate {
			report.Issues = append(report.Issues, QualityIssue{
				Code:      "low_campaign_match_rate",
				Message:   fmt.Sprintf("only %.0f%% of leads match an ad campaign", rate*100),
				Deduction: deductLowMatchRate,
			})
			report.Score -= deductLowMatchRate
		}
	}

	if report.Score < 0 {
		report.Score = 0
	}
	return report
}

func (r *QualityReport) add(affected int, code, label string, deduction int) {
	if affected == 0 {
		return
	}
	r.Issues = append(r.Issues, QualityIssue{
		Code:      code,
		Message:   fmt.Sprintf("%d %s", affected, label),
		Affected:  affected,
		Deduction: deduction,
	})
	r.Score -= deduction
}
