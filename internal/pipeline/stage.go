// Package pipeline derives the board stage of each lead and governs moves
// between stages. Stages are never stored; they follow from the lead's
// phone, sale amount and status.
package pipeline

import (
	"fmt"
	"strings"

	"marketing_dashboard_backend/internal/analytics"
	"marketing_dashboard_backend/internal/records"
	"marketing_dashboard_backend/platform/apperr"
)

type Stage string

const (
	StageContacted Stage = records.StatusContacted
	StageScheduled Stage = records.StatusScheduled
	StageClosed    Stage = records.StatusClosed
)

var knownStages = map[Stage]struct{}{
	StageContacted: {},
	StageScheduled: {},
	StageClosed:    {},
}

// ParseStage accepts a stage name case-insensitively.
func ParseStage(value string) (Stage, error) {
	for stage := range knownStages {
		if strings.EqualFold(string(stage), strings.TrimSpace(value)) {
			return stage, nil
		}
	}
	return "", apperr.Validation(fmt.Sprintf("unknown pipeline stage %q", value))
}

// Derive places a lead on the board. Leads without a usable phone are not
// on the board at all.
func Derive(lead records.LeadRecord) (Stage, bool) {
	if !analytics.HasUsablePhone(lead) {
		return "", false
	}
	if lead.HasSale() {
		return StageClosed, true
	}
	if lead.Status == records.StatusScheduled {
		return StageScheduled, true
	}
	return StageContacted, true
}

// ValidateTransition rejects moves that skip scheduling, leave Closed, or go
// nowhere.
func ValidateTransition(from, to Stage) error {
	if _, ok := knownStages[to]; !ok {
		return apperr.Validation(fmt.Sprintf("unknown pipeline stage %q", to))
	}
	switch {
	case from == to:
		return apperr.Validation(fmt.Sprintf("lead is already %s", from))
	case from == StageClosed:
		return apperr.Validation("closed leads cannot be moved; the recorded sale would have to be reverted first")
	case from == StageContacted && to == StageClosed:
		return apperr.Validation("a lead must be scheduled before it can be closed")
	}
	return nil
}
