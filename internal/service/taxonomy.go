package service

import (
	"strings"

	"github.com/caremind/medtrack-agent/pkg/model"
)

// statusSynonyms maps every known backend status string to its canonical
// DoseStatus. The groups are closed; extend only by adding synonyms to an
// existing group, never by adding a sixth status without a product decision.
var statusSynonyms = map[string]model.DoseStatus{
	"taken":      model.DoseStatusTaken,
	"done":       model.DoseStatusTaken,
	"completed":  model.DoseStatusTaken,
	"success":    model.DoseStatusTaken,
	"checkin":    model.DoseStatusTaken,
	"checked_in": model.DoseStatusTaken,

	"skipped": model.DoseStatusSkipped,
	"skip":    model.DoseStatusSkipped,

	"missed":    model.DoseStatusMissed,
	"late":      model.DoseStatusMissed,
	"overdue":   model.DoseStatusMissed,
	"expired":   model.DoseStatusMissed,
	"not_taken": model.DoseStatusMissed,

	"pending":   model.DoseStatusPending,
	"scheduled": model.DoseStatusPending,
	"upcoming":  model.DoseStatusPending,
	"planned":   model.DoseStatusPending,
}

// ClassifyStatus resolves an arbitrary backend status string to the
// canonical vocabulary. Matching is case-insensitive and ignores
// surrounding whitespace. Unknown input resolves to DoseStatusOther so
// that aggregation stays robust to backend vocabulary drift.
func ClassifyStatus(raw string) model.DoseStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := statusSynonyms[key]; ok {
		return status
	}
	return model.DoseStatusOther
}
