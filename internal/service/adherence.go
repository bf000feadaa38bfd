package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/caremind/medtrack-agent/pkg/model"
	"go.uber.org/zap"
)

// topMissedLimit caps the worst-offender list on every report
const topMissedLimit = 5

// unknownLabel is used when no display-name candidate is populated
const unknownLabel = "Unknown"

// IntakeSource fetches intake records for one profile over a window. The
// implementation owns response-envelope normalization; the aggregator only
// ever sees flat slices.
type IntakeSource interface {
	FetchIntakeRecords(ctx context.Context, profileID string, window model.TimeWindow) ([]model.IntakeRecord, error)
}

// AdherenceService turns intake records into adherence reports
type AdherenceService struct {
	source IntakeSource
	logger *zap.Logger
}

// NewAdherenceService creates a new AdherenceService
func NewAdherenceService(source IntakeSource, logger *zap.Logger) *AdherenceService {
	return &AdherenceService{
		source: source,
		logger: logger,
	}
}

// Aggregate classifies and tallies intake records into a report. An empty
// input is a valid state (a newly created profile has no doses yet) and
// produces an all-zero report rather than an error.
func (s *AdherenceService) Aggregate(records []model.IntakeRecord) model.AdherenceReport {
	report := model.AdherenceReport{TopMissed: []model.MissedMedication{}}

	missedCounts := make(map[string]int)
	var missedOrder []string

	for _, record := range records {
		report.TotalScheduled++

		switch ClassifyStatus(record.RawStatus) {
		case model.DoseStatusTaken:
			report.TakenCount++
		case model.DoseStatusSkipped:
			report.SkippedCount++
		case model.DoseStatusMissed:
			report.MissedCount++
			label := missedLabel(record)
			if _, seen := missedCounts[label]; !seen {
				missedOrder = append(missedOrder, label)
			}
			missedCounts[label]++
		case model.DoseStatusPending:
			report.PendingCount++
		default:
			// Unknown statuses stay in the denominator so they never
			// silently vanish from totals.
		}
	}

	report.AdherenceRatePercent = adherenceRate(report.TakenCount, report.TotalScheduled)
	report.TopMissed = topMissed(missedCounts, missedOrder)

	return report
}

// MergeReports combines already-aggregated per-profile reports into one.
// Counts are summed field-wise and the rate is re-derived from the summed
// totals; averaging per-profile rates would weight a 1-dose profile the
// same as a 99-dose one. Raw records are never re-read, so callers can
// fetch per-profile windows concurrently and combine the results here.
func (s *AdherenceService) MergeReports(reports ...model.AdherenceReport) model.AdherenceReport {
	combined := model.AdherenceReport{TopMissed: []model.MissedMedication{}}

	missedCounts := make(map[string]int)
	var missedOrder []string

	for _, report := range reports {
		combined.TakenCount += report.TakenCount
		combined.SkippedCount += report.SkippedCount
		combined.MissedCount += report.MissedCount
		combined.PendingCount += report.PendingCount
		combined.TotalScheduled += report.TotalScheduled

		for _, missed := range report.TopMissed {
			if _, seen := missedCounts[missed.Label]; !seen {
				missedOrder = append(missedOrder, missed.Label)
			}
			missedCounts[missed.Label] += missed.Count
		}
	}

	combined.AdherenceRatePercent = adherenceRate(combined.TakenCount, combined.TotalScheduled)
	combined.TopMissed = topMissed(missedCounts, missedOrder)

	return combined
}

// Report fetches one profile's records for the window and aggregates them
func (s *AdherenceService) Report(ctx context.Context, profileID string, window model.TimeWindow) (model.AdherenceReport, error) {
	records, err := s.source.FetchIntakeRecords(ctx, profileID, window)
	if err != nil {
		s.logger.Error("failed to fetch intake records",
			zap.Error(err),
			zap.String("profile_id", profileID),
		)
		return model.AdherenceReport{}, fmt.Errorf("failed to fetch intake records: %w", err)
	}

	report := s.Aggregate(records)

	s.logger.Info("adherence report computed",
		zap.String("profile_id", profileID),
		zap.Int("total_scheduled", report.TotalScheduled),
		zap.Int("adherence_rate_percent", report.AdherenceRatePercent),
	)

	return report, nil
}

// CombinedReport fans out per-profile fetches concurrently, then merges the
// per-profile reports. Merge order does not affect the result, so the
// fan-in can collect in completion order.
func (s *AdherenceService) CombinedReport(ctx context.Context, profileIDs []string, window model.TimeWindow) (model.AdherenceReport, error) {
	reports := make([]model.AdherenceReport, len(profileIDs))
	errs := make([]error, len(profileIDs))

	var wg sync.WaitGroup
	for i, profileID := range profileIDs {
		wg.Add(1)
		go func(i int, profileID string) {
			defer wg.Done()
			reports[i], errs[i] = s.Report(ctx, profileID, window)
		}(i, profileID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return model.AdherenceReport{}, fmt.Errorf("profile %s: %w", profileIDs[i], err)
		}
	}

	combined := s.MergeReports(reports...)

	s.logger.Info("combined adherence report computed",
		zap.Int("profiles", len(profileIDs)),
		zap.Int("total_scheduled", combined.TotalScheduled),
		zap.Int("adherence_rate_percent", combined.AdherenceRatePercent),
	)

	return combined, nil
}

// missedLabel derives a display label for a missed dose. First non-empty
// candidate wins; the order follows how backend API versions layered the
// name fields over time.
func missedLabel(record model.IntakeRecord) string {
	candidates := []*string{
		record.DrugName,
		record.MedicineName,
		record.MedicationName,
		record.RegimenName,
	}
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	if record.Regimen != nil && record.Regimen.Name != "" {
		return record.Regimen.Name
	}
	if record.Drug != nil {
		if record.Drug.Name != "" {
			return record.Drug.Name
		}
		if record.Drug.Product != nil {
			if record.Drug.Product.BrandName != "" {
				return record.Drug.Product.BrandName
			}
			if record.Drug.Product.Name != "" {
				return record.Drug.Product.Name
			}
		}
	}
	return unknownLabel
}

// adherenceRate computes round-half-up taken/total as an integer percent
func adherenceRate(taken, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(taken)/float64(total)*100 + 0.5))
}

// topMissed picks the highest-count labels, ties broken by first-seen
// order, truncated to the fixed limit.
func topMissed(counts map[string]int, firstSeen []string) []model.MissedMedication {
	entries := make([]model.MissedMedication, 0, len(firstSeen))
	for _, label := range firstSeen {
		entries = append(entries, model.MissedMedication{Label: label, Count: counts[label]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if len(entries) > topMissedLimit {
		entries = entries[:topMissedLimit]
	}
	return entries
}
