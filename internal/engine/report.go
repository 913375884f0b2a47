package engine

import (
	"math"
	"time"

	"github.com/sells-group/leadcheck/internal/model"
)

// aggregate folds the final lead list into summary statistics. The
// average ICP score covers valid leads only, so disqualified leads and
// duplicates never skew the signal.
func aggregate(leads []model.Lead, duplicates int) *model.ValidationReport {
	valid := 0
	scoreSum := 0

	for i := range leads {
		if leads[i].Valid() {
			valid++
			scoreSum += leads[i].ICPScore
		}
	}

	avg := 0.0
	if valid > 0 {
		avg = math.Round(float64(scoreSum)/float64(valid)*100) / 100
	}

	return &model.ValidationReport{
		Total:           len(leads),
		ValidCount:      valid,
		InvalidCount:    len(leads) - valid,
		DuplicateCount:  duplicates,
		AverageICPScore: avg,
		Leads:           leads,
		GeneratedAt:     time.Now().UTC(),
	}
}
