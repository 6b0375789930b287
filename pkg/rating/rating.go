// Package rating holds the pure rating arithmetic shared by the review
// pipeline: overall score calculation, incremental aggregate updates and
// company status classification. No database or HTTP dependencies.
package rating

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidRating = errors.New("rating value out of range")

// Status is the categorical label derived from a company's average rating.
type Status string

const (
	StatusRecommended Status = "recommended"
	StatusNeutral     Status = "neutral"
	StatusHasProblems Status = "has-problems"
	StatusAvoid       Status = "avoid"
)

// CategoryCount is the number of rating categories every review carries.
const CategoryCount = 6

// Breakdown holds the per-category scores of a single review, or the
// per-category running means of a company.
type Breakdown struct {
	WorkQuality        float64 `gorm:"column:work_quality" json:"work_quality"`
	DeadlineCompliance float64 `gorm:"column:deadline_compliance" json:"deadline_compliance"`
	Communication      float64 `gorm:"column:communication" json:"communication"`
	ProblemResolution  float64 `gorm:"column:problem_resolution" json:"problem_resolution"`
	ValueForMoney      float64 `gorm:"column:value_for_money" json:"value_for_money"`
	Professionalism    float64 `gorm:"column:professionalism" json:"professionalism"`
}

// Values returns the category scores in declaration order.
func (b Breakdown) Values() [CategoryCount]float64 {
	return [CategoryCount]float64{
		b.WorkQuality,
		b.DeadlineCompliance,
		b.Communication,
		b.ProblemResolution,
		b.ValueForMoney,
		b.Professionalism,
	}
}

// Validate checks that every category score is within [1,5].
func (b Breakdown) Validate() error {
	for _, v := range b.Values() {
		if v < 1 || v > 5 {
			return fmt.Errorf("%w: %.2f", ErrInvalidRating, v)
		}
	}
	return nil
}

// Round2 rounds to 2 decimal places, half up.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Overall computes a review's overall rating: the arithmetic mean of its
// category scores rounded to 2 decimals. It is computed once at submission
// and stored on the review immutably.
func Overall(b Breakdown) (float64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range b.Values() {
		sum += v
	}
	return Round2(sum / CategoryCount), nil
}

// IncrementalMean folds one new sample into a running mean.
// count is the number of samples already in the mean; with count 0 the new
// value becomes the mean. The caller must pass the pre-update count read in
// the same transaction as the write, the formula is history-dependent.
func IncrementalMean(mean float64, count int, v float64) float64 {
	if count <= 0 {
		return Round2(v)
	}
	return Round2((mean*float64(count) + v) / float64(count+1))
}

// UpdateBreakdown folds a new review's category scores into the company's
// per-category running means. All categories share the company's review
// count: a review always scores every category.
func UpdateBreakdown(cur Breakdown, count int, in Breakdown) Breakdown {
	return Breakdown{
		WorkQuality:        IncrementalMean(cur.WorkQuality, count, in.WorkQuality),
		DeadlineCompliance: IncrementalMean(cur.DeadlineCompliance, count, in.DeadlineCompliance),
		Communication:      IncrementalMean(cur.Communication, count, in.Communication),
		ProblemResolution:  IncrementalMean(cur.ProblemResolution, count, in.ProblemResolution),
		ValueForMoney:      IncrementalMean(cur.ValueForMoney, count, in.ValueForMoney),
		Professionalism:    IncrementalMean(cur.Professionalism, count, in.Professionalism),
	}
}

// Classify maps an average rating to its status band. Bands are inclusive on
// their lower bound. A zero average (company without reviews) classifies as
// avoid; callers hide the status until the first review lands.
func Classify(avg float64) Status {
	switch {
	case avg >= 4.0:
		return StatusRecommended
	case avg >= 2.5:
		return StatusNeutral
	case avg >= 1.5:
		return StatusHasProblems
	default:
		return StatusAvoid
	}
}
