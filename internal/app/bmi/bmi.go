// Package bmi computes body-mass index and classifies it into ordered bands.
// Bands are configuration: an ordered list of upper boundaries, so new
// categories can be inserted without touching the classifier.
package bmi

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/healthquest/healthquest/internal/domain"
)

// Status names used by the default bands.
const (
	StatusUnderweight = "underweight"
	StatusNormal      = "normal"
	StatusOverweight  = "overweight"
	StatusObese       = "obese"
)

// Compute returns weight / height_m², rounded to one decimal place.
func Compute(heightCm, weightKg float64) float64 {
	m := heightCm / 100.0
	return math.Round(weightKg/(m*m)*10) / 10
}

// Band is one category. A value belongs to the first band whose Below
// exceeds it; Below = 0 on the last band means "no upper bound".
type Band struct {
	Below  float64 `toml:"below" json:"below,omitempty"`
	Status string  `toml:"status" json:"status"`
}

// DefaultBands: underweight < 18.5 ≤ normal < 24 ≤ overweight < 28 ≤ obese.
func DefaultBands() []Band {
	return []Band{
		{Below: 18.5, Status: StatusUnderweight},
		{Below: 24, Status: StatusNormal},
		{Below: 28, Status: StatusOverweight},
		{Status: StatusObese},
	}
}

// ValidateBands checks that boundaries strictly increase and only the last
// band is open-ended.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("bmi: at least one band required")
	}
	prev := math.Inf(-1)
	for i, b := range bands {
		if b.Status == "" {
			return fmt.Errorf("bmi: band %d has no status", i)
		}
		last := i == len(bands)-1
		if last {
			if b.Below != 0 && b.Below <= prev {
				return fmt.Errorf("bmi: band %d boundary %.1f not above %.1f", i, b.Below, prev)
			}
			continue
		}
		if b.Below == 0 {
			return fmt.Errorf("bmi: only the last band may be open-ended")
		}
		if b.Below <= prev {
			return fmt.Errorf("bmi: band %d boundary %.1f not above %.1f", i, b.Below, prev)
		}
		prev = b.Below
	}
	return nil
}

// Classify places value into bands.
func Classify(value float64, bands []Band) string {
	i := sort.Search(len(bands), func(i int) bool {
		b := bands[i]
		return (i == len(bands)-1 && b.Below == 0) || value < b.Below
	})
	if i == len(bands) {
		return bands[len(bands)-1].Status
	}
	return bands[i].Status
}

// Subject is everything a classifier may look at.
type Subject struct {
	HeightCm   float64
	WeightKg   float64
	Birthdate  domain.Date
	Gender     domain.Gender
	MeasuredOn domain.Date
}

// Result is a computed BMI with its category.
type Result struct {
	BMI    float64 `json:"bmi"`
	Status string  `json:"status"`
}

// Classifier turns a subject into a Result.
type Classifier interface {
	Classify(s Subject) Result
}

// FixedClassifier applies the same bands regardless of age and gender.
type FixedClassifier struct {
	Bands []Band
}

// Classify implements Classifier.
func (c FixedClassifier) Classify(s Subject) Result {
	v := Compute(s.HeightCm, s.WeightKg)
	return Result{BMI: v, Status: Classify(v, c.Bands)}
}

// Classifier modes.
const (
	ModeFixed       = "fixed"
	ModeGrowthChart = "growth_chart"
)

// NewClassifier builds the classifier for mode.
func NewClassifier(mode string, bands []Band) (Classifier, error) {
	if len(bands) == 0 {
		bands = DefaultBands()
	}
	if mode != "" && mode != ModeFixed && mode != ModeGrowthChart {
		return nil, fmt.Errorf("bmi: unknown mode %q", mode)
	}
	if err := ValidateBands(bands); err != nil {
		return nil, err
	}
	switch mode {
	case "", ModeFixed:
		return FixedClassifier{Bands: bands}, nil
	case ModeGrowthChart:
		return GrowthChartClassifier{Fallback: FixedClassifier{Bands: bands}}, nil
	default:
		return nil, fmt.Errorf("bmi: unknown mode %q", mode)
	}
}

// AgeInMonths counts whole calendar months from birth to on, ignoring days.
func AgeInMonths(birth, on domain.Date) int {
	b := birth.Start(time.UTC)
	o := on.Start(time.UTC)
	return (o.Year()-b.Year())*12 + int(o.Month()) - int(b.Month())
}
