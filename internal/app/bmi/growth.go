package bmi

import (
	"sort"

	"github.com/healthquest/healthquest/internal/domain"
)

// chartRow holds the percentile cut-offs for one age (half-year steps).
type chartRow struct {
	Months       int
	P5, P85, P95 float64
}

// Child BMI reference percentiles, 2 to 18 years.
var growthChart = map[domain.Gender][]chartRow{
	domain.GenderBoy: {
		{24, 13.9, 17.4, 18.1}, {30, 13.6, 16.9, 17.6},
		{36, 13.4, 16.6, 17.3}, {42, 13.2, 16.4, 17.1},
		{48, 13.1, 16.2, 16.9}, {54, 13.0, 16.1, 16.8},
		{60, 12.9, 16.1, 16.8}, {66, 12.9, 16.2, 17.0},
		{72, 12.9, 16.3, 17.1}, {78, 12.9, 16.5, 17.4},
		{84, 13.0, 16.8, 17.8}, {90, 13.1, 17.1, 18.2},
		{96, 13.2, 17.4, 18.6}, {102, 13.4, 17.8, 19.1},
		{108, 13.6, 18.2, 19.6}, {114, 13.8, 18.6, 20.1},
		{120, 14.0, 19.1, 20.7}, {126, 14.2, 19.5, 21.3},
		{132, 14.5, 20.0, 21.9}, {138, 14.8, 20.5, 22.5},
		{144, 15.0, 21.0, 23.2}, {150, 15.3, 21.5, 23.8},
		{156, 15.6, 22.0, 24.4}, {162, 15.9, 22.5, 25.0},
		{168, 16.2, 23.0, 25.6}, {174, 16.5, 23.5, 26.1},
		{180, 16.8, 23.9, 26.5}, {186, 17.0, 24.3, 26.9},
		{192, 17.3, 24.7, 27.3}, {198, 17.5, 25.0, 27.6},
		{204, 17.7, 25.3, 27.9}, {210, 17.9, 25.6, 28.2},
		{216, 18.1, 25.8, 28.5},
	},
	domain.GenderGirl: {
		{24, 13.5, 17.2, 17.9}, {30, 13.2, 16.8, 17.6},
		{36, 12.9, 16.5, 17.4}, {42, 12.7, 16.3, 17.2},
		{48, 12.6, 16.2, 17.1}, {54, 12.5, 16.2, 17.1},
		{60, 12.4, 16.2, 17.2}, {66, 12.4, 16.3, 17.4},
		{72, 12.4, 16.5, 17.6}, {78, 12.5, 16.8, 18.0},
		{84, 12.6, 17.2, 18.5}, {90, 12.8, 17.6, 19.0},
		{96, 13.0, 18.0, 19.5}, {102, 13.2, 18.5, 20.1},
		{108, 13.5, 19.0, 20.8}, {114, 13.8, 19.5, 21.4},
		{120, 14.1, 20.1, 22.1}, {126, 14.4, 20.6, 22.8},
		{132, 14.8, 21.2, 23.5}, {138, 15.1, 21.8, 24.2},
		{144, 15.5, 22.4, 24.9}, {150, 15.8, 22.9, 25.5},
		{156, 16.1, 23.4, 26.1}, {162, 16.4, 23.9, 26.6},
		{168, 16.7, 24.3, 27.1}, {174, 16.9, 24.7, 27.6},
		{180, 17.1, 25.1, 28.0}, {186, 17.3, 25.4, 28.3},
		{192, 17.5, 25.6, 28.6}, {198, 17.6, 25.8, 28.8},
		{204, 17.7, 26.0, 29.0}, {210, 17.8, 26.2, 29.2},
		{216, 17.9, 26.3, 29.3},
	},
}

// GrowthChartClassifier derives age- and gender-specific bands from the
// reference chart. Subjects without a usable gender or birthdate go to
// Fallback.
type GrowthChartClassifier struct {
	Fallback Classifier
}

// Classify implements Classifier.
func (c GrowthChartClassifier) Classify(s Subject) Result {
	bands, ok := ChartBands(s.Gender, s.Birthdate, s.MeasuredOn)
	if !ok {
		return c.Fallback.Classify(s)
	}
	v := Compute(s.HeightCm, s.WeightKg)
	return Result{BMI: v, Status: Classify(v, bands)}
}

// ChartBands picks the first chart row at or above the subject's age
// (clamped to the oldest row) and turns its percentiles into bands.
func ChartBands(gender domain.Gender, birth, on domain.Date) ([]Band, bool) {
	rows, ok := growthChart[gender]
	if !ok || birth.IsZero() || on.IsZero() {
		return nil, false
	}
	age := AgeInMonths(birth, on)
	i := sort.Search(len(rows), func(i int) bool { return rows[i].Months >= age })
	if i == len(rows) {
		i = len(rows) - 1
	}
	r := rows[i]
	return []Band{
		{Below: r.P5, Status: StatusUnderweight},
		{Below: r.P85, Status: StatusNormal},
		{Below: r.P95, Status: StatusOverweight},
		{Status: StatusObese},
	}, true
}
