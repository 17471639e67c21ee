package scoring

import "FinGauge/internal/domain/models"

// colorScores are the ordinals averaged by Score. Grey counts as
// neutral so missing data cannot tilt the composite either way.
var colorScores = map[models.RiskColor]float64{
	models.ColorGreen:  0,
	models.ColorYellow: 1,
	models.ColorRed:    2,
	models.ColorGrey:   1,
}

// Score folds indicator colors into one composite color: mean score
// below 0.67 is green, below 1.34 yellow, red otherwise. An empty
// input is grey, there is nothing to classify.
func Score(colors []models.RiskColor) models.RiskColor {
	if len(colors) == 0 {
		return models.ColorGrey
	}
	var sum float64
	for _, c := range colors {
		s, ok := colorScores[c]
		if !ok {
			s = 1
		}
		sum += s
	}
	mean := sum / float64(len(colors))
	switch {
	case mean < 0.67:
		return models.ColorGreen
	case mean < 1.34:
		return models.ColorYellow
	}
	return models.ColorRed
}
