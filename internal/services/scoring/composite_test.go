package scoring

import (
	"testing"

	"FinGauge/internal/domain/models"
)

func TestScore(t *testing.T) {
	g, y, r, grey := models.ColorGreen, models.ColorYellow, models.ColorRed, models.ColorGrey

	cases := []struct {
		name   string
		colors []models.RiskColor
		want   models.RiskColor
	}{
		{"all green", []models.RiskColor{g, g, g}, g},
		{"all red", []models.RiskColor{r, r, r}, r},
		{"one of each", []models.RiskColor{g, y, r}, y},
		{"mostly green", []models.RiskColor{g, g, y, g, g}, g},
		{"two green one red", []models.RiskColor{g, g, r}, g},
		{"green red pair", []models.RiskColor{g, r}, y},
		{"yellow red pair", []models.RiskColor{y, r}, r},
		{"all grey", []models.RiskColor{grey, grey, grey}, y},
		{"grey fills gaps", []models.RiskColor{g, grey, grey, grey, grey}, y},
		{"empty", nil, grey},
	}
	for _, tc := range cases {
		if got := Score(tc.colors); got != tc.want {
			t.Errorf("%s: Score = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestScoreUnknownColorCountsNeutral(t *testing.T) {
	odd := models.RiskColor("purple")
	if got := Score([]models.RiskColor{odd, odd}); got != models.ColorYellow {
		t.Fatalf("Score on unknown colors = %s, want yellow", got)
	}
}
