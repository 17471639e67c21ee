package scoring

import (
	"testing"

	"FinGauge/internal/domain/models"
)

func TestGuidanceMatrix(t *testing.T) {
	g, y, r := models.ColorGreen, models.ColorYellow, models.ColorRed

	cases := []struct {
		valuation, trend models.RiskColor
		want             string
	}{
		{g, g, "Accumulate"},
		{g, y, "Accumulate (scale in)"},
		{g, r, "Neutral / DCA"},
		{y, g, "Neutral / DCA"},
		{y, y, "Neutral"},
		{y, r, "Neutral / Trim"},
		{r, g, "Neutral"},
		{r, y, "Trim (raise cash)"},
		{r, r, "Trim / Wait"},
	}
	for _, tc := range cases {
		if got := Guidance(tc.valuation, tc.trend); got != tc.want {
			t.Errorf("Guidance(%s, %s) = %q, want %q", tc.valuation, tc.trend, got, tc.want)
		}
	}
}

func TestGuidanceGreyLensDefaultsNeutral(t *testing.T) {
	grey := models.ColorGrey
	for _, other := range []models.RiskColor{models.ColorGreen, models.ColorYellow, models.ColorRed, grey} {
		if got := Guidance(grey, other); got != GuidanceDefault {
			t.Errorf("Guidance(grey, %s) = %q, want %q", other, got, GuidanceDefault)
		}
		if got := Guidance(other, grey); got != GuidanceDefault {
			t.Errorf("Guidance(%s, grey) = %q, want %q", other, got, GuidanceDefault)
		}
	}
}
