package scoring

import "FinGauge/internal/domain/models"

// GuidanceDefault is returned for any lens pair outside the matrix,
// including pairs where either lens is grey.
const GuidanceDefault = "Neutral"

type lensPair struct {
	valuation models.RiskColor
	trend     models.RiskColor
}

var guidanceMatrix = map[lensPair]string{
	{models.ColorGreen, models.ColorGreen}:   "Accumulate",
	{models.ColorGreen, models.ColorYellow}:  "Accumulate (scale in)",
	{models.ColorGreen, models.ColorRed}:     "Neutral / DCA",
	{models.ColorYellow, models.ColorGreen}:  "Neutral / DCA",
	{models.ColorYellow, models.ColorYellow}: "Neutral",
	{models.ColorYellow, models.ColorRed}:    "Neutral / Trim",
	{models.ColorRed, models.ColorGreen}:     "Neutral",
	{models.ColorRed, models.ColorYellow}:    "Trim (raise cash)",
	{models.ColorRed, models.ColorRed}:       "Trim / Wait",
}

// Guidance maps the valuation and trend lens colors to a fixed label.
// Grey is valid for either lens and resolves to the default.
func Guidance(valuation, trend models.RiskColor) string {
	if s, ok := guidanceMatrix[lensPair{valuation, trend}]; ok {
		return s
	}
	return GuidanceDefault
}
