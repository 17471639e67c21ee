package indicators

import (
	"math"
	"sort"

	"FinGauge/internal/domain/models"
)

// ConcentrationTop10 sums the ten largest weights of a holdings
// snapshot. Feeds publish weights either as fractions summing to
// roughly one or as percent points summing to roughly one hundred; a
// total above 1.5 is read as percent and scaled to fractions before
// summing.
func (e *Engine) ConcentrationTop10(snap models.HoldingsSnapshot) models.IndicatorResult {
	source := orDefault(snap.Source, sourceHoldings)

	weights := make([]float64, 0, len(snap.Rows))
	total := 0.0
	for _, row := range snap.Rows {
		if math.IsNaN(row.Weight) {
			continue
		}
		weights = append(weights, row.Weight)
		total += row.Weight
	}
	if len(weights) == 0 {
		return models.GreyIndicator(models.IndicatorConcentration, source)
	}

	scale := 1.0
	if total > 1.5 {
		scale = 1.0 / 100.0
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))
	if len(weights) > 10 {
		weights = weights[:10]
	}

	v := 0.0
	for _, w := range weights {
		v += w * scale
	}
	return models.IndicatorResult{
		Name:        models.IndicatorConcentration,
		Value:       &v,
		Color:       e.policies.Classify(models.IndicatorConcentration, &v),
		LastUpdated: snap.AsOf,
		Source:      source,
	}
}
