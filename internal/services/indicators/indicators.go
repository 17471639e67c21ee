// Package indicators computes the dashboard's valuation and trend
// metrics from raw feed data. Every computer is a pure function of its
// inputs; a missing input degrades to a grey result, never an error.
package indicators

import (
	"FinGauge/internal/domain/models"
	"FinGauge/internal/services/scoring"
	"FinGauge/pkg/timeseries"
)

// Default provenance labels, used when a feed does not report its own.
const (
	sourcePrices    = "Stooq/Yahoo"
	sourceValuation = "Yale/Shiller"
	sourceMargin    = "FINRA"
	sourceHoldings  = "State Street (SPY holdings)"
	sourceSentiment = "CBOE (VIX, Put/Call) + FRED (HY OAS)"
	sourceCapGDP    = "Local proxy (Wilshire+GDP)"
)

// Engine evaluates indicators under a fixed set of classification
// policies.
type Engine struct {
	policies scoring.PolicySet
}

// NewEngine returns an engine over the given policies, falling back to
// the built-in table when nil.
func NewEngine(policies scoring.PolicySet) *Engine {
	if policies == nil {
		policies = scoring.DefaultPolicies()
	}
	return &Engine{policies: policies}
}

// finish is the uniform tail of every series-backed computer: the last
// present point becomes the value, the policy colors it, and that
// point's timestamp becomes LastUpdated. A series with no present
// points yields grey.
func (e *Engine) finish(name string, s timeseries.Series, source string) models.IndicatorResult {
	last, ok := s.Last()
	if !ok {
		return models.GreyIndicator(name, source)
	}
	v, t := last.Value, last.Time
	return models.IndicatorResult{
		Name:        name,
		Value:       &v,
		Series:      &s,
		Color:       e.policies.Classify(name, &v),
		LastUpdated: &t,
		Source:      source,
	}
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
