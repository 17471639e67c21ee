package scoring

import (
	"math"
	"testing"

	"FinGauge/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func TestDefaultPolicyEdges(t *testing.T) {
	ps := DefaultPolicies()

	cases := []struct {
		name  string
		value float64
		want  models.RiskColor
	}{
		{models.IndicatorTrailingPE, 17.99, models.ColorGreen},
		{models.IndicatorTrailingPE, 18, models.ColorYellow},
		{models.IndicatorTrailingPE, 23.99, models.ColorYellow},
		{models.IndicatorTrailingPE, 24, models.ColorRed},
		{models.IndicatorCAPE, 19.5, models.ColorGreen},
		{models.IndicatorCAPE, 20, models.ColorYellow},
		{models.IndicatorCAPE, 30, models.ColorRed},
		{models.IndicatorBuffett, 1.19, models.ColorGreen},
		{models.IndicatorBuffett, 1.20, models.ColorYellow},
		{models.IndicatorBuffett, 1.50, models.ColorRed},
		{models.IndicatorMarginYoY, -0.01, models.ColorGreen},
		{models.IndicatorMarginYoY, 0, models.ColorYellow},
		{models.IndicatorMarginYoY, 0.10, models.ColorRed},
		{models.IndicatorConcentration, 0.249, models.ColorGreen},
		{models.IndicatorConcentration, 0.25, models.ColorYellow},
		{models.IndicatorConcentration, 0.35, models.ColorRed},
		{models.IndicatorSentiment, 24.9, models.ColorGreen},
		{models.IndicatorSentiment, 25, models.ColorYellow},
		{models.IndicatorSentiment, 75, models.ColorRed},
	}
	for _, tc := range cases {
		if got := ps.Classify(tc.name, fp(tc.value)); got != tc.want {
			t.Errorf("%s(%v) = %s, want %s", tc.name, tc.value, got, tc.want)
		}
	}
}

func TestClassifyAbsentIsGrey(t *testing.T) {
	p := mustAscending(10, 20)
	if got := p.Classify(nil); got != models.ColorGrey {
		t.Fatalf("Classify(nil) = %s, want grey", got)
	}
	if got := p.Classify(fp(math.NaN())); got != models.ColorGrey {
		t.Fatalf("Classify(NaN) = %s, want grey", got)
	}
}

func TestClassifyCoversAllFinites(t *testing.T) {
	p := mustAscending(18, 24)
	for _, v := range []float64{-1e12, -1, 0, 17.999999, 18, 21, 23.999999, 24, 1e12} {
		if got := p.Classify(fp(v)); got == models.ColorGrey {
			t.Errorf("Classify(%v) = grey, want a real color", v)
		}
	}
}

func TestNewPolicyRejectsBrokenPartitions(t *testing.T) {
	cases := []struct {
		name               string
		green, yellow, red Band
	}{
		{"gap", Band{Hi: fp(10)}, Band{Lo: fp(11), Hi: fp(20)}, Band{Lo: fp(20)}},
		{"overlap", Band{Hi: fp(10)}, Band{Lo: fp(9), Hi: fp(20)}, Band{Lo: fp(20)}},
		{"empty band", Band{Hi: fp(10)}, Band{Lo: fp(10), Hi: fp(10)}, Band{Lo: fp(10)}},
		{"bounded below", Band{Lo: fp(0), Hi: fp(10)}, Band{Lo: fp(10), Hi: fp(20)}, Band{Lo: fp(20)}},
		{"bounded above", Band{Hi: fp(10)}, Band{Lo: fp(10), Hi: fp(20)}, Band{Lo: fp(20), Hi: fp(30)}},
		{"nan edge", Band{Hi: fp(math.NaN())}, Band{Lo: fp(math.NaN()), Hi: fp(20)}, Band{Lo: fp(20)}},
	}
	for _, tc := range cases {
		if _, err := NewPolicy(tc.green, tc.yellow, tc.red, true); err == nil {
			t.Errorf("NewPolicy accepted %s", tc.name)
		}
	}
}

func TestNewPolicyAcceptsInvertedOrder(t *testing.T) {
	// A lower-is-riskier table lists red first on the number line.
	p, err := NewPolicy(
		Band{Lo: fp(20)},
		Band{Lo: fp(10), Hi: fp(20)},
		Band{Hi: fp(10)},
		false,
	)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if got := p.Classify(fp(5)); got != models.ColorRed {
		t.Fatalf("Classify(5) = %s, want red", got)
	}
	if got := p.Classify(fp(25)); got != models.ColorGreen {
		t.Fatalf("Classify(25) = %s, want green", got)
	}
}

func TestApplyEdges(t *testing.T) {
	ps := DefaultPolicies()
	if err := ps.ApplyEdges(models.IndicatorTrailingPE, 15, 20); err != nil {
		t.Fatalf("ApplyEdges: %v", err)
	}
	if got := ps.Classify(models.IndicatorTrailingPE, fp(16)); got != models.ColorYellow {
		t.Fatalf("after override Classify(16) = %s, want yellow", got)
	}
	if err := ps.ApplyEdges("nope", 1, 2); err == nil {
		t.Fatal("ApplyEdges accepted unknown indicator")
	}
	if err := ps.ApplyEdges(models.IndicatorCAPE, 30, 20); err == nil {
		t.Fatal("ApplyEdges accepted inverted edges")
	}
}

func TestPolicySetUnknownIndicatorIsGrey(t *testing.T) {
	ps := DefaultPolicies()
	if got := ps.Classify("made_up", fp(1)); got != models.ColorGrey {
		t.Fatalf("Classify on unknown indicator = %s, want grey", got)
	}
}
