package scoring

import (
	"fmt"
	"math"
	"sort"

	"FinGauge/internal/domain/models"
)

// Band is a half-open interval [Lo, Hi). A nil bound is unbounded.
type Band struct {
	Lo *float64
	Hi *float64
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v float64) bool {
	if b.Lo != nil && v < *b.Lo {
		return false
	}
	if b.Hi != nil && v >= *b.Hi {
		return false
	}
	return true
}

// Policy classifies a scalar into green/yellow/red magnitude bands.
// HigherIsRicher records how the metric reads (higher = more
// stretched); classification always evaluates the bands as plain
// magnitude ranges, so a metric where lower is riskier must invert its
// band edges, not flip this flag.
type Policy struct {
	Green          Band
	Yellow         Band
	Red            Band
	HigherIsRicher bool
}

// NewPolicy builds a policy after verifying the three bands partition
// the real line: one band unbounded below, one unbounded above,
// adjacent edges equal, no empty or NaN-edged band.
func NewPolicy(green, yellow, red Band, higherIsRicher bool) (Policy, error) {
	type named struct {
		name string
		b    Band
	}
	bands := []named{{"green", green}, {"yellow", yellow}, {"red", red}}

	for _, x := range bands {
		if (x.b.Lo != nil && math.IsNaN(*x.b.Lo)) || (x.b.Hi != nil && math.IsNaN(*x.b.Hi)) {
			return Policy{}, fmt.Errorf("policy: %s band has a NaN edge", x.name)
		}
		if x.b.Lo != nil && x.b.Hi != nil && *x.b.Lo >= *x.b.Hi {
			return Policy{}, fmt.Errorf("policy: %s band is empty", x.name)
		}
	}

	sort.SliceStable(bands, func(i, j int) bool {
		li, lj := math.Inf(-1), math.Inf(-1)
		if bands[i].b.Lo != nil {
			li = *bands[i].b.Lo
		}
		if bands[j].b.Lo != nil {
			lj = *bands[j].b.Lo
		}
		return li < lj
	})

	if bands[0].b.Lo != nil {
		return Policy{}, fmt.Errorf("policy: no band is unbounded below")
	}
	if bands[2].b.Hi == nil && bands[1].b.Hi == nil {
		return Policy{}, fmt.Errorf("policy: bands overlap above")
	}
	if bands[2].b.Hi != nil {
		return Policy{}, fmt.Errorf("policy: no band is unbounded above")
	}
	for i := 0; i < 2; i++ {
		hi, lo := bands[i].b.Hi, bands[i+1].b.Lo
		if hi == nil || lo == nil || *hi != *lo {
			return Policy{}, fmt.Errorf("policy: %s and %s bands leave a gap or overlap", bands[i].name, bands[i+1].name)
		}
	}

	return Policy{Green: green, Yellow: yellow, Red: red, HigherIsRicher: higherIsRicher}, nil
}

// NewAscendingPolicy builds the common two-edge shape: green below
// yellowAt, yellow in [yellowAt, redAt), red at or above redAt.
func NewAscendingPolicy(yellowAt, redAt float64, higherIsRicher bool) (Policy, error) {
	return NewPolicy(
		Band{Hi: &yellowAt},
		Band{Lo: &yellowAt, Hi: &redAt},
		Band{Lo: &redAt},
		higherIsRicher,
	)
}

// Classify maps a value to a color. Absent or NaN values are grey.
// Bands are scanned green, yellow, red; the first containing band
// wins. A value outside every band (impossible under a valid policy)
// is grey.
func (p Policy) Classify(v *float64) models.RiskColor {
	if v == nil || math.IsNaN(*v) {
		return models.ColorGrey
	}
	switch {
	case p.Green.Contains(*v):
		return models.ColorGreen
	case p.Yellow.Contains(*v):
		return models.ColorYellow
	case p.Red.Contains(*v):
		return models.ColorRed
	}
	return models.ColorGrey
}

// PolicySet maps indicator names to their classification policies.
type PolicySet map[string]Policy

// Classify applies the named policy; an unknown name is grey.
func (ps PolicySet) Classify(name string, v *float64) models.RiskColor {
	p, ok := ps[name]
	if !ok {
		return models.ColorGrey
	}
	return p.Classify(v)
}

// ApplyEdges replaces the two edges of the named ascending policy.
// Used for config overrides.
func (ps PolicySet) ApplyEdges(name string, yellowAt, redAt float64) error {
	cur, ok := ps[name]
	if !ok {
		return fmt.Errorf("policy: unknown indicator %q", name)
	}
	p, err := NewAscendingPolicy(yellowAt, redAt, cur.HigherIsRicher)
	if err != nil {
		return err
	}
	ps[name] = p
	return nil
}

// DefaultPolicies returns the built-in threshold table.
func DefaultPolicies() PolicySet {
	return PolicySet{
		models.IndicatorTrailingPE:    mustAscending(18, 24),
		models.IndicatorCAPE:          mustAscending(20, 30),
		models.IndicatorBuffett:       mustAscending(1.20, 1.50),
		models.IndicatorMarginYoY:     mustAscending(0.0, 0.10),
		models.IndicatorConcentration: mustAscending(0.25, 0.35),
		models.IndicatorSentiment:     mustAscending(25, 75),
	}
}

func mustAscending(yellowAt, redAt float64) Policy {
	p, err := NewAscendingPolicy(yellowAt, redAt, true)
	if err != nil {
		panic(err)
	}
	return p
}
