package models

// RiskColor is the discrete risk classification of an indicator reading.
type RiskColor string

const (
	ColorGreen  RiskColor = "green"
	ColorYellow RiskColor = "yellow"
	ColorRed    RiskColor = "red"
	ColorGrey   RiskColor = "grey" // classification impossible, e.g. no data
)

// Valid reports whether c is one of the enumerated colors.
func (c RiskColor) Valid() bool {
	switch c {
	case ColorGreen, ColorYellow, ColorRed, ColorGrey:
		return true
	default:
		return false
	}
}
