package metrics

import "math"

// Severity bands a deviation by its absolute magnitude.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// ClassifySeverity bands a deviation percentage. The 10% and 15% thresholds
// are fixed domain constants; both boundaries are inclusive of the lower band.
func ClassifySeverity(deviationPercent float64) Severity {
	abs := math.Abs(deviationPercent)
	switch {
	case abs <= 10:
		return SeverityNormal
	case abs <= 15:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// BMIBand labels a BMI value with its weight category.
type BMIBand string

const (
	BMIUnderweight BMIBand = "underweight"
	BMIHealthy     BMIBand = "healthy"
	BMIOverweight  BMIBand = "overweight"
	BMIObese       BMIBand = "obese"
)

// ClassifyBMI bands a BMI value. Thresholds match the supplementary gauge
// steps: <18.5 underweight, <24.9 healthy, <29.9 overweight, otherwise obese.
func ClassifyBMI(bmi float64) BMIBand {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 24.9:
		return BMIHealthy
	case bmi < 29.9:
		return BMIOverweight
	default:
		return BMIObese
	}
}
