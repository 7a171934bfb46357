package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vitalytics/vitalytics/internal/domain/dataset"
)

var (
	// ErrInvalidMetric means a statistical aggregate is undefined, e.g. an
	// empty population or an unknown vital sign.
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrDivisionUndefined means a deviation cannot be computed because the
	// population mean is exactly zero.
	ErrDivisionUndefined = errors.New("division undefined")
)

// Statistics is the population aggregate for one vital sign.
type Statistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ComputeStatistics aggregates mean, median, min and max for the named vital
// over every record. Pure function of its inputs.
func ComputeStatistics(records []dataset.PatientRecord, vital Vital) (Statistics, error) {
	if len(records) == 0 {
		return Statistics{}, fmt.Errorf("%w: empty population for %s", ErrInvalidMetric, vital)
	}

	values := make([]float64, 0, len(records))
	sum := 0.0
	for _, r := range records {
		v, ok := vital.ValueOf(r)
		if !ok {
			return Statistics{}, fmt.Errorf("%w: unknown vital %q", ErrInvalidMetric, vital)
		}
		values = append(values, v)
		sum += v
	}

	sort.Float64s(values)
	n := len(values)
	median := values[n/2]
	if n%2 == 0 {
		median = (values[n/2-1] + values[n/2]) / 2
	}

	return Statistics{
		Mean:   sum / float64(n),
		Median: median,
		Min:    values[0],
		Max:    values[n-1],
	}, nil
}

// ComputeDeviation expresses value as a percentage difference from the
// population mean, rounded to 2 decimals with the sign preserved.
func ComputeDeviation(value, mean float64) (float64, error) {
	if mean == 0 {
		return 0, fmt.Errorf("%w: population mean is zero", ErrDivisionUndefined)
	}
	return round2((value/mean - 1) * 100), nil
}

// ComputeBMI derives body mass index from height in centimeters and weight
// in kilograms, rounded to 2 decimals.
func ComputeBMI(heightCM, weightKG float64) (float64, error) {
	if !(heightCM > 0) || math.IsInf(heightCM, 0) {
		return 0, fmt.Errorf("%w: height %v", ErrInvalidMetric, heightCM)
	}
	if !(weightKG > 0) || math.IsInf(weightKG, 0) {
		return 0, fmt.Errorf("%w: weight %v", ErrInvalidMetric, weightKG)
	}
	m := heightCM / 100
	return round2(weightKG / (m * m)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
