package metrics

import (
	"errors"
	"testing"

	"github.com/vitalytics/vitalytics/internal/domain/dataset"
)

func recordsWithHeartRates(rates ...float64) []dataset.PatientRecord {
	recs := make([]dataset.PatientRecord, len(rates))
	for i, hr := range rates {
		recs[i] = dataset.PatientRecord{
			HeartRate:   hr,
			BloodOxygen: 98,
			SugarLevel:  90,
		}
	}
	return recs
}

func TestComputeStatistics_Ordering(t *testing.T) {
	populations := [][]float64{
		{80},
		{60, 100},
		{72, 85, 91},
		{55, 60, 78, 102, 130, 44},
	}
	for _, rates := range populations {
		stats, err := ComputeStatistics(recordsWithHeartRates(rates...), VitalHeartRate)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", rates, err)
		}
		if stats.Min > stats.Median || stats.Median > stats.Max {
			t.Errorf("population %v: expected min <= median <= max, got %+v", rates, stats)
		}
		if stats.Mean < stats.Min || stats.Mean > stats.Max {
			t.Errorf("population %v: expected mean within [min, max], got %+v", rates, stats)
		}
	}
}

func TestComputeStatistics_MedianEvenCount(t *testing.T) {
	stats, err := ComputeStatistics(recordsWithHeartRates(60, 70, 80, 90), VitalHeartRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Median != 75 {
		t.Errorf("expected median 75 (average of middle two), got %v", stats.Median)
	}
	if stats.Mean != 75 || stats.Min != 60 || stats.Max != 90 {
		t.Errorf("unexpected aggregate: %+v", stats)
	}
}

func TestComputeStatistics_EmptyPopulation(t *testing.T) {
	_, err := ComputeStatistics(nil, VitalHeartRate)
	if !errors.Is(err, ErrInvalidMetric) {
		t.Fatalf("expected ErrInvalidMetric, got %v", err)
	}
}

func TestComputeStatistics_UnknownVital(t *testing.T) {
	_, err := ComputeStatistics(recordsWithHeartRates(80), Vital("blood_pressure"))
	if !errors.Is(err, ErrInvalidMetric) {
		t.Fatalf("expected ErrInvalidMetric, got %v", err)
	}
}

func TestComputeDeviation_Sign(t *testing.T) {
	cases := []struct {
		value, mean float64
		positive    bool
		zero        bool
	}{
		{90, 80, true, false},
		{70, 80, false, false},
		{80, 80, false, true},
	}
	for _, tc := range cases {
		dev, err := ComputeDeviation(tc.value, tc.mean)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		switch {
		case tc.zero:
			if dev != 0 {
				t.Errorf("value %v mean %v: expected exactly 0.00, got %v", tc.value, tc.mean, dev)
			}
		case tc.positive:
			if dev <= 0 {
				t.Errorf("value %v mean %v: expected positive deviation, got %v", tc.value, tc.mean, dev)
			}
		default:
			if dev >= 0 {
				t.Errorf("value %v mean %v: expected negative deviation, got %v", tc.value, tc.mean, dev)
			}
		}
	}
}

func TestComputeDeviation_Rounding(t *testing.T) {
	dev, err := ComputeDeviation(92, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev != 15.00 {
		t.Errorf("expected +15.00, got %v", dev)
	}
	if ClassifySeverity(dev) != SeverityModerate {
		t.Errorf("expected deviation of exactly 15%% to classify moderate, got %s", ClassifySeverity(dev))
	}
}

func TestComputeDeviation_Deterministic(t *testing.T) {
	first, err := ComputeDeviation(77.77, 83.33)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := ComputeDeviation(77.77, 83.33)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("expected identical result on repeat call, got %v then %v", first, again)
		}
	}
}

func TestComputeDeviation_ZeroMean(t *testing.T) {
	_, err := ComputeDeviation(42, 0)
	if !errors.Is(err, ErrDivisionUndefined) {
		t.Fatalf("expected ErrDivisionUndefined, got %v", err)
	}
}

func TestComputeBMI(t *testing.T) {
	bmi, err := ComputeBMI(170, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bmi != 24.22 {
		t.Errorf("expected 24.22, got %v", bmi)
	}
}

func TestComputeBMI_InvalidMeasurements(t *testing.T) {
	if _, err := ComputeBMI(0, 70); !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("expected ErrInvalidMetric for zero height, got %v", err)
	}
	if _, err := ComputeBMI(170, 0); !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("expected ErrInvalidMetric for zero weight, got %v", err)
	}
}

func TestClassifySeverity_Boundaries(t *testing.T) {
	cases := []struct {
		deviation float64
		want      Severity
	}{
		{0, SeverityNormal},
		{10.00, SeverityNormal},
		{-10.00, SeverityNormal},
		{10.01, SeverityModerate},
		{15.00, SeverityModerate},
		{-15.00, SeverityModerate},
		{15.01, SeveritySevere},
		{-42.5, SeveritySevere},
	}
	for _, tc := range cases {
		if got := ClassifySeverity(tc.deviation); got != tc.want {
			t.Errorf("deviation %v: expected %s, got %s", tc.deviation, tc.want, got)
		}
	}
}

func TestClassifyBMI(t *testing.T) {
	cases := []struct {
		bmi  float64
		want BMIBand
	}{
		{17.0, BMIUnderweight},
		{18.5, BMIHealthy},
		{24.22, BMIHealthy},
		{25.5, BMIOverweight},
		{31.0, BMIObese},
	}
	for _, tc := range cases {
		if got := ClassifyBMI(tc.bmi); got != tc.want {
			t.Errorf("bmi %v: expected %s, got %s", tc.bmi, tc.want, got)
		}
	}
}
