package metrics

import (
	"github.com/vitalytics/vitalytics/internal/domain/dataset"
)

// Vital names one of the tracked vital signs.
type Vital string

const (
	VitalHeartRate   Vital = "heart_rate"
	VitalBloodOxygen Vital = "blood_oxygen"
	VitalSugarLevel  Vital = "sugar_level"
)

// TrackedVitals returns the tracked vital signs in fixed order. All
// serialization and prompt rendering iterates this slice, never a map, so
// output stays deterministic.
func TrackedVitals() []Vital {
	return []Vital{VitalHeartRate, VitalBloodOxygen, VitalSugarLevel}
}

// Label returns the human-readable column label for the vital.
func (v Vital) Label() string {
	switch v {
	case VitalHeartRate:
		return dataset.ColHeartRate
	case VitalBloodOxygen:
		return dataset.ColBloodOxygen
	case VitalSugarLevel:
		return dataset.ColSugarLevel
	}
	return string(v)
}

// ValueOf extracts the record's value for this vital. The second return is
// false for an untracked vital name.
func (v Vital) ValueOf(r dataset.PatientRecord) (float64, bool) {
	switch v {
	case VitalHeartRate:
		return r.HeartRate, true
	case VitalBloodOxygen:
		return r.BloodOxygen, true
	case VitalSugarLevel:
		return r.SugarLevel, true
	}
	return 0, false
}
