package metrics

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/vitalytics/vitalytics/internal/domain/dataset"
)

// PatientMetrics is the consumer-facing payload for one patient: the record,
// the population statistics per vital, the patient's deviation and severity
// per vital, and the derived BMI.
type PatientMetrics struct {
	Record     dataset.PatientRecord `json:"record"`
	Stats      map[Vital]Statistics  `json:"statistics"`
	Deviations map[Vital]float64     `json:"deviations"`
	Severities map[Vital]Severity    `json:"severities"`
	BMI        float64               `json:"bmi,omitempty"`
	BMIBand    BMIBand               `json:"bmi_band,omitempty"`
}

// Population is the read-only view of the dataset store the engine needs.
type Population interface {
	Lookup(id string) (dataset.PatientRecord, error)
	Records() []dataset.PatientRecord
}

// Engine computes per-patient metrics against the population table.
type Engine struct {
	store  Population
	logger zerolog.Logger
}

func NewEngine(store Population, logger zerolog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// PatientMetrics looks up the patient and computes statistics, deviations and
// severities for every tracked vital sign. Statistics are recomputed from the
// full table on each call. A vital whose population mean is zero is skipped
// without affecting the other vitals; an undefined aggregate aborts the
// request. dataset.ErrPatientNotFound propagates and is terminal for the
// request.
func (e *Engine) PatientMetrics(id string) (*PatientMetrics, error) {
	rec, err := e.store.Lookup(id)
	if err != nil {
		return nil, err
	}

	records := e.store.Records()
	pm := &PatientMetrics{
		Record:     rec,
		Stats:      make(map[Vital]Statistics, len(TrackedVitals())),
		Deviations: make(map[Vital]float64, len(TrackedVitals())),
		Severities: make(map[Vital]Severity, len(TrackedVitals())),
	}

	for _, vital := range TrackedVitals() {
		stats, err := ComputeStatistics(records, vital)
		if err != nil {
			return nil, err
		}
		pm.Stats[vital] = stats

		value, _ := vital.ValueOf(rec)
		dev, err := ComputeDeviation(value, stats.Mean)
		if err != nil {
			if errors.Is(err, ErrDivisionUndefined) {
				e.logger.Debug().
					Str("patient_id", id).
					Str("vital", string(vital)).
					Msg("skipping deviation: population mean is zero")
				continue
			}
			return nil, err
		}
		pm.Deviations[vital] = dev
		pm.Severities[vital] = ClassifySeverity(dev)
	}

	bmi, err := ComputeBMI(rec.HeightCM, rec.WeightKG)
	if err != nil {
		e.logger.Debug().
			Str("patient_id", id).
			Err(err).
			Msg("skipping BMI: measurements unusable")
	} else {
		pm.BMI = bmi
		pm.BMIBand = ClassifyBMI(bmi)
	}

	return pm, nil
}
