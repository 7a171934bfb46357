package analysis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vitalytics/vitalytics/internal/domain/dataset"
	"github.com/vitalytics/vitalytics/internal/domain/metrics"
	"github.com/vitalytics/vitalytics/internal/domain/narrative"
)

// Population is the read-only dataset view the service needs.
type Population interface {
	List() []dataset.PatientRef
	Lookup(id string) (dataset.PatientRecord, error)
	Summary() dataset.Summary
}

// MetricsEngine computes the per-patient metrics payload.
type MetricsEngine interface {
	PatientMetrics(id string) (*metrics.PatientMetrics, error)
}

// Narrator generates a narrative for an analysis request.
type Narrator interface {
	Generate(ctx context.Context, req narrative.AnalysisRequest) (string, error)
}

// Result is one full analysis cycle: the metrics payload plus the narrative
// text, or the reason the narrative is unavailable. NarrativeError being set
// never implies the metrics are missing.
type Result struct {
	*metrics.PatientMetrics
	Narrative      string `json:"narrative,omitempty"`
	NarrativeError string `json:"narrative_error,omitempty"`
}

// Service orchestrates the analysis flow: dataset store, metrics engine and
// narrative generation. All collaborators are injected at construction; a
// nil narrator means narrative generation is disabled for the process.
type Service struct {
	store    Population
	engine   MetricsEngine
	narrator Narrator
	logger   zerolog.Logger
}

func NewService(store Population, engine MetricsEngine, narrator Narrator, logger zerolog.Logger) *Service {
	return &Service{store: store, engine: engine, narrator: narrator, logger: logger}
}

func (s *Service) ListPatients() []dataset.PatientRef {
	return s.store.List()
}

func (s *Service) GetPatient(id string) (dataset.PatientRecord, error) {
	return s.store.Lookup(id)
}

func (s *Service) Metrics(id string) (*metrics.PatientMetrics, error) {
	return s.engine.PatientMetrics(id)
}

func (s *Service) DatasetSummary() dataset.Summary {
	return s.store.Summary()
}

// Analyze computes the patient's metrics and then attempts the narrative.
// Metrics-path errors abort the request. Narrative-path errors degrade: the
// metrics are still returned, with NarrativeError set and a nil error.
func (s *Service) Analyze(ctx context.Context, id string) (*Result, error) {
	pm, err := s.engine.PatientMetrics(id)
	if err != nil {
		return nil, err
	}

	res := &Result{PatientMetrics: pm}
	if s.narrator == nil {
		res.NarrativeError = "narrative generation is disabled: no API credential configured"
		return res, nil
	}

	text, err := s.narrator.Generate(ctx, narrative.AnalysisRequest{
		Record:     pm.Record,
		Stats:      pm.Stats,
		Deviations: pm.Deviations,
	})
	if err != nil {
		s.logger.Error().
			Str("patient_id", id).
			Err(err).
			Msg("narrative generation failed, returning metrics only")
		res.NarrativeError = err.Error()
		return res, nil
	}

	res.Narrative = text
	return res, nil
}
