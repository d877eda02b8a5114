package prediction

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/staycast/staycast/internal/platform/artifacts"
	"github.com/staycast/staycast/internal/platform/gbm"
)

// confidenceZ is the z-score for the symmetric 95% interval.
const confidenceZ = 1.96

// inputFeatureCount is the number of human-facing model inputs.
const inputFeatureCount = 13

// Service owns the loaded model artifacts and produces predictions. The
// model and mapping tables are read-only shared state; concurrent Predict
// calls need no locking.
type Service struct {
	model    gbm.Regressor
	encoder  *Encoder
	manifest artifacts.Manifest
	logs     LogRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService wires a service from a loaded artifact bundle. logs may be nil
// when prediction logging is disabled.
func NewService(bundle *artifacts.Bundle, logs LogRepository, logger zerolog.Logger) (*Service, error) {
	if bundle == nil || bundle.Model == nil {
		return nil, ErrModelUnavailable
	}
	enc, err := NewEncoder(bundle)
	if err != nil {
		return nil, fmt.Errorf("compile feature schema: %w", err)
	}
	if enc.NumFeatures() != bundle.Model.NumFeatures() {
		return nil, fmt.Errorf("feature schema has %d columns, model expects %d",
			enc.NumFeatures(), bundle.Model.NumFeatures())
	}
	return &Service{
		model:    bundle.Model,
		encoder:  enc,
		manifest: bundle.Manifest,
		logs:     logs,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Encoder exposes the compiled encoder for the encode-debug endpoint.
func (s *Service) Encoder() *Encoder { return s.encoder }

// Manifest returns the loaded model manifest.
func (s *Service) Manifest() artifacts.Manifest { return s.manifest }

// Predict runs the full pipeline for one validated record: encode, evaluate,
// derive the interval and risk factors. Deterministic for identical inputs
// and artifacts; the timestamp is the only varying output.
func (s *Service) Predict(ctx context.Context, rec *AttributeRecord, hosp HospitalRef) (*PredictionResult, error) {
	if s.model == nil {
		return nil, ErrModelUnavailable
	}

	vec, err := s.encoder.Encode(rec)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	estimate, err := s.model.Predict(vec)
	if err != nil {
		return nil, fmt.Errorf("model evaluation: %w", err)
	}
	// LOS cannot be negative; clamp before deriving the interval so the
	// lower <= estimate <= upper ordering always holds.
	estimate = math.Max(estimate, 0)

	margin := confidenceZ * s.manifest.ResidualRMSE
	low := math.Max(0, estimate-margin)
	high := estimate + margin

	result := &PredictionResult{
		PredictedLOS:       round(estimate, 2),
		ConfidenceInterval: [2]float64{round(low, 1), round(high, 1)},
		RiskFactors:        Analyze(rec),
		Metadata: ResultMetadata{
			ModelVersion:        s.manifest.ModelVersion,
			PredictionTimestamp: s.now().UTC(),
			HospitalID:          hosp.ID,
			HospitalName:        hosp.Name,
			InputFeatures:       inputFeatureCount,
		},
	}

	s.logPrediction(ctx, rec, hosp, result)
	return result, nil
}

// logPrediction records the prediction for monitoring. A logging failure is
// reported server-side but never fails the prediction itself.
func (s *Service) logPrediction(ctx context.Context, rec *AttributeRecord, hosp HospitalRef, result *PredictionResult) {
	evt := s.logger.Info().
		Str("county", rec.HospitalCounty).
		Str("age_group", rec.AgeGroup).
		Int("severity", rec.SeverityCode).
		Str("diagnosis", rec.MDCDescription).
		Str("admission_type", rec.AdmissionType).
		Float64("predicted_los", result.PredictedLOS).
		Str("model_version", result.Metadata.ModelVersion)
	if hosp.Name != "" {
		evt = evt.Str("hospital_name", hosp.Name)
	}
	evt.Msg("prediction")

	if s.logs == nil {
		return
	}
	entry := &LogEntry{
		County:        rec.HospitalCounty,
		AgeGroup:      rec.AgeGroup,
		SeverityCode:  rec.SeverityCode,
		Diagnosis:     rec.MDCDescription,
		AdmissionType: rec.AdmissionType,
		PredictedLOS:  result.PredictedLOS,
		ModelVersion:  result.Metadata.ModelVersion,
	}
	if hosp.ID != "" {
		entry.HospitalID = &hosp.ID
	}
	if hosp.Name != "" {
		entry.HospitalName = &hosp.Name
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist prediction log")
	}
}

// ListLogs returns persisted prediction log entries, newest first.
func (s *Service) ListLogs(ctx context.Context, limit, offset int) ([]*LogEntry, int, error) {
	if s.logs == nil {
		return nil, 0, nil
	}
	return s.logs.List(ctx, limit, offset)
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
