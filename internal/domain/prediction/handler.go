package prediction

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/staycast/staycast/internal/platform/metrics"
	"github.com/staycast/staycast/pkg/pagination"
)

type Handler struct {
	svc          *Service
	validator    *Validator
	featureNames []string
	logger       zerolog.Logger
}

func NewHandler(svc *Service, validator *Validator, featureNames []string, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, validator: validator, featureNames: featureNames, logger: logger}
}

// RegisterRoutes mounts the prediction endpoints. The admin chain guards
// only the operational endpoints (log listing, encode debug); prediction
// and model info stay public.
func (h *Handler) RegisterRoutes(api *echo.Group, admin ...echo.MiddlewareFunc) {
	api.POST("/predictions", h.CreatePrediction)
	api.GET("/predictions", h.ListPredictionLogs, admin...)
	api.GET("/model", h.ModelInfo)
	api.POST("/model/encode", h.EncodeDebug, admin...)
}

// CreatePrediction is the main prediction endpoint: validate, encode, infer,
// analyze, respond.
func (h *Handler) CreatePrediction(c echo.Context) error {
	var raw map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		metrics.PredictionsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "request body must be a JSON object"})
	}

	rec, verr := h.validator.ParseRecord(raw)
	if verr != nil {
		metrics.PredictionsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	}

	hosp := HospitalRef{
		ID:   stringField(raw, "hospital_id"),
		Name: stringField(raw, "hospital_name"),
	}

	result, err := h.svc.Predict(c.Request().Context(), rec, hosp)
	if err != nil {
		return h.predictionError(c, err)
	}

	metrics.PredictionsTotal.WithLabelValues("ok").Inc()
	metrics.PredictedLOSDays.Observe(result.PredictedLOS)
	return c.JSON(http.StatusOK, result)
}

// predictionError maps internal failures to caller-facing responses without
// leaking details; specifics go to the server log only.
func (h *Handler) predictionError(c echo.Context, err error) error {
	rid, _ := c.Get("request_id").(string)

	if errors.Is(err, ErrModelUnavailable) {
		metrics.PredictionsTotal.WithLabelValues("unavailable").Inc()
		h.logger.Error().Str("request_id", rid).Msg("prediction requested while model unavailable")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "prediction service unavailable"})
	}

	metrics.PredictionsTotal.WithLabelValues("error").Inc()

	var unknownCat *UnknownCategoryError
	var unmapped *UnmappedKeyError
	if errors.As(err, &unknownCat) || errors.As(err, &unmapped) {
		// Validated input still failed a lookup: artifacts and schema
		// disagree. Integrity fault, not caller error.
		h.logger.Error().Str("request_id", rid).Err(err).Msg("mapping integrity fault")
	} else {
		h.logger.Error().Str("request_id", rid).Err(err).Msg("prediction failed")
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "prediction failed"})
}

// ListPredictionLogs returns persisted predictions, newest first.
func (h *Handler) ListPredictionLogs(c echo.Context) error {
	pg := pagination.FromContext(c)
	entries, total, err := h.svc.ListLogs(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		rid, _ := c.Get("request_id").(string)
		h.logger.Error().Str("request_id", rid).Err(err).Msg("failed to list prediction logs")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list predictions")
	}
	if entries == nil {
		entries = []*LogEntry{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}

// ModelInfo describes the loaded model and its input contract.
func (h *Handler) ModelInfo(c echo.Context) error {
	m := h.svc.Manifest()
	preview := h.featureNames
	if len(preview) > 15 {
		preview = append(append([]string{}, preview[:15]...), "...")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"model_version":    m.ModelVersion,
		"trained_at":       m.TrainedAt,
		"input_features":   inputFeatureCount,
		"encoded_features": len(h.featureNames),
		"residual_rmse":    m.ResidualRMSE,
		"feature_columns":  preview,
		"required_fields":  RequiredFields(),
	})
}

// EncodeDebug encodes a record without invoking the model, for validating
// the preprocessing pipeline.
func (h *Handler) EncodeDebug(c echo.Context) error {
	var raw map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "request body must be a JSON object"})
	}
	rec, verr := h.validator.ParseRecord(raw)
	if verr != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	}

	enc := h.svc.Encoder()
	vec, err := enc.Encode(rec)
	if err != nil {
		// No prediction was attempted, so this stays out of the
		// predictions_total counter.
		rid, _ := c.Get("request_id").(string)
		h.logger.Error().Str("request_id", rid).Err(err).Msg("encode debug failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "encoding failed"})
	}

	nonZero := enc.NonZero(h.featureNames, vec)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"encoded_features":  len(vec),
		"non_zero_features": len(nonZero),
		"features":          nonZero,
	})
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}
