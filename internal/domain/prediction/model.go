package prediction

import (
	"time"
)

// RiskFactor is one qualitative explanatory factor derived from the raw
// record. Impact levels are "low", "medium" or "high"; ImpactDays is the
// approximate day-impact range from the static rule table.
type RiskFactor struct {
	Factor      string `json:"factor"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	ImpactDays  string `json:"impact_days"`
}

// HospitalRef identifies the hospital the caller selected on the map. It is
// request metadata, echoed back in the result, never a model input.
type HospitalRef struct {
	ID   string `json:"hospital_id"`
	Name string `json:"hospital_name"`
}

// ResultMetadata describes how and when a prediction was produced.
type ResultMetadata struct {
	ModelVersion        string    `json:"model_version"`
	PredictionTimestamp time.Time `json:"prediction_timestamp"`
	HospitalID          string    `json:"hospital_id,omitempty"`
	HospitalName        string    `json:"hospital_name,omitempty"`
	InputFeatures       int       `json:"input_features"`
}

// PredictionResult is the full response for one prediction request. It is
// created per request and never persisted server-side in this form.
type PredictionResult struct {
	PredictedLOS       float64        `json:"predicted_los"`
	ConfidenceInterval [2]float64     `json:"confidence_interval"`
	RiskFactors        []RiskFactor   `json:"risk_factors"`
	Metadata           ResultMetadata `json:"metadata"`
}
