package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one persisted prediction, kept for monitoring and future model
// improvement. The full result is not stored, only the fields operators
// actually query on.
type LogEntry struct {
	ID            uuid.UUID `db:"id" json:"id"`
	HospitalID    *string   `db:"hospital_id" json:"hospital_id,omitempty"`
	HospitalName  *string   `db:"hospital_name" json:"hospital_name,omitempty"`
	County        string    `db:"county" json:"county"`
	AgeGroup      string    `db:"age_group" json:"age_group"`
	SeverityCode  int       `db:"severity_code" json:"severity_code"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	AdmissionType string    `db:"admission_type" json:"admission_type"`
	PredictedLOS  float64   `db:"predicted_los" json:"predicted_los"`
	ModelVersion  string    `db:"model_version" json:"model_version"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// LogRepository persists prediction log entries.
type LogRepository interface {
	Insert(ctx context.Context, entry *LogEntry) error
	List(ctx context.Context, limit, offset int) ([]*LogEntry, int, error)
}
