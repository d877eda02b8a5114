package prediction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type logRepoPG struct{ pool *pgxpool.Pool }

func NewLogRepoPG(pool *pgxpool.Pool) LogRepository {
	return &logRepoPG{pool: pool}
}

const logCols = `id, hospital_id, hospital_name, county, age_group,
	severity_code, diagnosis, admission_type, predicted_los, model_version, created_at`

func (r *logRepoPG) Insert(ctx context.Context, entry *LogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prediction_log (id, hospital_id, hospital_name, county, age_group,
			severity_code, diagnosis, admission_type, predicted_los, model_version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		entry.ID, entry.HospitalID, entry.HospitalName, entry.County, entry.AgeGroup,
		entry.SeverityCode, entry.Diagnosis, entry.AdmissionType, entry.PredictedLOS,
		entry.ModelVersion)
	return err
}

func (r *logRepoPG) List(ctx context.Context, limit, offset int) ([]*LogEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prediction_log`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+logCols+` FROM prediction_log
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.HospitalID, &e.HospitalName, &e.County,
			&e.AgeGroup, &e.SeverityCode, &e.Diagnosis, &e.AdmissionType,
			&e.PredictedLOS, &e.ModelVersion, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
