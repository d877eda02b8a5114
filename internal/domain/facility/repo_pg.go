package facility

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const facilityCols = `id, name, county, latitude, longitude, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, f *Facility) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO facility (id, name, county, latitude, longitude)
		VALUES ($1,$2,$3,$4,$5)`,
		f.ID, f.Name, f.County, f.Latitude, f.Longitude)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Facility, error) {
	var f Facility
	err := r.pool.QueryRow(ctx, `SELECT `+facilityCols+` FROM facility WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &f.County, &f.Latitude, &f.Longitude, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repoPG) ListByCounty(ctx context.Context, county string, limit, offset int) ([]*Facility, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM facility WHERE county = $1`, county).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+facilityCols+` FROM facility
		WHERE county = $1 ORDER BY name LIMIT $2 OFFSET $3`, county, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.County, &f.Latitude, &f.Longitude,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &f)
	}
	return out, total, rows.Err()
}

func (r *repoPG) ListCounties(ctx context.Context) ([]*CountySummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT county, COUNT(*) AS facility_count
		FROM facility GROUP BY county ORDER BY county`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CountySummary
	for rows.Next() {
		var c CountySummary
		if err := rows.Scan(&c.County, &c.FacilityCount); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
