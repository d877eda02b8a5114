package facility

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, id uuid.UUID) (*Facility, error)
	ListByCounty(ctx context.Context, county string, limit, offset int) ([]*Facility, int, error)
	ListCounties(ctx context.Context) ([]*CountySummary, error)
}
