package facility

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	facilities Repository
}

func NewService(facilities Repository) *Service {
	return &Service{facilities: facilities}
}

func (s *Service) CreateFacility(ctx context.Context, f *Facility) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if f.County == "" {
		return fmt.Errorf("county is required")
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be provided together")
	}
	if f.Latitude != nil {
		if *f.Latitude < -90 || *f.Latitude > 90 {
			return fmt.Errorf("latitude out of range")
		}
		if *f.Longitude < -180 || *f.Longitude > 180 {
			return fmt.Errorf("longitude out of range")
		}
	}
	return s.facilities.Create(ctx, f)
}

func (s *Service) GetFacility(ctx context.Context, id uuid.UUID) (*Facility, error) {
	return s.facilities.GetByID(ctx, id)
}

func (s *Service) ListFacilitiesByCounty(ctx context.Context, county string, limit, offset int) ([]*Facility, int, error) {
	return s.facilities.ListByCounty(ctx, county, limit, offset)
}

func (s *Service) ListCounties(ctx context.Context) ([]*CountySummary, error) {
	return s.facilities.ListCounties(ctx)
}
