package facility

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
)

// mockRepo is a handwritten in-memory repository.
type mockRepo struct {
	facilities map[uuid.UUID]*Facility
}

func newMockRepo() *mockRepo {
	return &mockRepo{facilities: make(map[uuid.UUID]*Facility)}
}

func (m *mockRepo) Create(ctx context.Context, f *Facility) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	m.facilities[f.ID] = f
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Facility, error) {
	f, ok := m.facilities[id]
	if !ok {
		return nil, fmt.Errorf("facility %s not found", id)
	}
	return f, nil
}

func (m *mockRepo) ListByCounty(ctx context.Context, county string, limit, offset int) ([]*Facility, int, error) {
	var matched []*Facility
	for _, f := range m.facilities {
		if f.County == county {
			matched = append(matched, f)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *mockRepo) ListCounties(ctx context.Context) ([]*CountySummary, error) {
	counts := make(map[string]int)
	for _, f := range m.facilities {
		counts[f.County]++
	}
	var out []*CountySummary
	for county, n := range counts {
		out = append(out, &CountySummary{County: county, FacilityCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].County < out[j].County })
	return out, nil
}

func float64Ptr(v float64) *float64 { return &v }

func TestCreateFacility_Valid(t *testing.T) {
	svc := NewService(newMockRepo())
	f := &Facility{
		Name:      "Albany Medical Center",
		County:    "Albany",
		Latitude:  float64Ptr(42.65),
		Longitude: float64Ptr(-73.77),
	}
	if err := svc.CreateFacility(context.Background(), f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID == uuid.Nil {
		t.Error("expected an ID to be assigned")
	}
}

func TestCreateFacility_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name string
		f    Facility
	}{
		{"missing name", Facility{County: "Albany"}},
		{"missing county", Facility{Name: "Albany Medical Center"}},
		{"latitude without longitude", Facility{Name: "A", County: "Albany", Latitude: float64Ptr(42)}},
		{"latitude out of range", Facility{Name: "A", County: "Albany", Latitude: float64Ptr(95), Longitude: float64Ptr(0)}},
		{"longitude out of range", Facility{Name: "A", County: "Albany", Latitude: float64Ptr(42), Longitude: float64Ptr(200)}},
	}
	for _, tc := range cases {
		f := tc.f
		if err := svc.CreateFacility(context.Background(), &f); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestListFacilitiesByCounty_Pagination(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	for i := 0; i < 5; i++ {
		f := &Facility{Name: fmt.Sprintf("Hospital %d", i), County: "Bronx"}
		if err := svc.CreateFacility(context.Background(), f); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	f := &Facility{Name: "Elsewhere General", County: "Erie"}
	if err := svc.CreateFacility(context.Background(), f); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, total, err := svc.ListFacilitiesByCounty(context.Background(), "Bronx", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestListCounties(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	for _, county := range []string{"Albany", "Albany", "Bronx"} {
		f := &Facility{Name: uuid.NewString(), County: county}
		if err := svc.CreateFacility(context.Background(), f); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	counties, err := svc.ListCounties(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counties) != 2 {
		t.Fatalf("expected 2 counties, got %d", len(counties))
	}
	if counties[0].County != "Albany" || counties[0].FacilityCount != 2 {
		t.Errorf("unexpected first county %+v", counties[0])
	}
}
