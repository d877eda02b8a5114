package facility

import (
	"time"

	"github.com/google/uuid"
)

// Facility is one hospital selectable on the county map.
type Facility struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	County    string    `db:"county" json:"county"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CountySummary is a county with its facility count, used to render the
// selection map.
type CountySummary struct {
	County        string `db:"county" json:"county"`
	FacilityCount int    `db:"facility_count" json:"facility_count"`
}
