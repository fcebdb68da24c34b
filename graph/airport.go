package graph

import (
	"fmt"
	"strings"

	"github.com/gilby125/airport-network/pkg/geo"
)

// Airport is the immutable record stored on each vertex.
type Airport struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  int     `json:"altitude"`
	Timezone  string  `json:"timezone"`
	// RiskScore is a country-level metric shared by every airport in Country.
	// Its direction depends on the graph's RiskMetric.
	RiskScore float64 `json:"risk_score"`
}

// Coordinates returns the airport position.
func (a Airport) Coordinates() geo.Coordinates {
	return geo.Coordinates{Lat: a.Latitude, Lon: a.Longitude}
}

func (a Airport) validate() error {
	switch {
	case a.ID < 0:
		return fmt.Errorf("airport id %d is negative: %w", a.ID, ErrInvalidArgument)
	case strings.TrimSpace(a.Name) == "":
		return fmt.Errorf("airport %d has no name: %w", a.ID, ErrInvalidArgument)
	case strings.TrimSpace(a.Country) == "":
		return fmt.Errorf("airport %d has no country: %w", a.ID, ErrInvalidArgument)
	case !a.Coordinates().IsValid():
		return fmt.Errorf("airport %d has coordinates out of range (%f, %f): %w",
			a.ID, a.Latitude, a.Longitude, ErrInvalidArgument)
	}
	return nil
}

// Route is an undirected airport pair as delivered by the dataset loader.
type Route struct {
	Source      int `json:"source"`
	Destination int `json:"destination"`
}

// RiskMetric fixes how RiskScore is interpreted when ordering countries.
type RiskMetric int

const (
	// SafetyIndex: higher scores are safer, countries are ranked descending.
	SafetyIndex RiskMetric = iota
	// PeaceIndex: lower scores are more peaceful, countries are ranked ascending.
	PeaceIndex
)

// ParseRiskMetric accepts "safety" or "peace" (case-insensitive).
func ParseRiskMetric(s string) (RiskMetric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safety", "safety_index", "":
		return SafetyIndex, nil
	case "peace", "peace_index":
		return PeaceIndex, nil
	}
	return SafetyIndex, fmt.Errorf("unknown risk metric %q: %w", s, ErrInvalidArgument)
}

func (m RiskMetric) String() string {
	if m == PeaceIndex {
		return "peace"
	}
	return "safety"
}

// Better reports whether score a ranks ahead of score b.
func (m RiskMetric) Better(a, b float64) bool {
	if m == PeaceIndex {
		return a < b
	}
	return a > b
}
