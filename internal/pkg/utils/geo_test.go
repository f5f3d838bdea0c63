package utils

import (
	"math"
	"testing"
)

func TestCalculateHaversineDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, tolerance        float64
	}{
		{"same point", 19.0760, 72.8777, 19.0760, 72.8777, 0, 0.001},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 5},
		{"mumbai to pune", 19.0760, 72.8777, 18.5204, 73.8567, 119900, 1000},
		{"about forty meters", 19.0760, 72.8777, 19.07636, 72.8777, 40, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateHaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("CalculateHaversineDistance() = %.1f, want %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}
