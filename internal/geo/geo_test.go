package geo

import (
	"errors"
	"math"
	"testing"
)

func TestValidatePoint(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"seoul", 37.5665, 126.9780, false},
		{"lat north pole", 90, 0, false},
		{"lat south pole", -90, 0, false},
		{"lng antimeridian", 0, 180, false},
		{"lng negative antimeridian", 0, -180, false},
		{"lat too high", 90.0001, 0, true},
		{"lat too low", -90.0001, 0, true},
		{"lng too high", 0, 180.0001, true},
		{"lng too low", 0, -180.0001, true},
		{"lat NaN", math.NaN(), 0, true},
		{"lng NaN", 0, math.NaN(), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePoint(tc.lat, tc.lng)
			if tc.wantErr && !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDistanceKm_SelfDistanceIsZero(t *testing.T) {
	d, err := DistanceKm(37.5665, 126.9780, 37.5665, 126.9780)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Errorf("expected zero distance, got %v", d)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	d1, err := DistanceKm(37.5665, 126.9780, 37.5012, 127.0396)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := DistanceKm(37.5012, 127.0396, 37.5665, 126.9780)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestDistanceKm_KnownPair(t *testing.T) {
	// City Hall to Gangnam station, roughly 9 km apart.
	d, err := DistanceKm(37.5665, 126.9780, 37.5012, 127.0396)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d < 8.0 || d > 10.0 {
		t.Errorf("expected roughly 9 km, got %v", d)
	}
}

func TestDistanceKm_NonNegative(t *testing.T) {
	points := [][4]float64{
		{0, 0, 0, 0},
		{-90, 0, 90, 0},
		{37.5665, 126.9780, -33.8688, 151.2093},
		{51.5074, -0.1278, 40.7128, -74.0060},
	}
	for _, p := range points {
		d, err := DistanceKm(p[0], p[1], p[2], p[3])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d < 0 {
			t.Errorf("negative distance %v for %v", d, p)
		}
	}
}

func TestDistanceKm_RejectsInvalidPoints(t *testing.T) {
	if _, err := DistanceKm(91, 0, 0, 0); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate for bad origin, got %v", err)
	}
	if _, err := DistanceKm(0, 0, 0, 181); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate for bad destination, got %v", err)
	}
}
