package fare

import (
	"errors"
	"math"
	"testing"
)

func TestQuote_ZeroDistanceIsBaseFeeFloor(t *testing.T) {
	s := DefaultSchedule()

	q, err := s.Quote(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DistanceFee != 0 {
		t.Errorf("expected zero distance fee, got %d", q.DistanceFee)
	}
	if q.TotalFee != s.BaseFee {
		t.Errorf("expected total %d, got %d", s.BaseFee, q.TotalFee)
	}
}

func TestQuote_WithinBaseDistance(t *testing.T) {
	s := DefaultSchedule()

	q, err := s.Quote(0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DistanceFee != 0 {
		t.Errorf("distance within base should add no fee, got %d", q.DistanceFee)
	}
	if q.TotalFee != s.BaseFee {
		t.Errorf("expected total %d, got %d", s.BaseFee, q.TotalFee)
	}
}

func TestQuote_BeyondBaseDistance(t *testing.T) {
	s := DefaultSchedule()

	// 3.5 km: 2.5 km beyond the base, at 1000/km.
	q, err := s.Quote(3.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DistanceFee != 2500 {
		t.Errorf("expected distance fee 2500, got %d", q.DistanceFee)
	}
	if q.TotalFee != 5500 {
		t.Errorf("expected total 5500, got %d", q.TotalFee)
	}
}

func TestQuote_ComponentsAlwaysAddUp(t *testing.T) {
	s := DefaultSchedule()

	for _, d := range []float64{0, 0.1, 1.0, 1.333, 2.71828, 8.8, 42.0, 123.456} {
		q, err := s.Quote(d)
		if err != nil {
			t.Fatalf("unexpected error at %v: %v", d, err)
		}
		if q.TotalFee != q.BaseFee+q.DistanceFee {
			t.Errorf("d=%v: total %d != base %d + distance %d", d, q.TotalFee, q.BaseFee, q.DistanceFee)
		}
		if q.TotalFee != q.DriverFee+q.PlatformFee {
			t.Errorf("d=%v: total %d != driver %d + platform %d", d, q.TotalFee, q.DriverFee, q.PlatformFee)
		}
		if q.DriverFee < 0 || q.PlatformFee < 0 || q.DistanceFee < 0 {
			t.Errorf("d=%v: negative component in %+v", d, q)
		}
	}
}

func TestQuote_MonotonicInDistance(t *testing.T) {
	s := DefaultSchedule()

	prev := int64(-1)
	for _, d := range []float64{0, 0.5, 1.0, 1.5, 2.0, 5.0, 10.0, 50.0} {
		q, err := s.Quote(d)
		if err != nil {
			t.Fatalf("unexpected error at %v: %v", d, err)
		}
		if q.TotalFee < prev {
			t.Errorf("total fee decreased at d=%v: %d < %d", d, q.TotalFee, prev)
		}
		prev = q.TotalFee
	}
}

func TestQuote_RejectsInvalidDistance(t *testing.T) {
	s := DefaultSchedule()

	for _, d := range []float64{-0.001, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := s.Quote(d); !errors.Is(err, ErrInvalidDistance) {
			t.Errorf("expected ErrInvalidDistance for %v, got %v", d, err)
		}
	}
}

func TestQuote_PlatformRateSplit(t *testing.T) {
	s := DefaultSchedule()

	// 1 km: total is exactly the base fee, 15% of 3000 is 450.
	q, err := s.Quote(1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.PlatformFee != 450 {
		t.Errorf("expected platform fee 450, got %d", q.PlatformFee)
	}
	if q.DriverFee != 2550 {
		t.Errorf("expected driver fee 2550, got %d", q.DriverFee)
	}
}
