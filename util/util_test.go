package util_test

import (
	"testing"

	"github.com/isis-controls/cybaman/util"
)

func TestClampHigh(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = 20.
	)
	clamped := util.Clamp(input, low, high)
	if clamped == input {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}

func TestClampLow(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = -1.
	)
	clamped := util.Clamp(input, low, high)
	if clamped == input {
		t.Errorf("expected out of range value %f to be clipped to %f < x < %f, got %f", input, low, high, clamped)
	}
}

func TestClampInRangePassesThrough(t *testing.T) {
	input := 5.
	clamped := util.Clamp(input, 0, 10)
	if clamped != input {
		t.Errorf("expected in range value %f to pass unmodified, got %f", input, clamped)
	}
}

func TestLimiterCheck(t *testing.T) {
	lim := util.Limiter{Min: -150, Max: 200}
	cases := []struct {
		input float64
		ok    bool
	}{
		{-200, false},
		{-150, true},
		{0, true},
		{200, true},
		{200.1, false},
	}
	for _, tc := range cases {
		if got := lim.Check(tc.input); got != tc.ok {
			t.Errorf("Limiter{-150, 200}.Check(%f) = %v, expected %v", tc.input, got, tc.ok)
		}
	}
}

func TestAlmostEqual(t *testing.T) {
	if !util.AlmostEqual(1.0, 1.005, 0.01) {
		t.Error("values within atol reported unequal")
	}
	if util.AlmostEqual(1.0, 1.02, 0.01) {
		t.Error("values outside atol reported equal")
	}
}
