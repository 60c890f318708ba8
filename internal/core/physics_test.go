package core

import (
	"testing"
	"time"
)

func TestFrameDelta(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected float64
	}{
		{"zero", 0, 0},
		{"one frame", FrameDuration, 1},
		{"half frame", FrameDuration / 2, 0.5},
		{"long stall clamps", 3 * time.Second, MaxFrameDelta},
		{"clock went backwards", -time.Second, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FrameDelta(tc.elapsed)
			if diff := got - tc.expected; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("FrameDelta(%v) = %v, expected %v", tc.elapsed, got, tc.expected)
			}
		})
	}
}

func TestIntegrateUsesUpdatedVelocity(t *testing.T) {
	pos, vel := Integrate(100, -8, 0.5, 2)
	if vel != -7 {
		t.Errorf("vel = %v, expected -7", vel)
	}
	if pos != 86 {
		t.Errorf("pos = %v, expected 86", pos)
	}
}

func TestIntegrateZeroDelta(t *testing.T) {
	pos, vel := Integrate(42, 3, 0.45, 0)
	if pos != 42 || vel != 3 {
		t.Errorf("Integrate with dt=0 = (%v, %v), expected (42, 3)", pos, vel)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		x, expected float64
	}{
		{-13, 392},
		{-12, -12},
		{200, 200},
		{393, -12},
	}
	for _, tc := range tests {
		if got := Wrap(tc.x, 380, 12); got != tc.expected {
			t.Errorf("Wrap(%v) = %v, expected %v", tc.x, got, tc.expected)
		}
	}
}
