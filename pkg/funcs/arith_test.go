package funcs

import (
	"math"
	"testing"
)

func TestAddChecked(t *testing.T) {
	tests := []struct {
		a, b, want int64
		ok         bool
	}{
		{1, 2, 3, true},
		{math.MaxInt64, 0, math.MaxInt64, true},
		{math.MaxInt64, 1, 0, false},
		{math.MinInt64, -1, 0, false},
		{-1, math.MinInt64 + 1, math.MinInt64, true},
	}
	for _, tt := range tests {
		got, ok := addChecked(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("addChecked(%d, %d) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSubChecked(t *testing.T) {
	tests := []struct {
		a, b, want int64
		ok         bool
	}{
		{5, 3, 2, true},
		{math.MinInt64, 1, 0, false},
		{0, math.MinInt64, 0, false},
		{math.MaxInt64, -1, 0, false},
		{0, math.MaxInt64, math.MinInt64 + 1, true},
	}
	for _, tt := range tests {
		got, ok := subChecked(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("subChecked(%d, %d) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMulChecked(t *testing.T) {
	tests := []struct {
		a, b, want int64
		ok         bool
	}{
		{6, 7, 42, true},
		{0, math.MinInt64, 0, true},
		{math.MinInt64, 1, math.MinInt64, true},
		{math.MinInt64, -1, 0, false},
		{math.MaxInt64, 2, 0, false},
		{-math.MaxInt64, -1, math.MaxInt64, true},
		{1 << 32, 1 << 32, 0, false},
	}
	for _, tt := range tests {
		got, ok := mulChecked(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("mulChecked(%d, %d) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNegChecked(t *testing.T) {
	if got, ok := negChecked(5); !ok || got != -5 {
		t.Errorf("negChecked(5) = %d, %v", got, ok)
	}
	if _, ok := negChecked(math.MinInt64); ok {
		t.Error("negChecked(MinInt64) did not overflow")
	}
}

func TestPowChecked(t *testing.T) {
	tests := []struct {
		base, exp, want int64
		ok              bool
	}{
		{2, 10, 1024, true},
		{2, 0, 1, true},
		{0, 0, 1, true},
		{0, 5, 0, true},
		{1, math.MaxInt64, 1, true},
		{-1, math.MaxInt64, -1, true},
		{-1, math.MaxInt64 - 1, 1, true},
		{2, 63, 0, false},
		{2, 62, 1 << 62, true},
		{10, 19, 0, false},
	}
	for _, tt := range tests {
		got, ok := powChecked(tt.base, tt.exp)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("powChecked(%d, %d) = %d, %v; want %d, %v", tt.base, tt.exp, got, ok, tt.want, tt.ok)
		}
	}
}
