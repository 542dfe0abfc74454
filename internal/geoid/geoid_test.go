// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoid

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testGrid spans 40°N..50°N and 0°E..20°E in 5°/10° steps.
const testGrid = `40.0 50.0 0.0 20.0 5.0 10.0
 50.0 52.0 54.0
 45.0 47.0 49.0
 40.0 42.0 44.0
`

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func TestEllipsoidal(t *testing.T) {
	if got := Ellipsoidal(rad(45), rad(9)); got != 0 {
		t.Errorf("expected ellipsoidal geoid height to be 0, got %f", got)
	}
}

func TestParseGrid(t *testing.T) {
	t.Run("parsing a valid grid succeeds", func(t *testing.T) {
		grid, err := ParseGrid(strings.NewReader(testGrid))
		if err != nil {
			t.Fatalf("failed to parse grid: %s", err)
		}
		if grid.rows != 3 {
			t.Errorf("expected grid to have 3 rows, got %d", grid.rows)
		}
		if grid.cols != 3 {
			t.Errorf("expected grid to have 3 columns, got %d", grid.cols)
		}
	})
	t.Run("parsing invalid grids fails", func(t *testing.T) {
		tests := []struct {
			name string
			data string
		}{
			{"empty", ""},
			{"short header", "40 50 0"},
			{"non numeric value", "40 50 0 20 5 10 a"},
			{"bad spacing", "40 50 0 20 0 10"},
			{"inverted bounds", "50 40 0 20 5 10"},
			{"value count mismatch", "40 50 0 20 5 10 1 2 3"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := ParseGrid(strings.NewReader(tc.data)); err == nil {
					t.Error("expected grid parsing to fail, but didn't")
				}
			})
		}
	})
	t.Run("header mismatch returns ErrInvalidGrid", func(t *testing.T) {
		_, err := ParseGrid(strings.NewReader("40 50 0 20 5 10 1 2 3"))
		if !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("expected error to be %s, got %v", ErrInvalidGrid, err)
		}
	})
}

func TestGrid_Height(t *testing.T) {
	grid, err := ParseGrid(strings.NewReader(testGrid))
	if err != nil {
		t.Fatalf("failed to parse grid: %s", err)
	}
	tests := []struct {
		name string
		lat  float64
		lon  float64
		want float64
	}{
		{"north west node", 50, 0, 50},
		{"center node", 45, 10, 47},
		{"south east node", 40, 20, 44},
		{"between rows", 47.5, 0, 47.5},
		{"between columns", 40, 5, 41},
		{"cell center", 42.5, 15, 45.5},
		{"latitude clamped north", 60, 0, 50},
		{"latitude clamped south", 30, 20, 44},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := grid.Func()(rad(tc.lat), rad(tc.lon))
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expected geoid height to be %f, got %f", tc.want, got)
			}
		})
	}
}

func TestLoadGrid(t *testing.T) {
	t.Run("loading grid from file succeeds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "geoid.grd")
		if err := os.WriteFile(path, []byte(testGrid), 0o600); err != nil {
			t.Fatalf("failed to write grid file: %s", err)
		}
		grid, err := LoadGrid(path)
		if err != nil {
			t.Fatalf("failed to load grid: %s", err)
		}
		if got := grid.Height(rad(45), rad(10)); math.Abs(got-47) > 1e-9 {
			t.Errorf("expected geoid height to be 47, got %f", got)
		}
	})
	t.Run("loading non-existent grid file fails", func(t *testing.T) {
		if _, err := LoadGrid(filepath.Join(t.TempDir(), "missing.grd")); err == nil {
			t.Error("expected grid loading to fail, but didn't")
		}
	})
}
