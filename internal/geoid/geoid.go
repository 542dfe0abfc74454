// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geoid provides geoid separation lookups used to turn ellipsoidal heights into
// orthometric (mean sea level) heights.
package geoid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

const gridHeaderFields = 6

var (
	// ErrInvalidGrid is returned when a geoid grid file does not match its header.
	ErrInvalidGrid = errors.New("invalid geoid grid")
)

// Func returns the geoid separation N in meters at the given geodetic latitude and longitude in
// radians. The orthometric height is the ellipsoidal height minus N.
type Func func(lat, lon float64) float64

// Ellipsoidal is a Func that always returns 0, leaving heights ellipsoidal.
func Ellipsoidal(float64, float64) float64 {
	return 0
}

// Grid is a regular latitude/longitude grid of geoid separations.
type Grid struct {
	south, north float64
	west, east   float64
	dLat, dLon   float64
	rows, cols   int
	// values are stored row by row from north to south, each row from west to east
	values []float64
}

// LoadGrid reads a geoid grid from the file at path.
func LoadGrid(path string) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoid grid file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return ParseGrid(file)
}

// ParseGrid parses an ASCII geoid grid in the layout of the EGM96 WW15MGH.GRD file: a header
// of six numbers (south, north, west and east bound, latitude and longitude spacing, all in
// degrees) followed by the separations in meters, row by row from north to south.
func ParseGrid(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var numbers []float64
	for scanner.Scan() {
		val, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse geoid grid value %q: %w", scanner.Text(), err)
		}
		numbers = append(numbers, val)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read geoid grid: %w", err)
	}
	if len(numbers) < gridHeaderFields {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidGrid)
	}

	g := &Grid{
		south: numbers[0], north: numbers[1],
		west: numbers[2], east: numbers[3],
		dLat: numbers[4], dLon: numbers[5],
	}
	if g.dLat <= 0 || g.dLon <= 0 || g.north <= g.south || g.east <= g.west {
		return nil, fmt.Errorf("%w: bad header %v", ErrInvalidGrid, numbers[:gridHeaderFields])
	}
	g.rows = int(math.Round((g.north-g.south)/g.dLat)) + 1
	g.cols = int(math.Round((g.east-g.west)/g.dLon)) + 1
	if g.rows < 2 || g.cols < 2 {
		return nil, fmt.Errorf("%w: grid needs at least 2x2 nodes", ErrInvalidGrid)
	}
	g.values = numbers[gridHeaderFields:]
	if len(g.values) != g.rows*g.cols {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidGrid, g.rows*g.cols,
			len(g.values))
	}
	return g, nil
}

// Height returns the bilinearly interpolated geoid separation at the given latitude and longitude
// in radians. Latitudes outside the grid are clamped to its edge, longitudes wrap around.
func (g *Grid) Height(lat, lon float64) float64 {
	latDeg := lat * 180 / math.Pi
	lonDeg := lon * 180 / math.Pi

	latDeg = math.Min(math.Max(latDeg, g.south), g.north)
	fRow := (g.north - latDeg) / g.dLat
	row := int(math.Floor(fRow))
	if row >= g.rows-1 {
		row = g.rows - 2
	}
	if row < 0 {
		row = 0
	}
	ty := fRow - float64(row)

	span := g.east - g.west
	lonDeg = math.Mod(lonDeg-g.west, 360)
	if lonDeg < 0 {
		lonDeg += 360
	}
	if lonDeg > span {
		lonDeg = span
	}
	fCol := lonDeg / g.dLon
	col := int(math.Floor(fCol))
	if col >= g.cols-1 {
		col = g.cols - 2
	}
	if col < 0 {
		col = 0
	}
	tx := fCol - float64(col)

	v00 := g.at(row, col)
	v01 := g.at(row, col+1)
	v10 := g.at(row+1, col)
	v11 := g.at(row+1, col+1)
	return v00*(1-tx)*(1-ty) + v01*tx*(1-ty) + v10*(1-tx)*ty + v11*tx*ty
}

// Func returns the grid lookup as a Func.
func (g *Grid) Func() Func {
	return g.Height
}

func (g *Grid) at(row, col int) float64 {
	return g.values[row*g.cols+col]
}
