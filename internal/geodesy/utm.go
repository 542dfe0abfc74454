// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geodesy

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/im7mortal/UTM"
)

const (
	utmMinLatitude = -80.0
	utmMaxLatitude = 84.0
)

// ErrOutOfUTMRange is returned for latitudes that are not covered by the UTM projection.
var ErrOutOfUTMRange = errors.New("latitude outside of UTM coverage")

// UTMCoordinate is a position in the Universal Transverse Mercator projection.
type UTMCoordinate struct {
	Easting    float64
	Northing   float64
	ZoneNumber int
	ZoneLetter string
}

// Zone returns the zone designator, e.g. "32T".
func (u UTMCoordinate) Zone() string {
	return strconv.Itoa(u.ZoneNumber) + u.ZoneLetter
}

// ToUTM projects the given latitude and longitude in degrees into UTM.
func ToUTM(latDeg, lonDeg float64) (UTMCoordinate, error) {
	if latDeg < utmMinLatitude || latDeg > utmMaxLatitude {
		return UTMCoordinate{}, fmt.Errorf("%w: %.6f", ErrOutOfUTMRange, latDeg)
	}
	easting, northing, number, letter, err := UTM.FromLatLon(latDeg, lonDeg, latDeg >= 0)
	if err != nil {
		return UTMCoordinate{}, fmt.Errorf("failed to project coordinate to UTM: %w", err)
	}
	return UTMCoordinate{
		Easting:    easting,
		Northing:   northing,
		ZoneNumber: number,
		ZoneLetter: letter,
	}, nil
}
