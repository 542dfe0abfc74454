// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package formatter

import (
	"fmt"
	"strings"
)

// AltitudeMode selects whether heights are shown ellipsoidal or geoid-corrected.
type AltitudeMode int

const (
	// Ellipsoidal shows heights above the WGS84 ellipsoid.
	Ellipsoidal AltitudeMode = iota
	// Geodetic shows heights corrected by the geoid separation (orthometric heights).
	Geodetic
)

// String returns the preference value of the mode.
func (m AltitudeMode) String() string {
	if m == Geodetic {
		return "geodetic"
	}
	return "ellipsoidal"
}

// ParseAltitudeMode parses the height preference value.
func ParseAltitudeMode(val string) (AltitudeMode, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "", "ellipsoidal":
		return Ellipsoidal, nil
	case "geodetic", "orthometric":
		return Geodetic, nil
	default:
		return Ellipsoidal, fmt.Errorf("invalid altitude mode: %s", val)
	}
}
