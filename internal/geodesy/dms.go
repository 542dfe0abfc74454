// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geodesy

import (
	"fmt"
	"math"
)

const dmsSecondsPrecision = 1e4

// FormatDMS formats an angle in degrees as degrees, minutes and seconds followed by the hemisphere
// letter, e.g. `45°27'13.1234"N`. isLat selects N/S over E/W.
func FormatDMS(deg float64, isLat bool) string {
	hemisphere := "E"
	switch {
	case isLat && deg < 0:
		hemisphere = "S"
	case isLat:
		hemisphere = "N"
	case deg < 0:
		hemisphere = "W"
	}

	// Round on the smallest printed unit first, so 59.99999" carries into the next minute.
	total := math.Round(math.Abs(deg)*3600*dmsSecondsPrecision) / dmsSecondsPrecision
	d := math.Floor(total / 3600)
	m := math.Floor((total - d*3600) / 60)
	s := math.Max(total-d*3600-m*60, 0)

	return fmt.Sprintf("%d°%02d'%07.4f\"%s", int(d), int(m), s, hemisphere)
}
