// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vorlif/spreak/localize"
)

// ErrUnsupportedFormat is returned when a format name does not match any display format.
var ErrUnsupportedFormat = errors.New("unsupported display format")

// Headers are the labels of the four coordinate rows. An empty label hides the row.
type Headers [4]localize.MsgID

// Format is a display format of the solution coordinates. The set of formats is closed: the
// unexported render method keeps implementations inside this package.
type Format interface {
	// Name is the identifier used in configuration files.
	Name() string
	// Description is a human-readable name of the format.
	Description() localize.MsgID
	// Headers returns the coordinate labels for the given altitude mode.
	Headers(mode AltitudeMode) Headers

	render(in renderInput, out *Rendered)
}

var (
	// WGS84 displays latitude and longitude as degrees, minutes and seconds.
	WGS84 Format = wgs84Format{}
	// WGS84Float displays latitude and longitude as signed decimal degrees.
	WGS84Float Format = wgs84Format{decimal: true}
	// UTM displays easting, northing and zone in the UTM projection.
	UTM Format = utmFormat{}
	// ECEF displays the earth-centered, earth-fixed cartesian coordinates.
	ECEF Format = ecefFormat{}
	// ENUBaseline displays the base-to-rover baseline as east, north and up components.
	ENUBaseline Format = baselineFormat{}
	// PYLBaseline displays the baseline as pitch, yaw and length.
	PYLBaseline Format = baselineFormat{pyl: true}

	// Default is the format used when none is selected.
	Default = WGS84
)

var formats = []Format{WGS84, WGS84Float, UTM, ECEF, ENUBaseline, PYLBaseline}

// Formats returns all display formats in cycle order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat returns the display format with the given name. Matching ignores case and accepts
// dashes in place of underscores.
func ParseFormat(name string) (Format, error) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, f := range formats {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Next returns the format following f in cycle order, wrapping around after the last one.
func Next(f Format) Format {
	for i, candidate := range formats {
		if candidate == f {
			return formats[(i+1)%len(formats)]
		}
	}
	return Default
}
