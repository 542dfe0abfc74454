// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"github.com/wneessen/waybar-gnss/internal/formatter"
)

// View holds the strings currently on display. A render only replaces the values it computed,
// so a degenerate solution leaves the last known position visible.
type View struct {
	format      formatter.Format
	labels      [4]string
	values      [4]string
	covariance  string
	initialized bool
}

// Apply merges a rendered solution into the view. Labels are always taken over. Values are only
// taken over when set, unless the display format changed, in which case the old values are
// dropped first since they belong to a different coordinate system.
func (v *View) Apply(r formatter.Rendered) {
	if !v.initialized || v.format != r.Format {
		v.values = [4]string{}
		v.covariance = ""
		v.format = r.Format
		v.initialized = true
	}
	for i, coord := range r.Coordinates {
		v.labels[i] = coord.Label
		if coord.Value.IsSet() {
			v.values[i] = coord.Value.Value()
		}
	}
	if r.Covariance.IsSet() {
		v.covariance = r.Covariance.Value()
	}
}

// Coordinates returns the labeled coordinate rows currently on display.
func (v *View) Coordinates() []CoordinateView {
	out := make([]CoordinateView, len(v.values))
	for i := range v.values {
		out[i] = CoordinateView{Label: v.labels[i], Value: v.values[i]}
	}
	return out
}

// Covariance returns the covariance summary currently on display.
func (v *View) Covariance() string {
	return v.covariance
}

// HasValues reports whether any coordinate value is on display.
func (v *View) HasValues() bool {
	for _, val := range v.values {
		if val != "" {
			return true
		}
	}
	return false
}
