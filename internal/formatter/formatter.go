// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package formatter turns a GNSS solution into the display strings of the solution view: four
// labeled coordinate values, a covariance summary, an age summary and the status color.
package formatter

import (
	"image/color"

	"github.com/vorlif/spreak"
	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/waybar-gnss/internal/geoid"
	"github.com/wneessen/waybar-gnss/internal/indicator"
	"github.com/wneessen/waybar-gnss/internal/solution"
	"github.com/wneessen/waybar-gnss/internal/vartype"
)

const ageFormat localize.MsgID = "Age: %.1fs Ratio: %.1f Sats: %d"

// Coordinate is a labeled coordinate row. An unset Value means the row keeps whatever it
// displayed before.
type Coordinate struct {
	Label string
	Value vartype.VarString
}

// Rendered is the display state computed from one solution. It is recomputed on every render.
type Rendered struct {
	Format      Format
	Coordinates [4]Coordinate
	Covariance  vartype.VarString
	Age         string
	Status      solution.Status
	Color       color.RGBA
}

// Formatter renders solutions into display strings. It is stateless apart from the localizer
// and safe for concurrent use.
type Formatter struct {
	localizer *spreak.Localizer
}

// New returns a Formatter that localizes labels with the given localizer. A nil localizer
// keeps the English source strings.
func New(localizer *spreak.Localizer) *Formatter {
	return &Formatter{localizer: localizer}
}

type renderInput struct {
	formatter *Formatter
	result    solution.Result
	mode      AltitudeMode
	lookup    geoid.Func
}

// geoidHeight returns the geoid separation at the given geodetic position. The lookup is only
// consulted in geodetic mode.
func (in renderInput) geoidHeight(pos solution.Position3d) float64 {
	if in.mode != Geodetic || in.lookup == nil {
		return 0
	}
	return in.lookup(pos.Lat(), pos.Lon())
}

// Render computes the display state of the result in the given format. The geoid lookup is only
// used when mode is Geodetic. If the rover position is not yet known, only status, color and age
// are filled and all coordinate values stay unset.
func (f *Formatter) Render(result solution.Result, format Format, lookup geoid.Func, mode AltitudeMode) Rendered {
	if format == nil {
		format = Default
	}
	out := Rendered{
		Format: format,
		Age:    f.getf(ageFormat, result.Age, result.Ratio, result.Satellites),
		Status: result.Status,
		Color:  indicator.ColorFor(result.Status),
	}
	for i, header := range format.Headers(mode) {
		out.Coordinates[i].Label = f.get(header)
	}

	if result.Position.Norm() <= 0 {
		return out
	}
	format.render(renderInput{formatter: f, result: result, mode: mode, lookup: lookup}, &out)
	return out
}

// Label returns the localized form of a header or description.
func (f *Formatter) Label(id localize.MsgID) string {
	return f.get(id)
}

func (f *Formatter) get(id localize.MsgID) string {
	if id == "" {
		return ""
	}
	if f.localizer == nil {
		return string(id)
	}
	return f.localizer.Get(id)
}

func (f *Formatter) getf(id localize.MsgID, vars ...any) string {
	if f.localizer == nil {
		return sprintf(string(id), vars...)
	}
	return f.localizer.Getf(id, vars...)
}

func (out *Rendered) setValues(values ...string) {
	for i, v := range values {
		out.Coordinates[i].Value.Set(v)
	}
}
