// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package indicator maps solution status values to the colors of the status indicator.
package indicator

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/wneessen/waybar-gnss/internal/solution"
)

const classPrefix = "gnss-"

var (
	// Fallback is the color for status values without a mapping.
	Fallback = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	// DarkGray is the color of the closed (no solution) state.
	DarkGray = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
)

var statusColors = map[solution.Status]color.RGBA{
	solution.StatusNone:   DarkGray,
	solution.StatusFix:    {R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	solution.StatusFloat:  {R: 0xff, G: 0x7f, B: 0x00, A: 0xff},
	solution.StatusSBAS:   {R: 0xff, G: 0x00, B: 0xff, A: 0xff},
	solution.StatusDGPS:   {R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	solution.StatusSingle: {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	solution.StatusPPP:    {R: 0x00, G: 0x80, B: 0x80, A: 0xff},
	solution.StatusDR:     {R: 0xff, G: 0xff, B: 0x00, A: 0xff},
}

// ColorFor returns the indicator color of the given status.
func ColorFor(status solution.Status) color.RGBA {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return Fallback
}

// Hex returns the indicator color of the given status as #rrggbb.
func Hex(status solution.Status) string {
	return HexColor(ColorFor(status))
}

// HexColor formats c as #rrggbb.
func HexColor(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// Class returns the CSS class name for the given status, e.g. "gnss-fix".
func Class(status solution.Status) string {
	if !status.Known() {
		return classPrefix + "unknown"
	}
	return classPrefix + strings.ToLower(status.String())
}

// Markup returns glyph wrapped into a Pango span in the indicator color of the given status.
func Markup(status solution.Status, glyph string) string {
	return fmt.Sprintf(`<span foreground="%s">%s</span>`, Hex(status), glyph)
}
