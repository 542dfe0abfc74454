// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package solution

import "fmt"

// Status is the quality of a solution. The numeric values follow the RTKLIB solution quality
// flags so they can be taken from a solution stream without a lookup.
type Status int

const (
	StatusNone Status = iota
	StatusFix
	StatusFloat
	StatusSBAS
	StatusDGPS
	StatusSingle
	StatusPPP
	StatusDR
)

var statusNames = map[Status]string{
	StatusNone:   "NONE",
	StatusFix:    "FIX",
	StatusFloat:  "FLOAT",
	StatusSBAS:   "SBAS",
	StatusDGPS:   "DGPS",
	StatusSingle: "SINGLE",
	StatusPPP:    "PPP",
	StatusDR:     "DR",
}

// String returns the name of the status, or a numeric placeholder for values outside the known set.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Q%d", int(s))
}

// Known reports whether s is one of the defined status values.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}

// Statuses returns all defined status values in ascending order.
func Statuses() []Status {
	return []Status{
		StatusNone, StatusFix, StatusFloat, StatusSBAS, StatusDGPS, StatusSingle, StatusPPP, StatusDR,
	}
}
