// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package source defines the providers that deliver GNSS solutions to the service.
package source

import (
	"context"
	"time"

	"github.com/wneessen/waybar-gnss/internal/geodesy"
	"github.com/wneessen/waybar-gnss/internal/solution"
)

// Provider streams positioning solutions until the context is canceled. The returned channel is
// closed when the provider stops.
type Provider interface {
	Name() string
	Stream(ctx context.Context) <-chan solution.Result
}

// BasePosition converts a configured base station position in degrees and ellipsoidal meters
// into ECEF. A disabled base yields the zero position, which the formatter treats as unknown.
func BasePosition(enable bool, latDeg, lonDeg, height float64) solution.Position3d {
	if !enable {
		return solution.Position3d{}
	}
	return geodesy.Pos2Ecef(solution.Position3d{geodesy.Rad(latDeg), geodesy.Rad(lonDeg), height})
}

// SleepContext waits for the given duration. It returns false if the context was canceled first.
func SleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
