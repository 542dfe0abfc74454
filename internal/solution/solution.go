// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package solution holds the data model of a GNSS positioning solution as it is delivered by a
// solution source and consumed by the formatter.
package solution

import (
	"math"
	"time"
)

// Position3d is a 3-vector whose frame depends on context. It may hold ECEF coordinates in meters,
// geodetic latitude/longitude in radians plus ellipsoidal height in meters, or local east/north/up
// components in meters. The type does not track the frame, the caller does.
type Position3d [3]float64

// X returns the first component of an ECEF position.
func (p Position3d) X() float64 { return p[0] }

// Y returns the second component of an ECEF position.
func (p Position3d) Y() float64 { return p[1] }

// Z returns the third component of an ECEF position.
func (p Position3d) Z() float64 { return p[2] }

// Lat returns the latitude in radians of a geodetic position.
func (p Position3d) Lat() float64 { return p[0] }

// Lon returns the longitude in radians of a geodetic position.
func (p Position3d) Lon() float64 { return p[1] }

// Height returns the ellipsoidal height in meters of a geodetic position.
func (p Position3d) Height() float64 { return p[2] }

// E returns the east component of a local tangent-plane vector.
func (p Position3d) E() float64 { return p[0] }

// N returns the north component of a local tangent-plane vector.
func (p Position3d) N() float64 { return p[1] }

// U returns the up component of a local tangent-plane vector.
func (p Position3d) U() float64 { return p[2] }

// Norm returns the euclidean length of the vector.
func (p Position3d) Norm() float64 {
	return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
}

// Sub returns p - o.
func (p Position3d) Sub(o Position3d) Position3d {
	return Position3d{p[0] - o[0], p[1] - o[1], p[2] - o[2]}
}

// Matrix3x3 is a row-major 3x3 matrix, used for symmetric position covariances.
type Matrix3x3 [9]float64

// At returns the element in row i and column j.
func (m Matrix3x3) At(i, j int) float64 {
	return m[i*3+j]
}

// Diag returns the diagonal of the matrix.
func (m Matrix3x3) Diag() [3]float64 {
	return [3]float64{m[0], m[4], m[8]}
}

// Solution is a single positioning solution.
type Solution struct {
	// Position is the rover position in ECEF meters.
	Position Position3d
	// Qr is the ECEF position covariance in m².
	Qr Matrix3x3
	// Variance is the per-axis ECEF position variance in m².
	Variance [3]float64
	Status   Status
	// Age is the age of differential corrections in seconds.
	Age float64
	// Ratio is the ambiguity validation ratio.
	Ratio      float64
	Satellites int
	Time       time.Time
}

// Result is a solution together with the base station position used for relative positioning.
type Result struct {
	Solution
	// BasePosition is the base station position in ECEF meters. It is zero if unknown.
	BasePosition Position3d
}

// NewSolution returns a Solution for the given ECEF position and covariance, deriving the
// per-axis variance from the covariance diagonal.
func NewSolution(pos Position3d, qr Matrix3x3, status Status) Solution {
	return Solution{
		Position: pos,
		Qr:       qr,
		Variance: VarianceFromQr(qr),
		Status:   status,
	}
}

// VarianceFromQr returns the per-axis variance stored on the diagonal of the covariance matrix.
func VarianceFromQr(qr Matrix3x3) [3]float64 {
	return qr.Diag()
}
