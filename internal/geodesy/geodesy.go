// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geodesy implements the coordinate conversions needed to display a GNSS solution: ECEF to
// geodetic and back, rotations into the local east/north/up frame and covariance projections.
package geodesy

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wneessen/waybar-gnss/internal/solution"
)

const (
	// EarthSemiMajorAxis is the WGS84 semi-major axis in meters.
	EarthSemiMajorAxis = 6378137.0
	// EarthFlattening is the WGS84 flattening.
	EarthFlattening = 1.0 / 298.257223563

	ecefTolerance = 1e-9
	maxIterations = 100
)

var eccentricitySq = EarthFlattening * (2 - EarthFlattening)

// Ecef2Pos converts an ECEF position in meters to geodetic latitude and longitude in radians and
// ellipsoidal height in meters.
func Ecef2Pos(ecef solution.Position3d) solution.Position3d {
	r2 := ecef[0]*ecef[0] + ecef[1]*ecef[1]
	z, zk, v := ecef[2], 0.0, EarthSemiMajorAxis
	for i := 0; i < maxIterations && math.Abs(z-zk) >= ecefTolerance; i++ {
		zk = z
		sinp := z / math.Sqrt(r2+z*z)
		v = EarthSemiMajorAxis / math.Sqrt(1-eccentricitySq*sinp*sinp)
		z = ecef[2] + v*eccentricitySq*sinp
	}

	var pos solution.Position3d
	switch {
	case r2 > 1e-12:
		pos[0] = math.Atan(z / math.Sqrt(r2))
		pos[1] = math.Atan2(ecef[1], ecef[0])
	case ecef[2] > 0:
		pos[0] = math.Pi / 2
	default:
		pos[0] = -math.Pi / 2
	}
	pos[2] = math.Sqrt(r2+z*z) - v
	return pos
}

// Pos2Ecef converts a geodetic position (radians, meters) to ECEF meters.
func Pos2Ecef(pos solution.Position3d) solution.Position3d {
	sinp, cosp := math.Sincos(pos.Lat())
	sinl, cosl := math.Sincos(pos.Lon())
	v := EarthSemiMajorAxis / math.Sqrt(1-eccentricitySq*sinp*sinp)

	return solution.Position3d{
		(v + pos.Height()) * cosp * cosl,
		(v + pos.Height()) * cosp * sinl,
		(v*(1-eccentricitySq) + pos.Height()) * sinp,
	}
}

// XYZ2ENU returns the rotation matrix from ECEF to the local east/north/up frame at the given
// geodetic latitude and longitude in radians.
func XYZ2ENU(lat, lon float64) *mat.Dense {
	sinp, cosp := math.Sincos(lat)
	sinl, cosl := math.Sincos(lon)
	return mat.NewDense(3, 3, []float64{
		-sinl, cosl, 0,
		-sinp * cosl, -sinp * sinl, cosp,
		cosp * cosl, cosp * sinl, sinp,
	})
}

// Ecef2Enu rotates an ECEF vector into local east/north/up components at the given latitude
// and longitude.
func Ecef2Enu(lat, lon float64, vec solution.Position3d) solution.Position3d {
	var out mat.VecDense
	out.MulVec(XYZ2ENU(lat, lon), mat.NewVecDense(3, vec[:]))
	return solution.Position3d{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// Enu2Ecef rotates local east/north/up components back into an ECEF vector.
func Enu2Ecef(lat, lon float64, enu solution.Position3d) solution.Position3d {
	var out mat.VecDense
	out.MulVec(XYZ2ENU(lat, lon).T(), mat.NewVecDense(3, enu[:]))
	return solution.Position3d{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// CovEnu projects an ECEF covariance into the local frame: Qe = E·Q·Eᵀ.
func CovEnu(lat, lon float64, q solution.Matrix3x3) solution.Matrix3x3 {
	e := XYZ2ENU(lat, lon)
	var tmp, out mat.Dense
	tmp.Mul(e, matrix(q))
	out.Mul(&tmp, e.T())
	return fromDense(&out)
}

// CovEcef projects a local east/north/up covariance into ECEF: Q = Eᵀ·Qe·E.
func CovEcef(lat, lon float64, qe solution.Matrix3x3) solution.Matrix3x3 {
	e := XYZ2ENU(lat, lon)
	var tmp, out mat.Dense
	tmp.Mul(e.T(), matrix(qe))
	out.Mul(&tmp, e)
	return fromDense(&out)
}

// ClampedSqrt returns the square root of v, treating negative values from numerical noise as zero.
func ClampedSqrt(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Deg converts radians to degrees.
func Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Rad converts degrees to radians.
func Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func matrix(m solution.Matrix3x3) *mat.Dense {
	data := make([]float64, len(m))
	copy(data, m[:])
	return mat.NewDense(3, 3, data)
}

func fromDense(d *mat.Dense) solution.Matrix3x3 {
	var m solution.Matrix3x3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i*3+j] = d.At(i, j)
		}
	}
	return m
}
