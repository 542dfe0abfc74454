// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package formatter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/waybar-gnss/internal/geodesy"
	"github.com/wneessen/waybar-gnss/internal/solution"
)

const (
	labelLat      localize.MsgID = "Lat:"
	labelLon      localize.MsgID = "Lon:"
	labelHeight   localize.MsgID = "Height:"
	labelAltitude localize.MsgID = "Altitude:"
	labelEasting  localize.MsgID = "Easting:"
	labelNorthing localize.MsgID = "Northing:"
	labelZone     localize.MsgID = "Zone:"
	labelX        localize.MsgID = "X:"
	labelY        localize.MsgID = "Y:"
	labelZ        localize.MsgID = "Z:"
	labelE        localize.MsgID = "E:"
	labelN        localize.MsgID = "N:"
	labelU        localize.MsgID = "U:"
	labelPitch    localize.MsgID = "Pitch:"
	labelYaw      localize.MsgID = "Yaw:"
	labelLength   localize.MsgID = "Length:"

	// horizontalEpsilon is the relative horizontal baseline share below which the yaw is undefined
	// and reported as 0.
	horizontalEpsilon = 1e-6
)

func sprintf(format string, vars ...any) string {
	return fmt.Sprintf(format, vars...)
}

// covarianceNEU formats the standard deviations of a local covariance in north/east/up order.
func covarianceNEU(qe solution.Matrix3x3) string {
	return fmt.Sprintf("N:%6.3f\nE:%6.3f\nU:%6.3f m", geodesy.ClampedSqrt(qe[4]), geodesy.ClampedSqrt(qe[0]),
		geodesy.ClampedSqrt(qe[8]))
}

// covarianceENU formats the standard deviations of a local covariance in east/north/up order.
func covarianceENU(qe solution.Matrix3x3) string {
	return fmt.Sprintf("E:%6.3f\nN:%6.3f\nU:%6.3f m", geodesy.ClampedSqrt(qe[0]), geodesy.ClampedSqrt(qe[4]),
		geodesy.ClampedSqrt(qe[8]))
}

type wgs84Format struct {
	decimal bool
}

func (w wgs84Format) Name() string {
	if w.decimal {
		return "wgs84_float"
	}
	return "wgs84"
}

func (w wgs84Format) Description() localize.MsgID {
	if w.decimal {
		return "WGS84 (decimal degrees)"
	}
	return "WGS84 (DMS)"
}

func (w wgs84Format) Headers(mode AltitudeMode) Headers {
	if mode == Geodetic {
		return Headers{labelLat, labelLon, labelHeight, labelAltitude}
	}
	return Headers{labelLat, labelLon, labelHeight, ""}
}

func (w wgs84Format) render(in renderInput, out *Rendered) {
	pos := geodesy.Ecef2Pos(in.result.Position)
	qe := geodesy.CovEnu(pos.Lat(), pos.Lon(), in.result.Qr)

	latDeg, lonDeg := geodesy.Deg(pos.Lat()), geodesy.Deg(pos.Lon())
	lat, lon := geodesy.FormatDMS(latDeg, true), geodesy.FormatDMS(lonDeg, false)
	if w.decimal {
		lat, lon = fmt.Sprintf("%11.8f°", latDeg), fmt.Sprintf("%11.8f°", lonDeg)
	}

	altitude := ""
	if in.mode == Geodetic {
		altitude = fmt.Sprintf("%.3fm el.", pos.Height()-in.geoidHeight(pos))
	}
	out.setValues(lat, lon, fmt.Sprintf("%.3fm el.", pos.Height()), altitude)
	out.Covariance.Set(covarianceNEU(qe))
}

type utmFormat struct{}

func (utmFormat) Name() string { return "utm" }

func (utmFormat) Description() localize.MsgID { return "UTM" }

func (utmFormat) Headers(mode AltitudeMode) Headers {
	if mode == Geodetic {
		return Headers{labelEasting, labelNorthing, labelAltitude, labelZone}
	}
	return Headers{labelEasting, labelNorthing, labelHeight, labelZone}
}

func (utmFormat) render(in renderInput, out *Rendered) {
	pos := geodesy.Ecef2Pos(in.result.Position)
	utm, err := geodesy.ToUTM(geodesy.Deg(pos.Lat()), geodesy.Deg(pos.Lon()))
	if err != nil {
		// Polar positions have no UTM representation, the previous values stay on display.
		return
	}
	qe := geodesy.CovEnu(pos.Lat(), pos.Lon(), in.result.Qr)

	out.setValues(
		fmt.Sprintf("%.3f km", utm.Easting/1000),
		fmt.Sprintf("%.3f km", utm.Northing/1000),
		fmt.Sprintf("%.3f m el.", pos.Height()-in.geoidHeight(pos)),
		utm.Zone(),
	)
	out.Covariance.Set(covarianceNEU(qe))
}

type ecefFormat struct{}

func (ecefFormat) Name() string { return "ecef" }

func (ecefFormat) Description() localize.MsgID { return "ECEF" }

func (ecefFormat) Headers(AltitudeMode) Headers {
	return Headers{labelX, labelY, labelZ, ""}
}

func (ecefFormat) render(in renderInput, out *Rendered) {
	pos, variance := in.result.Position, in.result.Variance
	out.setValues(formatFixed(pos.X()), formatFixed(pos.Y()), formatFixed(pos.Z()), "")
	out.Covariance.Set(fmt.Sprintf("X:%6.3f\nY:%6.3f\nZ:%6.3f m", geodesy.ClampedSqrt(variance[0]),
		geodesy.ClampedSqrt(variance[1]), geodesy.ClampedSqrt(variance[2])))
}

// formatFixed formats v with three decimals independent of any locale.
func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

type baselineFormat struct {
	pyl bool
}

func (b baselineFormat) Name() string {
	if b.pyl {
		return "pyl_baseline"
	}
	return "enu_baseline"
}

func (b baselineFormat) Description() localize.MsgID {
	if b.pyl {
		return "Baseline (pitch, yaw, length)"
	}
	return "Baseline (ENU)"
}

func (b baselineFormat) Headers(AltitudeMode) Headers {
	if b.pyl {
		return Headers{labelPitch, labelYaw, labelLength, ""}
	}
	return Headers{labelE, labelN, labelU, ""}
}

func (b baselineFormat) render(in renderInput, out *Rendered) {
	base := in.result.BasePosition
	if base.Norm() <= 0 {
		return
	}
	baseline := in.result.Position.Sub(base)
	length := baseline.Norm()
	if length <= 0 {
		return
	}

	basePos := geodesy.Ecef2Pos(base)
	enu := geodesy.Ecef2Enu(basePos.Lat(), basePos.Lon(), baseline)
	qe := geodesy.CovEnu(basePos.Lat(), basePos.Lon(), in.result.Qr)

	if b.pyl {
		pitch, yaw := pitchYaw(enu, length)
		out.setValues(
			fmt.Sprintf("%.3f °", geodesy.Deg(pitch)),
			fmt.Sprintf("%.3f °", geodesy.Deg(yaw)),
			fmt.Sprintf("%.3f m", length),
			"",
		)
	} else {
		out.setValues(
			fmt.Sprintf("%.3f m", enu.E()),
			fmt.Sprintf("%.3f m", enu.N()),
			fmt.Sprintf("%.3f m", enu.U()),
			"",
		)
	}
	out.Covariance.Set(covarianceENU(qe))
}

// pitchYaw returns the elevation of the baseline above the local horizon and its azimuth from
// north, normalized into [0, 2π), both in radians.
func pitchYaw(enu solution.Position3d, length float64) (float64, float64) {
	pitch := math.Asin(math.Max(-1, math.Min(1, enu.U()/length)))
	if math.Hypot(enu.E(), enu.N()) <= horizontalEpsilon*length {
		return pitch, 0
	}
	yaw := math.Mod(math.Atan2(enu.E(), enu.N())+2*math.Pi, 2*math.Pi)
	return pitch, yaw
}
