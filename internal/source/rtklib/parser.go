// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package rtklib

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/waybar-gnss/internal/geodesy"
	"github.com/wneessen/waybar-gnss/internal/solution"
)

var (
	// ErrInvalidLine is returned for solution lines that cannot be parsed.
	ErrInvalidLine = errors.New("invalid solution line")

	// ErrMissingBase is returned for e/n/u baseline lines while neither the stream nor the
	// configuration provided a base position.
	ErrMissingBase = errors.New("baseline solution without base position")
)

type lineFormat int

const (
	formatAuto lineFormat = iota
	formatXYZ
	formatLLH
	formatENU
)

const (
	// minFields covers time, position, quality, satellite count and the six covariance terms. Age
	// and ratio were added in later RTKLIB versions and are optional.
	minFields = 13

	// ecefThreshold separates ECEF coordinates from geodetic ones when the stream did not
	// announce its format. No geodetic triple comes close to an earth radius.
	ecefThreshold = 1e6

	timeLayout = "2006/01/02 15:04:05"
)

var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// Parser decodes the lines of an RTKLIB solution stream. It keeps the output format and the
// reference position announced by header lines, so one Parser must be used per stream.
type Parser struct {
	format lineFormat
	base   solution.Position3d
}

// NewParser returns a Parser that reports base as the base position until the stream announces
// its own reference position.
func NewParser(base solution.Position3d) *Parser {
	return &Parser{base: base}
}

// Base returns the base position currently attached to parsed solutions.
func (p *Parser) Base() solution.Position3d {
	return p.base
}

// Parse decodes a single line. Header, comment and empty lines yield ok == false and update the
// parser state where applicable.
func (p *Parser) Parse(line string) (result solution.Result, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return result, false, nil
	}
	if strings.HasPrefix(line, "%") {
		return result, false, p.parseHeader(line)
	}
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return result, false, fmt.Errorf("%w: expected at least %d fields, got %d", ErrInvalidLine,
			minFields, len(fields))
	}

	ts, err := parseTime(fields[0], fields[1])
	if err != nil {
		return result, false, err
	}
	pos, err := parseFloats(fields[2:5])
	if err != nil {
		return result, false, err
	}
	quality, err := strconv.Atoi(fields[5])
	if err != nil {
		return result, false, fmt.Errorf("%w: quality flag %q", ErrInvalidLine, fields[5])
	}
	sats, err := strconv.Atoi(fields[6])
	if err != nil {
		return result, false, fmt.Errorf("%w: satellite count %q", ErrInvalidLine, fields[6])
	}
	sd, err := parseFloats(fields[7:13])
	if err != nil {
		return result, false, err
	}
	var age, ratio float64
	if len(fields) > 13 {
		if age, err = parseFloat(fields[13]); err != nil {
			return result, false, err
		}
	}
	if len(fields) > 14 {
		if ratio, err = parseFloat(fields[14]); err != nil {
			return result, false, err
		}
	}

	format := p.format
	if format == formatAuto {
		format = formatLLH
		if math.Sqrt(pos[0]*pos[0]+pos[1]*pos[1]+pos[2]*pos[2]) > ecefThreshold {
			format = formatXYZ
		}
	}

	var ecef solution.Position3d
	var qr solution.Matrix3x3
	switch format {
	case formatXYZ:
		ecef = solution.Position3d{pos[0], pos[1], pos[2]}
		qr = covarianceXYZ(sd)
	case formatENU:
		if p.base.Norm() <= 0 {
			return result, false, ErrMissingBase
		}
		base := geodesy.Ecef2Pos(p.base)
		offset := geodesy.Enu2Ecef(base.Lat(), base.Lon(), solution.Position3d{pos[0], pos[1], pos[2]})
		ecef = solution.Position3d{p.base.X() + offset.X(), p.base.Y() + offset.Y(), p.base.Z() + offset.Z()}
		qr = geodesy.CovEcef(base.Lat(), base.Lon(), covarianceBaseline(sd))
	default:
		llh := solution.Position3d{geodesy.Rad(pos[0]), geodesy.Rad(pos[1]), pos[2]}
		ecef = geodesy.Pos2Ecef(llh)
		qr = geodesy.CovEcef(llh.Lat(), llh.Lon(), covarianceLLH(sd))
	}

	result.Solution = solution.NewSolution(ecef, qr, solution.Status(quality))
	result.Age = age
	result.Ratio = ratio
	result.Satellites = sats
	result.Time = ts
	result.BasePosition = p.base
	return result, true, nil
}

// parseHeader evaluates the comment lines RTKLIB writes at the start of a stream. The column
// header tells the output format and "ref pos" the position of the base station.
func (p *Parser) parseHeader(line string) error {
	body := strings.TrimSpace(strings.TrimPrefix(line, "%"))
	switch {
	case strings.HasPrefix(body, "ref pos"):
		idx := strings.Index(body, ":")
		if idx == -1 {
			return fmt.Errorf("%w: reference position without values", ErrInvalidLine)
		}
		fields := strings.Fields(body[idx+1:])
		if len(fields) < 3 {
			return fmt.Errorf("%w: reference position needs 3 values, got %d", ErrInvalidLine, len(fields))
		}
		vals, err := parseFloats(fields[:3])
		if err != nil {
			return err
		}
		ref := solution.Position3d{vals[0], vals[1], vals[2]}
		if ref.Norm() <= ecefThreshold {
			ref = geodesy.Pos2Ecef(solution.Position3d{geodesy.Rad(vals[0]), geodesy.Rad(vals[1]), vals[2]})
		}
		p.base = ref
	case strings.Contains(body, "x-ecef"):
		p.format = formatXYZ
	case strings.Contains(body, "latitude"):
		p.format = formatLLH
	case strings.Contains(body, "e-baseline"):
		p.format = formatENU
	}
	return nil
}

// covarianceXYZ builds the ECEF covariance from sdx sdy sdz sdxy sdyz sdzx.
func covarianceXYZ(sd []float64) solution.Matrix3x3 {
	xx, yy, zz := signedSquare(sd[0]), signedSquare(sd[1]), signedSquare(sd[2])
	xy, yz, zx := signedSquare(sd[3]), signedSquare(sd[4]), signedSquare(sd[5])
	return solution.Matrix3x3{
		xx, xy, zx,
		xy, yy, yz,
		zx, yz, zz,
	}
}

// covarianceLLH builds the local covariance from the llh columns sdn sde sdu sdne sdeu sdun.
// RTKLIB fills them with the row-major ENU covariance elements Q[4] Q[0] Q[8] Q[1] Q[2] Q[5].
func covarianceLLH(sd []float64) solution.Matrix3x3 {
	return localCovariance(sd[1], sd[0], sd[2], sd[3], sd[4], sd[5])
}

// covarianceBaseline builds the local covariance from the enu columns sde sdn sdu sden sdnu sdue,
// which hold Q[0] Q[4] Q[8] Q[1] Q[5] Q[2].
func covarianceBaseline(sd []float64) solution.Matrix3x3 {
	return localCovariance(sd[0], sd[1], sd[2], sd[3], sd[5], sd[4])
}

// localCovariance assembles the east/north/up covariance from signed square root terms.
func localCovariance(e, n, u, en, eu, nu float64) solution.Matrix3x3 {
	ee, nn, uu := signedSquare(e), signedSquare(n), signedSquare(u)
	en, eu, nu = signedSquare(en), signedSquare(eu), signedSquare(nu)
	return solution.Matrix3x3{
		ee, en, eu,
		en, nn, nu,
		eu, nu, uu,
	}
}

// signedSquare undoes the signed square root RTKLIB applies to covariance terms.
func signedSquare(v float64) float64 {
	return v * math.Abs(v)
}

// parseTime accepts both calendar ("2025/01/18 12:00:00.000") and GPS week/seconds of week
// ("2350 388800.000") time stamps.
func parseTime(date, clock string) (time.Time, error) {
	if strings.Contains(date, "/") {
		ts, err := time.Parse(timeLayout, date+" "+clock)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: time stamp %q: %w", ErrInvalidLine, date+" "+clock, err)
		}
		return ts, nil
	}

	week, err := strconv.Atoi(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: gps week %q", ErrInvalidLine, date)
	}
	tow, err := parseFloat(clock)
	if err != nil {
		return time.Time{}, err
	}
	offset := time.Duration(week)*7*24*time.Hour + time.Duration(tow*float64(time.Second))
	return gpsEpoch.Add(offset), nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, field := range fields {
		val, err := parseFloat(field)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func parseFloat(field string) (float64, error) {
	val, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q", ErrInvalidLine, field)
	}
	return val, nil
}
