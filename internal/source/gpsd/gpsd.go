// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package gpsd implements a solution source backed by a gpsd daemon.
package gpsd

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/waybar-gnss/internal/geodesy"
	"github.com/wneessen/waybar-gnss/internal/logger"
	"github.com/wneessen/waybar-gnss/internal/solution"
	"github.com/wneessen/waybar-gnss/internal/source"
)

const name = "gpsd"

// session is the part of a gpsd session the provider needs.
type session interface {
	AddFilter(class string, f gpsd.Filter)
	Watch() chan bool
}

type Provider struct {
	name           string
	addr           string
	base           solution.Position3d
	logger         *logger.Logger
	reconnectDelay time.Duration
	dialFn         func(addr string) (session, error)

	mu         sync.Mutex
	satellites int
}

// New returns a Provider for the gpsd daemon at addr. gpsd does not know about base stations,
// so base is attached to every solution as is.
func New(addr string, reconnectDelay time.Duration, base solution.Position3d, log *logger.Logger) (*Provider, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if addr == "" {
		return nil, errors.New("gpsd address is required")
	}
	if reconnectDelay <= 0 {
		reconnectDelay = time.Second * 5
	}
	return &Provider{
		name:           name,
		addr:           addr,
		base:           base,
		logger:         log,
		reconnectDelay: reconnectDelay,
		dialFn: func(addr string) (session, error) {
			return gpsd.Dial(addr)
		},
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// Stream watches gpsd and emits a solution for every TPV report. SKY reports update the satellite
// count attached to the following solutions.
func (p *Provider) Stream(ctx context.Context) <-chan solution.Result {
	sink := &resultSink{out: make(chan solution.Result)}

	go func() {
		defer sink.close()

		for {
			if ctx.Err() != nil {
				return
			}

			sess, err := p.dialFn(p.addr)
			if err != nil {
				p.logger.Warn("failed to connect to gpsd", slog.String("addr", p.addr), logger.Err(err))
				if !source.SleepContext(ctx, p.reconnectDelay) {
					return
				}
				continue
			}

			sess.AddFilter("SKY", func(r interface{}) {
				sky, ok := r.(*gpsd.SKYReport)
				if !ok {
					return
				}
				p.setSatellites(usedSatellites(sky))
			})
			sess.AddFilter("TPV", func(r interface{}) {
				tpv, ok := r.(*gpsd.TPVReport)
				if !ok {
					return
				}
				sink.send(ctx, p.resultFromTPV(tpv))
			})

			// go-gpsd has no Close(), the watch ends when gpsd drops the connection or the
			// process exits.
			done := sess.Watch()
			select {
			case <-ctx.Done():
				return
			case <-done:
				p.logger.Warn("gpsd connection lost", slog.String("addr", p.addr))
			}

			if !source.SleepContext(ctx, p.reconnectDelay) {
				return
			}
		}
	}()

	return sink.out
}

// resultSink hands solutions from the session filters to the stream consumer. Sessions cannot be
// closed, so their filters may still fire after the stream ended. Those reports are dropped.
type resultSink struct {
	mu     sync.Mutex
	out    chan solution.Result
	closed bool
}

// send blocks until the result is consumed or ctx is canceled. It reports whether the result
// was delivered.
func (s *resultSink) send(ctx context.Context, result solution.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case s.out <- result:
		return true
	}
}

func (s *resultSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}

// resultFromTPV converts a TPV report into a solution. The error estimates epx/epy/epv are used
// as east/north/up standard deviations and rotated into an ECEF covariance. Reports without at
// least a 2D fix yield an empty solution with status none.
func (p *Provider) resultFromTPV(tpv *gpsd.TPVReport) solution.Result {
	result := solution.Result{BasePosition: p.base}
	if tpv.Mode >= gpsd.Mode2D {
		llh := solution.Position3d{geodesy.Rad(tpv.Lat), geodesy.Rad(tpv.Lon), tpv.Alt}
		qe := solution.Matrix3x3{
			tpv.Epx * tpv.Epx, 0, 0,
			0, tpv.Epy * tpv.Epy, 0,
			0, 0, tpv.Epv * tpv.Epv,
		}
		qr := geodesy.CovEcef(llh.Lat(), llh.Lon(), qe)
		result.Solution = solution.NewSolution(geodesy.Pos2Ecef(llh), qr, solution.StatusSingle)
	}
	result.Time = time.Now()
	result.Satellites = p.getSatellites()
	return result
}

func (p *Provider) setSatellites(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.satellites = n
}

func (p *Provider) getSatellites() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.satellites
}

func usedSatellites(sky *gpsd.SKYReport) int {
	used := 0
	for _, sat := range sky.Satellites {
		if sat.Used {
			used++
		}
	}
	return used
}
