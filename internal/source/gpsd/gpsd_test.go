// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/waybar-gnss/internal/geodesy"
	"github.com/wneessen/waybar-gnss/internal/logger"
	"github.com/wneessen/waybar-gnss/internal/solution"
)

var tpv3D = &gpsd.TPVReport{
	Class: "TPV",
	Mode:  gpsd.Mode3D,
	Lat:   45,
	Lon:   9,
	Alt:   100,
	Epx:   3,
	Epy:   4,
	Epv:   12,
}

func TestNew(t *testing.T) {
	t.Run("new GPSd provider succeeds", func(t *testing.T) {
		provider, err := New("localhost:2947", time.Second, solution.Position3d{}, testLogger())
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if provider.Name() != name {
			t.Errorf("expected provider name to be %s, got %s", name, provider.Name())
		}
	})
	t.Run("missing logger fails", func(t *testing.T) {
		if _, err := New("localhost:2947", time.Second, solution.Position3d{}, nil); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
	t.Run("missing address fails", func(t *testing.T) {
		if _, err := New("", time.Second, solution.Position3d{}, testLogger()); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
}

func TestProvider_resultFromTPV(t *testing.T) {
	t.Run("3D fix is converted to ECEF", func(t *testing.T) {
		base := solution.Position3d{4345000, 688000, 4595000}
		provider := testProvider(t, base)
		provider.setSatellites(9)

		result := provider.resultFromTPV(tpv3D)
		if result.Status != solution.StatusSingle {
			t.Errorf("expected status SINGLE, got %s", result.Status)
		}
		if result.BasePosition != base {
			t.Errorf("expected base %v, got %v", base, result.BasePosition)
		}
		if result.Satellites != 9 {
			t.Errorf("expected 9 satellites, got %d", result.Satellites)
		}
		llh := geodesy.Ecef2Pos(result.Position)
		if math.Abs(geodesy.Deg(llh.Lat())-45) > 1e-9 || math.Abs(geodesy.Deg(llh.Lon())-9) > 1e-9 {
			t.Errorf("expected 45/9, got %f/%f", geodesy.Deg(llh.Lat()), geodesy.Deg(llh.Lon()))
		}
		if math.Abs(llh.Height()-100) > 1e-6 {
			t.Errorf("expected height 100, got %f", llh.Height())
		}
		qe := geodesy.CovEnu(llh.Lat(), llh.Lon(), result.Qr)
		want := [3]float64{9, 16, 144}
		for i, v := range qe.Diag() {
			if math.Abs(v-want[i]) > 1e-9 {
				t.Errorf("expected local variance %d to be %f, got %f", i, want[i], v)
			}
		}
		if result.Time.IsZero() {
			t.Error("expected time to be set")
		}
	})
	t.Run("reports without fix have no position", func(t *testing.T) {
		for _, mode := range []gpsd.Mode{gpsd.NoValueSeen, gpsd.NoFix} {
			result := testProvider(t, solution.Position3d{}).resultFromTPV(&gpsd.TPVReport{Mode: mode, Lat: 45})
			if result.Status != solution.StatusNone {
				t.Errorf("expected status NONE, got %s", result.Status)
			}
			if result.Position.Norm() != 0 {
				t.Errorf("expected zero position, got %v", result.Position)
			}
		}
	})
}

func TestUsedSatellites(t *testing.T) {
	sky := &gpsd.SKYReport{Satellites: []gpsd.Satellite{
		{Used: true}, {Used: false}, {Used: true},
	}}
	if got := usedSatellites(sky); got != 2 {
		t.Errorf("expected 2 used satellites, got %d", got)
	}
}

func TestProvider_Stream(t *testing.T) {
	t.Run("reports are delivered as solutions", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			provider := testProvider(t, solution.Position3d{})
			sky := &gpsd.SKYReport{Satellites: []gpsd.Satellite{{Used: true}, {Used: true}, {Used: true}}}
			provider.dialFn = func(string) (session, error) {
				return newFakeSession(false, sky, tpv3D), nil
			}

			out := provider.Stream(ctx)
			result := <-out
			if result.Status != solution.StatusSingle {
				t.Errorf("expected status SINGLE, got %s", result.Status)
			}
			if result.Satellites != 3 {
				t.Errorf("expected 3 satellites, got %d", result.Satellites)
			}
			cancel()
			for range out {
			}
		})
	})
	t.Run("failing dial and lost connections are retried", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			dials := 0
			provider := testProvider(t, solution.Position3d{})
			provider.dialFn = func(string) (session, error) {
				dials++
				switch dials {
				case 1:
					return nil, errors.New("intentionally failing")
				case 2:
					return newFakeSession(true), nil
				default:
					return newFakeSession(false, tpv3D), nil
				}
			}

			out := provider.Stream(ctx)
			result := <-out
			if result.Status != solution.StatusSingle {
				t.Errorf("expected status SINGLE, got %s", result.Status)
			}
			if dials != 3 {
				t.Errorf("expected 3 dial attempts, got %d", dials)
			}
			cancel()
			for range out {
			}
		})
	})
}

func TestProvider_StreamShutdown(t *testing.T) {
	t.Run("reports after the stream ended are dropped", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			sess := newFakeSession(false)
			provider := testProvider(t, solution.Position3d{})
			provider.dialFn = func(string) (session, error) {
				return sess, nil
			}

			out := provider.Stream(ctx)
			synctest.Wait()
			if len(sess.filters["TPV"]) != 1 {
				t.Fatalf("expected TPV filter to be installed, got %d", len(sess.filters["TPV"]))
			}
			cancel()
			for range out {
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("expected late report to be dropped, got panic: %v", r)
				}
			}()
			for range 100 {
				sess.filters["TPV"][0](tpv3D)
			}
		})
	})
	t.Run("sink drops results once closed", func(t *testing.T) {
		sink := &resultSink{out: make(chan solution.Result, 1)}
		if !sink.send(t.Context(), solution.Result{}) {
			t.Error("expected result to be delivered")
		}
		<-sink.out
		sink.close()
		sink.close()
		if sink.send(t.Context(), solution.Result{}) {
			t.Error("expected result to be dropped after close")
		}
	})
	t.Run("sink send returns on canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		sink := &resultSink{out: make(chan solution.Result)}
		if sink.send(ctx, solution.Result{}) {
			t.Error("expected result not to be delivered")
		}
	})
}

type fakeSession struct {
	filters map[string][]gpsd.Filter
	reports []interface{}
	closing bool
}

func newFakeSession(closing bool, reports ...interface{}) *fakeSession {
	return &fakeSession{
		filters: make(map[string][]gpsd.Filter),
		reports: reports,
		closing: closing,
	}
}

func (f *fakeSession) AddFilter(class string, filter gpsd.Filter) {
	f.filters[class] = append(f.filters[class], filter)
}

func (f *fakeSession) Watch() chan bool {
	done := make(chan bool, 1)
	go func() {
		for _, report := range f.reports {
			class := ""
			switch report.(type) {
			case *gpsd.TPVReport:
				class = "TPV"
			case *gpsd.SKYReport:
				class = "SKY"
			}
			for _, filter := range f.filters[class] {
				filter(report)
			}
		}
		if f.closing {
			done <- true
		}
	}()
	return done
}

func testProvider(t *testing.T, base solution.Position3d) *Provider {
	t.Helper()
	provider, err := New("localhost:2947", time.Millisecond*10, base, testLogger())
	if err != nil {
		t.Fatalf("failed to create provider: %s", err)
	}
	return provider
}

func testLogger() *logger.Logger {
	return logger.NewLogger(0, io.Discard)
}
