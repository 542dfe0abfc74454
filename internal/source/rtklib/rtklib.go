// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package rtklib implements a solution source that reads the TCP solution output of RTKLIB
// (rtkrcv, rtknavi or str2str) in xyz-ecef, lat/lon/height or e/n/u baseline format.
package rtklib

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/wneessen/waybar-gnss/internal/logger"
	"github.com/wneessen/waybar-gnss/internal/solution"
	"github.com/wneessen/waybar-gnss/internal/source"
)

const (
	name = "rtklib"

	dialTimeout  = time.Second * 2
	idleTimeout  = time.Second * 30
	maxLineBytes = 64 * 1024
)

type Provider struct {
	name           string
	addr           string
	base           solution.Position3d
	logger         *logger.Logger
	reconnectDelay time.Duration
	dialTimeout    time.Duration
	idleTimeout    time.Duration
}

// New returns a Provider for the solution stream at addr. base is reported as the base position
// until the stream announces its own reference position.
func New(addr string, reconnectDelay time.Duration, base solution.Position3d, log *logger.Logger) (*Provider, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if addr == "" {
		return nil, errors.New("solution stream address is required")
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
		dialTimeout:    dialTimeout,
		idleTimeout:    idleTimeout,
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// Stream connects to the solution stream and emits every parsed solution. Lost or stale
// connections are re-established after the reconnect delay.
func (p *Provider) Stream(ctx context.Context) <-chan solution.Result {
	out := make(chan solution.Result)

	go func() {
		defer close(out)
		parser := NewParser(p.base)
		dialer := &net.Dialer{Timeout: p.dialTimeout}

		for {
			if ctx.Err() != nil {
				return
			}

			conn, err := dialer.DialContext(ctx, "tcp", p.addr)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Warn("failed to connect to RTKLIB solution stream", slog.String("addr", p.addr),
					logger.Err(err))
				if !source.SleepContext(ctx, p.reconnectDelay) {
					return
				}
				continue
			}

			p.logger.Debug("connected to RTKLIB solution stream", slog.String("addr", p.addr))
			if !p.readStream(ctx, conn, parser, out) {
				return
			}
			if !source.SleepContext(ctx, p.reconnectDelay) {
				return
			}
		}
	}()

	return out
}

// readStream forwards the solutions of a single connection. It returns false if the context was
// canceled and true if the connection ended and should be re-established.
func (p *Provider) readStream(ctx context.Context, conn net.Conn, parser *Parser, out chan<- solution.Result) bool {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		stop()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(p.idleTimeout))
		if !scanner.Scan() {
			break
		}

		base := parser.Base()
		result, ok, err := parser.Parse(scanner.Text())
		if err != nil {
			p.logger.Debug("skipping solution line", logger.Err(err))
			continue
		}
		if !ok {
			if parser.Base() != base {
				p.logger.Info("base position announced by solution stream", slog.String("addr", p.addr),
					slog.Any("ecef", parser.Base()))
			}
			continue
		}

		select {
		case <-ctx.Done():
			return false
		case out <- result:
		}
	}

	if ctx.Err() != nil {
		return false
	}
	if err := scanner.Err(); err != nil {
		p.logger.Warn("RTKLIB solution stream interrupted", slog.String("addr", p.addr), logger.Err(err))
		return true
	}
	p.logger.Warn("RTKLIB solution stream closed by peer", slog.String("addr", p.addr))
	return true
}
