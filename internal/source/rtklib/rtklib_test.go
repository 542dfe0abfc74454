// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package rtklib

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wneessen/waybar-gnss/internal/logger"
	"github.com/wneessen/waybar-gnss/internal/solution"
)

func TestNew(t *testing.T) {
	log := logger.NewLogger(0, io.Discard)
	t.Run("new provider succeeds", func(t *testing.T) {
		provider, err := New("localhost:52001", time.Second, solution.Position3d{}, log)
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if provider.Name() != name {
			t.Errorf("expected provider name to be %s, got %s", name, provider.Name())
		}
	})
	t.Run("non-positive reconnect delay falls back to the default", func(t *testing.T) {
		provider, err := New("localhost:52001", 0, solution.Position3d{}, log)
		if err != nil {
			t.Fatalf("failed to create provider: %s", err)
		}
		if provider.reconnectDelay != time.Second*5 {
			t.Errorf("expected reconnect delay of 5s, got %s", provider.reconnectDelay)
		}
	})
	t.Run("missing logger fails", func(t *testing.T) {
		if _, err := New("localhost:52001", time.Second, solution.Position3d{}, nil); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
	t.Run("missing address fails", func(t *testing.T) {
		if _, err := New("", time.Second, solution.Position3d{}, log); err == nil {
			t.Error("expected provider creation to fail")
		}
	})
}

func TestProvider_Stream(t *testing.T) {
	t.Run("solutions are streamed from the server", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), time.Second*5)
		defer cancel()

		addr := startMockServer(ctx, t, [][]string{{
			headerXYZ,
			"% ref pos   : 4345010.0000   688000.0000  4595000.0000",
			"garbage that is skipped",
			lineXYZ,
		}})
		provider := testProvider(t, addr)
		logBuf := bytes.NewBuffer(nil)
		provider.logger = logger.NewLogger(slog.LevelInfo, logBuf)

		out := provider.Stream(ctx)
		select {
		case res := <-out:
			if res.Status != solution.StatusFix {
				t.Errorf("expected status FIX, got %s", res.Status)
			}
			wantBase := solution.Position3d{4345010, 688000, 4595000}
			if res.BasePosition != wantBase {
				t.Errorf("expected base %v, got %v", wantBase, res.BasePosition)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for a solution")
		}
		cancel()
		for range out {
		}
		if !strings.Contains(logBuf.String(), "base position announced by solution stream") {
			t.Errorf("expected announced base position to be logged, got %q", logBuf.String())
		}
	})
	t.Run("provider reconnects after the server closed the connection", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), time.Second*5)
		defer cancel()

		addr := startMockServer(ctx, t, [][]string{{lineXYZ}, {lineLLH}})
		provider := testProvider(t, addr)

		out := provider.Stream(ctx)
		var statuses []solution.Status
		for len(statuses) < 2 {
			select {
			case res := <-out:
				statuses = append(statuses, res.Status)
			case <-ctx.Done():
				t.Fatalf("timed out waiting for solutions, got %v", statuses)
			}
		}
		if statuses[0] != solution.StatusFix || statuses[1] != solution.StatusFloat {
			t.Errorf("expected FIX then FLOAT, got %v", statuses)
		}
		cancel()
		for range out {
		}
	})
	t.Run("stream is closed when the context is canceled while disconnected", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %s", err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		ctx, cancel := context.WithCancel(t.Context())
		provider := testProvider(t, addr)
		provider.reconnectDelay = time.Hour
		out := provider.Stream(ctx)
		cancel()

		select {
		case _, ok := <-out:
			if ok {
				t.Error("expected no solution")
			}
		case <-time.After(time.Second * 5):
			t.Fatal("expected stream to be closed")
		}
	})
}

func testProvider(t *testing.T, addr string) *Provider {
	t.Helper()
	provider, err := New(addr, time.Millisecond*10, solution.Position3d{}, logger.NewLogger(0, io.Discard))
	if err != nil {
		t.Fatalf("failed to create provider: %s", err)
	}
	return provider
}

// startMockServer serves one batch of lines per accepted connection. All but the last connection
// are closed after writing; the last one stays open until the context is done.
func startMockServer(ctx context.Context, t *testing.T, batches [][]string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen for mock RTKLIB server: %s", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i, batch := range batches {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			for _, line := range batch {
				if _, err = fmt.Fprintf(conn, "%s\r\n", line); err != nil {
					t.Logf("failed to write mock solution line: %s", err)
				}
			}
			if i < len(batches)-1 {
				_ = conn.Close()
				continue
			}
			<-ctx.Done()
			_ = conn.Close()
		}
	}()

	t.Cleanup(func() {
		if closeErr := ln.Close(); closeErr != nil {
			t.Logf("failed to close mock RTKLIB listener: %s", closeErr)
		}
		wg.Wait()
	})

	return ln.Addr().String()
}
