// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("new logger writes text records to stderr", func(t *testing.T) {
		reader, writer, err := os.Pipe()
		if err != nil {
			t.Fatalf("failed to create pipe: %s", err)
		}
		stderr := os.Stderr
		os.Stderr = writer
		t.Cleanup(func() { os.Stderr = stderr })

		l := New(slog.LevelWarn)
		if l == nil {
			t.Fatal("expected logger to be non-nil")
		}
		l.Info("received solution")
		l.Warn("no solution received", slog.String("source", "rtklib"))
		if err = writer.Close(); err != nil {
			t.Fatalf("failed to close pipe writer: %s", err)
		}

		output, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read stderr: %s", err)
		}
		if strings.Contains(string(output), "received solution") {
			t.Errorf("did not expect info record below the warn level, got %q", output)
		}
		want := `level=WARN msg="no solution received" source=rtklib`
		if !strings.Contains(string(output), want) {
			t.Errorf("expected stderr to contain %q, got %q", want, output)
		}
	})
}

func TestNewLogger(t *testing.T) {
	levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	messages := map[slog.Level]string{
		slog.LevelDebug: "connected to RTKLIB solution stream",
		slog.LevelInfo:  "switched display format",
		slog.LevelWarn:  "gpsd connection lost",
		slog.LevelError: "failed to encode solution output",
	}

	for _, level := range levels {
		t.Run(fmt.Sprintf("logger at level %s only logs records at or above it", level), func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			l := NewLogger(level, buf)
			for _, recordLevel := range levels {
				l.Log(t.Context(), recordLevel, messages[recordLevel])
			}

			for _, recordLevel := range levels {
				logged := strings.Contains(buf.String(), messages[recordLevel])
				if recordLevel >= level && !logged {
					t.Errorf("expected %s record %q to be logged", recordLevel, messages[recordLevel])
				}
				if recordLevel < level && logged {
					t.Errorf("did not expect %s record %q to be logged", recordLevel, messages[recordLevel])
				}
			}
		})
	}
}

func TestErr(t *testing.T) {
	t.Run("error attribute uses the error key", func(t *testing.T) {
		attr := Err(errors.New("connection refused"))
		if attr.Key != "error" {
			t.Errorf("expected attribute key to be %q, got %q", "error", attr.Key)
		}
	})
	t.Run("wrapped errors are logged with their full chain", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		l := NewLogger(slog.LevelDebug, buf)
		err := fmt.Errorf("failed to load geoid model: %w", errors.New("no such file"))
		l.Error("failed to start waybar-gnss service", Err(err))

		want := `error="failed to load geoid model: no such file"`
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected log record to contain %q, got: %q", want, buf.String())
		}
	})
	t.Run("nil error is logged as nil", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		l := NewLogger(slog.LevelDebug, buf)
		l.Warn("skipping solution line", Err(nil))

		if !strings.Contains(buf.String(), "error=<nil>") {
			t.Errorf("expected log record to contain error=<nil>, got: %q", buf.String())
		}
	})
}
