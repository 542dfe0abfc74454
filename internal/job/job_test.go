// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package job

import (
	"context"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"
)

func TestNew(t *testing.T) {
	job := New("test", time.Millisecond*100, func(context.Context) {})
	if job == nil {
		t.Fatal("expected job to be non-nil")
	}
	if job.Name() != "test" {
		t.Errorf("expected job name to be %q, got %q", "test", job.Name())
	}
}

func TestJob_Start(t *testing.T) {
	t.Run("job returns when the context is canceled", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			returned := atomic.Bool{}

			testJob := New("test", time.Millisecond*100, func(context.Context) {})
			go func() {
				testJob.Start(ctx)
				returned.Store(true)
			}()

			synctest.Wait()
			if returned.Load() {
				t.Fatal("expected job to run until the context is canceled")
			}
			cancel()
			synctest.Wait()
			if !returned.Load() {
				t.Fatal("expected job to return after the context was canceled")
			}
		})
	})
	t.Run("job runs on every tick", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond*55)
			defer cancel()
			count := atomic.Int32{}

			testJob := New("test", time.Millisecond*10, func(context.Context) { count.Add(1) })
			testJob.Start(ctx)
			synctest.Wait()

			if got := count.Load(); got != 5 {
				t.Errorf("expected job to run 5 times, got %d", got)
			}
		})
	})
	t.Run("overlapping runs are skipped", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond*55)
			defer cancel()
			count := atomic.Int32{}

			testJob := New("test", time.Millisecond*10, func(ctx context.Context) {
				count.Add(1)
				<-ctx.Done()
			})
			testJob.Start(ctx)
			synctest.Wait()

			if got := count.Load(); got != 1 {
				t.Errorf("expected job to run once, got %d", got)
			}
		})
	})
	t.Run("job without task returns", func(t *testing.T) {
		New("test", time.Millisecond*100, nil).Start(t.Context())
	})
	t.Run("job without interval returns", func(t *testing.T) {
		New("test", 0, func(context.Context) {}).Start(t.Context())
	})
}
