// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package job runs lightweight periodic service tasks next to the scheduler.
package job

import (
	"context"
	"time"
)

// Job is a named task that runs at a fixed interval. A run is skipped while the previous one is
// still in progress.
type Job struct {
	name     string
	interval time.Duration
	task     func(context.Context)
}

// New returns a Job that runs task every interval once started.
func New(name string, interval time.Duration, task func(context.Context)) *Job {
	return &Job{
		name:     name,
		interval: interval,
		task:     task,
	}
}

// Name returns the name of the job.
func (j *Job) Name() string {
	return j.name
}

// Start runs the job until ctx is canceled. Jobs without task or interval return immediately.
func (j *Job) Start(ctx context.Context) {
	if j == nil || j.task == nil || j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	running := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case running <- struct{}{}:
			default:
				continue
			}
			go func() {
				defer func() { <-running }()
				j.task(ctx)
			}()
		}
	}
}
