// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service implements the long-running waybar module: it consumes solutions from a
// solution source and prints the rendered solution view as Waybar JSON.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-gnss/internal/config"
	"github.com/wneessen/waybar-gnss/internal/formatter"
	"github.com/wneessen/waybar-gnss/internal/geoid"
	"github.com/wneessen/waybar-gnss/internal/http"
	"github.com/wneessen/waybar-gnss/internal/indicator"
	"github.com/wneessen/waybar-gnss/internal/job"
	"github.com/wneessen/waybar-gnss/internal/logger"
	"github.com/wneessen/waybar-gnss/internal/presenter"
	"github.com/wneessen/waybar-gnss/internal/solution"
	"github.com/wneessen/waybar-gnss/internal/source"
)

const OutputClass = "waybar-gnss"

type outputData struct {
	Text    string   `json:"text"`
	Tooltip string   `json:"tooltip"`
	Alt     string   `json:"alt"`
	Classes []string `json:"class"`
}

type Service struct {
	config    *config.Config
	formatter *formatter.Formatter
	logger    *logger.Logger
	output    io.Writer
	presenter *presenter.Presenter
	provider  source.Provider
	scheduler gocron.Scheduler
	jobs      []*job.Job
	SignalSrc signalSource

	altitude   formatter.AltitudeMode
	geoid      geoid.Func
	httpClient *http.Client

	stateLock  sync.RWMutex
	format     formatter.Format
	result     solution.Result
	receivedAt time.Time
	stale      bool
	view       *presenter.View

	displayAltLock sync.RWMutex
	displayAltText bool

	// outputLock orders the frames: a frame is written before the next one is built.
	outputLock sync.Mutex
}

func New(conf *config.Config, log *logger.Logger, loc *spreak.Localizer) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	pres, err := presenter.New(conf, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	format, err := formatter.ParseFormat(conf.Display.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to select display format: %w", err)
	}
	altitude, err := formatter.ParseAltitudeMode(conf.Display.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to select height mode: %w", err)
	}

	service := &Service{
		config:    conf,
		formatter: formatter.New(loc),
		logger:    log,
		output:    os.Stdout,
		presenter: pres,
		scheduler: scheduler,
		SignalSrc: stdLibSignalSource{},
		altitude:  altitude,
		geoid:     geoid.Ellipsoidal,
		format:    format,
		view:      new(presenter.View),
	}

	if service.provider, err = service.selectProvider(); err != nil {
		return nil, fmt.Errorf("failed to create solution source: %w", err)
	}
	service.httpClient = http.New(log)
	service.jobs = append(service.jobs, job.New("stale_solution_check", conf.Intervals.Stale, service.checkStale))

	return service, nil
}

func (s *Service) Run(ctx context.Context) error {
	geoidFn, err := s.loadGeoid(ctx)
	if err != nil {
		return fmt.Errorf("failed to load geoid model: %w", err)
	}
	s.stateLock.Lock()
	s.geoid = geoidFn
	s.stateLock.Unlock()

	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.printSolution,
		"solution_output_job"); err != nil {
		return err
	}
	s.scheduler.Start()
	for _, j := range s.jobs {
		go j.Start(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	defer s.SignalSrc.Stop(sigChan)
	go s.HandleSignals(ctx, sigChan)

	go s.processSolutions(ctx, s.provider.Stream(ctx))
	s.printSolution(ctx)

	<-ctx.Done()
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// processSolutions stores every solution received from the source and prints it right away.
func (s *Service) processSolutions(ctx context.Context, results <-chan solution.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			s.logger.Debug("received solution", slog.String("status", r.Status.String()),
				slog.Int("satellites", r.Satellites), slog.String("source", s.provider.Name()))
			s.updateSolution(r)
			s.printSolution(ctx)
		}
	}
}

func (s *Service) updateSolution(r solution.Result) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.result = r
	s.receivedAt = time.Now()
	if s.stale {
		s.logger.Info("solution source recovered", slog.String("source", s.provider.Name()))
	}
	s.stale = false
}

// checkStale marks the current solution as stale when the source stopped delivering.
func (s *Service) checkStale(context.Context) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	if s.stale || s.receivedAt.IsZero() || time.Since(s.receivedAt) < s.config.Intervals.Stale {
		return
	}
	s.stale = true
	s.logger.Warn("no solution received", slog.String("source", s.provider.Name()),
		slog.Duration("since", time.Since(s.receivedAt)))
}

// cycleFormat switches to the next display format.
func (s *Service) cycleFormat() formatter.Format {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.format = formatter.Next(s.format)
	s.logger.Debug("display format changed", slog.String("format", s.format.Name()))
	return s.format
}

// printSolution renders the current solution and writes it as a Waybar JSON line.
func (s *Service) printSolution(context.Context) {
	s.outputLock.Lock()
	defer s.outputLock.Unlock()

	s.stateLock.Lock()
	result := s.result
	if s.stale {
		result.Status = solution.StatusNone
	}
	rendered := s.formatter.Render(result, s.format, s.geoid, s.altitude)
	s.view.Apply(rendered)
	tplCtx := s.presenter.BuildContext(s.view, rendered, result)
	s.stateLock.Unlock()

	outputs, err := s.presenter.Render(tplCtx)
	if err != nil {
		s.logger.Error("failed to render solution templates", logger.Err(err))
		return
	}

	s.displayAltLock.RLock()
	text := outputs["text"]
	if s.displayAltText {
		text = outputs["alt_text"]
	}
	s.displayAltLock.RUnlock()

	output := outputData{
		Text:    text,
		Tooltip: outputs["tooltip"],
		Alt:     tplCtx.Format,
		Classes: []string{OutputClass, indicator.Class(rendered.Status)},
	}
	if err = json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode solution output", logger.Err(err))
	}
}
