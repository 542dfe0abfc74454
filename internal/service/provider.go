// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wneessen/waybar-gnss/internal/formatter"
	"github.com/wneessen/waybar-gnss/internal/geoid"
	"github.com/wneessen/waybar-gnss/internal/source"
	"github.com/wneessen/waybar-gnss/internal/source/gpsd"
	"github.com/wneessen/waybar-gnss/internal/source/rtklib"
)

func (s *Service) selectProvider() (provider source.Provider, err error) {
	conf := s.config
	base := source.BasePosition(conf.Base.Enable, conf.Base.Latitude, conf.Base.Longitude, conf.Base.Height)

	switch strings.ToLower(conf.Source.Provider) {
	case "rtklib":
		provider, err = rtklib.New(conf.Source.Address, conf.Source.ReconnectDelay, base, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create RTKLIB solution source: %w", err)
		}
	case "gpsd":
		provider, err = gpsd.New(conf.Source.Address, conf.Source.ReconnectDelay, base, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gpsd solution source: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported solution source provider: %s", conf.Source.Provider)
	}
	return provider, nil
}

// loadGeoid returns the geoid lookup for the configured height mode. Ellipsoidal mode never
// consults the lookup, so the grid file is only read in geodetic mode.
func (s *Service) loadGeoid(ctx context.Context) (geoid.Func, error) {
	if s.altitude != formatter.Geodetic {
		return geoid.Ellipsoidal, nil
	}
	file := s.config.Geoid.File
	if file == "" {
		s.logger.Warn("geodetic heights requested without geoid grid file, heights stay ellipsoidal")
		return geoid.Ellipsoidal, nil
	}

	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) && s.config.Geoid.URL != "" {
		if err = s.downloadGeoid(ctx, s.config.Geoid.URL, file); err != nil {
			return nil, err
		}
	}

	grid, err := geoid.LoadGrid(file)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("geoid grid loaded", slog.String("file", file))
	return grid.Func(), nil
}

// downloadGeoid fetches the geoid grid into a temporary file next to file and renames it into
// place once the download is complete.
func (s *Service) downloadGeoid(ctx context.Context, endpoint, file string) error {
	s.logger.Info("downloading geoid grid", slog.String("url", endpoint), slog.String("file", file))
	tmp, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create geoid grid file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	written, err := s.httpClient.Download(ctx, endpoint, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to download geoid grid: %w", err)
	}
	if err = os.Rename(tmp.Name(), file); err != nil {
		return fmt.Errorf("failed to store geoid grid: %w", err)
	}
	s.logger.Debug("geoid grid downloaded", slog.Int64("bytes", written))
	return nil
}
