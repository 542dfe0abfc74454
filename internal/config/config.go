// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/wneessen/waybar-gnss/internal/formatter"
)

const (
	configEnv         = "WAYBARGNSS"
	DefaultTextTpl    = "{{.Indicator}} {{.Status}} {{(index .Coordinates 0).Value}} {{(index .Coordinates 1).Value}}"
	DefaultAltTextTpl = "{{.Indicator}} {{.Status}} {{.Satellites}}"
	DefaultTooltipTpl = "{{loc \"format\"}}: {{.FormatDescription}}\n" +
		"{{range .Coordinates}}{{if .Label}}{{pad .Label 12}}{{.Value}}\n{{end}}{{end}}" +
		"{{.Covariance}}\n{{.Age}}\n{{loc \"updated\"}}: {{localizedTime .UpdateTime}}"

	DefaultRTKLIBAddress = "localhost:52001"
	DefaultGPSDAddress   = "localhost:2947"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Display struct {
		// Allowed values: wgs84, wgs84_float, utm, ecef, enu_baseline, pyl_baseline
		Format string `fig:"format" default:"wgs84"`
		// Allowed values: ellipsoidal, geodetic
		Height string `fig:"height" default:"ellipsoidal"`
		// Optional text color override, e.g. #c0c0c0
		TextColor string `fig:"text_color"`
	} `fig:"display"`

	Geoid struct {
		File string `fig:"file"`
		// Downloaded into file when file does not exist yet
		URL string `fig:"url"`
	} `fig:"geoid"`

	Source struct {
		// Allowed values: rtklib, gpsd
		Provider       string        `fig:"provider" default:"rtklib"`
		Address        string        `fig:"address"`
		ReconnectDelay time.Duration `fig:"reconnect_delay" default:"5s"`
	} `fig:"source"`

	Base struct {
		Enable    bool    `fig:"enable"`
		Latitude  float64 `fig:"latitude"`
		Longitude float64 `fig:"longitude"`
		Height    float64 `fig:"height"`
	} `fig:"base"`

	Intervals struct {
		Output time.Duration `fig:"output" default:"1s"`
		// Solutions older than this are shown with status none
		Stale time.Duration `fig:"stale" default:"10s"`
	} `fig:"intervals"`

	Templates struct {
		Text    string `fig:"text"`
		AltText string `fig:"alt_text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if _, err := formatter.ParseFormat(c.Display.Format); err != nil {
		return err
	}
	if _, err := formatter.ParseAltitudeMode(c.Display.Height); err != nil {
		return err
	}
	if c.Display.TextColor != "" {
		if _, err := colorful.Hex(c.Display.TextColor); err != nil {
			return fmt.Errorf("invalid text color %q: %w", c.Display.TextColor, err)
		}
	}
	if c.Geoid.URL != "" && c.Geoid.File == "" {
		return fmt.Errorf("geoid url %q requires a geoid file to store the grid in", c.Geoid.URL)
	}
	switch strings.ToLower(c.Source.Provider) {
	case "rtklib":
		if c.Source.Address == "" {
			c.Source.Address = DefaultRTKLIBAddress
		}
	case "gpsd":
		if c.Source.Address == "" {
			c.Source.Address = DefaultGPSDAddress
		}
	default:
		return fmt.Errorf("invalid solution source provider: %s", c.Source.Provider)
	}
	if c.Source.ReconnectDelay <= 0 {
		return fmt.Errorf("invalid reconnect delay: %s", c.Source.ReconnectDelay)
	}
	if c.Base.Enable && (c.Base.Latitude < -90 || c.Base.Latitude > 90 ||
		c.Base.Longitude < -180 || c.Base.Longitude > 180) {
		return fmt.Errorf("invalid base position: %f/%f", c.Base.Latitude, c.Base.Longitude)
	}
	if c.Intervals.Output <= 0 {
		return fmt.Errorf("invalid output interval: %s", c.Intervals.Output)
	}
	if c.Intervals.Stale <= 0 {
		return fmt.Errorf("invalid stale interval: %s", c.Intervals.Stale)
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.AltText == "" {
		c.Templates.AltText = DefaultAltTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
