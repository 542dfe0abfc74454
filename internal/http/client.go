// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/wneessen/waybar-gnss/internal/logger"
)

const (
	// DefaultTimeout is the default timeout value for the HTTPClient. Geoid grids are several
	// megabytes large, so it is generous.
	DefaultTimeout = time.Minute * 2
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the HTTP client sends with its requests
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) waybar-gnss/%s (+https://github.com/wneessen/waybar-gnss/)",
		runtime.GOOS,
		runtime.GOARCH,
		version,
	)

	ErrNilWriter        = errors.New("target writer must not be nil")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// Client is a type wrapper for the Go stdlib http.Client and the logger
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client
func New(logger *logger.Logger) *Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	httpTransport := &http.Transport{TLSClientConfig: tlsConfig}
	httpClient := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: httpTransport,
	}
	return &Client{httpClient, logger}
}

// Download performs a HTTP GET request for the given URL and copies the response body into
// target. It returns the number of bytes written.
func (h *Client) Download(ctx context.Context, endpoint string, target io.Writer) (int64, error) {
	return h.DownloadWithTimeout(ctx, endpoint, target, DefaultTimeout)
}

// DownloadWithTimeout is Download with a custom timeout. Responses other than 200 OK fail with
// ErrUnexpectedStatus and leave target untouched.
func (h *Client) DownloadWithTimeout(ctx context.Context, endpoint string, target io.Writer,
	timeout time.Duration,
) (int64, error) {
	if target == nil {
		return 0, ErrNilWriter
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)

	response, err := h.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		return 0, errors.New("nil response received")
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close HTTP request body", logger.Err(err))
		}
	}(response.Body)

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedStatus, response.Status)
	}

	written, err := io.Copy(target, response.Body)
	if err != nil {
		return written, fmt.Errorf("failed to read HTTP response body: %w", err)
	}
	return written, nil
}
