// Package fetch performs the bounded GET used for every upstream payload:
// the primary source, the shared-items API and the baseline reference feed.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	MaxRedirects = 5
	MaxRetries   = 1

	// RetryStatus is the only status that earns a second attempt.
	RetryStatus = http.StatusBadGateway

	maxBodyBytes = 10 << 20
)

var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrRetriesExhausted = errors.New("retries exhausted")
)

type Request struct {
	URL      string
	Username string
	Password string
	Accept   string
}

type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher wraps client so that redirects are surfaced to Fetch instead of
// being followed by net/http.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Fetcher{client: &c, userAgent: userAgent}
}

// Fetch returns the response body, or nil when the resource could not be
// retrieved. Failures are logged, never returned.
func (f *Fetcher) Fetch(ctx context.Context, req Request) []byte {
	data, err := f.Do(ctx, req)
	if err != nil {
		slog.Warn("Fetch failed", "url", req.URL, "reason", failureReason(err), "error", err)
		return nil
	}
	return data
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrTooManyRedirects):
		return "redirect_limit"
	case errors.Is(err, ErrRetriesExhausted):
		return "retry_limit"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// Do follows at most MaxRedirects redirects and retries RetryStatus at most
// MaxRetries times.
func (f *Fetcher) Do(ctx context.Context, req Request) ([]byte, error) {
	target := req.URL
	origin, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	redirects, retries := 0, 0
	for {
		resp, err := f.get(ctx, target, req, origin.Host)
		if err != nil {
			return nil, err
		}

		switch {
		case isRedirect(resp.StatusCode) && resp.Header.Get("Location") != "":
			location := resp.Header.Get("Location")
			drain(resp)

			redirects++
			if redirects > MaxRedirects {
				return nil, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, MaxRedirects)
			}

			next, err := resolve(target, location)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve redirect %q: %w", location, err)
			}
			slog.Debug("Following redirect", "from", target, "to", next, "redirects", redirects)
			target = next

		case resp.StatusCode == RetryStatus:
			drain(resp)

			if retries >= MaxRetries {
				return nil, fmt.Errorf("%w: HTTP %d", ErrRetriesExhausted, resp.StatusCode)
			}
			retries++
			slog.Debug("Retrying after transient error", "url", target, "status", resp.StatusCode)

		case resp.StatusCode < 200 || resp.StatusCode > 299:
			drain(resp)
			return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)

		default:
			defer resp.Body.Close()
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				return nil, fmt.Errorf("failed to read response body: %w", err)
			}
			return data, nil
		}
	}
}

func (f *Fetcher) get(ctx context.Context, target string, req Request, originHost string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}
	// Credentials stay with the host they were issued for.
	if req.Username != "" && httpReq.URL.Host == originHost {
		httpReq.SetBasicAuth(req.Username, req.Password)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	return resp, nil
}

func isRedirect(status int) bool {
	return status >= 300 && status <= 399
}

func resolve(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
