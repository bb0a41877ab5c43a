package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"uptime-reporter/internal/domain"
	"uptime-reporter/internal/timing"
)

const maxRedirects = 10

type Options struct {
	UserAgent       string
	Headers         map[string]string
	FollowRedirects bool
	TLSClientConfig *tls.Config
}

type HTTPProber struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	follow    bool
}

func NewHTTPProber(opts Options) *HTTPProber {
	p := &HTTPProber{
		userAgent: opts.UserAgent,
		headers:   opts.Headers,
		follow:    opts.FollowRedirects,
	}
	p.client = &http.Client{
		Transport: &http.Transport{
			Proxy:              http.ProxyFromEnvironment,
			TLSClientConfig:    opts.TLSClientConfig,
			DisableKeepAlives:  true, // one fresh connection per probe
			DisableCompression: true, // count bytes as they arrive on the wire
		},
		CheckRedirect: p.checkRedirect,
	}
	return p
}

// Probe performs one GET against target, bounded by target.Timeout. It
// never returns an error: failures are reported through the outcome.
func (p *HTTPProber) Probe(ctx context.Context, target domain.CheckTarget) domain.ProbeResult {
	start := time.Now()
	result := domain.ProbeResult{
		Timestamp: start,
		Host:      target.Host,
		Path:      target.Path,
		URL:       target.URL(),
	}

	rec := newRecorder(start)
	ctx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	err := p.fetch(withRecorder(ctx, rec), &result)
	rec.mark(domain.CheckpointTotal)

	result.Duration = time.Since(start)
	result.Outcome, result.Error = classify(ctx, err)
	result.Phases = timing.Decompose(rec.checkpoints())
	return result
}

func (p *HTTPProber) fetch(ctx context.Context, result *domain.ProbeResult) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	result.ResponseCode = resp.StatusCode
	n, err := io.Copy(io.Discard, resp.Body)
	result.DownloadBytes = n
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return nil
}

func (p *HTTPProber) checkRedirect(req *http.Request, via []*http.Request) error {
	if !p.follow {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if rec := recorderFrom(req.Context()); rec != nil {
		rec.mark(domain.CheckpointRedirect)
	}
	return nil
}

func classify(ctx context.Context, err error) (domain.Outcome, string) {
	if err == nil {
		return domain.OutcomeSuccess, ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.OutcomeTimedOut, err.Error()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.OutcomeTimedOut, err.Error()
	}
	return domain.OutcomeError, err.Error()
}
