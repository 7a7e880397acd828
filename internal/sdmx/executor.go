package sdmx

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go"
)

// Admitter gates outbound attempts. *Limiter is the production
// implementation; tests substitute recording fakes.
type Admitter interface {
	Admit(ctx context.Context) (time.Time, error)
}

// RequestContext carries identifying context for log lines and diagnostics.
type RequestContext struct {
	Dataset   string
	Operation string
}

// ExecutorOptions configures retry and deadline behavior. Zero values fall
// back to the production defaults.
type ExecutorOptions struct {
	Timeout    time.Duration // per-attempt deadline (default 30s)
	MaxRetries int           // retries after the first attempt (default 3)
	RetryDelay time.Duration // first backoff delay, doubled per retry (default 1s)
}

// Executor performs one outbound GET per attempt, classifies the outcome,
// and retries transient failures with exponential backoff. Every attempt,
// including retries, consumes one rate-limiter admission.
type Executor struct {
	client  *http.Client
	limiter Admitter
	opts    ExecutorOptions
}

// NewExecutor creates an executor gated by the given admitter.
func NewExecutor(limiter Admitter, opts ExecutorOptions) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 1 * time.Second
	}
	return &Executor{
		client:  &http.Client{},
		limiter: limiter,
		opts:    opts,
	}
}

// Do fetches the URL, retrying transient failures (5xx, deadline exceeded,
// connection-level errors) up to MaxRetries times with delays of
// RetryDelay * 2^n between attempts. Caller-input problems and permanent
// remote statuses surface immediately; after the retry budget is spent, the
// last observed error surfaces.
func (e *Executor) Do(ctx context.Context, rawURL string, reqCtx RequestContext) ([]byte, error) {
	var body []byte
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++
			if _, err := e.limiter.Admit(ctx); err != nil {
				return err
			}
			b, err := e.attempt(ctx, rawURL)
			if err != nil {
				log.Printf("[sdmx] %s %s: attempt %d failed: %v", reqCtx.Operation, reqCtx.Dataset, attempt, err)
				return err
			}
			body = b
			return nil
		},
		retry.Attempts(uint(e.opts.MaxRetries+1)),
		retry.Delay(e.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// attempt performs a single GET bound to the per-attempt deadline and
// classifies the outcome into the pipeline's error taxonomy.
func (e *Executor) attempt(ctx context.Context, rawURL string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &InputError{Field: "url", Value: rawURL, Reason: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{URL: rawURL, Err: err}
		}
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &NetworkError{URL: rawURL, Err: err}
		}
		return b, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, &RemoteError{Status: resp.StatusCode, URL: rawURL, Body: string(snippet)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isTransient decides whether an attempt outcome is worth retrying.
func isTransient(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Transient()
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
