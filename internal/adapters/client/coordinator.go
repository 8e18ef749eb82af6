package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/metrics"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/config"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/ports"
)

const requestTimeout = 15 * time.Second

// Coordinator dispatches calls against the clinic API with the current
// access credential attached, and makes authorization failures transparent
// to callers at most once per call: the first 401 triggers a token renewal
// and a single replay. Concurrent failures share one in-flight renewal so
// the refresh credential is never burned twice in a race.
type Coordinator struct {
	rest   *resty.Client
	store  ports.CredentialStore
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger

	mu       sync.Mutex
	inflight *renewal
}

// renewal is one in-flight renewal attempt. Waiters block on done and then
// read err.
type renewal struct {
	done chan struct{}
	err  error
}

func NewCoordinator(baseURL string, store ports.CredentialStore, logger *zap.Logger) *Coordinator {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Coordinator{
		rest:   rest,
		store:  store,
		cb:     config.NewCircuitBreaker("ClinicAPI", logger),
		logger: logger,
	}
}

// callFn issues one request. It is invoked with a fresh request per
// attempt; a replay after renewal never reuses the original request object.
type callFn func(req *resty.Request) (*resty.Response, error)

// Execute runs one authenticated call against the clinic API.
//
// Outcomes:
//   - success or non-auth errors pass through unchanged;
//   - a 401 on the first attempt triggers one renewal and one replay;
//   - renewal failure clears the credential store and returns
//     domain.ErrSessionExpired;
//   - a 401 on the replayed attempt returns domain.ErrAuthExpired without
//     looping.
func (c *Coordinator) Execute(ctx context.Context, operation string, call callFn) (*resty.Response, error) {
	resp, err := c.dispatch(ctx, operation, call)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusUnauthorized {
		return resp, nil
	}

	if err := c.renew(ctx); err != nil {
		return nil, err
	}

	resp, err = c.dispatch(ctx, operation, call)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		metrics.UpstreamRequests.WithLabelValues(operation, metrics.OutcomeAuthExpired).Inc()
		return nil, fmt.Errorf("%s rejected after renewal: %w", operation, domain.ErrAuthExpired)
	}
	return resp, nil
}

// Authenticate obtains a fresh credential pair from the token endpoint and
// stores it atomically. Not routed through the breaker: a failed login must
// not open the circuit for everyone else.
func (c *Coordinator) Authenticate(ctx context.Context, username, password string) error {
	var pair domain.CredentialPair
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&pair).
		Post("/api/token/")
	if err != nil {
		return fmt.Errorf("token endpoint: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return domain.ErrInvalidCredentials
	}
	if resp.IsError() {
		return fmt.Errorf("token endpoint returned %d: %w", resp.StatusCode(), domain.ErrUpstream)
	}
	if pair.Access == "" || pair.Refresh == "" {
		return fmt.Errorf("token endpoint returned an incomplete credential pair")
	}
	return c.store.SetPair(ctx, pair)
}

func (c *Coordinator) dispatch(ctx context.Context, operation string, call callFn) (*resty.Response, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())

	access, err := c.store.Get(ctx, domain.CredentialAccess)
	switch {
	case err == nil:
		req.SetAuthToken(access)
	case errors.Is(err, domain.ErrNoCredential):
		// Dispatch without a token; the upstream 401 then drives the
		// renewal path.
	default:
		return nil, err
	}

	start := time.Now()
	result, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := call(req)
		if err != nil {
			return nil, err
		}
		// Server-side failures trip the breaker; auth and client errors
		// are application outcomes, not dependency health.
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, domain.ErrUpstream
		}
		return resp, nil
	})
	metrics.UpstreamDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := metrics.OutcomeNetworkError
		if errors.Is(err, domain.ErrUpstream) {
			outcome = metrics.OutcomeServerError
		}
		metrics.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
		c.logger.Warn("clinic API call failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %v: %w", operation, err, domain.ErrUpstream)
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	resp := result.(*resty.Response)
	if resp.StatusCode() != http.StatusUnauthorized {
		outcome := metrics.OutcomeSuccess
		if resp.IsError() {
			outcome = metrics.OutcomeClientError
		}
		metrics.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
	}
	return resp, nil
}

// renew coalesces concurrent renewal triggers into a single in-flight
// attempt; late arrivals wait for its result instead of racing their own
// refresh call.
func (c *Coordinator) renew(ctx context.Context) error {
	c.mu.Lock()
	if r := c.inflight; r != nil {
		c.mu.Unlock()
		select {
		case <-r.done:
			return r.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r := &renewal{done: make(chan struct{})}
	c.inflight = r
	c.mu.Unlock()

	r.err = c.renewOnce(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(r.done)

	return r.err
}

func (c *Coordinator) renewOnce(ctx context.Context) error {
	refresh, err := c.store.Get(ctx, domain.CredentialRefresh)
	if err != nil {
		return c.expireSession(ctx, fmt.Errorf("no refresh credential: %w", err))
	}

	var out struct {
		Access string `json:"access"`
	}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetBody(map[string]string{"refresh": refresh}).
		SetResult(&out).
		Post("/api/token/refresh/")
	if err != nil {
		metrics.TokenRenewals.WithLabelValues("failure").Inc()
		return c.expireSession(ctx, fmt.Errorf("token renewal: %w", err))
	}
	if resp.IsError() || out.Access == "" {
		metrics.TokenRenewals.WithLabelValues("failure").Inc()
		return c.expireSession(ctx, fmt.Errorf("refresh credential rejected with status %d", resp.StatusCode()))
	}

	if err := c.store.Set(ctx, domain.CredentialAccess, out.Access); err != nil {
		return err
	}
	metrics.TokenRenewals.WithLabelValues("success").Inc()
	c.logger.Info("access credential renewed")
	return nil
}

// expireSession wipes the credential pair and converts the renewal failure
// into the terminal session-expired error the caller contract requires.
func (c *Coordinator) expireSession(ctx context.Context, cause error) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("failed to clear credential store", zap.Error(err))
	}
	c.logger.Warn("session expired", zap.Error(cause))
	return fmt.Errorf("%v: %w", cause, domain.ErrSessionExpired)
}
