// Package backend is the REST client for the retreat registration service.
//
// The backend owns every member record and payment-state transition. This
// client only moves JSON in and out, validates what comes back, and turns
// non-2xx responses into *APIError values carrying the backend's message.
//
// Every call takes the caller's context and adds its own timeout. Identical
// concurrent reads (the member list, one lookup) share a single request,
// but a read never joins one that started before the last write finished.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dalemusser/retreatreg/internal/app/system/timeouts"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// maxBody caps how much of a backend response is read.
const maxBody = 4 << 20

// Operation names, used for metrics, logs and fallback messages.
const (
	OpList     = "list_members"
	OpLookup   = "lookup_member"
	OpRegister = "register"
	OpUpdate   = "update_phases"
	OpPayment  = "process_payment"
	OpPing     = "ping"
)

var fallbackMessages = map[string]string{
	OpList:     "Failed to fetch registrations",
	OpLookup:   "Failed to fetch payment record",
	OpRegister: "Registration failed. Please try again.",
	OpUpdate:   "Failed to update payment",
	OpPayment:  "Failed to submit payment",
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Optional OAuth2 client-credentials grant. Leave ClientID empty to
	// call the backend unauthenticated.
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Client talks to the retreat backend.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *zap.Logger
	metrics *Metrics
	reads   singleflight.Group
	writes  atomic.Uint64 // bumped as each write completes; part of every read key
}

// New builds a Client. metrics may be nil.
func New(cfg Config, metrics *Metrics, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.Backend()
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		httpClient = cc.Client(ctx)
		httpClient.Timeout = timeout
		logger.Info("backend client using oauth2 client credentials", zap.String("token_url", cfg.TokenURL))
	}

	return &Client{
		baseURL: base,
		timeout: timeout,
		http:    httpClient,
		log:     logger,
		metrics: metrics,
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ListMembers fetches every registration (GET /retreatreg).
func (c *Client) ListMembers(ctx context.Context) ([]models.Member, error) {
	v, err := c.sharedRead(ctx, OpList, func(ctx context.Context) (any, error) {
		var out []models.Member
		if err := c.do(ctx, OpList, http.MethodGet, "/retreatreg", nil, nil, &out); err != nil {
			return nil, err
		}
		if err := validateMembers(out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	shared := v.([]models.Member)
	out := make([]models.Member, len(shared))
	for i, m := range shared {
		out[i] = m.Clone()
	}
	return out, nil
}

// LookupMember fetches one registrant by phone and full name
// (GET /retreatreg?phoneNumber=&fullName=).
func (c *Client) LookupMember(ctx context.Context, phone, fullName string) (models.Member, error) {
	q := url.Values{}
	q.Set("phoneNumber", phone)
	q.Set("fullName", fullName)

	v, err := c.sharedRead(ctx, OpLookup+"?"+q.Encode(), func(ctx context.Context) (any, error) {
		var out models.Member
		if err := c.do(ctx, OpLookup, http.MethodGet, "/retreatreg", q, nil, &out); err != nil {
			return nil, err
		}
		if err := validateMember(&out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return models.Member{}, err
	}
	return v.(models.Member).Clone(), nil
}

// Ping checks the backend answers HTTP at all. Any status counts as
// reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), c.log, "backend ping")
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	resp.Body.Close()
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Writes                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Writes answer with an optional record. A 2xx without one still means the
// backend accepted the write; Result.Record is then nil and the caller
// re-reads if it needs the new state.

// Register creates a registration (POST /retreatreg).
func (c *Client) Register(ctx context.Context, in RegistrationRequest) (Result, error) {
	return c.write(ctx, OpRegister, http.MethodPost, "/retreatreg", in)
}

// UpdatePhases replaces a member's whole phase array (PATCH /retreatreg).
func (c *Client) UpdatePhases(ctx context.Context, memberID string, phases []models.PaymentPhase) (Result, error) {
	return c.write(ctx, OpUpdate, http.MethodPatch, "/retreatreg", phasesUpdate{ID: memberID, Phases: phases})
}

// ProcessPayment submits an installment (POST /payments/process).
func (c *Client) ProcessPayment(ctx context.Context, in PaymentRequest) (Result, error) {
	return c.write(ctx, OpPayment, http.MethodPost, "/payments/process", in)
}

func (c *Client) write(ctx context.Context, op, method, path string, body any) (Result, error) {
	// Counted even on error: a timed-out write may still have landed.
	defer c.writes.Add(1)

	var env recordEnvelope
	if err := c.do(ctx, op, method, path, nil, body, &env); err != nil {
		return Result{}, err
	}
	if env.Record != nil {
		if err := validateMember(env.Record); err != nil {
			return Result{}, err
		}
	}
	return Result{Message: env.Message, Record: env.Record}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Transport                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// sharedRead collapses identical in-flight reads issued since the last
// write completed. The shared request runs detached from any single
// caller's cancellation but keeps its own timeout; each caller still
// returns as soon as its own context ends.
func (c *Client) sharedRead(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	key = fmt.Sprintf("%s#%d", key, c.writes.Load())
	ch := c.reads.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, in, out any) (err error) {
	start := time.Now()
	reqID := uuid.NewString()
	defer func() {
		c.metrics.observe(op, err, time.Since(start))
		if err != nil {
			c.log.Warn("backend call failed",
				zap.String("op", op),
				zap.String("request_id", reqID),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}
	}()

	ctx, cancel := timeouts.WithTimeout(ctx, c.timeout, c.log, "backend "+op)
	defer cancel()

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(op, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if method != http.MethodGet {
			return nil
		}
		return fmt.Errorf("%w: %s returned an empty body", ErrMalformedResponse, op)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

func apiError(op string, status int, raw []byte) *APIError {
	msg := ""
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil {
		msg = strings.TrimSpace(env.Error)
		if msg == "" {
			msg = strings.TrimSpace(env.Message)
		}
	}
	if msg == "" {
		msg = fallbackMessages[op]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Op: op, Status: status, Message: msg}
}
