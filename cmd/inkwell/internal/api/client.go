// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api is the typed HTTP client for the Inkwell backend.
//
// Every endpoint has a request and response type in pkg/datatypes; no
// untyped maps cross this boundary. All calls share one cookie jar so the
// backend's session cookie is sent with every request, and one rate limiter
// so a burst of reactions cannot flood the backend.
//
// # Errors
//
// Every method returns *Error on failure. Use IsUnsuccessful to tell a
// {"success": false} answer from IsNetwork transport trouble.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/logging"
	"github.com/AleutianAI/inkwell/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const tracerName = "inkwell.api"

// maxDetail bounds the response body kept on an *Error.
const maxDetail = 512

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// Service is the full backend surface. Views depend on narrower slices of it.
type Service interface {
	SignUp(ctx context.Context, req datatypes.SignUpRequest) (datatypes.SignUpResponse, error)
	SignIn(ctx context.Context, req datatypes.SignInRequest) (datatypes.User, error)
	EditProfileField(ctx context.Context, req datatypes.ProfileFieldUpdate) error
	EditPreferences(ctx context.Context, req datatypes.PreferencesUpdate) error
	GetAllCategories(ctx context.Context) ([]datatypes.Category, error)
	SelectCategories(ctx context.Context, req datatypes.SelectCategoryRequest) error
	CreateArticle(ctx context.Context, req datatypes.CreateArticleRequest) error
	GetAllArticles(ctx context.Context, userID string) ([]datatypes.Article, error)
	ViewArticle(ctx context.Context, articleID string) (datatypes.Article, error)
	MyArticles(ctx context.Context, userID string) ([]datatypes.Article, error)
	EditArticle(ctx context.Context, req datatypes.EditArticleRequest) error
	React(ctx context.Context, req datatypes.ReactionRequest) (datatypes.User, error)
	BlockArticle(ctx context.Context, req datatypes.BlockRequest) error
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string

	// Timeout bounds each request. Zero means 15s.
	Timeout time.Duration

	// RateLimit is requests per second. Zero disables limiting.
	RateLimit float64

	// Burst is the limiter bucket size. Zero means 1.
	Burst int

	// Transport is wrapped with otelhttp. Nil means http.DefaultTransport.
	Transport http.RoundTripper

	// Jar holds the backend session cookie. Nil allocates an in-memory jar.
	Jar http.CookieJar

	Logger  *logging.Logger
	Metrics *telemetry.ClientMetrics
}

// Client implements Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
	metrics *telemetry.ClientMetrics

	categories      singleflight.Group
	categoriesMu    sync.RWMutex
	categoriesCache []datatypes.Category
}

var _ Service = (*Client)(nil)

// New builds a Client from opts.
//
// # Example
//
//	client, err := api.New(api.Options{
//	    BaseURL:   cfg.API.BaseURL,
//	    RateLimit: 10,
//	    Burst:     5,
//	    Logger:    logger,
//	})
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("api: base URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("api: cookie jar: %w", err)
		}
		opts.Jar = jar
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       opts.Jar,
			Transport: otelhttp.NewTransport(opts.Transport),
		},
		limiter: limiter,
		logger:  opts.Logger.With("component", "api"),
		metrics: opts.Metrics,
	}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// InvalidateCategories drops the cached category list.
func (c *Client) InvalidateCategories() {
	c.categoriesMu.Lock()
	c.categoriesCache = nil
	c.categoriesMu.Unlock()
}

// -----------------------------------------------------------------------------
// Transport
// -----------------------------------------------------------------------------

// doJSON sends in as JSON (nil sends no body) and decodes the answer into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindEncode, Op: op, Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, op, method, path, body, "application/json", out)
}

// doMultipart sends text fields in order, then the optional image file.
func (c *Client) doMultipart(ctx context.Context, op, method, path string, fields []datatypes.FormField, image *datatypes.ImageUpload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return &Error{Kind: KindEncode, Op: op, Message: "could not encode form", Err: err}
		}
	}
	if image != nil && image.Content != nil {
		part, err := w.CreateFormFile("image", image.Filename)
		if err != nil {
			return &Error{Kind: KindEncode, Op: op, Message: "could not attach image", Err: err}
		}
		if _, err := io.Copy(part, image.Content); err != nil {
			return &Error{Kind: KindEncode, Op: op, Message: "could not read image", Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return &Error{Kind: KindEncode, Op: op, Message: "could not encode form", Err: err}
	}
	return c.do(ctx, op, method, path, &buf, w.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) (err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, tracerName, "api."+op)
	defer span.End()
	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("inkwell.op", op), attribute.String("inkwell.request_id", requestID))

	refused := false
	defer func() {
		outcome := telemetry.OutcomeOK
		if refused {
			outcome = telemetry.OutcomeUnsuccessful
		}
		if err != nil {
			outcome = telemetry.OutcomeError
			telemetry.RecordError(span, err)
			c.logger.Debug("api call failed", "op", op, "request_id", requestID, "error", err)
		}
		c.metrics.RecordRequest(op, outcome, time.Since(start))
	}()

	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindCancelled, Op: op, Message: "request cancelled", Err: err}
	}
	c.metrics.RecordRateLimitWait(time.Since(waitStart))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindEncode, Op: op, Message: "could not build request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &Error{Kind: KindCancelled, Op: op, Message: "request cancelled", Err: ctx.Err()}
		}
		return &Error{Kind: KindNetwork, Op: op, Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, StatusCode: resp.StatusCode, Message: "could not read response", Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var status datatypes.StatusResponse
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &status) == nil && status.Message != "" {
			msg = status.Message
		}
		return &Error{Kind: KindStatus, Op: op, StatusCode: resp.StatusCode, Message: msg, Detail: truncate(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, StatusCode: resp.StatusCode, Message: "unexpected response", Detail: truncate(data), Err: err}
	}
	if s, ok := out.(succeeder); ok && !s.Succeeded() {
		refused = true
	}
	return nil
}

// succeeder is implemented by the {success} response envelopes.
type succeeder interface {
	Succeeded() bool
}

func truncate(b []byte) string {
	if len(b) > maxDetail {
		return string(b[:maxDetail]) + "..."
	}
	return string(b)
}
