// Package canvas is the authenticated gateway to the Canvas LMS REST API.
// It owns rate-limit pacing, bearer-token auth, and error normalization;
// everything above it works with decoded structs and the package error
// taxonomy instead of raw HTTP.
package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"coursecast/internal/config"
)

// apiBase is the versioned base path all endpoints live under.
const apiBase = "/api/v1"

// Client is the Canvas API gateway. All calls are strictly sequential; the
// pacer enforces the minimum inter-call spacing the Canvas rate limiter
// expects. The client never retries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	pacer   *Pacer
	log     *zap.Logger
}

// New builds a gateway from session credentials. The credentials are not
// validated here; use VerifySelf as the connectivity probe.
func New(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
		pacer:   NewPacer(cfg.RequestSpacing),
		log:     log,
	}
}

// WithClock swaps the pacer clock. Test hook.
func (c *Client) WithClock(clock Clock, spacing time.Duration) *Client {
	c.pacer = NewPacerWithClock(spacing, clock)
	return c
}

// BaseURL returns the configured Canvas origin.
func (c *Client) BaseURL() string { return c.baseURL }

// Call issues one authenticated request against the versioned API and
// returns the decoded JSON body. 2xx with an empty or non-JSON body is
// ErrMalformedResponse; any non-2xx status is an *APIError.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	if c.token == "" {
		return nil, ErrUnauthenticated
	}

	c.pacer.Wait()
	defer c.pacer.Done()

	u := c.baseURL + apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("canvas call", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
		c.log.Debug("canvas error response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	if len(data) == 0 || !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s %s returned %d bytes", ErrMalformedResponse, method, path, len(data))
	}
	return json.RawMessage(data), nil
}

// VerifySelf probes connectivity and credential validity via GET /users/self.
func (c *Client) VerifySelf(ctx context.Context) (*User, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/users/self", nil, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &u, nil
}

// ListCoursesPage fetches one page of the operator's active courses. The
// favorites flag is only an include hint to the API; filtering on
// Course.IsFavorite is the caller's job.
func (c *Client) ListCoursesPage(ctx context.Context, page, perPage int) ([]Course, error) {
	q := url.Values{}
	q.Set("enrollment_state", "active")
	q.Set("include[]", "favorites")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))

	raw, err := c.Call(ctx, http.MethodGet, "/courses", q, nil)
	if err != nil {
		return nil, err
	}
	var courses []Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return courses, nil
}

// ListAssignmentGroups fetches the grading groups of one course.
func (c *Client) ListAssignmentGroups(ctx context.Context, courseID int64) ([]AssignmentGroup, error) {
	path := fmt.Sprintf("/courses/%d/assignment_groups", courseID)
	raw, err := c.Call(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var groups []AssignmentGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return groups, nil
}

// CreateAssignment creates one assignment under the given course. The body
// is wrapped in the {"assignment": ...} envelope Canvas expects.
func (c *Client) CreateAssignment(ctx context.Context, courseID int64, assignment any) (*Assignment, error) {
	path := fmt.Sprintf("/courses/%d/assignments", courseID)
	envelope := map[string]any{"assignment": assignment}

	raw, err := c.Call(ctx, http.MethodPost, path, nil, envelope)
	if err != nil {
		return nil, err
	}
	var a Assignment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &a, nil
}

// AssignmentURL derives the browsable URL for a created assignment.
func (c *Client) AssignmentURL(courseID, assignmentID int64) string {
	return fmt.Sprintf("%s/courses/%d/assignments/%d", c.baseURL, courseID, assignmentID)
}
