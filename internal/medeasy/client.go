// Package medeasy is the HTTP client for the MedEasy medication
// backend. It is a thin I/O wrapper: it authenticates with the user's
// bearer token, unwraps the backend's response envelope, and reports
// failures as typed errors the tools can translate into user-facing
// messages. No retry logic lives here — a timed-out call surfaces as
// ErrUnavailable and the caller decides what to tell the user.
package medeasy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Errors the client maps backend failures onto. Tools check these with
// errors.Is to pick a user-facing message.
var (
	// ErrUnavailable covers transport failures, timeouts, and non-2xx
	// responses — the backend could not serve the request.
	ErrUnavailable = errors.New("medeasy backend unavailable")

	// ErrBadEnvelope means the backend answered 2xx but the response
	// was structurally invalid (missing the expected "body" field).
	ErrBadEnvelope = errors.New("medeasy response missing body")
)

// envelope is the wrapper the backend puts around every response body.
type envelope struct {
	Body json.RawMessage `json:"body"`
}

// Client talks to the MedEasy backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL. Every call is bounded by
// timeout in addition to the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// UserSchedules fetches the user's schedule slots (the named
// time-of-day buckets medicines are assigned to).
func (c *Client) UserSchedules(ctx context.Context, token string) ([]ScheduleSlot, error) {
	body, err := c.get(ctx, token, "/user/schedule", nil)
	if err != nil {
		return nil, err
	}
	var slots []ScheduleSlot
	if err := json.Unmarshal(body, &slots); err != nil {
		return nil, fmt.Errorf("%w: decoding schedule list: %v", ErrBadEnvelope, err)
	}
	return slots, nil
}

// ScheduleRange fetches the per-day schedule/routine records for the
// inclusive date range [start, end]. Dates are formatted 2006-01-02.
func (c *Client) ScheduleRange(ctx context.Context, token string, start, end time.Time) ([]DaySchedule, error) {
	q := url.Values{}
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))

	body, err := c.get(ctx, token, "/routine/list", q)
	if err != nil {
		return nil, err
	}
	var days []DaySchedule
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("%w: decoding routine list: %v", ErrBadEnvelope, err)
	}
	return days, nil
}

// SearchMedicine queries the medicine catalog by name. The raw body is
// returned for the tool to pass through to the assistant.
func (c *Client) SearchMedicine(ctx context.Context, token, name string, size int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("name", name)
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return c.get(ctx, token, "/medicine/search", q)
}

// MedicineByID fetches a single medicine record.
func (c *Client) MedicineByID(ctx context.Context, token, medicineID string) (json.RawMessage, error) {
	return c.get(ctx, token, "/medicine/medicine_id/"+url.PathEscape(medicineID), nil)
}

// CurrentMedications fetches the medicines the user is currently taking.
func (c *Client) CurrentMedications(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/user/medicines/current", nil)
}

// CreateRoutine registers a dosing routine against resolved schedule
// slot ids.
func (c *Client) CreateRoutine(ctx context.Context, token string, req RoutineCreation) (json.RawMessage, error) {
	return c.send(ctx, http.MethodPost, token, "/routine", req)
}

// UpdateScheduleTime changes one schedule slot's time-of-day. takeTime
// is formatted HH:MM:SS.
func (c *Client) UpdateScheduleTime(ctx context.Context, token string, scheduleID int64, takeTime string) (json.RawMessage, error) {
	req := struct {
		UserScheduleID int64  `json:"user_schedule_id"`
		TakeTime       string `json:"take_time"`
	}{scheduleID, takeTime}
	return c.send(ctx, http.MethodPatch, token, "/user/schedule/update", req)
}

func (c *Client) get(ctx context.Context, token, path string, q url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return c.do(req, token)
}

func (c *Client) send(ctx context.Context, method, token, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token)
}

// do executes the request and unwraps the response envelope. Transport
// failures and non-2xx statuses become ErrUnavailable with the cause
// attached; a 2xx response without a "body" field is ErrBadEnvelope.
func (c *Client) do(req *http.Request, token string) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, bytes.TrimSpace(detail))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Body == nil {
		return nil, ErrBadEnvelope
	}
	return env.Body, nil
}
