// Package api is the HTTP client for the Bilim platform REST API. All
// calls take a context, send JSON, and authenticate with the djoser JWT
// header scheme. The client never interprets course content; payload
// validation lives in the course package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skrblv/bilimGO/internal/course"
)

// DefaultBaseURL is the hosted platform API root.
const DefaultBaseURL = "https://api.bilim.dev/api/v1"

// TokenSource supplies the current access token. An empty string means
// the call goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// StaticToken is a fixed-token TokenSource, used by the auth bootstrap
// and in tests.
type StaticToken string

func (s StaticToken) AccessToken() string { return string(s) }

// Error is a non-2xx API response. Detail carries the server's message
// when the body was a DRF-style {"detail": ...} payload.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: HTTP %d", e.StatusCode)
}

// IsUnauthorized reports whether err is an API rejection of the caller's
// credentials. The auth store treats it as a signal to refresh or log out.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to one API root on behalf of one token source.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// NewClient creates a client for the given API root.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a JWT pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var pair TokenPair
	if err := c.postJSON(ctx, "/auth/jwt/create/", req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh exchanges a refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	req := struct {
		Refresh string `json:"refresh"`
	}{refreshToken}

	var resp struct {
		Access string `json:"access"`
	}
	if err := c.postJSON(ctx, "/auth/jwt/refresh/", req, &resp); err != nil {
		return "", err
	}
	return resp.Access, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.getJSON(ctx, "/auth/users/me/", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Courses lists the catalog.
func (c *Client) Courses(ctx context.Context) ([]course.Course, error) {
	var list []course.Course
	if err := c.getJSON(ctx, "/courses/", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CourseDetail fetches a full course with its skill tree. The raw payload
// is schema-validated before decoding; a malformed course is an error, not
// a partially rendered tree.
func (c *Client) CourseDetail(ctx context.Context, courseID int) (*course.Detail, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/", courseID), nil)
	if err != nil {
		return nil, err
	}
	if err := course.ValidateDetail(raw); err != nil {
		return nil, fmt.Errorf("course %d: %w", courseID, err)
	}
	var d course.Detail
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("course %d: decode: %w", courseID, err)
	}
	return &d, nil
}

// CheckAnswer submits one task answer for grading.
func (c *Client) CheckAnswer(ctx context.Context, taskID int, answer string) (*CheckResult, error) {
	req := struct {
		TaskID int    `json:"task_id"`
		Answer string `json:"answer"`
	}{taskID, answer}

	var res CheckResult
	if err := c.postJSON(ctx, "/tasks/check_answer/", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RequestHint buys the hint for a task. The XP penalty is accounted
// server-side.
func (c *Client) RequestHint(ctx context.Context, taskID int) (*HintResult, error) {
	req := struct {
		TaskID int `json:"task_id"`
	}{taskID}

	var res HintResult
	if err := c.postJSON(ctx, "/tasks/request_hint/", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CompleteLesson reports a finished lesson and returns the XP award.
func (c *Client) CompleteLesson(ctx context.Context, lessonID int) (*CompletionResult, error) {
	req := struct {
		LessonID int `json:"lesson_id"`
	}{lessonID}

	var res CompletionResult
	if err := c.postJSON(ctx, "/lessons/complete/", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TestDetails describes a course's final test.
func (c *Client) TestDetails(ctx context.Context, courseID int) (*TestDetails, error) {
	var d TestDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/testing/details/%d/", courseID), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// StartTest opens a test attempt for a course.
func (c *Client) StartTest(ctx context.Context, courseID int) (*StartTestResponse, error) {
	req := struct {
		CourseID int `json:"course_id"`
	}{courseID}

	var res StartTestResponse
	if err := c.postJSON(ctx, "/testing/session/", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitTest closes an attempt with the full answer batch and returns the
// graded result.
func (c *Client) SubmitTest(ctx context.Context, attemptID int, answers []TestAnswer) (*TestResult, error) {
	req := struct {
		AttemptID int          `json:"attempt_id"`
		Answers   []TestAnswer `json:"answers"`
	}{attemptID, answers}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("api: marshal request: %w", err)
	}
	raw, err := c.doRequest(ctx, http.MethodPut, "/testing/session/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var res TestResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("api: decode response: %w", err)
	}
	return &res, nil
}

// Challenges lists the user's challenges: incoming, outgoing and running.
func (c *Client) Challenges(ctx context.Context) ([]Challenge, error) {
	var list []Challenge
	if err := c.getJSON(ctx, "/challenges/", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SendChallenge challenges another user on a lesson.
func (c *Client) SendChallenge(ctx context.Context, receiverID, lessonID int) (*Challenge, error) {
	req := struct {
		ReceiverID int `json:"receiver_id"`
		LessonID   int `json:"lesson_id"`
	}{receiverID, lessonID}

	var ch Challenge
	if err := c.postJSON(ctx, "/challenges/", req, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// AcceptChallenge accepts an incoming challenge.
func (c *Client) AcceptChallenge(ctx context.Context, challengeID int) (*Challenge, error) {
	var ch Challenge
	if err := c.postJSON(ctx, fmt.Sprintf("/challenges/%d/accept/", challengeID), nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// DeclineChallenge declines an incoming challenge.
func (c *Client) DeclineChallenge(ctx context.Context, challengeID int) (*Challenge, error) {
	var ch Challenge
	if err := c.postJSON(ctx, fmt.Sprintf("/challenges/%d/decline/", challengeID), nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// SubmitChallengeResult reports the elapsed whole seconds for the caller's
// side of a challenge run.
func (c *Client) SubmitChallengeResult(ctx context.Context, challengeID, timeTaken int) (*Challenge, error) {
	req := struct {
		TimeTaken int `json:"time_taken"`
	}{timeTaken}

	var ch Challenge
	if err := c.postJSON(ctx, fmt.Sprintf("/challenges/%d/submit_result/", challengeID), req, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	raw, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	raw, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return nil, apiErr
	}
	return respBody, nil
}
