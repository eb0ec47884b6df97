// Package client talks to the students API over HTTP.
//
// Every method returns either the server's canonical record(s) or one of
// two error types:
//
//   - *APIError: the server answered with a non-2xx status. Message is
//     the server's "error" field, or the status text when it sent none.
//   - *TransportError: the request never produced a usable answer
//     (connection refused, timeout, undecodable body).
package client

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
	"strings"
	"time"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// FallbackMessage is shown when a failure carries no server message.
const FallbackMessage = "unable to reach the students API"

// ErrNoBaseURL is returned by New when the base URL is empty.
var ErrNoBaseURL = errors.New("students API base URL is not set (STUDENTS_API_URL)")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError wraps a failure below the HTTP status level.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return FallbackMessage
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Detail includes the underlying cause, for logs rather than users.
func (e *TransportError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Candidate is the body of a create or update request. It has no id:
// only the server assigns one.
type Candidate struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Class string `json:"class"`
}

type Client struct {
	base *url.URL
	http *http.Client
}

// New builds a client rooted at baseURL, e.g. "http://localhost:5000".
// A zero timeout leaves requests bounded only by their context.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", baseURL)
	}

	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) List(ctx context.Context) ([]types.Student, error) {
	var students []types.Student
	if err := c.do(ctx, "list students", http.MethodGet, "api/students", nil, &students); err != nil {
		return nil, err
	}
	if students == nil {
		students = []types.Student{}
	}
	return students, nil
}

func (c *Client) Create(ctx context.Context, candidate Candidate) (types.Student, error) {
	var created types.Student
	err := c.do(ctx, "create student", http.MethodPost, "api/students", candidate, &created)
	return created, err
}

func (c *Client) Update(ctx context.Context, id int64, candidate Candidate) (types.Student, error) {
	var updated types.Student
	err := c.do(ctx, "update student", http.MethodPut, studentPath(id), candidate, &updated)
	return updated, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	var ack types.DeleteResult
	if err := c.do(ctx, "delete student", http.MethodDelete, studentPath(id), nil, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return &TransportError{Op: "delete student", Err: errors.New("server did not acknowledge delete")}
	}
	return nil
}

func studentPath(id int64) string {
	return "api/students/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var envelope response.Response
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &APIError{Status: status, Message: envelope.Error}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}

// Message returns the text a user should see for err: the server's
// message when there is one, the transport fallback otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return FallbackMessage
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsNotFound reports whether err is the server saying the id is unknown.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
