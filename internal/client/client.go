// Package client talks to the machine controller's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/cncview/internal/status"
	"github.com/philipparndt/cncview/pkg/toolpath"
)

// Command names understood by the controller
const (
	CommandStart           = "motion.start"
	CommandStop            = "motion.stop"
	CommandClearTrajectory = "trajectory.clear"
)

// SessionHeader carries the client session id on every request
const SessionHeader = "X-Cncview-Session"

// Client handles communication with the controller backend
type Client struct {
	baseURL    string
	session    uuid.UUID
	httpClient *http.Client
}

// New creates a client for baseURL. A zero timeout uses 10 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    uuid.New(),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the controller address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the id sent with every request
func (c *Client) Session() uuid.UUID {
	return c.session
}

type result struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r result) reason() string {
	if r.Message != "" && r.Error != "" {
		return r.Error + ": " + r.Message
	}
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(SessionHeader, c.session.String())
	return c.httpClient.Do(req)
}

// Status fetches and normalizes the current machine status
func (c *Client) Status(ctx context.Context) (status.Snapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/status", nil, "")
	if err != nil {
		return status.Snapshot{}, &TransientNetworkError{Op: "status", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return status.Snapshot{}, &TransientNetworkError{Op: "status", StatusCode: resp.StatusCode}
	}

	snap, err := status.Decode(resp.Body)
	if err != nil {
		return status.Snapshot{}, &TransientNetworkError{Op: "status", Err: err}
	}
	return snap, nil
}

// Command sends a controller command with optional parameters
func (c *Client) Command(ctx context.Context, command string, params map[string]any) error {
	payload := make(map[string]any, len(params)+1)
	for k, v := range params {
		payload[k] = v
	}
	payload["command"] = command

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/command", bytes.NewReader(body), "application/json")
	if err != nil {
		return &TransientNetworkError{Op: command, Err: err}
	}
	defer resp.Body.Close()

	return checkResult(command, resp)
}

// Start begins machining filename
func (c *Client) Start(ctx context.Context, filename string) error {
	return c.Command(ctx, CommandStart, map[string]any{"filename": filename})
}

// Stop halts machining
func (c *Client) Stop(ctx context.Context) error {
	return c.Command(ctx, CommandStop, nil)
}

// ClearTrajectory asks the controller to forget its recorded path
func (c *Client) ClearTrajectory(ctx context.Context) error {
	return c.Command(ctx, CommandClearTrajectory, nil)
}

// Upload sends a program file to the controller. It does not parse it.
func (c *Client) Upload(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer writer.Close()

		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			errCh <- fmt.Errorf("failed to create form file: %w", err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			errCh <- fmt.Errorf("failed to copy file: %w", err)
			return
		}
		errCh <- nil
	}()

	resp, err := c.do(ctx, http.MethodPost, "/api/files", pr, writer.FormDataContentType())
	if err != nil {
		_ = pr.CloseWithError(err)
		<-errCh
		return &TransientNetworkError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return writeErr
	}
	return checkResult("upload "+filepath.Base(filePath), resp)
}

// ParseResult is the path the controller computed for a program file
type ParseResult struct {
	Points    []toolpath.MotionPoint
	Malformed []*toolpath.MalformedPointError
}

// Parse asks the controller to compute the path of an uploaded file
func (c *Client) Parse(ctx context.Context, filename string) (ParseResult, error) {
	op := "parse " + filename
	resp, err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(filename)+"/parse", nil, "")
	if err != nil {
		return ParseResult{}, &TransientNetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var body struct {
		result
		TrajectoryPoints []json.RawMessage `json:"trajectoryPoints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return ParseResult{}, &TransientNetworkError{Op: op, StatusCode: resp.StatusCode}
		}
		return ParseResult{}, &TransientNetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK || body.Success == nil || !*body.Success {
		return ParseResult{}, rejection(op, resp.StatusCode, body.result)
	}

	points, malformed := toolpath.DecodePoints(body.TrajectoryPoints)
	return ParseResult{Points: points, Malformed: malformed}, nil
}

// FileList is the controller's listing of a directory
type FileList struct {
	Files   []string `json:"files"`
	Folders []string `json:"folders"`
	Errors  []string `json:"errors"`
}

// ListFiles lists program files under dir on the controller
func (c *Client) ListFiles(ctx context.Context, dir string) (FileList, error) {
	if dir == "" {
		dir = "/"
	}
	resp, err := c.do(ctx, http.MethodGet, "/api/files?path="+url.QueryEscape(dir), nil, "")
	if err != nil {
		return FileList{}, &TransientNetworkError{Op: "list files", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return FileList{}, &TransientNetworkError{Op: "list files", StatusCode: resp.StatusCode}
	}

	var list FileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return FileList{}, &TransientNetworkError{Op: "list files", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return list, nil
}

func checkResult(op string, resp *http.Response) error {
	var r result
	decodeErr := json.NewDecoder(resp.Body).Decode(&r)

	if resp.StatusCode != http.StatusOK {
		return rejection(op, resp.StatusCode, r)
	}
	if decodeErr != nil {
		return &TransientNetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}
	if r.Success == nil || !*r.Success {
		return &CommandError{Command: op, Reason: r.reason()}
	}
	return nil
}

func rejection(op string, code int, r result) error {
	reason := r.reason()
	if reason == "" && code != http.StatusOK {
		reason = fmt.Sprintf("status %d", code)
	}
	return &CommandError{Command: op, Reason: reason}
}
