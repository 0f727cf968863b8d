package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	notesBox "github.com/2beens/notesservice/internal/notes_box"
	"github.com/2beens/notesservice/pkg"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrNotFound = errors.New("note not found")

// APIError is a non-success response from the notes service. Message holds
// the "error" field of the body when the service sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notes service: status %d", e.StatusCode)
	}
	return fmt.Sprintf("notes service: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client with a traced transport. It sets no timeout of its own,
// request deadlines come from the context passed to each call.
func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]notesBox.Note, error) {
	var notes []notesBox.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (c *Client) Get(ctx context.Context, id int) (*notesBox.Note, error) {
	note := &notesBox.Note{}
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+strconv.Itoa(id), nil, note); err != nil {
		return nil, fmt.Errorf("get note %d: %w", id, err)
	}
	return note, nil
}

func (c *Client) Create(ctx context.Context, content string, important bool) (*notesBox.Note, error) {
	reqBody := struct {
		Content   string `json:"content"`
		Important bool   `json:"important"`
	}{
		Content:   content,
		Important: important,
	}

	note := &notesBox.Note{}
	if err := c.do(ctx, http.MethodPost, "/api/notes", reqBody, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// Delete succeeds for missing notes too, the service does not tell them apart.
func (c *Client) Delete(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, "/api/notes/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		reqBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(reqBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", pkg.ContentType.JSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && len(respBytes) == 0:
		return ErrNotFound
	case resp.StatusCode >= 400:
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp pkg.ErrorResponse
		if json.Unmarshal(respBytes, &errResp) == nil {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if respBody == nil || len(respBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBytes, respBody); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
