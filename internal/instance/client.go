// pattern: Imperative Shell
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client talks to a running dashboard's HTTP API. Every method returns the
// raw JSON response so the CLI can print it unchanged.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 10*time.Second)
}

// NewClientWithTimeout creates a Client with a custom request timeout.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Panels fetches the whole board.
func (c *Client) Panels() ([]byte, error) {
	return c.do("GET", "/api/panels", nil)
}

// Panel fetches one panel.
func (c *Client) Panel(id int) ([]byte, error) {
	return c.do("GET", panelPath(id, ""), nil)
}

// Catalog fetches the selector catalog.
func (c *Client) Catalog() ([]byte, error) {
	return c.do("GET", "/api/catalog", nil)
}

// Select points a panel at address. An empty address closes the panel.
func (c *Client) Select(id int, label, address string) ([]byte, error) {
	return c.do("POST", panelPath(id, "/select"), map[string]string{"label": label, "address": address})
}

// Retry starts a new attempt on a failed panel.
func (c *Client) Retry(id int) ([]byte, error) {
	return c.do("POST", panelPath(id, "/retry"), nil)
}

// Open asks the dashboard to open the panel's tool outside the grid.
func (c *Client) Open(id int) ([]byte, error) {
	return c.do("POST", panelPath(id, "/open"), nil)
}

// Refresh reloads a loaded panel.
func (c *Client) Refresh(id int) ([]byte, error) {
	return c.do("POST", panelPath(id, "/refresh"), nil)
}

// Zoom applies "in", "out" or "reset" to a panel.
func (c *Client) Zoom(id int, action string) ([]byte, error) {
	return c.do("POST", panelPath(id, "/zoom/"+action), nil)
}

// SetZoom sets a panel's zoom to the scale at index.
func (c *Client) SetZoom(id, index int) ([]byte, error) {
	return c.do("PUT", panelPath(id, "/zoom"), map[string]int{"index": index})
}

// Fullscreen enters or leaves fullscreen on a panel.
func (c *Client) Fullscreen(id int, on bool) ([]byte, error) {
	method := "DELETE"
	if on {
		method = "POST"
	}
	return c.do(method, panelPath(id, "/fullscreen"), nil)
}

func panelPath(id int, suffix string) string {
	return "/api/panels/" + strconv.Itoa(id) + suffix
}

// do sends a request with an optional JSON body and returns the response
// body. Non-2xx responses become errors carrying the server's message.
func (c *Client) do(method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to meowdash: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: extractErrorMessage(respBody)}
	}
	return respBody, nil
}

// StatusError is a non-2xx answer from the dashboard.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("meowdash returned status %d: %s", e.Code, e.Message)
}

// extractErrorMessage attempts to extract the error message from a JSON response body.
// If the body is not valid JSON or doesn't have an "error" field, returns the raw body string.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
