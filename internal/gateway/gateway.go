package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
)

// API is the remote device service consumed by the controller.
type API interface {
	List(ctx context.Context, opts ListOptions) ([]model.Device, error)
	Create(ctx context.Context, input model.DeviceInput) (*model.Device, error)
	Get(ctx context.Context, id string) (*model.Device, error)
	Update(ctx context.Context, id string, input model.DeviceInput) (*model.Device, error)
	Delete(ctx context.Context, id string) error
	Statuses(ctx context.Context) ([]model.StatusUpdate, error)
	TriggerCheck(ctx context.Context, id string) (*model.StatusUpdate, error)
}

// ListOptions are the optional list query parameters.
type ListOptions struct {
	Type   string
	Status string
	Sort   string
}

// Client talks to the device API over HTTP.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ API = (*Client)(nil)

// NewClient creates a client for the given base URL. An empty token
// disables the Authorization header.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// List fetches devices, optionally filtered and sorted server-side.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]model.Device, error) {
	q := url.Values{}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	path := "/api/devices"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var devices []model.Device
	if err := c.do(ctx, http.MethodGet, path, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Create submits a new device and returns the canonical record with the
// server-assigned id.
func (c *Client) Create(ctx context.Context, input model.DeviceInput) (*model.Device, error) {
	var device model.Device
	if err := c.do(ctx, http.MethodPost, "/api/devices", input, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Get fetches a single device by id.
func (c *Client) Get(ctx context.Context, id string) (*model.Device, error) {
	var device model.Device
	if err := c.do(ctx, http.MethodGet, "/api/devices/"+url.PathEscape(id), nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Update replaces the editable fields of a device.
func (c *Client) Update(ctx context.Context, id string, input model.DeviceInput) (*model.Device, error) {
	var device model.Device
	if err := c.do(ctx, http.MethodPut, "/api/devices/"+url.PathEscape(id), input, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Delete removes a device. A 204 response is a successful null result.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/devices/"+url.PathEscape(id), nil, nil)
}

// Statuses fetches the current status of every device.
func (c *Client) Statuses(ctx context.Context) ([]model.StatusUpdate, error) {
	var updates []model.StatusUpdate
	if err := c.do(ctx, http.MethodGet, "/api/devices/status", nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// TriggerCheck runs an immediate status check for one device.
func (c *Client) TriggerCheck(ctx context.Context, id string) (*model.StatusUpdate, error) {
	var update model.StatusUpdate
	if err := c.do(ctx, http.MethodPost, "/api/devices/"+url.PathEscape(id)+"/status", nil, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

// do performs a request and decodes the response into out. A nil out
// discards the body; 204 is success regardless of out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("Failed to decode API response", "error", err, "path", path)
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError builds an *Error from a non-2xx response; the body is
// parsed best-effort and may carry per-field details.
func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	var body struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
		apiErr.Details = body.Details
	}
	return apiErr
}
