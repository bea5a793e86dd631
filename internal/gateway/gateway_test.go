package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavia-common/netwatch/internal/model"
)

func TestClientList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/devices", r.URL.Path)
		assert.Equal(t, "router", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]model.Device{
			{ID: "1", Name: "R1", IPAddress: "10.0.0.1", Type: model.TypeRouter, Location: "DC-A"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	devices, err := c.List(context.Background(), ListOptions{Type: model.TypeRouter})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "R1", devices[0].Name)
}

func TestClientCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var input model.DeviceInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Device{
			ID:        "1",
			Name:      input.Name,
			IPAddress: input.IPAddress,
			Type:      input.Type,
			Location:  input.Location,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	device, err := c.Create(context.Background(), model.DeviceInput{
		Name: "R1", IPAddress: "10.0.0.1", Type: model.TypeRouter, Location: "DC-A",
	})
	require.NoError(t, err)
	assert.Equal(t, "1", device.ID)
	assert.Equal(t, "", device.Status)
}

func TestClientDeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	assert.NoError(t, c.Delete(context.Background(), "1"))
}

func TestClientErrorWithFieldDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   "validation failed",
			"details": map[string]string{"ip_address": "Invalid IPv4"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Create(context.Background(), model.DeviceInput{})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.True(t, apiErr.HasFieldErrors())
	assert.Equal(t, "Invalid IPv4", apiErr.Details["ip_address"])
}

func TestClientErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Statuses(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.EqualError(t, apiErr, "request failed with status 502")
	assert.False(t, apiErr.HasFieldErrors())
}

func TestClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "device not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	c := NewClient(srv.URL, "")
	_, err := c.List(context.Background(), ListOptions{})
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}

func TestClientTriggerCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/devices/1/status", r.URL.Path)
		json.NewEncoder(w).Encode(model.StatusUpdate{ID: "1", Status: model.StatusOnline})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	update, err := c.TriggerCheck(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnline, update.Status)
}
