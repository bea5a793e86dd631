package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/storage"
)

// memStorage is an in-memory Storage for handler tests.
type memStorage struct {
	devices map[string]*model.Device
}

func newMemStorage() *memStorage {
	return &memStorage{devices: make(map[string]*model.Device)}
}

func (m *memStorage) ListDevices(q storage.ListQuery) ([]model.Device, error) {
	out := []model.Device{}
	for _, d := range m.devices {
		if q.Type != "" && d.Type != q.Type {
			continue
		}
		if q.Status != "" && d.Status != q.Status {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStorage) GetDevice(id string) (*model.Device, error) {
	d, ok := m.devices[id]
	if !ok {
		return nil, storage.ErrDeviceNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *memStorage) CreateDevice(d *model.Device) error {
	copied := *d
	m.devices[d.ID] = &copied
	return nil
}

func (m *memStorage) UpdateDevice(d *model.Device) error {
	existing, ok := m.devices[d.ID]
	if !ok {
		return storage.ErrDeviceNotFound
	}
	existing.Name = d.Name
	existing.IPAddress = d.IPAddress
	existing.Type = d.Type
	existing.Location = d.Location
	return nil
}

func (m *memStorage) DeleteDevice(id string) error {
	if _, ok := m.devices[id]; !ok {
		return storage.ErrDeviceNotFound
	}
	delete(m.devices, id)
	return nil
}

func (m *memStorage) SetDeviceStatus(id, status string, checkedAt time.Time) error {
	d, ok := m.devices[id]
	if !ok {
		return storage.ErrDeviceNotFound
	}
	d.Status = status
	d.LastChecked = &checkedAt
	return nil
}

func (m *memStorage) Close() error { return nil }

// fixedChecker reports every address with the same status.
type fixedChecker struct {
	status string
}

func (f fixedChecker) Check(ctx context.Context, ip string) string { return f.status }

func newTestServer(t *testing.T, st storage.Storage, checker StatusChecker) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(st, checker).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateAndGetDevice(t *testing.T) {
	st := newMemStorage()
	srv := newTestServer(t, st, fixedChecker{status: model.StatusOnline})

	body := `{"name":"R1","ip_address":"10.0.0.1","type":"router","location":"DC-A"}`
	resp, err := http.Post(srv.URL+"/api/devices", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.Device
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "R1", created.Name)
	assert.Equal(t, "", created.Status)
	assert.Nil(t, created.LastChecked)

	getResp, err := http.Get(srv.URL + "/api/devices/" + created.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestCreateDeviceValidationDetails(t *testing.T) {
	srv := newTestServer(t, newMemStorage(), fixedChecker{})

	body := `{"name":"","ip_address":"10.0.0","type":"router","location":"A"}`
	resp, err := http.Post(srv.URL+"/api/devices", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "validation failed", payload.Error)
	assert.Equal(t, "Name is required", payload.Details["name"])
	assert.Equal(t, "Invalid IPv4", payload.Details["ip_address"])
}

func TestDeleteDeviceNoContent(t *testing.T) {
	st := newMemStorage()
	st.CreateDevice(&model.Device{ID: "1", Name: "R1", IPAddress: "10.0.0.1"})
	srv := newTestServer(t, st, fixedChecker{})

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/devices/1", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp2, err := http.DefaultClient.Do(req.Clone(context.Background()))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestAllStatusesPersistsResults(t *testing.T) {
	st := newMemStorage()
	st.CreateDevice(&model.Device{ID: "1", Name: "R1", IPAddress: "10.0.0.1"})
	st.CreateDevice(&model.Device{ID: "2", Name: "S1", IPAddress: "10.0.0.2"})
	srv := newTestServer(t, st, fixedChecker{status: model.StatusOnline})

	resp, err := http.Get(srv.URL + "/api/devices/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updates []model.StatusUpdate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updates))
	require.Len(t, updates, 2)
	for _, u := range updates {
		assert.Equal(t, model.StatusOnline, u.Status)
		assert.NotNil(t, u.LastChecked)
	}

	d, err := st.GetDevice("1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnline, d.Status)
	assert.NotNil(t, d.LastChecked)
}

func TestCheckDevice(t *testing.T) {
	st := newMemStorage()
	st.CreateDevice(&model.Device{ID: "1", Name: "R1", IPAddress: "10.0.0.1"})
	srv := newTestServer(t, st, fixedChecker{status: model.StatusOffline})

	resp, err := http.Post(srv.URL+"/api/devices/1/status", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var update model.StatusUpdate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&update))
	assert.Equal(t, "1", update.ID)
	assert.Equal(t, model.StatusOffline, update.Status)

	d, _ := st.GetDevice("1")
	assert.Equal(t, model.StatusOffline, d.Status)
}

func TestListDevicesBadSortKey(t *testing.T) {
	srv := newTestServer(t, newMemStorage(), fixedChecker{})

	resp, err := http.Get(srv.URL + "/api/devices?sort=ip_address")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	st := newMemStorage()
	mux := http.NewServeMux()
	NewHandler(st, fixedChecker{}).RegisterRoutes(mux)
	srv := httptest.NewServer(AuthMiddleware("secret", mux))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/devices")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/devices", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
