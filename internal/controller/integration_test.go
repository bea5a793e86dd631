package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavia-common/netwatch/internal/api"
	"github.com/kavia-common/netwatch/internal/gateway"
	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/storage"
	"github.com/kavia-common/netwatch/internal/store"
	"github.com/kavia-common/netwatch/internal/view"
)

type onlineChecker struct{}

func (onlineChecker) Check(ctx context.Context, ip string) string { return model.StatusOnline }

// newLiveStack runs the controller against the real HTTP API backed by
// SQLite.
func newLiveStack(t *testing.T) (*Controller, *store.Store, gateway.API) {
	t.Helper()

	ss, err := storage.NewStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	mux := http.NewServeMux()
	api.NewHandler(ss, onlineChecker{}).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	st := store.New()
	client := gateway.NewClient(srv.URL, "")
	return New(client, st), st, client
}

func TestLifecycleAgainstLiveServer(t *testing.T) {
	ctx := context.Background()
	ctrl, st, client := newLiveStack(t)

	// Create: store ends up with exactly the canonical record, status
	// unset and displayed as unknown.
	created, err := ctrl.Create(ctx, model.DeviceInput{
		Name: "R1", IPAddress: "10.0.0.1", Type: model.TypeRouter, Location: "DC-A",
	})
	require.NoError(t, err)
	require.Equal(t, 1, st.Len())

	stored, ok := st.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "", stored.Status)
	assert.Equal(t, model.StatusUnknown, stored.EffectiveStatus())
	assert.Nil(t, stored.LastChecked)

	// Remote validation errors come back with field details.
	_, err = client.Create(ctx, model.DeviceInput{Name: "bad", IPAddress: "10.0.0", Type: model.TypeOther, Location: "x"})
	var apiErr *gateway.Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.HasFieldErrors())

	// Ping merges status and last_checked, nothing else.
	update, err := ctrl.Ping(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnline, update.Status)

	stored, _ = st.Get(created.ID)
	assert.Equal(t, "R1", stored.Name)
	assert.Equal(t, model.StatusOnline, stored.Status)
	require.NotNil(t, stored.LastChecked)

	// Refresh pulls the polled status back from the server.
	require.NoError(t, ctrl.Refresh(ctx))
	stored, _ = st.Get(created.ID)
	assert.Equal(t, model.StatusOnline, stored.Status)

	// Delete removes the record from every projection.
	require.NoError(t, ctrl.Delete(ctx, created.ID))
	assert.Equal(t, 0, st.Len())
	for _, f := range []model.Filter{{}, {Status: model.StatusOnline}} {
		assert.Empty(t, view.Project(st.Snapshot(), f, model.SortByName))
	}
}

func TestPollerAgainstLiveServer(t *testing.T) {
	ctx := context.Background()
	ctrl, st, client := newLiveStack(t)

	created, err := ctrl.Create(ctx, model.DeviceInput{
		Name: "R1", IPAddress: "10.0.0.1", Type: model.TypeRouter, Location: "DC-A",
	})
	require.NoError(t, err)

	handle := NewPoller(client, st, 20*time.Millisecond).Start()
	defer handle.Stop()

	waitFor(t, func() bool {
		d, _ := st.Get(created.ID)
		return d.Status == model.StatusOnline
	})

	d, _ := st.Get(created.ID)
	assert.Equal(t, "R1", d.Name)
	assert.NotNil(t, d.LastChecked)
}
