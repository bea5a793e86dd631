// Package controller serializes user actions and the background poll
// against the device API and applies successful results to the store.
package controller

import (
	"context"
	"sync"

	"github.com/kavia-common/netwatch/internal/gateway"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/store"
)

// Controller coordinates mutations. Gateway errors pass through
// unmodified so the caller can render field-level messages; only the
// delete and ping paths also record a global error, matching how those
// actions have no form to surface errors on.
type Controller struct {
	gw    gateway.API
	store *store.Store

	mu         sync.Mutex
	submitting bool
	globalErr  string
}

func New(gw gateway.API, st *store.Store) *Controller {
	return &Controller{gw: gw, store: st}
}

// Submitting reports whether a mutation is in flight; the presentation
// layer uses it to disable conflicting submissions.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// GlobalError returns the current global error message, empty when
// there is none.
func (c *Controller) GlobalError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.globalErr
}

func (c *Controller) setSubmitting(v bool) {
	c.mu.Lock()
	c.submitting = v
	c.mu.Unlock()
}

func (c *Controller) setGlobalError(msg string) {
	c.mu.Lock()
	c.globalErr = msg
	c.mu.Unlock()
}

// Refresh replaces the whole collection with a fresh full list fetch.
func (c *Controller) Refresh(ctx context.Context) error {
	devices, err := c.gw.List(ctx, gateway.ListOptions{})
	if err != nil {
		log.Error("Failed to load devices", "error", err)
		c.setGlobalError(err.Error())
		return err
	}
	c.store.ReplaceAll(devices)
	c.setGlobalError("")
	log.Info("Loaded devices", "count", len(devices))
	return nil
}

// Create validates the input locally, submits it, and installs the
// server's canonical record. The gateway is never called when
// validation fails.
func (c *Controller) Create(ctx context.Context, input model.DeviceInput) (*model.Device, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c.setSubmitting(true)
	defer c.setSubmitting(false)

	device, err := c.gw.Create(ctx, input)
	if err != nil {
		log.Error("Failed to create device", "error", err, "name", input.Name)
		return nil, err
	}
	c.store.Upsert(*device)
	log.Info("Device created", "id", device.ID, "name", device.Name)
	return device, nil
}

// Update validates and submits changed fields for an existing device.
func (c *Controller) Update(ctx context.Context, id string, input model.DeviceInput) (*model.Device, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c.setSubmitting(true)
	defer c.setSubmitting(false)

	device, err := c.gw.Update(ctx, id, input)
	if err != nil {
		log.Error("Failed to update device", "error", err, "id", id)
		return nil, err
	}
	c.store.Upsert(*device)
	log.Info("Device updated", "id", id, "name", device.Name)
	return device, nil
}

// Delete removes a device. The caller confirms beforehand; on failure
// the record stays in the store so the view keeps matching the server.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.setSubmitting(true)
	defer c.setSubmitting(false)

	if err := c.gw.Delete(ctx, id); err != nil {
		log.Error("Failed to delete device", "error", err, "id", id)
		c.setGlobalError(err.Error())
		return err
	}
	c.store.Remove(id)
	log.Info("Device deleted", "id", id)
	return nil
}

// Ping triggers an immediate status check for one device and merges
// the result. On failure the prior status is left untouched.
func (c *Controller) Ping(ctx context.Context, id string) (*model.StatusUpdate, error) {
	c.setSubmitting(true)
	defer c.setSubmitting(false)

	update, err := c.gw.TriggerCheck(ctx, id)
	if err != nil {
		log.Error("Status check failed", "error", err, "id", id)
		c.setGlobalError(err.Error())
		return nil, err
	}
	c.store.MergeStatuses([]model.StatusUpdate{*update})
	log.Debug("Status check completed", "id", id, "status", update.Status)
	return update, nil
}
