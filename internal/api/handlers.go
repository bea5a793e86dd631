package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/storage"
)

// StatusChecker probes a device address and reports its status.
type StatusChecker interface {
	Check(ctx context.Context, ip string) string
}

// Handler handles HTTP requests
type Handler struct {
	storage storage.Storage
	checker StatusChecker
}

// NewHandler creates a new API handler
func NewHandler(s storage.Storage, c StatusChecker) *Handler {
	return &Handler{storage: s, checker: c}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/devices", h.listDevices)
	mux.HandleFunc("POST /api/devices", h.createDevice)
	mux.HandleFunc("GET /api/devices/status", h.allStatuses)
	mux.HandleFunc("GET /api/devices/{id}", h.getDevice)
	mux.HandleFunc("PUT /api/devices/{id}", h.updateDevice)
	mux.HandleFunc("DELETE /api/devices/{id}", h.deleteDevice)
	mux.HandleFunc("POST /api/devices/{id}/status", h.checkDevice)
}

// listDevices handles GET /api/devices
func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	query := storage.ListQuery{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}
	if s := r.URL.Query().Get("sort"); s != "" {
		key, err := model.ParseSortKey(s)
		if err != nil {
			log.Warn("List request with bad sort key", "sort", s)
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		query.Sort = key
	}

	devices, err := h.storage.ListDevices(query)
	if err != nil {
		log.Error("Failed to list devices", "error", err)
		h.internalError(w, err)
		return
	}

	log.Debug("Listed devices", "count", len(devices))
	h.writeJSON(w, http.StatusOK, devices)
}

// getDevice handles GET /api/devices/{id}
func (h *Handler) getDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	device, err := h.storage.GetDevice(id)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Device not found", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		log.Error("Failed to get device", "error", err, "id", id)
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, device)
}

// createDevice handles POST /api/devices
func (h *Handler) createDevice(w http.ResponseWriter, r *http.Request) {
	var input model.DeviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Warn("Invalid device creation request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := input.Validate(); err != nil {
		log.Warn("Device creation failed validation", "error", err)
		h.writeValidationError(w, err)
		return
	}

	device := &model.Device{
		ID:        generateID(),
		Name:      input.Name,
		IPAddress: input.IPAddress,
		Type:      input.Type,
		Location:  input.Location,
	}

	if err := h.storage.CreateDevice(device); err != nil {
		log.Error("Failed to create device", "error", err, "name", device.Name)
		h.internalError(w, err)
		return
	}

	log.Info("Device created", "id", device.ID, "name", device.Name)
	h.writeJSON(w, http.StatusCreated, device)
}

// updateDevice handles PUT /api/devices/{id}
func (h *Handler) updateDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var input model.DeviceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Warn("Invalid device update request body", "error", err, "id", id)
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := input.Validate(); err != nil {
		log.Warn("Device update failed validation", "error", err, "id", id)
		h.writeValidationError(w, err)
		return
	}

	device := &model.Device{
		ID:        id,
		Name:      input.Name,
		IPAddress: input.IPAddress,
		Type:      input.Type,
		Location:  input.Location,
	}

	if err := h.storage.UpdateDevice(device); err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Device update failed - not found", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		log.Error("Failed to update device", "error", err, "id", id)
		h.internalError(w, err)
		return
	}

	// Echo the stored record so the client sees current status fields.
	stored, err := h.storage.GetDevice(id)
	if err != nil {
		h.internalError(w, err)
		return
	}

	log.Info("Device updated", "id", id, "name", stored.Name)
	h.writeJSON(w, http.StatusOK, stored)
}

// deleteDevice handles DELETE /api/devices/{id}
func (h *Handler) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.storage.DeleteDevice(id); err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			log.Warn("Device delete failed - not found", "id", id)
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		log.Error("Failed to delete device", "error", err, "id", id)
		h.internalError(w, err)
		return
	}

	log.Info("Device deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// allStatuses handles GET /api/devices/status; every device is probed
// and the results are persisted before being returned.
func (h *Handler) allStatuses(w http.ResponseWriter, r *http.Request) {
	devices, err := h.storage.ListDevices(storage.ListQuery{})
	if err != nil {
		log.Error("Failed to list devices for status check", "error", err)
		h.internalError(w, err)
		return
	}

	updates := make([]model.StatusUpdate, len(devices))
	var wg sync.WaitGroup
	for i := range devices {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			updates[i] = h.runCheck(r.Context(), &devices[i])
		}(i)
	}
	wg.Wait()

	for _, u := range updates {
		if err := h.storage.SetDeviceStatus(u.ID, u.Status, *u.LastChecked); err != nil &&
			!errors.Is(err, storage.ErrDeviceNotFound) {
			log.Error("Failed to persist status", "error", err, "id", u.ID)
		}
	}

	log.Debug("Checked all device statuses", "count", len(updates))
	h.writeJSON(w, http.StatusOK, updates)
}

// checkDevice handles POST /api/devices/{id}/status
func (h *Handler) checkDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	device, err := h.storage.GetDevice(id)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		h.internalError(w, err)
		return
	}

	update := h.runCheck(r.Context(), device)
	if err := h.storage.SetDeviceStatus(update.ID, update.Status, *update.LastChecked); err != nil &&
		!errors.Is(err, storage.ErrDeviceNotFound) {
		log.Error("Failed to persist status", "error", err, "id", id)
		h.internalError(w, err)
		return
	}

	log.Info("Device status checked", "id", id, "status", update.Status)
	h.writeJSON(w, http.StatusOK, update)
}

func (h *Handler) runCheck(ctx context.Context, device *model.Device) model.StatusUpdate {
	status := h.checker.Check(ctx, device.IPAddress)
	now := time.Now().UTC()
	return model.StatusUpdate{ID: device.ID, Status: status, LastChecked: &now}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeValidationError writes a 400 carrying per-field messages so the
// client can render them next to the offending inputs.
func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	details := map[string]string{}
	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			details[field] = fieldErr.Error()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   "validation failed",
		"details": details,
	})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("Internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// generateID generates a UUIDv7 for a device
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
