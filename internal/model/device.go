package model

import (
	"fmt"
	"time"
)

// Values for the device type attribute
const (
	TypeRouter = "router"
	TypeSwitch = "switch"
	TypeServer = "server"
	TypeOther  = "other"
)

// Values for the device status attribute
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusUnknown = "unknown"
)

// Device represents a managed network device. Status is the last known
// reachability state; an empty status means the device has never been
// checked and is treated as unknown for display.
type Device struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	IPAddress   string     `json:"ip_address"`
	Type        string     `json:"type"`
	Location    string     `json:"location"`
	Status      string     `json:"status,omitempty"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
}

// EffectiveStatus normalizes an unset status to unknown.
func (d *Device) EffectiveStatus() string {
	if d.Status == "" {
		return StatusUnknown
	}
	return d.Status
}

// StatusUpdate is a single status check result. Status and LastChecked
// always travel together.
type StatusUpdate struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
}

// Filter holds list filter criteria; empty fields match everything.
type Filter struct {
	Type   string
	Status string
}

// SortKey selects the device field used for ordering.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByType     SortKey = "type"
	SortByStatus   SortKey = "status"
	SortByLocation SortKey = "location"
)

// ParseSortKey validates a sort key string, defaulting empty to name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByName, nil
	case SortByName, SortByType, SortByStatus, SortByLocation:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key: %s", s)
	}
}

// FieldValue returns the string form of the keyed field; unset fields
// yield the empty string.
func (d *Device) FieldValue(key SortKey) string {
	switch key {
	case SortByName:
		return d.Name
	case SortByType:
		return d.Type
	case SortByStatus:
		return d.Status
	case SortByLocation:
		return d.Location
	default:
		return ""
	}
}
