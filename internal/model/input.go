package model

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ipv4Regexp deliberately checks shape only, not octet range: 999.1.1.1
// passes. Tightening this would change accepted inputs, so it stays as-is.
var ipv4Regexp = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// DeviceInput is the payload for device create and update submissions.
type DeviceInput struct {
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	Type      string `json:"type"`
	Location  string `json:"location"`
}

// Validate checks the input before any network call. All violations are
// reported together; on failure the returned error is a
// validation.Errors mapping field name to message.
func (in DeviceInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required.Error("Name is required")),
		validation.Field(&in.IPAddress,
			validation.Required.Error("IP is required"),
			validation.Match(ipv4Regexp).Error("Invalid IPv4")),
		validation.Field(&in.Type,
			validation.Required.Error("Type is required")),
		validation.Field(&in.Location,
			validation.Required.Error("Location is required")),
	)
}
