package leads

import "errors"

var (
	// ErrMissingPSID is returned when a lead is requested without a subscriber id.
	ErrMissingPSID = errors.New("psid is required")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
