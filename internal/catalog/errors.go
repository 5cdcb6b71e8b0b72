package catalog

import "errors"

var (
	// ErrHouseNotFound is returned when a referenced house id does not exist.
	ErrHouseNotFound = errors.New("house not found")

	// ErrNoActivePromo is returned when no promo covers the house on the date.
	ErrNoActivePromo = errors.New("no active promo")
)
