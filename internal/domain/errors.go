package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the account and weather services. The API layer
// maps each one to an HTTP status; services fail fast and never retry.
var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrCityNotFound       = errors.New("city not found")
	ErrMissingCoordinates = errors.New("latitude and longitude are required")
	ErrMissingCity        = errors.New("city name is required")
)

// UpstreamError is a failure reported by the weather provider. Status
// and Message are surfaced to the client as-is.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}
