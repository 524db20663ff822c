package analytics

import "errors"

// Sentinel errors surfaced by the analysis engine. Boundary layers map these
// to HTTP statuses; nothing in this package retries or logs.
var (
	// ErrInsufficientData means a series does not have enough samples for
	// the requested computation (trend needs 2, prediction needs 3).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidHorizon means days_ahead is outside (0, 365].
	ErrInvalidHorizon = errors.New("invalid prediction horizon")

	// ErrUnknownMetric means the metric name is not in the registry.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrNoData means the patient has no processed records at all.
	ErrNoData = errors.New("no data for patient")

	// ErrUnsupportedUnit means a sample's unit has no conversion to the
	// metric's canonical unit.
	ErrUnsupportedUnit = errors.New("unsupported unit")
)
