package services

import "errors"

var (
	// Quota reservation denied; the timing calculator recovers by falling
	// back to the synthetic estimator.
	ErrQuotaExceeded = errors.New("provider call quota exceeded")

	// Network or provider failure; recovered identically via fallback.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
)
