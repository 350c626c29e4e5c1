package ports

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrOracleQuota marks a narrator failure caused by rate limiting or an
	// exhausted quota.
	ErrOracleQuota       = errors.New("narrative oracle quota exhausted")
	ErrOracleUnavailable = errors.New("narrative oracle unavailable")
)
