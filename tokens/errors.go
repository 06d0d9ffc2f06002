package tokens

import (
	"errors"
	"fmt"
)

// The only errors leaving this package. Absent, expired, used and revoked
// credentials are all reported as ErrInvalid so callers can not tell them apart.
var (
	ErrInvalid             = errors.New("invalid or expired credential")
	ErrUpstreamUnavailable = errors.New("record store or user directory unavailable")
	ErrIssuanceFailed      = fmt.Errorf("%w: issuance failed", ErrUpstreamUnavailable)
)

// translate maps store errors to the boundary kinds, anything not known to be
// a miss is treated as an upstream failure
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotUpdated):
		return ErrInvalid
	default:
		return ErrUpstreamUnavailable
	}
}
