package paging

import (
	"errors"
	"fmt"
)

// The engine's failure taxonomy. Loaders and the streaming dispatcher never
// panic across their public boundary for expected failure modes; they return
// one of these. Anything else escaping a loader is a logic bug and is left
// to propagate.

// TransportError is a network or HTTP-level failure. Retryable; the list
// content present before the attempt is preserved.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthorizationError means the account token was rejected. Not retryable
// without re-authentication; surfaced to the caller for the re-auth flow.
type AuthorizationError struct {
	Host string
	Err  error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization rejected by %s: %v", e.Host, e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// CapabilityError means the account's backend tier lacks an endpoint the
// operation needs. Fatal for the operation; the caller must re-resolve the
// strategy (the tier may change after a backend upgrade).
type CapabilityError struct {
	Backend   string
	Operation string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("backend %s does not support %s", e.Backend, e.Operation)
}

// MalformedResponseError is an unexpected wire shape. Classified with
// transport failures for retry purposes.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response during %s: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsRetryable reports whether the failure may succeed on a plain retry with
// the same loader configuration.
func IsRetryable(err error) bool {
	var te *TransportError
	var me *MalformedResponseError
	return errors.As(err, &te) || errors.As(err, &me)
}
