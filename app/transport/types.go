package transport

import (
	"context"
	"fmt"
)

// Transport delivers one rendered digest message to the recipient.
type Transport interface {
	Send(ctx context.Context, message string) error
}

// AuthError means the transport rejected our credentials. Retrying will not
// fix bad credentials, so callers treat it as terminal.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("transport authentication failed: %s", e.Reason)
}

// ConnectivityError means the transport endpoint could not be reached or
// answered with a server-side failure. Transient; callers may retry.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("transport connectivity failed: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}
