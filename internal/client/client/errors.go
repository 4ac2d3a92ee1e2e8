package client

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/anchor/internal/common"
)

var (
	// ErrUnavailable means the server could not be reached. Pending actions
	// stay queued and the app drops to offline mode.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means the session is gone or the credentials are wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrLocalDataNotAvailable means nobody has logged in online on this
	// device yet, so there is no verifier for an offline login.
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// fromStatus turns a gRPC status into the sentinels the services check.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
