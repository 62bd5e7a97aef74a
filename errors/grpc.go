package errors

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MapToGRPCError translates domain errors into gRPC status codes.
// Expected business outcomes keep their message; anything unknown is
// collapsed to Internal so storage details never reach the client.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidOrder),
		errors.Is(err, ErrInvalidProduct),
		errors.Is(err, ErrInvalidPassword):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrProductAlreadyExists),
		errors.Is(err, ErrUserAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrConnectionRefused),
		errors.Is(err, ErrUserInactive):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, ErrInternal.Error())
	}
}
