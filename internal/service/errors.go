package service

import "errors"

var (
	ErrStaffNotFound   = errors.New("staff member not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrItemNotFound    = errors.New("booking line item not found")
	ErrServiceNotFound = errors.New("service not found")

	ErrInactiveStaff    = errors.New("staff member is not active")
	ErrRoleMismatch     = errors.New("staff role is not allowed for this service category")
	ErrStaffUnavailable = errors.New("staff member already has a booking in this window")
	ErrConflict         = errors.New("new time slot conflicts with an existing booking")
	ErrValidation       = errors.New("invalid request")
)

// ErrorCode is the outward code surfaced to callers. Mapping codes to HTTP
// statuses is a presentation concern and lives in the controller.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NotFound"
	CodeInactiveStaff    ErrorCode = "InactiveStaff"
	CodeRoleMismatch     ErrorCode = "RoleMismatch"
	CodeStaffUnavailable ErrorCode = "StaffUnavailable"
	CodeConflict         ErrorCode = "Conflict"
	CodeValidation       ErrorCode = "ValidationError"
	CodeInternal         ErrorCode = "Internal"
)

// CodeOf maps a service error to its outward code.
func CodeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrStaffNotFound),
		errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrServiceNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInactiveStaff):
		return CodeInactiveStaff
	case errors.Is(err, ErrRoleMismatch):
		return CodeRoleMismatch
	case errors.Is(err, ErrStaffUnavailable):
		return CodeStaffUnavailable
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrValidation):
		return CodeValidation
	default:
		return CodeInternal
	}
}
