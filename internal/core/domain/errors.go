package domain

import "errors"

var (
	ErrInvalidReport       = errors.New("invalid report")
	ErrInvalidReportTime   = errors.New("invalid report time")
	ErrInvalidAttachment   = errors.New("invalid attachment")
	ErrConstraintViolation = errors.New("constraint violation")

	ErrEmailNotFound   = errors.New("email not found")
	ErrAddressNotFound = errors.New("email address not found")
)

// IsClientError reports whether err was caused by the submitted document
// rather than by the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidReport) ||
		errors.Is(err, ErrInvalidReportTime) ||
		errors.Is(err, ErrInvalidAttachment)
}
