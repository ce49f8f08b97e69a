package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodeInvalidDate      = "invalid_date"

	// Resource errors
	ErrCodeMovieNotFound = "movie_not_found"

	// Server errors
	ErrCodeInternalError       = "internal_error"
	ErrCodeServiceUnavailable  = "service_unavailable"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
	ErrCodeRateLimited         = "rate_limited"
)
