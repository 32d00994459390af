package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are missing or malformed
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSearchUnavailable is returned when the shopping search API is
	// unreachable or returns a non-success status
	ErrSearchUnavailable = errors.New("shopping search unavailable")

	// ErrLocationNotFound is returned when a free-text location cannot be
	// canonicalized; callers treat this as best-effort and drop the bias
	ErrLocationNotFound = errors.New("location could not be canonicalized")

	// ErrPageUnavailable is returned when a retailer/manufacturer page fetch
	// fails; the pipeline converts this to "no evidence" at the component boundary
	ErrPageUnavailable = errors.New("product page unavailable")

	// ErrSummaryUnavailable is returned when the downstream summarizer fails;
	// never fatal, the caller falls back to a plain message
	ErrSummaryUnavailable = errors.New("summary generation failed")
)
