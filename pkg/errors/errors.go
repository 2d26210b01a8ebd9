package errors

import "errors"

// AsCodecError reports whether err (or something it wraps) is a *CodecError.
func AsCodecError(err error) (*CodecError, bool) {
	var ce *CodecError
	ok := errors.As(err, &ce)
	return ce, ok
}

// AsRegistryError reports whether err (or something it wraps) is a *RegistryError.
func AsRegistryError(err error) (*RegistryError, bool) {
	var re *RegistryError
	ok := errors.As(err, &re)
	return re, ok
}

// AsSegmentError reports whether err (or something it wraps) is a *SegmentError.
func AsSegmentError(err error) (*SegmentError, bool) {
	var se *SegmentError
	ok := errors.As(err, &se)
	return se, ok
}

// AsIndexError reports whether err (or something it wraps) is a *IndexError.
func AsIndexError(err error) (*IndexError, bool) {
	var ie *IndexError
	ok := errors.As(err, &ie)
	return ie, ok
}

// coded is satisfied by every specialized error type in this package.
type coded interface {
	Code() ErrorCode
}

// GetErrorCode extracts the ErrorCode from err if it (or something it wraps)
// carries one, and reports whether one was found.
func GetErrorCode(err error) (ErrorCode, bool) {
	var c coded
	if errors.As(err, &c) {
		return c.Code(), true
	}
	return "", false
}

// detailed is satisfied by every specialized error type in this package.
type detailed interface {
	Details() map[string]any
}

// GetErrorDetails extracts the detail bag from err if it (or something it
// wraps) carries one.
func GetErrorDetails(err error) map[string]any {
	var d detailed
	if errors.As(err, &d) {
		return d.Details()
	}
	return nil
}

// Is reports whether err (or something it wraps) carries the given code.
func Is(err error, code ErrorCode) bool {
	c, ok := GetErrorCode(err)
	return ok && c == code
}
