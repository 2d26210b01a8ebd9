package errors

// IndexError reports a disagreement between the KeyDir and the data on disk:
// the key decoded at a pointed-to offset does not match the key that was
// looked up, or the engine was asked to operate while closed.
type IndexError struct {
	*baseError
	key string
}

// NewIndexError creates a new index-specific error.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{baseError: NewBaseError(err, code, msg)}
}

// WithKey records which key was involved in the error.
func (ie *IndexError) WithKey(key string) *IndexError {
	ie.key = key
	return ie
}

// WithDetail adds contextual information while preserving the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// Key returns the key associated with the error, if any.
func (ie *IndexError) Key() string {
	return ie.key
}
