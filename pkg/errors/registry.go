package errors

// RegistryError reports a failure loading, saving, or mutating the segment
// registry: malformed JSON, an unparseable segment id, or a name collision
// between a newly allocated segment and an existing file.
type RegistryError struct {
	*baseError
	path string
}

// NewRegistryError creates a new registry-specific error.
func NewRegistryError(err error, code ErrorCode, msg string) *RegistryError {
	return &RegistryError{baseError: NewBaseError(err, code, msg)}
}

// WithPath records which registry file was involved in the error.
func (re *RegistryError) WithPath(path string) *RegistryError {
	re.path = path
	return re
}

// WithDetail adds contextual information while preserving the RegistryError type.
func (re *RegistryError) WithDetail(key string, value any) *RegistryError {
	re.baseError.WithDetail(key, value)
	return re
}

// Path returns the registry file path associated with the error.
func (re *RegistryError) Path() string {
	return re.path
}
