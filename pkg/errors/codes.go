package errors

// ErrorCode categorizes an error for programmatic handling, independent of
// its human-readable message.
type ErrorCode string

const (
	// ErrorCodeIO covers failures in the underlying file operations: open,
	// seek, read, write, sync, remove.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput covers caller-supplied values that violate a
	// documented precondition. A negative size passed to the codec has its
	// own code, ErrorCodeSizeViolation.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal covers conditions that should never occur given a
	// correctly operating caller, e.g. failing to marshal the registry map.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

const (
	// ErrorCodeBadChecksum indicates a record's stored CRC disagrees with the
	// recomputed CRC.
	ErrorCodeBadChecksum ErrorCode = "BAD_CHECKSUM"

	// ErrorCodeBadEncoding indicates key or value bytes failed UTF-8 decoding.
	ErrorCodeBadEncoding ErrorCode = "BAD_ENCODING"

	// ErrorCodeSizeViolation indicates a negative size was passed to the codec.
	ErrorCodeSizeViolation ErrorCode = "SIZE_VIOLATION"
)

const (
	// ErrorCodeRegistryCorrupt indicates the registry file is unreadable or
	// malformed, or a newly allocated segment name collides with an existing
	// file on disk.
	ErrorCodeRegistryCorrupt ErrorCode = "REGISTRY_CORRUPT"
)

const (
	// ErrorCodeNotOpen indicates a requested segment handle is not present in
	// the handle table. This is a programmer error: the Registry and
	// SegmentSet have fallen out of sync. The engine also returns it for
	// operations invoked after Close.
	ErrorCodeNotOpen ErrorCode = "SEGMENT_NOT_OPEN"
)

const (
	// ErrorCodeIndexMismatch indicates the key decoded at a KeyDir-pointed
	// offset differs from the key that was looked up.
	ErrorCodeIndexMismatch ErrorCode = "INDEX_MISMATCH"
)
