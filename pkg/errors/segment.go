package errors

// SegmentError reports a failure opening, reading from, writing to, or
// closing a segment file, or a lookup against a segment id that has no open
// handle.
type SegmentError struct {
	*baseError
	segmentID uint64
	offset    int64
}

// NewSegmentError creates a new segment-specific error.
func NewSegmentError(err error, code ErrorCode, msg string) *SegmentError {
	return &SegmentError{baseError: NewBaseError(err, code, msg)}
}

// WithSegmentID records which segment was involved in the error.
func (se *SegmentError) WithSegmentID(id uint64) *SegmentError {
	se.segmentID = id
	return se
}

// WithOffset records the byte offset within the segment where the error happened.
func (se *SegmentError) WithOffset(offset int64) *SegmentError {
	se.offset = offset
	return se
}

// WithDetail adds contextual information while preserving the SegmentError type.
func (se *SegmentError) WithDetail(key string, value any) *SegmentError {
	se.baseError.WithDetail(key, value)
	return se
}

// SegmentID returns the segment id associated with the error.
func (se *SegmentError) SegmentID() uint64 {
	return se.segmentID
}

// Offset returns the byte offset associated with the error.
func (se *SegmentError) Offset() int64 {
	return se.offset
}
