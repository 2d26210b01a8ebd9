package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorCode_UnwrapsWrappedError(t *testing.T) {
	base := NewCodecError(nil, ErrorCodeBadChecksum, "bad checksum")
	wrapped := fmt.Errorf("decoding record: %w", base)

	code, ok := GetErrorCode(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrorCodeBadChecksum, code)
}

func TestGetErrorCode_PlainErrorHasNoCode(t *testing.T) {
	_, ok := GetErrorCode(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestGetErrorDetails(t *testing.T) {
	err := NewSegmentError(nil, ErrorCodeIO, "boom").WithDetail("segment", 3)
	details := GetErrorDetails(err)
	assert.Equal(t, 3, details["segment"])
}

func TestIs(t *testing.T) {
	err := NewRegistryError(nil, ErrorCodeRegistryCorrupt, "corrupt")
	assert.True(t, Is(err, ErrorCodeRegistryCorrupt))
	assert.False(t, Is(err, ErrorCodeIO))
}

func TestAsHelpers(t *testing.T) {
	_, ok := AsCodecError(NewCodecError(nil, ErrorCodeBadEncoding, "x"))
	assert.True(t, ok)

	_, ok = AsRegistryError(NewRegistryError(nil, ErrorCodeRegistryCorrupt, "x"))
	assert.True(t, ok)

	_, ok = AsSegmentError(NewSegmentError(nil, ErrorCodeNotOpen, "x"))
	assert.True(t, ok)

	_, ok = AsIndexError(NewIndexError(nil, ErrorCodeIndexMismatch, "x"))
	assert.True(t, ok)

	_, ok = AsCodecError(NewSegmentError(nil, ErrorCodeIO, "x"))
	assert.False(t, ok)
}
