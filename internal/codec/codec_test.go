package codec

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lcerrors "github.com/jassi-singh/logcask/pkg/errors"
)

func TestEncodeDecodeHeader_RoundTrip(t *testing.T) {
	header, err := EncodeHeader(12345, 3, 5)
	require.NoError(t, err)
	require.Len(t, header, HeaderSize)

	ts, ks, vs, err := DecodeHeader(header)
	require.NoError(t, err)
	assert.Equal(t, uint32(12345), ts)
	assert.Equal(t, uint32(3), ks)
	assert.Equal(t, uint32(5), vs)
}

func TestEncodeHeader_NegativeSize(t *testing.T) {
	_, err := EncodeHeader(1, -1, 5)
	require.Error(t, err)

	ce, ok := lcerrors.AsCodecError(err)
	require.True(t, ok)
	assert.Equal(t, lcerrors.ErrorCodeSizeViolation, ce.Code())
}

func TestDecodeHeader_ShortBuffer(t *testing.T) {
	_, _, _, err := DecodeHeader([]byte{1, 2, 3})
	require.Error(t, err)
	assert.True(t, lcerrors.Is(err, lcerrors.ErrorCodeBadEncoding))
}

func TestEncodeDecodeRecord_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"simple", "foo", "bar"},
		{"empty value is tombstone", "foo", ""},
		{"empty key", "", "bar"},
		{"both empty", "", ""},
		{"long value", "k", string(make([]byte, 4096))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeRecord(99, []byte(tc.key), []byte(tc.value))
			require.NoError(t, err)
			assert.Equal(t, CRCSize+HeaderSize+len(tc.key)+len(tc.value), len(encoded))

			rec, err := DecodeRecord(encoded, true)
			require.NoError(t, err)
			assert.Equal(t, uint32(99), rec.Timestamp)
			assert.Equal(t, tc.key, string(rec.Key))
			assert.Equal(t, tc.value, string(rec.Value))
			assert.Equal(t, len(tc.value) == 0, rec.IsTombstone())
		})
	}
}

func TestDecodeRecord_CorruptedChecksum(t *testing.T) {
	encoded, err := EncodeRecord(1, []byte("key"), []byte("value"))
	require.NoError(t, err)

	// flip every bit of the last value byte, leaving CRC and header untouched.
	encoded[len(encoded)-1] ^= 0xFF

	_, err = DecodeRecord(encoded, true)
	require.Error(t, err)

	ce, ok := lcerrors.AsCodecError(err)
	require.True(t, ok)
	assert.Equal(t, lcerrors.ErrorCodeBadChecksum, ce.Code())
}

func TestDecodeRecord_ChecksumExcludesSizesByDesign(t *testing.T) {
	// CRC only covers timestamp+key+value: the stored checksum must equal the
	// CRC-32 of be32(timestamp) || key || value, with no size fields hashed.
	// Encoding is also deterministic for identical inputs.
	a, err := EncodeRecord(7, []byte("k"), []byte("v"))
	require.NoError(t, err)
	b, err := EncodeRecord(7, []byte("k"), []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, crc32.ChecksumIEEE([]byte{0, 0, 0, 7, 'k', 'v'}), binary.BigEndian.Uint32(a[:CRCSize]))
}

func TestDecodeRecord_LengthMismatch(t *testing.T) {
	encoded, err := EncodeRecord(1, []byte("key"), []byte("value"))
	require.NoError(t, err)

	truncated := encoded[:len(encoded)-2]
	_, err = DecodeRecord(truncated, true)
	require.Error(t, err)
	assert.True(t, lcerrors.Is(err, lcerrors.ErrorCodeBadEncoding))
}

func TestDecodeRecord_InvalidUTF8(t *testing.T) {
	encoded, err := EncodeRecord(1, []byte("key"), []byte{0xff, 0xfe, 0xfd})
	require.NoError(t, err)

	_, err = DecodeRecord(encoded, true)
	require.Error(t, err)
	assert.True(t, lcerrors.Is(err, lcerrors.ErrorCodeBadEncoding))

	// with validation disabled the same bytes decode cleanly.
	rec, err := DecodeRecord(encoded, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe, 0xfd}, rec.Value)
}
