// Package codec implements the on-disk record framing for logcask segments:
// a CRC-checked header plus key/value payload, written and read back a
// record at a time.
package codec

import (
	"encoding/binary"
	"hash/crc32"
	"unicode/utf8"

	lcerrors "github.com/jassi-singh/logcask/pkg/errors"
)

// HeaderSize is the fixed width, in bytes, of the timestamp/key-size/
// value-size triple that precedes every record's key and value bytes.
const HeaderSize = 12

// CRCSize is the width, in bytes, of the checksum that precedes the header.
const CRCSize = 4

// Record is a single decoded key/value entry read back off a segment.
type Record struct {
	Timestamp uint32
	Key       []byte
	Value     []byte
}

// EncodeHeader writes the fixed 12-byte timestamp/key-size/value-size header
// into a freshly allocated buffer. keySize and valueSize must be
// non-negative; a negative size is rejected with a SizeViolation CodecError
// before either is converted to uint32.
func EncodeHeader(timestamp uint32, keySize, valueSize int) ([]byte, error) {
	if keySize < 0 || valueSize < 0 {
		return nil, lcerrors.NewCodecError(nil, lcerrors.ErrorCodeSizeViolation, "negative size in header").
			WithDetail("keySize", keySize).
			WithDetail("valueSize", valueSize)
	}
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:4], timestamp)
	binary.BigEndian.PutUint32(header[4:8], uint32(keySize))
	binary.BigEndian.PutUint32(header[8:12], uint32(valueSize))
	return header, nil
}

// DecodeHeader parses the fixed 12-byte header, returning the timestamp and
// the declared key/value sizes.
func DecodeHeader(header []byte) (timestamp uint32, keySize, valueSize uint32, err error) {
	if len(header) != HeaderSize {
		return 0, 0, 0, lcerrors.NewCodecError(nil, lcerrors.ErrorCodeBadEncoding, "short header").
			WithDetail("got", len(header)).WithDetail("want", HeaderSize)
	}
	timestamp = binary.BigEndian.Uint32(header[0:4])
	keySize = binary.BigEndian.Uint32(header[4:8])
	valueSize = binary.BigEndian.Uint32(header[8:12])
	return timestamp, keySize, valueSize, nil
}

// checksum computes the CRC-32 (IEEE) over the timestamp, key, and value only
// — deliberately excluding the key/value sizes from the header, so that the
// checksum verifies the payload a reader actually consumes rather than the
// framing around it.
func checksum(timestamp uint32, key, value []byte) uint32 {
	var tsBuf [4]byte
	binary.BigEndian.PutUint32(tsBuf[:], timestamp)

	h := crc32.NewIEEE()
	h.Write(tsBuf[:])
	h.Write(key)
	h.Write(value)
	return h.Sum32()
}

// EncodeRecord frames key/value into a complete on-disk record: a 4-byte CRC,
// the 12-byte header, and the key and value bytes in sequence. It returns the
// encoded bytes; their length is the record's frame size.
func EncodeRecord(timestamp uint32, key, value []byte) ([]byte, error) {
	header, err := EncodeHeader(timestamp, len(key), len(value))
	if err != nil {
		return nil, err
	}

	crc := checksum(timestamp, key, value)

	buf := make([]byte, CRCSize+HeaderSize+len(key)+len(value))
	binary.BigEndian.PutUint32(buf[0:CRCSize], crc)
	copy(buf[CRCSize:CRCSize+HeaderSize], header)
	copy(buf[CRCSize+HeaderSize:], key)
	copy(buf[CRCSize+HeaderSize+len(key):], value)
	return buf, nil
}

// DecodeRecord parses a complete record out of data, which must contain
// exactly one record's worth of bytes (CRC + header + key + value). It
// validates the checksum and, when validateUTF8 is true, that the key and
// value are valid UTF-8 — mirroring the encoding guarantee scan callers rely
// on when surfacing keys as strings.
func DecodeRecord(data []byte, validateUTF8 bool) (*Record, error) {
	if len(data) < CRCSize+HeaderSize {
		return nil, lcerrors.NewCodecError(nil, lcerrors.ErrorCodeBadEncoding, "record shorter than CRC+header").
			WithDetail("got", len(data))
	}

	storedCRC := binary.BigEndian.Uint32(data[0:CRCSize])
	timestamp, keySize, valueSize, err := DecodeHeader(data[CRCSize : CRCSize+HeaderSize])
	if err != nil {
		return nil, err
	}

	want := CRCSize + HeaderSize + int(keySize) + int(valueSize)
	if len(data) != want {
		return nil, lcerrors.NewCodecError(nil, lcerrors.ErrorCodeBadEncoding, "record length disagrees with header").
			WithDetail("got", len(data)).WithDetail("want", want)
	}

	key := data[CRCSize+HeaderSize : CRCSize+HeaderSize+int(keySize)]
	value := data[CRCSize+HeaderSize+int(keySize):]

	gotCRC := checksum(timestamp, key, value)
	if gotCRC != storedCRC {
		return nil, lcerrors.NewCodecError(nil, lcerrors.ErrorCodeBadChecksum, "checksum mismatch").
			WithDetail("stored", storedCRC).WithDetail("computed", gotCRC)
	}

	if validateUTF8 {
		if !utf8.Valid(key) {
			return nil, lcerrors.NewCodecError(nil, lcerrors.ErrorCodeBadEncoding, "key is not valid UTF-8")
		}
		if !utf8.Valid(value) {
			return nil, lcerrors.NewCodecError(nil, lcerrors.ErrorCodeBadEncoding, "value is not valid UTF-8")
		}
	}

	recKey := make([]byte, len(key))
	copy(recKey, key)
	recValue := make([]byte, len(value))
	copy(recValue, value)

	return &Record{Timestamp: timestamp, Key: recKey, Value: recValue}, nil
}

// IsTombstone reports whether a decoded record represents a delete marker:
// spec semantics treat a zero-length value as a tombstone.
func (r *Record) IsTombstone() bool {
	return len(r.Value) == 0
}
