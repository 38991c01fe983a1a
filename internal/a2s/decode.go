package a2s

import (
	"encoding/binary"
	"fmt"
)

// ValidLength reports whether a datagram of n bytes may be a request at all.
func ValidLength(n int) bool {
	return n >= MinRequestSize && n <= MaxRequestSize
}

// Decode parses a request datagram.
// A request without a trailing challenge gets NoChallenge.
func Decode(buf []byte) (Request, error) {
	var req Request

	if len(buf) < 4 || int32(binary.LittleEndian.Uint32(buf)) != Prefix {
		return req, ErrInvalidPrefix
	}
	buf = buf[4:]

	if len(buf) == 0 {
		return req, fmt.Errorf("%w: missing header", ErrUnknownHeader)
	}
	header := buf[0]
	buf = buf[1:]

	switch header {
	case HeaderInfo:
		if len(buf) < len(QueryString) || string(buf[:len(QueryString)]) != QueryString {
			return req, ErrInvalidQueryString
		}
		buf = buf[len(QueryString):]
	case HeaderPlayer, HeaderRules:
	default:
		return req, fmt.Errorf("%w: 0x%02X", ErrUnknownHeader, header)
	}

	req.Kind = Kind(header)
	req.Challenge = NoChallenge

	if len(buf) == 0 {
		return req, nil
	}
	if len(buf) < 4 {
		return req, fmt.Errorf("%w: %d bytes left", ErrTruncatedChallenge, len(buf))
	}
	req.Challenge = int32(binary.LittleEndian.Uint32(buf))

	return req, nil
}

// EncodeRequest builds a request datagram, used by tests and the probe tooling.
func EncodeRequest(kind Kind, challenge *int32) []byte {
	w := newWriter(MaxRequestSize)
	w.putByte(byte(kind))
	if byte(kind) == HeaderInfo {
		w.putBytes([]byte(QueryString))
	}
	if challenge != nil {
		w.putInt32(*challenge)
	}

	return w.buf
}
