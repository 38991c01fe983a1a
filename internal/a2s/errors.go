package a2s

import "errors"

// Decode errors. None of them is fatal, the datagram is simply dropped.
var (
	ErrPacketLength       = errors.New("request length outside allowed range")
	ErrInvalidPrefix      = errors.New("invalid packet prefix")
	ErrInvalidQueryString = errors.New("invalid query string")
	ErrUnknownHeader      = errors.New("unknown request header")
	ErrTruncatedChallenge = errors.New("truncated challenge")
)
