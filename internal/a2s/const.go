// Package a2s implements the server side of the Source engine query protocol:
// request decoding and response encoding for A2S_INFO, A2S_PLAYER and A2S_RULES.
package a2s

// Packet prefix for single (non-split) packets, FF FF FF FF on the wire.
const Prefix int32 = -1

// Request headers.
const (
	HeaderInfo   byte = 0x54
	HeaderPlayer byte = 0x55
	HeaderRules  byte = 0x56
)

// Response headers.
const (
	HeaderChallengeResponse byte = 0x41
	HeaderInfoResponse      byte = 0x49
	HeaderPlayerResponse    byte = 0x44
	HeaderRulesResponse     byte = 0x45
)

// Extra data flag bits of the info response.
const (
	EDFPort     byte = 0x80
	EDFSteamID  byte = 0x10
	EDFKeywords byte = 0x20
	EDFGameID   byte = 0x01

	// EDFAll is always sent: every optional field is present.
	EDFAll = EDFPort | EDFSteamID | EDFKeywords | EDFGameID
)

// QueryString follows the A2S_INFO header, including its terminating NUL.
const QueryString = "Source Engine Query\x00"

// Bounds of a valid request datagram.
const (
	MinRequestSize = 5
	MaxRequestSize = 30
)

// NoChallenge is the challenge value implied when a request carries none.
const NoChallenge int32 = -1

var prefixBytes = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
