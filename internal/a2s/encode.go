package a2s

import (
	"encoding/binary"
	"math"
)

// MaxPlayerEntries is the most players a single response can describe.
const MaxPlayerEntries = math.MaxUint8

// MaxRuleEntries is the most rules a single response can describe.
const MaxRuleEntries = math.MaxUint16

type writer struct {
	buf []byte
}

func newWriter(capacity int) *writer {
	w := &writer{buf: make([]byte, 0, capacity)}
	w.buf = append(w.buf, prefixBytes[:]...)
	return w
}

func (w *writer) putByte(b byte)     { w.buf = append(w.buf, b) }
func (w *writer) putBytes(b []byte)  { w.buf = append(w.buf, b...) }
func (w *writer) putUint16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) putInt32(v int32)   { w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v)) }
func (w *writer) putUint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *writer) putFloat32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// putString writes s followed by a NUL terminator.
func (w *writer) putString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// EncodeChallenge builds an S2C_CHALLENGE response.
func EncodeChallenge(challenge int32) []byte {
	w := newWriter(9)
	w.putByte(HeaderChallengeResponse)
	w.putInt32(challenge)

	return w.buf
}

// EncodeInfo builds an A2S_INFO response. All extra data fields are always present.
func EncodeInfo(info *ServerInfo) []byte {
	w := newWriter(64 + len(info.Name) + len(info.Map) + len(info.Folder) +
		len(info.Game) + len(info.Version) + len(info.Keywords))

	w.putByte(HeaderInfoResponse)
	w.putByte(info.Protocol)
	w.putString(info.Name)
	w.putString(info.Map)
	w.putString(info.Folder)
	w.putString(info.Game)
	w.putUint16(info.AppID)
	w.putByte(info.Players)
	w.putByte(info.MaxPlayers)
	w.putByte(info.Bots)
	w.putByte(info.ServerType)
	w.putByte(info.OS)
	w.putByte(info.Password)
	w.putByte(info.VAC)
	w.putString(info.Version)

	w.putByte(EDFAll)
	w.putUint16(info.Port)
	w.putUint64(info.SteamID)
	w.putString(info.Keywords)
	w.putUint64(info.GameID)

	return w.buf
}

// EncodePlayers builds an A2S_PLAYER response in roster order.
// Players past MaxPlayerEntries are not sent.
func EncodePlayers(players []Player) []byte {
	if len(players) > MaxPlayerEntries {
		players = players[:MaxPlayerEntries]
	}

	size := 6
	for _, p := range players {
		size += len(p.Name) + 10
	}

	w := newWriter(size)
	w.putByte(HeaderPlayerResponse)
	w.putByte(byte(len(players)))
	for _, p := range players {
		w.putByte(0) // index
		w.putString(p.Name)
		w.putInt32(p.Score)
		w.putFloat32(p.Duration)
	}

	return w.buf
}

// EncodeRules builds an A2S_RULES response in rule set order.
// Rules past MaxRuleEntries are not sent.
func EncodeRules(rules Rules) []byte {
	if len(rules) > MaxRuleEntries {
		rules = rules[:MaxRuleEntries]
	}

	size := 7
	for _, r := range rules {
		size += len(r.Name) + len(r.Value) + 2
	}

	w := newWriter(size)
	w.putByte(HeaderRulesResponse)
	w.putUint16(uint16(len(rules)))
	for _, r := range rules {
		w.putString(r.Name)
		w.putString(r.Value)
	}

	return w.buf
}
