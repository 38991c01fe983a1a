package a2s

import "fmt"

// Kind identifies a request type by its header byte.
type Kind byte

// String returns the protocol name of the request kind.
func (k Kind) String() string {
	switch byte(k) {
	case HeaderInfo:
		return "A2S_INFO"
	case HeaderPlayer:
		return "A2S_PLAYER"
	case HeaderRules:
		return "A2S_RULES"
	default:
		return fmt.Sprintf("0x%02X", byte(k))
	}
}

// Request is a decoded query datagram.
type Request struct {
	Kind      Kind
	Challenge int32
}

// ServerInfo is the static data returned by A2S_INFO.
type ServerInfo struct {
	Name       string `json:"name"`
	Map        string `json:"map"`
	Folder     string `json:"folder"`
	Game       string `json:"game"`
	Version    string `json:"version"`
	Keywords   string `json:"keywords"`
	SteamID    uint64 `json:"steam_id"`
	GameID     uint64 `json:"game_id"`
	AppID      uint16 `json:"app_id"`
	Port       uint16 `json:"port"`
	Protocol   byte   `json:"protocol"`
	Players    byte   `json:"players"`
	MaxPlayers byte   `json:"max_players"`
	Bots       byte   `json:"bots"`
	ServerType byte   `json:"server_type"`
	OS         byte   `json:"os"`
	Password   byte   `json:"password"`
	VAC        byte   `json:"vac"`
}

// Rule is a single server variable.
type Rule struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Rules is an ordered rule set. Names are unique.
type Rules []Rule

// Player is one entry of the A2S_PLAYER response.
type Player struct {
	Name     string  `json:"name"`
	Score    int32   `json:"score"`
	Duration float32 `json:"duration"`
}
