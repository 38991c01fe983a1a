// Package profile loads the server file describing what the emulated server reports:
// static A2S_INFO fields, the rule set and the simulated player population.
package profile

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/woozymasta/a2sim/internal/a2s"
	"github.com/woozymasta/a2sim/internal/fake"
	"github.com/woozymasta/a2sim/internal/simulator"
	"github.com/woozymasta/a2sim/internal/weighted"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid server file")

// Profile is a loaded and validated server file.
type Profile struct {
	Info  *a2s.ServerInfo
	Rules a2s.Rules

	// Host and QueryPort are where the file asks the responder to listen.
	Host      string
	QueryPort uint16

	Players Players
}

// Players holds simulator settings in wire ready types.
type Players struct {
	Deltas      []weighted.Entry[int32]
	Names       []string
	Count       int
	ScoreMin    int32
	ScoreMax    int32
	DurationMin float32
	DurationMax float32
	RoundMin    float64
	RoundMax    float64
}

// SimulatorOptions converts the players section into simulator options.
func (p Players) SimulatorOptions() (simulator.Options, error) {
	opts := simulator.Options{
		Names:       p.Names,
		Size:        p.Count,
		ScoreMin:    p.ScoreMin,
		ScoreMax:    p.ScoreMax,
		DurationMin: p.DurationMin,
		DurationMax: p.DurationMax,
		RoundMin:    p.RoundMin,
		RoundMax:    p.RoundMax,
	}

	if len(p.Deltas) > 0 {
		sampler, err := weighted.New(p.Deltas...)
		if err != nil {
			return opts, fmt.Errorf("%w: players.score_deltas: %w", ErrInvalid, err)
		}
		opts.ScoreDeltas = sampler
	}

	return opts, nil
}

type fileServer struct {
	Host              string `toml:"host"`
	ServerName        string `toml:"server_name"`
	Map               string `toml:"map"`
	GameDir           string `toml:"gamedir"`
	GameName          string `toml:"game_name"`
	Version           string `toml:"version"`
	Keywords          string `toml:"keywords"`
	OS                string `toml:"os"`
	ServerType        string `toml:"server_type"`
	AppID             int64  `toml:"appid"`
	SteamID           int64  `toml:"steamid"`
	GamePort          int64  `toml:"gameport"`
	QueryPort         int64  `toml:"queryport"`
	Protocol          int64  `toml:"protocol"`
	Players           int64  `toml:"players"`
	MaxPlayers        int64  `toml:"max_players"`
	NumBots           int64  `toml:"num_bots"`
	Secure            bool   `toml:"secure"`
	PasswordProtected bool   `toml:"password_protected"`
}

type fileDelta struct {
	Delta  int64   `toml:"delta"`
	Weight float64 `toml:"weight"`
}

type filePlayers struct {
	Names       []string    `toml:"names"`
	ScoreDeltas []fileDelta `toml:"score_deltas"`
	Count       int64       `toml:"count"`
	ScoreMin    int64       `toml:"score_min"`
	ScoreMax    int64       `toml:"score_max"`
	DurationMin float64     `toml:"duration_min"`
	DurationMax float64     `toml:"duration_max"`
	RoundMin    float64     `toml:"round_min"`
	RoundMax    float64     `toml:"round_max"`
}

type file struct {
	Rules   map[string]any `toml:"rules"`
	Server  fileServer     `toml:"server"`
	Players filePlayers    `toml:"players"`
}

// Load reads and validates a server file from disk.
func Load(path string) (*Profile, error) {
	var f file
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("read server file %s: %w", path, err)
	}

	return build(&f, md)
}

// Parse reads and validates a server file from a string.
func Parse(data string) (*Profile, error) {
	var f file
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("parse server file: %w", err)
	}

	return build(&f, md)
}

func build(f *file, md toml.MetaData) (*Profile, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(keys, ", "))
	}

	v := &validator{}
	s := f.Server

	info := &a2s.ServerInfo{
		Name:       v.str("server.server_name", s.ServerName),
		Map:        v.str("server.map", s.Map),
		Folder:     v.str("server.gamedir", s.GameDir),
		Game:       v.str("server.game_name", s.GameName),
		Version:    v.str("server.version", s.Version),
		Keywords:   v.str("server.keywords", s.Keywords),
		Protocol:   v.byteOf("server.protocol", s.Protocol),
		Players:    v.byteOf("server.players", s.Players),
		MaxPlayers: v.byteOf("server.max_players", s.MaxPlayers),
		Bots:       v.byteOf("server.num_bots", s.NumBots),
		ServerType: v.char("server.server_type", s.ServerType, 'd'),
		OS:         v.char("server.os", s.OS, 'l'),
		Port:       v.portOf("server.gameport", s.GamePort),
		SteamID:    uint64(s.SteamID),
		GameID:     uint64(v.nonNegative("server.appid", s.AppID)),
		Password:   boolByte(s.PasswordProtected),
		VAC:        boolByte(s.Secure),
	}

	p := &Profile{
		Info:      info,
		Rules:     orderedRules(f.Rules, md, v),
		Host:      s.Host,
		QueryPort: v.portOf("server.queryport", s.QueryPort),
		Players:   buildPlayers(f.Players, md.IsDefined("players", "count"), v),
	}

	if err := v.err(); err != nil {
		return nil, err
	}

	return p, nil
}

// orderedRules keeps the [rules] table in file order.
func orderedRules(table map[string]any, md toml.MetaData, v *validator) a2s.Rules {
	rules := make(a2s.Rules, 0, len(table))
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "rules" {
			continue
		}

		name := key[1]
		value, ok := table[name]
		if !ok {
			continue
		}

		var text string
		switch val := value.(type) {
		case string:
			text = val
		case bool:
			text = "0"
			if val {
				text = "1"
			}
		case int64, float64:
			text = fmt.Sprint(val)
		default:
			v.fail("rules.%s: unsupported value type %T", name, value)
			continue
		}

		rules = append(rules, a2s.Rule{
			Name:  v.str("rules key", name),
			Value: v.str("rules."+name, text),
		})
	}

	if len(rules) > a2s.MaxRuleEntries {
		v.fail("rules: %d entries, at most %d fit a response", len(rules), a2s.MaxRuleEntries)
	}

	return rules
}

// buildPlayers converts the [players] table. Without an explicit count every listed name plays.
func buildPlayers(fp filePlayers, countSet bool, v *validator) Players {
	p := Players{
		Count:       int(v.nonNegative("players.count", fp.Count)),
		ScoreMin:    v.int32Of("players.score_min", fp.ScoreMin),
		ScoreMax:    v.int32Of("players.score_max", fp.ScoreMax),
		DurationMin: float32(fp.DurationMin),
		DurationMax: float32(fp.DurationMax),
		RoundMin:    fp.RoundMin,
		RoundMax:    fp.RoundMax,
	}

	seen := make(map[string]struct{}, len(fp.Names))
	for _, name := range fp.Names {
		name = v.str("players.names", name)
		if _, dup := seen[name]; dup {
			v.fail("players.names: duplicate name %q", name)
			continue
		}
		seen[name] = struct{}{}
		p.Names = append(p.Names, name)
	}

	if !countSet {
		p.Count = len(p.Names)
	}
	if p.Count > a2s.MaxPlayerEntries {
		v.fail("players.count: %d, at most %d fit a response", p.Count, a2s.MaxPlayerEntries)
	}

	if len(p.Names) == 0 && p.Count > 0 {
		p.Names = fake.Names(p.Count)
	}

	for i, d := range fp.ScoreDeltas {
		if d.Weight < 0 {
			v.fail("players.score_deltas[%d]: negative weight %g", i, d.Weight)
		}
		p.Deltas = append(p.Deltas, weighted.Entry[int32]{
			Item:   v.int32Of(fmt.Sprintf("players.score_deltas[%d].delta", i), d.Delta),
			Weight: d.Weight,
		})
	}

	return p
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// validator collects field errors so a broken file is reported in one pass.
type validator struct {
	problems []string
}

func (v *validator) fail(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(v.problems, "; "))
}

// str rejects NUL, which would terminate the string early on the wire.
func (v *validator) str(field, s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		v.fail("%s: contains NUL byte", field)
	}
	return s
}

func (v *validator) byteOf(field string, n int64) byte {
	if n < 0 || n > math.MaxUint8 {
		v.fail("%s: %d out of range 0-255", field, n)
		return 0
	}
	return byte(n)
}

func (v *validator) portOf(field string, n int64) uint16 {
	if n < 0 || n > math.MaxUint16 {
		v.fail("%s: %d out of range 0-65535", field, n)
		return 0
	}
	return uint16(n)
}

func (v *validator) int32Of(field string, n int64) int32 {
	if n < math.MinInt32 || n > math.MaxInt32 {
		v.fail("%s: %d does not fit 32 bits", field, n)
		return 0
	}
	return int32(n)
}

func (v *validator) nonNegative(field string, n int64) int64 {
	if n < 0 {
		v.fail("%s: must not be negative", field)
		return 0
	}
	return n
}

// char reads a single ASCII character field such as os = "w".
func (v *validator) char(field, s string, def byte) byte {
	switch {
	case s == "":
		return def
	case len(s) != 1 || s[0] == 0 || s[0] > 0x7F:
		v.fail("%s: %q must be a single ASCII character", field, s)
		return def
	default:
		return s[0]
	}
}
