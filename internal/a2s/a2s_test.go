package a2s

import (
	"bytes"
	"errors"
	"testing"
)

func int32p(v int32) *int32 { return &v }

func TestDecode(t *testing.T) {
	infoReq := append([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x54}, []byte(QueryString)...)

	cases := []struct {
		name    string
		in      []byte
		want    Request
		wantErr error
	}{
		{
			name: "info without challenge",
			in:   infoReq,
			want: Request{Kind: Kind(HeaderInfo), Challenge: -1},
		},
		{
			name: "info with challenge",
			in:   append(append([]byte{}, infoReq...), 0x78, 0x56, 0x34, 0x12),
			want: Request{Kind: Kind(HeaderInfo), Challenge: 0x12345678},
		},
		{
			name: "player with zero challenge",
			in:   []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x55, 0x00, 0x00, 0x00, 0x00},
			want: Request{Kind: Kind(HeaderPlayer), Challenge: 0},
		},
		{
			name: "player requesting challenge",
			in:   []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x55, 0xFF, 0xFF, 0xFF, 0xFF},
			want: Request{Kind: Kind(HeaderPlayer), Challenge: -1},
		},
		{
			name: "rules without challenge",
			in:   []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x56},
			want: Request{Kind: Kind(HeaderRules), Challenge: -1},
		},
		{
			name:    "split prefix",
			in:      []byte{0xFE, 0xFF, 0xFF, 0xFF, 0x55},
			wantErr: ErrInvalidPrefix,
		},
		{
			name:    "zero prefix",
			in:      []byte{0x00, 0x00, 0x00, 0x00, 0x55},
			wantErr: ErrInvalidPrefix,
		},
		{
			name:    "too short for prefix",
			in:      []byte{0xFF, 0xFF},
			wantErr: ErrInvalidPrefix,
		},
		{
			name:    "ping header",
			in:      []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x69},
			wantErr: ErrUnknownHeader,
		},
		{
			name:    "missing header",
			in:      []byte{0xFF, 0xFF, 0xFF, 0xFF},
			wantErr: ErrUnknownHeader,
		},
		{
			name:    "wrong query string",
			in:      append([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x54}, []byte("Source Engine Quer!\x00")...),
			wantErr: ErrInvalidQueryString,
		},
		{
			name:    "short query string",
			in:      append([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x54}, []byte("Source")...),
			wantErr: ErrInvalidQueryString,
		},
		{
			name:    "truncated challenge",
			in:      []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x56, 0x01, 0x02},
			wantErr: ErrTruncatedChallenge,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecodeRejectsEveryBadPrefix(t *testing.T) {
	for i := 0; i < 4; i++ {
		for _, b := range []byte{0x00, 0x7F, 0xFE} {
			buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x56}
			buf[i] = b
			if _, err := Decode(buf); !errors.Is(err, ErrInvalidPrefix) {
				t.Errorf("prefix % X: err = %v, want ErrInvalidPrefix", buf[:4], err)
			}
		}
	}
}

func TestValidLength(t *testing.T) {
	for n := 0; n <= 40; n++ {
		want := n >= 5 && n <= 30
		if got := ValidLength(n); got != want {
			t.Errorf("ValidLength(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestEncodeRequestRoundTrip(t *testing.T) {
	for _, kind := range []Kind{Kind(HeaderInfo), Kind(HeaderPlayer), Kind(HeaderRules)} {
		buf := EncodeRequest(kind, int32p(42))
		if !ValidLength(len(buf)) {
			t.Fatalf("%s request has invalid length %d", kind, len(buf))
		}

		req, err := Decode(buf)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if req.Kind != kind || req.Challenge != 42 {
			t.Errorf("%s: decoded %+v", kind, req)
		}
	}
}

func TestEncodeChallenge(t *testing.T) {
	got := EncodeChallenge(0x12345678)
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x41, 0x78, 0x56, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}

	got = EncodeChallenge(-2)
	want = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x41, 0xFE, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestEncodeInfoGolden(t *testing.T) {
	info := &ServerInfo{
		Protocol:   17,
		Name:       "Test",
		Map:        "de_dust",
		Folder:     "cstrike",
		Game:       "CS",
		Players:    3,
		MaxPlayers: 16,
		Bots:       1,
		ServerType: 'd',
		OS:         'l',
		Password:   0,
		VAC:        1,
		Version:    "1.0",
		Port:       27015,
		SteamID:    0x0102030405060708,
		Keywords:   "tag",
		GameID:     240,
	}

	want := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0x49, 0x11,
		0x54, 0x65, 0x73, 0x74, 0x00,
		0x64, 0x65, 0x5F, 0x64, 0x75, 0x73, 0x74, 0x00,
		0x63, 0x73, 0x74, 0x72, 0x69, 0x6B, 0x65, 0x00,
		0x43, 0x53, 0x00,
		0x00, 0x00,
		0x03, 0x10, 0x01, 0x64, 0x6C, 0x00, 0x01,
		0x31, 0x2E, 0x30, 0x00,
		0xB1,
		0x87, 0x69,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0x74, 0x61, 0x67, 0x00,
		0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	got := EncodeInfo(info)
	if !bytes.Equal(got, want) {
		t.Errorf("info mismatch\n got % X\nwant % X", got, want)
	}
}

func TestEncodePlayersGolden(t *testing.T) {
	players := []Player{
		{Name: "a", Score: -5, Duration: 1.5},
		{Name: "bob", Score: 100, Duration: 60},
	}

	want := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0x44, 0x02,
		0x00, 0x61, 0x00, 0xFB, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0xC0, 0x3F,
		0x00, 0x62, 0x6F, 0x62, 0x00, 0x64, 0x00, 0x00, 0x00, 0x00, 0x00, 0x70, 0x42,
	}

	got := EncodePlayers(players)
	if !bytes.Equal(got, want) {
		t.Errorf("players mismatch\n got % X\nwant % X", got, want)
	}

	empty := EncodePlayers(nil)
	if !bytes.Equal(empty, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x44, 0x00}) {
		t.Errorf("empty roster: % X", empty)
	}
}

func TestEncodePlayersCapsCount(t *testing.T) {
	players := make([]Player, 300)
	got := EncodePlayers(players)
	if got[5] != 255 {
		t.Fatalf("count byte = %d, want 255", got[5])
	}
	// header + count + 255 * (index + NUL name + score + duration)
	if want := 6 + 255*10; len(got) != want {
		t.Errorf("len = %d, want %d", len(got), want)
	}
}

func TestEncodeRulesGolden(t *testing.T) {
	rules := Rules{
		{Name: "mp_timelimit", Value: "30"},
		{Name: "sv_cheats", Value: "0"},
	}

	var want []byte
	want = append(want, 0xFF, 0xFF, 0xFF, 0xFF, 0x45, 0x02, 0x00)
	want = append(want, "mp_timelimit\x0030\x00"...)
	want = append(want, "sv_cheats\x000\x00"...)

	got := EncodeRules(rules)
	if !bytes.Equal(got, want) {
		t.Errorf("rules mismatch\n got % X\nwant % X", got, want)
	}
}

func TestKindString(t *testing.T) {
	if Kind(HeaderInfo).String() != "A2S_INFO" {
		t.Errorf("unexpected %s", Kind(HeaderInfo))
	}
	if Kind(0x69).String() != "0x69" {
		t.Errorf("unexpected %s", Kind(0x69))
	}
}
