// Package engine answers A2S query datagrams.
package engine

import (
	"errors"
	"fmt"

	"github.com/woozymasta/a2sim/internal/a2s"
)

// ErrInternal wraps a failure recovered while building a response.
var ErrInternal = errors.New("internal error")

// RosterSource provides a consistent copy of the current player list.
type RosterSource interface {
	Players() []a2s.Player
}

// ChallengeValidator is the challenge state consulted for every request.
type ChallengeValidator interface {
	Current() int32
	Validate(candidate int32) bool
}

// Reply describes the outcome of a handled request.
type Reply struct {
	// Payload is the datagram to send back. Shared responses are read-only.
	Payload []byte

	// Kind is the request type that was answered.
	Kind a2s.Kind

	// Challenged is set when the request was answered with a challenge.
	Challenged bool
}

// Engine dispatches decoded requests. It keeps no per-request state.
type Engine struct {
	roster RosterSource
	auth   ChallengeValidator

	// info and rules are immutable, so their responses are encoded once.
	info  []byte
	rules []byte
}

// New builds an engine over static server data, the live roster and the challenge authority.
func New(info *a2s.ServerInfo, rules a2s.Rules, roster RosterSource, auth ChallengeValidator) *Engine {
	return &Engine{
		roster: roster,
		auth:   auth,
		info:   a2s.EncodeInfo(info),
		rules:  a2s.EncodeRules(rules),
	}
}

// Handle returns the reply for payload, or false when the datagram must be dropped.
func (e *Engine) Handle(payload []byte) ([]byte, bool) {
	reply, err := e.HandleRequest(payload)
	if err != nil {
		return nil, false
	}

	return reply.Payload, true
}

// HandleRequest is Handle with the reason a datagram was dropped.
// Decode failures are returned as the a2s decode errors.
func (e *Engine) HandleRequest(payload []byte) (reply Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = Reply{}
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if !a2s.ValidLength(len(payload)) {
		return Reply{}, fmt.Errorf("%w: %d bytes", a2s.ErrPacketLength, len(payload))
	}

	req, err := a2s.Decode(payload)
	if err != nil {
		return Reply{}, err
	}

	reply.Kind = req.Kind
	if !e.auth.Validate(req.Challenge) {
		reply.Challenged = true
		reply.Payload = a2s.EncodeChallenge(e.auth.Current())
		return reply, nil
	}

	switch byte(req.Kind) {
	case a2s.HeaderInfo:
		reply.Payload = e.info
	case a2s.HeaderRules:
		reply.Payload = e.rules
	case a2s.HeaderPlayer:
		reply.Payload = a2s.EncodePlayers(e.roster.Players())
	default:
		return Reply{}, fmt.Errorf("%w: %s", a2s.ErrUnknownHeader, req.Kind)
	}

	return reply, nil
}
