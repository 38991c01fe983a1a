package server

import (
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/a2sim/internal/models"
)

// worker answers datagrams from the queue until it is closed.
func (s *Server) worker() {
	defer s.workersWG.Done()

	for dg := range s.queue {
		s.processDatagram(dg)
	}
}

// processDatagram answers a single request. Nothing here can stop the responder:
// malformed requests and write failures only drop this datagram.
func (s *Server) processDatagram(dg datagram) {
	reply, err := s.handler.HandleRequest(dg.payload)
	if err != nil {
		log.Debug().
			Err(err).
			Str("ip", dg.addr.IP.String()).
			Int("size", len(dg.payload)).
			Msg("Dropped invalid request")
		return
	}

	if _, err := s.conn.WriteToUDP(reply.Payload, dg.addr); err != nil {
		log.Debug().
			Err(err).
			Str("ip", dg.addr.IP.String()).
			Msg("Failed to send reply")
		return
	}

	log.Trace().
		Str("ip", dg.addr.IP.String()).
		Str("kind", reply.Kind.String()).
		Bool("challenge", reply.Challenged).
		Int("bytes", len(reply.Payload)).
		Msg("Reply sent")

	if s.events == nil {
		return
	}

	ev := models.QueryEvent{
		Time:       time.Now(),
		IP:         dg.addr.IP.String(),
		Kind:       reply.Kind.String(),
		Bytes:      len(reply.Payload),
		Challenged: reply.Challenged,
	}

	select {
	case s.events <- ev:
	default:
		log.Warn().Str("ip", ev.IP).Msg("Statistics queue full, event dropped")
	}
}

// statsWorker resolves the client country and persists events.
func (s *Server) statsWorker() {
	defer s.statsWG.Done()

	for ev := range s.events {
		if s.geoip != nil {
			ev.Country = s.geoip.Country(net.ParseIP(ev.IP))
		}

		if err := s.recorder.Record(ev); err != nil {
			log.Error().Err(err).Str("ip", ev.IP).Msg("Failed to save query statistics")
		}
	}
}
