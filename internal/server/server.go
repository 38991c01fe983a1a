// Package server implements the UDP transport of the A2S responder.
package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/a2sim/internal/a2s"
	"github.com/woozymasta/a2sim/internal/geoip"
	"github.com/woozymasta/a2sim/internal/models"
)

// readBufferSize is larger than any valid request so oversized datagrams are seen as such.
const readBufferSize = 2048

// statsQueueSize bounds pending statistics events.
const statsQueueSize = 4096

// New creates a responder. recorder and geo may be nil.
func New(handler Handler, recorder Recorder, geo *geoip.Provider, opts Options) *Server {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}

	s := &Server{
		handler:  handler,
		recorder: recorder,
		geoip:    geo,
		opts:     opts,
		queue:    make(chan datagram, opts.QueueSize),
		shutdown: make(chan struct{}),
	}

	if opts.RateCount > 0 && opts.RateWindow > 0 {
		s.limiter = newClientLimiter(opts.RateCount, opts.RateWindow, opts.RateIdle)
	}
	if recorder != nil {
		s.events = make(chan models.QueryEvent, statsQueueSize)
	}

	return s
}

// Listen binds the UDP socket.
func (s *Server) Listen() error {
	addr, err := net.ResolveUDPAddr("udp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}

	if s.opts.ReadBuffer > 0 {
		if err := conn.SetReadBuffer(s.opts.ReadBuffer); err != nil {
			log.Warn().Err(err).Int("bytes", s.opts.ReadBuffer).Msg("Failed to set socket read buffer")
		}
	}

	s.conn = conn

	return nil
}

// LocalAddr returns the bound address, nil before Listen.
func (s *Server) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}

	return s.conn.LocalAddr()
}

// Start launches the worker pool, the statistics worker and the read loop.
func (s *Server) Start() {
	for i := 0; i < s.opts.Workers; i++ {
		s.workersWG.Add(1)
		go s.worker()
	}

	if s.events != nil {
		s.statsWG.Add(1)
		go s.statsWorker()
	}

	if s.limiter != nil {
		go s.limiter.gc(s.shutdown)
	}

	s.readerWG.Add(1)
	go s.readLoop()

	log.Info().
		Str("address", s.conn.LocalAddr().String()).
		Int("workers", s.opts.Workers).
		Bool("rate_limit", s.limiter != nil).
		Bool("statistics", s.events != nil).
		Msg("A2S responder listening")
}

// Stop stops reading, answers datagrams already queued and waits for statistics to drain.
// The socket stays open until the workers are done so queued replies are still sent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdown)
		if s.conn != nil {
			// unblock the read loop without closing the socket
			_ = s.conn.SetReadDeadline(time.Now())
		}

		s.readerWG.Wait()
		close(s.queue)
		s.workersWG.Wait()

		if s.conn != nil {
			_ = s.conn.Close()
		}

		if s.events != nil {
			close(s.events)
			s.statsWG.Wait()
		}

		log.Info().Msg("A2S responder stopped")
	})
}

// readLoop receives datagrams and hands valid sized ones to workers.
func (s *Server) readLoop() {
	defer s.readerWG.Done()

	buf := make([]byte, readBufferSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Error().Err(err).Msg("Failed to read UDP packet")
			continue
		}

		if !a2s.ValidLength(n) {
			log.Trace().Str("ip", addr.IP.String()).Int("size", n).Msg("Dropped datagram by size")
			continue
		}

		if s.limiter != nil && !s.limiter.allow(addr.IP) {
			log.Trace().Str("ip", addr.IP.String()).Msg("Dropped by rate limit")
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		select {
		case s.queue <- datagram{addr: addr, payload: payload}:
		default:
			log.Warn().Str("ip", addr.IP.String()).Msg("Queue full, datagram dropped")
		}
	}
}
