package server

import (
	"net"
	"sync"
	"time"

	"github.com/woozymasta/a2sim/internal/engine"
	"github.com/woozymasta/a2sim/internal/geoip"
	"github.com/woozymasta/a2sim/internal/models"
)

// Handler turns a request datagram into a reply.
type Handler interface {
	HandleRequest(payload []byte) (engine.Reply, error)
}

// Recorder persists answered queries.
type Recorder interface {
	Record(ev models.QueryEvent) error
}

// Options configures the UDP responder.
type Options struct {
	// Address is the UDP listen address, host:port.
	Address string

	// Workers is the number of goroutines answering datagrams.
	Workers int

	// QueueSize bounds datagrams waiting for a worker. Datagrams beyond it are dropped.
	QueueSize int

	// ReadBuffer sets SO_RCVBUF when positive.
	ReadBuffer int

	// RateCount datagrams per RateWindow are allowed per client; 0 disables limiting.
	RateCount  int
	RateWindow time.Duration

	// RateIdle is how long an idle client limiter is kept.
	RateIdle time.Duration
}

// Server holds the socket, worker pool and the optional statistics pipeline.
type Server struct {
	// handler answers decoded datagrams; it is safe for concurrent use.
	handler Handler

	// recorder persists query statistics. It can be nil when statistics are disabled.
	recorder Recorder

	// geoip resolves the country of a client for statistics.
	// It can be nil if the GeoIP database is not initialized.
	geoip *geoip.Provider

	// limiter enforces the per-client rate limit. It is nil when limiting is disabled.
	limiter *clientLimiter

	// conn is the bound UDP socket, shared by the read loop and all workers.
	conn *net.UDPConn

	// queue passes datagrams from the read loop to workers.
	queue chan datagram

	// events passes answered queries to the statistics worker.
	events chan models.QueryEvent

	// shutdown is closed to stop background goroutines.
	shutdown chan struct{}

	opts Options

	// readerWG tracks the read loop, workersWG the datagram workers,
	// statsWG the statistics worker. They are stopped in that order.
	readerWG  sync.WaitGroup
	workersWG sync.WaitGroup
	statsWG   sync.WaitGroup

	stopOnce sync.Once
}

// datagram is a unit of work for a worker.
type datagram struct {
	addr    *net.UDPAddr
	payload []byte
}
