// Package models defines the data structures shared between the responder, storage and API.
package models

import "time"

// QueryEvent is one answered datagram, recorded for statistics.
type QueryEvent struct {
	Time       time.Time
	IP         string
	Country    string
	Kind       string
	Bytes      int
	Challenged bool
}

// ClientStat aggregates the queries of one client for one request kind.
type ClientStat struct {
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	IP         string    `json:"ip"`
	Kind       string    `json:"kind"`
	Country    string    `json:"country_code"`
	Requests   int64     `json:"requests"`
	Challenges int64     `json:"challenges"`
	BytesSent  int64     `json:"bytes_sent"`
}
