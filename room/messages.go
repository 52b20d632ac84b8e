package room

import "tankarena/protocol"

// Conn is the room's handle on one client transport.
type Conn interface {
	ID() string
	Send([]byte) error
	Close() error
}

// Connect: issued once when the transport opens
type Connect struct {
	Conn Conn
}

// Message: one decoded envelope from a client
type Message struct {
	ConnID string
	Env    protocol.Envelope
}

// Disconnect: issued when the transport closes
type Disconnect struct {
	ConnID string
}

type ScoreboardRequest struct {
	Reply chan<- []protocol.ScoreEntry
}

type Stats struct {
	Tick     uint64 `json:"tick"`
	Sessions int    `json:"sessions"`
	Active   int    `json:"active"`
	Indexed  int    `json:"indexed"`
}

type StatsRequest struct {
	Reply chan<- Stats
}
