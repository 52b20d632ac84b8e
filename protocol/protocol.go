package protocol

import (
	"encoding/json"
)

const (
	MsgHello   = "hello"   // handshake-init
	MsgWelcome = "welcome" // handshake-welcome
	MsgGotIt   = "gotit"   // handshake-ack
	MsgInput   = "input"
	MsgResize  = "resize"
	MsgPing    = "ping"
	MsgPong    = "pong"
	MsgState   = "state"
	MsgDead    = "dead"
)

const (
	WorldTickHz   = 60
	BroadcastHz   = 40
	ScoreboardHz  = 2
	MaxNameLength = 10
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
