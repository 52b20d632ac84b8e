package room

import (
	"time"

	"tankarena/game"
	"tankarena/protocol"
)

// State is a session's position in the handshake lifecycle.
type State uint8

const (
	Connected State = iota
	Named
	Active
	Terminated
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Named:
		return "named"
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

const (
	DefaultScreenWidth  = 1280.0
	DefaultScreenHeight = 720.0
)

// Session is one connected player. It only enters the registry and the
// spatial index once the handshake completes.
type Session struct {
	ID    string
	Name  string
	State State

	ScreenWidth  float64
	ScreenHeight float64

	Input         game.Input
	LastHeartbeat time.Time
	PingStart     time.Time
	RTT           time.Duration

	Tank *game.Tank
	Conn Conn
}

func newSession(c Conn, now time.Time) *Session {
	return &Session{
		ID:            c.ID(),
		State:         Connected,
		ScreenWidth:   DefaultScreenWidth,
		ScreenHeight:  DefaultScreenHeight,
		LastHeartbeat: now,
		Conn:          c,
	}
}

func (s *Session) info() protocol.PlayerInfo {
	p := protocol.PlayerInfo{
		ID:           s.ID,
		Name:         s.Name,
		ScreenWidth:  s.ScreenWidth,
		ScreenHeight: s.ScreenHeight,
	}
	if s.Tank != nil {
		p.X, p.Y = s.Tank.X, s.Tank.Y
	}
	return p
}

// truncateName keeps the first MaxNameLength characters of name.
func truncateName(name string) string {
	r := []rune(name)
	if len(r) <= protocol.MaxNameLength {
		return name
	}
	return string(r[:protocol.MaxNameLength])
}
