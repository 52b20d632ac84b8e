package room

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"tankarena/game"
	"tankarena/protocol"
)

// RuleEngine owns game physics. The room calls Initialize once, asks for a
// spawn point per handshake and calls Advance once per session per world tick.
type RuleEngine interface {
	Initialize(idx game.Index, width, height float64)
	SpawnLocation(n int) (x, y float64)
	Advance(s *Session, conn Conn, all []*Session) error
}

// DefaultRules adapts game.Rules to sessions and tells destroyed players who
// got them.
type DefaultRules struct {
	game.Rules
	enc protocol.Encoder
}

func NewDefaultRules(enc protocol.Encoder) *DefaultRules {
	if enc == nil {
		enc = protocol.JSONEncoder{}
	}
	return &DefaultRules{enc: enc}
}

func (d *DefaultRules) Advance(s *Session, conn Conn, all []*Session) error {
	if s.Tank == nil {
		return fmt.Errorf("%w: session %s", ErrNoTank, s.ID)
	}
	kills := d.Step(s.Tank, s.Input)

	for _, k := range kills {
		log.Debug().Str("killer", k.Killer.Name).Str("victim", k.Victim.Name).Msg("tank destroyed")
		for _, o := range all {
			if o.Tank != k.Victim {
				continue
			}
			b, err := d.enc.Encode(protocol.MsgDead, protocol.Dead{Killer: k.Killer.Name})
			if err != nil {
				return err
			}
			_ = o.Conn.Send(b)
		}
	}
	return nil
}
