package room

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"tankarena/game"
	"tankarena/protocol"
)

// handleMessage applies one client envelope. A malformed payload leaves the
// session untouched and is reported as an error for logging only.
func (r *Room) handleMessage(id string, env protocol.Envelope) error {
	s, ok := r.byConn[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	switch env.T {
	case protocol.MsgHello:
		return r.handleHello(s, env)
	case protocol.MsgGotIt:
		return r.handleGotIt(s, env)
	case protocol.MsgInput:
		return r.handleInput(s, env)
	case protocol.MsgResize:
		return r.handleResize(s, env)
	case protocol.MsgPong:
		r.handlePong(s)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, env.T)
	}
}

// handleHello moves Connected -> Named. A repeated hello before the ack
// overwrites the name and spawn.
func (r *Room) handleHello(s *Session, env protocol.Envelope) error {
	if s.State != Connected && s.State != Named {
		return fmt.Errorf("%w: hello in %s", ErrBadState, s.State)
	}
	h, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		return err
	}

	name := truncateName(h.Name)
	if name == "" {
		name = truncateName(fmt.Sprintf("Tank %d", r.spawns+1))
	}
	x, y := r.rules.SpawnLocation(r.spawns)
	r.spawns++

	if s.Tank == nil {
		s.Tank = game.NewTank(name, x, y, r.cfg.AmmoCapacity)
	} else {
		s.Tank.Name = name
		s.Tank.X, s.Tank.Y = x, y
	}
	s.Name = name
	s.State = Named

	log.Info().Str("conn", s.ID).Str("name", name).Float64("x", x).Float64("y", y).Msg("player named")
	r.send(s, protocol.MsgWelcome, protocol.Welcome{
		Player: s.info(),
		Width:  r.cfg.WorldWidth,
		Height: r.cfg.WorldHeight,
	})
	return nil
}

// handleGotIt moves Named -> Active: the session joins the registry and its
// tank enters the index. Once Active only the screen size is refreshed.
func (r *Room) handleGotIt(s *Session, env protocol.Envelope) error {
	if s.State == Connected {
		return fmt.Errorf("%w: ack before hello", ErrBadState)
	}
	p, err := protocol.DecodePayload[protocol.PlayerInfo](env)
	if err != nil {
		return err
	}
	if p.ScreenWidth > 0 && p.ScreenHeight > 0 {
		s.ScreenWidth, s.ScreenHeight = p.ScreenWidth, p.ScreenHeight
	}
	if s.State != Named {
		return nil
	}

	if name := truncateName(p.Name); name != "" {
		s.Name = name
		s.Tank.Name = name
	}
	s.LastHeartbeat = r.now()
	r.sessions = append(r.sessions, s)
	game.IndexTank(r.index, s.Tank)
	s.State = Active

	log.Info().Str("conn", s.ID).Str("name", s.Name).Uint64("tank", s.Tank.ID).Int("active", len(r.sessions)).Msg("player active")
	return nil
}

func (r *Room) handleInput(s *Session, env protocol.Envelope) error {
	in, err := protocol.DecodePayload[protocol.Input](env)
	if err != nil {
		return err
	}
	if math.IsNaN(in.Ax) || math.IsNaN(in.Ay) || math.IsNaN(in.Aim) {
		return fmt.Errorf("input with NaN from %s", s.ID)
	}
	s.Input = game.Input{
		Ax:   max(-1, min(1, in.Ax)),
		Ay:   max(-1, min(1, in.Ay)),
		Aim:  in.Aim,
		Fire: in.Fire,
	}
	s.LastHeartbeat = r.now()
	return nil
}

func (r *Room) handleResize(s *Session, env protocol.Envelope) error {
	rs, err := protocol.DecodePayload[protocol.Resize](env)
	if err != nil {
		return err
	}
	if rs.Width <= 0 || rs.Height <= 0 {
		return fmt.Errorf("resize to %gx%g", rs.Width, rs.Height)
	}
	s.ScreenWidth, s.ScreenHeight = rs.Width, rs.Height
	return nil
}

func (r *Room) handlePong(s *Session) {
	if s.PingStart.IsZero() {
		return
	}
	s.RTT = r.now().Sub(s.PingStart)
	s.PingStart = time.Time{}
	log.Debug().Str("conn", s.ID).Dur("rtt", s.RTT).Msg("pong")
}
