package room

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tankarena/config"
	"tankarena/game"
	"tankarena/protocol"
	"tankarena/quadtree"
	"tankarena/scoreboard"
)

// Room owns the whole world: sessions, the spatial index and the cached
// scoreboard. Everything runs on the Run goroutine; other goroutines talk to
// it through Inbox.
type Room struct {
	Inbox chan any

	cfg   config.Config
	rules RuleEngine
	enc   protocol.Encoder
	now   func() time.Time

	// sessions is the registry of Active sessions in join order.
	sessions []*Session
	order    []*Session
	byConn   map[string]*Session
	index    *quadtree.Tree[game.Entity]
	board    []protocol.ScoreEntry

	tick   uint64
	spawns int

	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func New(cfg config.Config, rules RuleEngine, enc protocol.Encoder) *Room {
	if enc == nil {
		enc = protocol.JSONEncoder{}
	}
	if rules == nil {
		rules = NewDefaultRules(enc)
	}
	world := quadtree.Box{MaxX: cfg.WorldWidth, MaxY: cfg.WorldHeight}
	depth := indexDepth(cfg.WorldWidth, cfg.WorldHeight)
	r := &Room{
		Inbox:   make(chan any, 256),
		cfg:     cfg,
		rules:   rules,
		enc:     enc,
		now:     time.Now,
		byConn:  make(map[string]*Session),
		index:   quadtree.New[game.Entity](world, quadtree.WithMaxEntries(indexLeafEntries), quadtree.WithMaxDepth(depth)),
		board:   []protocol.ScoreEntry{},
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	rules.Initialize(r.index, cfg.WorldWidth, cfg.WorldHeight)
	return r
}

// A tank drags up to ammo-capacity bullets around it, so leaves hold more
// than the tree default.
const indexLeafEntries = 16

// indexDepth stops subdivision once a leaf would be narrower than a tank.
func indexDepth(w, h float64) int {
	depth := 0
	for side := min(w, h); side/2 >= game.TankSize && depth < quadtree.DefaultMaxDepth; side /= 2 {
		depth++
	}
	return depth
}

func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func every(hz int) time.Duration {
	if hz <= 0 {
		hz = 1
	}
	return time.Second / time.Duration(hz)
}

// Run drives the world, broadcast and scoreboard clocks plus ping and
// liveness checks. Each case runs to completion before the next starts.
func (r *Room) Run() {
	defer close(r.stopped)
	world := time.NewTicker(every(r.cfg.WorldHz))
	defer world.Stop()
	broadcast := time.NewTicker(every(r.cfg.BroadcastHz))
	defer broadcast.Stop()
	score := time.NewTicker(every(r.cfg.ScoreboardHz))
	defer score.Stop()
	ping := time.NewTicker(r.cfg.PingInterval)
	defer ping.Stop()

	log.Info().
		Int("worldHz", r.cfg.WorldHz).
		Int("broadcastHz", r.cfg.BroadcastHz).
		Int("scoreboardHz", r.cfg.ScoreboardHz).
		Dur("ping", r.cfg.PingInterval).
		Msg("room running")

	for {
		select {
		case <-r.quit:
			r.index.Clear()
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-world.C:
			r.advanceWorld()
		case <-broadcast.C:
			r.broadcast()
		case <-score.C:
			r.refreshScoreboard()
		case <-ping.C:
			r.sweepIdle()
			r.pingSessions()
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Connect:
		r.connect(c.Conn)
	case Message:
		if err := r.handleMessage(c.ConnID, c.Env); err != nil {
			log.Debug().Err(err).Str("conn", c.ConnID).Str("type", c.Env.T).Msg("message ignored")
		}
	case Disconnect:
		r.disconnect(c.ConnID)
	case ScoreboardRequest:
		c.Reply <- slices.Clone(r.board)
	case StatsRequest:
		c.Reply <- Stats{
			Tick:     r.tick,
			Sessions: len(r.byConn),
			Active:   len(r.sessions),
			Indexed:  r.index.Len(),
		}
	default:
		log.Warn().Str("cmd", fmt.Sprintf("%T", cmd)).Msg("unknown room command")
	}
}

func (r *Room) connect(c Conn) {
	if c == nil {
		return
	}
	if _, ok := r.byConn[c.ID()]; ok {
		log.Warn().Str("conn", c.ID()).Msg("duplicate connect")
		return
	}
	r.byConn[c.ID()] = newSession(c, r.now())
	log.Debug().Str("conn", c.ID()).Msg("connected")
}

// disconnect tears a session down. For an Active session every bullet and
// then the tank leave the index before the session leaves the registry, all
// inside this one callback.
func (r *Room) disconnect(id string) {
	s, ok := r.byConn[id]
	if !ok {
		return
	}
	delete(r.byConn, id)
	prev := s.State
	s.State = Terminated
	if prev == Active {
		game.UnindexTank(r.index, s.Tank)
		r.sessions = slices.DeleteFunc(r.sessions, func(o *Session) bool { return o == s })
	}
	log.Info().Str("conn", id).Str("name", s.Name).Stringer("from", prev).Msg("session terminated")
}

func (r *Room) send(s *Session, t string, payload any) {
	b, err := r.enc.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("type", t).Msg("encode failed")
		return
	}
	if err := s.Conn.Send(b); err != nil {
		log.Debug().Err(err).Str("conn", s.ID).Str("type", t).Msg("send failed")
	}
}

// advanceWorld runs one world tick, back to front over the registry as it
// stood when the tick began. A session terminated by an earlier advance in the
// same tick is skipped, never advanced twice or half-reindexed.
func (r *Room) advanceWorld() {
	r.order = append(r.order[:0], r.sessions...)
	for i := len(r.order) - 1; i >= 0; i-- {
		s := r.order[i]
		if s.State != Active {
			continue
		}
		r.advanceSession(s)
		if s.State == Active {
			game.ReindexTank(r.index, s.Tank)
		}
	}
	clear(r.order)
	r.tick++
}

func (r *Room) advanceSession(s *Session) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("conn", s.ID).Interface("panic", p).Msg("rule engine panicked")
		}
	}()
	if err := r.rules.Advance(s, s.Conn, r.sessions); err != nil {
		log.Error().Err(err).Str("conn", s.ID).Msg("advance failed")
	}
}

// broadcast re-reads len(r.sessions) every step; a Send that ends up
// removing a session must not leave the loop holding a stale slot.
func (r *Room) broadcast() {
	for i := 0; i < len(r.sessions); i++ {
		s := r.sessions[i]
		r.send(s, protocol.MsgState, r.snapshotFor(s))
	}
}

func (r *Room) snapshotFor(s *Session) protocol.Snapshot {
	t := s.Tank
	view := quadtree.Centered(t.X, t.Y, s.ScreenWidth, s.ScreenHeight)
	objects := make([]protocol.Object, 0, 16)
	for e := range r.index.Query(view) {
		objects = append(objects, objectFor(e))
	}
	return protocol.Snapshot{
		X:            t.X,
		Y:            t.Y,
		Objects:      objects,
		AmmoCapacity: t.AmmoCapacity,
		Ammo:         t.Ammo,
		Scoreboard:   r.board,
	}
}

func objectFor(e game.Entity) protocol.Object {
	switch v := e.(type) {
	case *game.Tank:
		return protocol.Object{
			Kind:   v.Kind().String(),
			ID:     v.ID,
			Name:   v.Name,
			X:      v.X,
			Y:      v.Y,
			Angle:  v.Angle,
			Aim:    v.Aim,
			Health: v.Health,
		}
	case *game.Bullet:
		return protocol.Object{
			Kind:  v.Kind().String(),
			ID:    v.ID,
			Owner: v.OwnerID,
			X:     v.X,
			Y:     v.Y,
		}
	default:
		b := e.Bounds()
		return protocol.Object{Kind: e.Kind().String(), ID: e.EntityID(), X: b.MinX + b.Width()/2, Y: b.MinY + b.Height()/2}
	}
}

func (r *Room) refreshScoreboard() {
	tanks := make([]*game.Tank, len(r.sessions))
	for i, s := range r.sessions {
		tanks[i] = s.Tank
	}
	r.board = scoreboard.Top(tanks, r.cfg.ScoreboardLength)
}

func (r *Room) pingSessions() {
	now := r.now()
	for _, s := range r.sessions {
		s.PingStart = now
		r.send(s, protocol.MsgPing, protocol.Ping{})
	}
}

// sweepIdle drops sessions that have not checked in within HeartbeatTimeout.
func (r *Room) sweepIdle() {
	now := r.now()
	var idle []*Session
	for _, s := range r.byConn {
		if now.Sub(s.LastHeartbeat) > r.cfg.HeartbeatTimeout {
			idle = append(idle, s)
		}
	}
	for _, s := range idle {
		log.Info().Str("conn", s.ID).Dur("silent", now.Sub(s.LastHeartbeat)).Msg("heartbeat timeout")
		_ = s.Conn.Close()
		r.disconnect(s.ID)
	}
}
