package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tankarena/config"
	"tankarena/protocol"
	"tankarena/room"
)

const (
	readLimit    = 1 << 16
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingPeriod   = 25 * time.Second
	sendBuffer   = 64
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

// Handler upgrades HTTP requests to websocket sessions in a room.
type Handler struct {
	room     *room.Room
	binary   bool
	limit    rate.Limit
	burst    int
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewHandler(r *room.Room, cfg config.Config, enc protocol.Encoder) *Handler {
	h := &Handler{
		room:   r,
		binary: enc != nil && enc.Binary(),
		limit:  rate.Limit(cfg.InputRate),
		burst:  cfg.InputBurst,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(cfg.AllowedOrigins)}
	return h
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and otherwise matches against allowed, where "*" matches anything.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	c := &Client{
		id:      fmt.Sprintf("c%d", h.nextID.Add(1)),
		conn:    conn,
		binary:  h.binary,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(h.limit, h.burst),
	}
	if !h.room.Post(r.Context(), room.Connect{Conn: c}) {
		_ = conn.Close()
		return
	}
	log.Debug().Str("conn", c.id).Str("remote", r.RemoteAddr).Msg("websocket open")

	go c.writePump()
	c.readPump(h.room)
}

// Client is one websocket connection. Send never blocks the room goroutine:
// a frame that does not fit in the buffer is dropped.
type Client struct {
	id      string
	conn    *websocket.Conn
	binary  bool
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	dropped atomic.Uint64
}

func (c *Client) ID() string { return c.id }

func (c *Client) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		c.dropped.Add(1)
		return ErrBufferFull
	}
}

// Close asks the write pump to send a close frame and hang up. It is safe
// to call more than once and from any goroutine.
func (c *Client) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *Client) readPump(r *room.Room) {
	defer func() {
		_ = c.Close()
		// room.Post gives up once the room is stopped
		r.Post(context.Background(), room.Disconnect{ConnID: c.id})
		log.Debug().Str("conn", c.id).Uint64("dropped", c.dropped.Load()).Msg("websocket closed")
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("conn", c.id).Msg("read")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		if !c.limiter.Allow() {
			log.Debug().Str("conn", c.id).Msg("rate limited")
			continue
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("bad envelope")
			continue
		}
		if !r.Post(context.Background(), room.Message{ConnID: c.id, Env: env}) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frame := websocket.TextMessage
	if c.binary {
		frame = websocket.BinaryMessage
	}

	for {
		select {
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(frame, b); err != nil {
				log.Debug().Err(err).Str("conn", c.id).Msg("write")
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
