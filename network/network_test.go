package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"tankarena/config"
	"tankarena/protocol"
	"tankarena/room"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.WorldWidth = 2000
	cfg.WorldHeight = 2000
	cfg.BroadcastHz = 50
	cfg.PingInterval = time.Hour
	cfg.HeartbeatTimeout = time.Hour
	return cfg
}

func startServer(t *testing.T, cfg config.Config, enc protocol.Encoder) (*room.Room, string) {
	t.Helper()
	r := room.New(cfg, nil, enc)
	go r.Run()
	t.Cleanup(r.Stop)

	srv := httptest.NewServer(NewHandler(r, cfg, enc))
	t.Cleanup(srv.Close)
	return r, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	p, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(protocol.Envelope{T: typ, P: p}))
}

// waitFor reads JSON frames until one of type typ arrives.
func waitFor(t *testing.T, conn *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.T == typ {
			return env
		}
	}
}

func stats(t *testing.T, r *room.Room) room.Stats {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	st, err := r.Stats(ctx)
	require.NoError(t, err)
	return st
}

func TestHandshakeOverWebsocket(t *testing.T) {
	r, url := startServer(t, testConfig(), protocol.JSONEncoder{})
	conn := dial(t, url)

	write(t, conn, protocol.MsgHello, protocol.Hello{Name: "alice"})
	welcome, err := protocol.DecodePayload[protocol.Welcome](waitFor(t, conn, protocol.MsgWelcome))
	require.NoError(t, err)
	assert.Equal(t, "alice", welcome.Player.Name)
	assert.Equal(t, 2000.0, welcome.Width)

	welcome.Player.ScreenWidth, welcome.Player.ScreenHeight = 800, 600
	write(t, conn, protocol.MsgGotIt, welcome.Player)

	var snap struct {
		X       float64           `json:"x"`
		Y       float64           `json:"y"`
		Objects []json.RawMessage `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(waitFor(t, conn, protocol.MsgState).P, &snap))
	assert.Equal(t, welcome.Player.X, snap.X)
	assert.Equal(t, welcome.Player.Y, snap.Y)
	assert.Len(t, snap.Objects, 1)

	assert.Equal(t, 1, stats(t, r).Active)
}

func TestCloseTerminatesSession(t *testing.T) {
	r, url := startServer(t, testConfig(), protocol.JSONEncoder{})
	conn := dial(t, url)
	write(t, conn, protocol.MsgHello, protocol.Hello{Name: "bob"})
	welcome, err := protocol.DecodePayload[protocol.Welcome](waitFor(t, conn, protocol.MsgWelcome))
	require.NoError(t, err)
	write(t, conn, protocol.MsgGotIt, welcome.Player)
	waitFor(t, conn, protocol.MsgState)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		st := stats(t, r)
		return st.Sessions == 0 && st.Active == 0 && st.Indexed == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMsgpackFramesAreBinary(t *testing.T) {
	cfg := testConfig()
	_, url := startServer(t, cfg, protocol.MsgpackEncoder{})
	conn := dial(t, url)
	write(t, conn, protocol.MsgHello, protocol.Hello{Name: "carol"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)

	var env struct {
		T string             `msgpack:"t"`
		P msgpack.RawMessage `msgpack:"p"`
	}
	require.NoError(t, msgpack.Unmarshal(frame, &env))
	assert.Equal(t, protocol.MsgWelcome, env.T)
}

func TestInputIsRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.InputRate = 0.001
	cfg.InputBurst = 1
	r, url := startServer(t, cfg, protocol.JSONEncoder{})
	conn := dial(t, url)

	write(t, conn, protocol.MsgHello, protocol.Hello{Name: "dave"})
	welcome, err := protocol.DecodePayload[protocol.Welcome](waitFor(t, conn, protocol.MsgWelcome))
	require.NoError(t, err)
	// the bucket is empty now so the ack is dropped
	write(t, conn, protocol.MsgGotIt, welcome.Player)

	time.Sleep(100 * time.Millisecond)
	st := stats(t, r)
	assert.Equal(t, 1, st.Sessions)
	assert.Equal(t, 0, st.Active)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://tanks.example"})
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	assert.True(t, check(req("")))
	assert.True(t, check(req("https://tanks.example")))
	assert.False(t, check(req("https://evil.example")))
	assert.True(t, originChecker([]string{"*"})(req("https://evil.example")))
}

func TestClientSendAfterClose(t *testing.T) {
	c := &Client{id: "c1", send: make(chan []byte, 1), done: make(chan struct{})}
	require.NoError(t, c.Send([]byte("a")))
	assert.ErrorIs(t, c.Send([]byte("b")), ErrBufferFull)
	assert.Equal(t, uint64(1), c.dropped.Load())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send([]byte("c")), ErrClosed)
}
