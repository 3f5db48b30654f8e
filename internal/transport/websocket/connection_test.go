package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const waitFor = 2 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// fakeServer plays the remote authority: every accepted connection is handed to script.
type fakeServer struct {
	*httptest.Server

	dials    atomic.Int32
	paths    chan string
	received chan string
}

func newFakeServer(t *testing.T, script func(conn *websocket.Conn, received chan<- string)) *fakeServer {
	t.Helper()

	srv := &fakeServer{
		paths:    make(chan string, 8),
		received: make(chan string, 8),
	}

	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.dials.Add(1)
		srv.paths <- r.URL.Path

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		script(conn, srv.received)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func (that *fakeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(that.URL, "http")
}

// readAll forwards client frames until the client goes away.
func readAll(conn *websocket.Conn, received chan<- string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(data)
	}
}

type recorder struct {
	mu           sync.Mutex
	messages     []*entity.ServerMessage
	connectivity []bool
}

func (that *recorder) onMessage(msg *entity.ServerMessage) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.messages = append(that.messages, msg)
}

func (that *recorder) onConnectivity(connected bool) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.connectivity = append(that.connectivity, connected)
}

func (that *recorder) Messages() []*entity.ServerMessage {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]*entity.ServerMessage(nil), that.messages...)
}

func (that *recorder) Connectivity() []bool {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]bool(nil), that.connectivity...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func openConnection(t *testing.T, baseURL string, rec *recorder, policy ReconnectPolicy) *Connection {
	t.Helper()

	conn := Open(context.Background(), testLogger(), Options{
		BaseURL:        baseURL,
		Reconnect:      policy,
		OnMessage:      rec.onMessage,
		OnConnectivity: rec.onConnectivity,
	}, "abc", "alice")
	t.Cleanup(conn.Close)

	return conn
}

func TestConnection_SendAndReceive(t *testing.T) {
	// Given: a server that answers every move with a state message
	srv := newFakeServer(t, func(conn *websocket.Conn, received chan<- string) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(data)

			reply := `{"state":[["x",null],[null,null]],"your_turn":false,"your_sign":"x","game_over":false,"winner":null}`
			if err = conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
	})
	rec := &recorder{}

	// When: a connection is opened
	conn := openConnection(t, srv.wsURL(), rec, nil)

	// Then: it becomes open on the join endpoint of the pair
	require.Eventually(t, conn.Connected, waitFor, 10*time.Millisecond)
	assert.Equal(t, "/sessions/abc/players/alice/join", <-srv.paths)
	assert.Equal(t, []bool{true}, rec.Connectivity())

	// When: a move is sent
	conn.Send(entity.Move{Row: 0, Col: 0})

	// Then: the server receives it serialized and the reply reaches the handler
	select {
	case got := <-srv.received:
		assert.JSONEq(t, `{"row":0,"col":0}`, got)
	case <-time.After(waitFor):
		t.Fatal("server did not receive the move")
	}

	require.Eventually(t, func() bool { return len(rec.Messages()) == 1 }, waitFor, 10*time.Millisecond)
	msg := rec.Messages()[0]
	assert.False(t, msg.IsError())
	assert.Equal(t, entity.SignCross, msg.Cell(0, 0))
}

func TestConnection_Close(t *testing.T) {
	// Given: an open connection
	srv := newFakeServer(t, readAll)
	rec := &recorder{}
	conn := openConnection(t, srv.wsURL(), rec, nil)
	require.Eventually(t, conn.Connected, waitFor, 10*time.Millisecond)

	// When: it is closed twice
	conn.Close()
	conn.Close()

	// Then: it is closed once, connectivity went true then false
	assert.False(t, conn.Connected())
	assert.Equal(t, StateClosed, conn.State())
	assert.Equal(t, []bool{true, false}, rec.Connectivity())

	select {
	case <-conn.Done():
	default:
		t.Fatal("done channel should be closed")
	}

	// And: sending afterwards is a silent no-op
	assert.NotPanics(t, func() { conn.Send(entity.Move{Row: 1, Col: 1}) })
}

func TestConnection_RemoteClose(t *testing.T) {
	// Given: a server that sends one message and hangs up
	srv := newFakeServer(t, func(conn *websocket.Conn, _ chan<- string) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"All players have already joined the session"}`))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
	})
	rec := &recorder{}

	// When: the client connects
	conn := openConnection(t, srv.wsURL(), rec, nil)

	// Then: the message is delivered and the connection ends without reconnecting
	select {
	case <-conn.Done():
	case <-time.After(waitFor):
		t.Fatal("connection did not close")
	}

	assert.False(t, conn.Connected())
	assert.Equal(t, []bool{true, false}, rec.Connectivity())
	require.Len(t, rec.Messages(), 1)
	assert.Equal(t, "All players have already joined the session", rec.Messages()[0].Error)
	assert.Equal(t, int32(1), srv.dials.Load())
}

func TestConnection_SendWhileNotConnected(t *testing.T) {
	// Given: a server that is already gone
	srv := newFakeServer(t, readAll)
	baseURL := srv.wsURL()
	srv.Close()

	rec := &recorder{}

	// When: a connection is attempted
	conn := openConnection(t, baseURL, rec, nil)

	select {
	case <-conn.Done():
	case <-time.After(waitFor):
		t.Fatal("connection did not give up")
	}

	// Then: it never opened and sending does not panic
	assert.False(t, conn.Connected())
	assert.Empty(t, rec.Connectivity())
	assert.NotPanics(t, func() { conn.Send(entity.Move{Row: 0, Col: 0}) })
}

func TestConnection_SkipsUndecodableFrames(t *testing.T) {
	// Given: a server that sends garbage followed by a valid error report
	srv := newFakeServer(t, func(conn *websocket.Conn, received chan<- string) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json {{"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"not your turn"}`))
		readAll(conn, received)
	})
	rec := &recorder{}

	// When: the client connects
	openConnection(t, srv.wsURL(), rec, nil)

	// Then: only the valid message is delivered
	require.Eventually(t, func() bool { return len(rec.Messages()) == 1 }, waitFor, 10*time.Millisecond)
	assert.Equal(t, "not your turn", rec.Messages()[0].Error)
}

type retryOnce struct{}

func (retryOnce) Retry(attempt int) (time.Duration, bool) {
	return time.Millisecond, attempt == 1
}

func (retryOnce) Name() string {
	return "once"
}

func TestConnection_ReconnectPolicy(t *testing.T) {
	// Given: a server that hangs up right away
	srv := newFakeServer(t, func(*websocket.Conn, chan<- string) {})

	t.Run("NoReconnect dials once", func(t *testing.T) {
		srv.dials.Store(0)
		conn := openConnection(t, srv.wsURL(), &recorder{}, NoReconnect{})

		<-conn.Done()

		assert.Equal(t, int32(1), srv.dials.Load())
	})

	t.Run("A retrying policy is consulted after a remote close", func(t *testing.T) {
		srv.dials.Store(0)
		conn := openConnection(t, srv.wsURL(), &recorder{}, retryOnce{})

		<-conn.Done()

		assert.Equal(t, int32(2), srv.dials.Load())
	})
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8000/sessions/abc/players/bob%20x/join",
		JoinURL("ws://localhost:8000/", "abc", "bob x"))
}

func TestPolicyByName(t *testing.T) {
	policy, err := PolicyByName("none")
	require.NoError(t, err)
	assert.Equal(t, "none", policy.Name())

	_, ok := policy.Retry(1)
	assert.False(t, ok)

	_, err = PolicyByName("forever")
	require.ErrorIs(t, err, ErrUnknownPolicy)
}
