package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
)

// Connection owns one websocket to the join endpoint of a (session, player) pair.
// It moves connecting -> open -> closed once; sends outside of open are dropped.
type Connection struct {
	logger *slog.Logger
	url    string
	opts   Options

	state atomic.Int32

	connMu sync.Mutex
	conn   *websocket.Conn

	writeMu sync.Mutex

	cancel    context.CancelFunc
	closing   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// Open - starts connecting in the background and returns immediately.
func Open(ctx context.Context, logger *slog.Logger, opts Options, sessionID, playerID string) *Connection {
	if opts.Reconnect == nil {
		opts.Reconnect = NoReconnect{}
	}
	if opts.HandshakeTimeout == 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(ctx)

	that := &Connection{
		logger: logger.With("component", "connection", "session", sessionID, "player", playerID),
		url:    JoinURL(opts.BaseURL, sessionID, playerID),
		opts:   opts,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	that.state.Store(int32(StateConnecting))

	go that.run(ctx)

	return that
}

func (that *Connection) State() State {
	return State(that.state.Load())
}

// Connected - true between the open event and the next close event.
func (that *Connection) Connected() bool {
	return that.State() == StateOpen
}

// Done - closed once the connection has ended for good.
func (that *Connection) Done() <-chan struct{} {
	return that.done
}

// Send - serializes payload and writes it as one text frame. Dropped silently unless open.
func (that *Connection) Send(payload any) {
	log := that.logger.With("method", "Send")

	if !that.Connected() {
		log.Debug("connection is not open, message dropped")
		return
	}

	data, err := encodeMessage(payload)
	if err != nil {
		log.Error("message dropped", "error", err)
		return
	}

	that.connMu.Lock()
	conn := that.conn
	that.connMu.Unlock()

	if conn == nil {
		log.Debug("connection is gone, message dropped")
		return
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = conn.SetWriteDeadline(time.Now().Add(that.opts.WriteTimeout)); err != nil {
		log.Debug("failed to set write deadline", "error", err)
	}

	if err = conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Warn("failed to write message", "error", err)
	}
}

// Close - tears the connection down exactly once and waits until no handler can fire.
// Must not be called from inside a handler.
func (that *Connection) Close() {
	that.closeOnce.Do(func() {
		that.closing.Store(true)

		that.connMu.Lock()
		conn := that.conn
		that.connMu.Unlock()

		if conn != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(that.opts.WriteTimeout))
			_ = conn.Close()
		}

		that.cancel()
	})

	<-that.done
}

func (that *Connection) run(ctx context.Context) {
	log := that.logger.With("method", "run")

	defer close(that.done)
	defer that.cancel()

	for attempt := 1; ; attempt++ {
		that.serve(ctx)

		if that.closing.Load() || ctx.Err() != nil {
			return
		}

		delay, ok := that.opts.Reconnect.Retry(attempt)
		if !ok {
			log.Info("connection closed, not reconnecting", "policy", that.opts.Reconnect.Name())
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		that.state.Store(int32(StateConnecting))
	}
}

// serve dials and reads until the connection ends.
func (that *Connection) serve(ctx context.Context) {
	log := that.logger.With("method", "serve")

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: that.opts.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, that.url, nil)
	if err != nil {
		log.Warn("failed to open connection", "url", that.url, "error", err)
		that.state.Store(int32(StateClosed))
		return
	}

	that.connMu.Lock()
	if that.closing.Load() {
		that.connMu.Unlock()
		_ = conn.Close()
		that.state.Store(int32(StateClosed))
		return
	}
	that.conn = conn
	that.state.Store(int32(StateOpen))
	that.connMu.Unlock()

	log.Info("connection established")
	that.notifyConnectivity(true)

	defer func() {
		that.connMu.Lock()
		that.conn = nil
		that.state.Store(int32(StateClosed))
		that.connMu.Unlock()

		_ = conn.Close()
		that.notifyConnectivity(false)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if that.closing.Load() {
				log.Debug("connection closed locally")
			} else {
				log.Info("connection closed by remote", "error", err)
			}
			return
		}

		msg, err := decodeMessage(data)
		if err != nil {
			log.Error("failed to decode message", "error", err)
			continue
		}

		if that.closing.Load() {
			return
		}

		if that.opts.OnMessage != nil {
			that.opts.OnMessage(msg)
		}
	}
}

func (that *Connection) notifyConnectivity(connected bool) {
	if that.opts.OnConnectivity != nil {
		that.opts.OnConnectivity(connected)
	}
}
