package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const (
	defaultMoveTimeout = 10 * time.Second
	moveErrorTitle     = "Move error"
)

// GameSession - one player's view of one session: the connection, the gate in front
// of user moves and the interpreter of what the server sends back.
type GameSession struct {
	logger      *slog.Logger
	dial        Dialer
	notifier    Notifier
	observer    Observer
	moveTimeout time.Duration

	gate        *Gate
	interpreter *Interpreter
	guard       Guard

	joinMu sync.Mutex

	mu        sync.Mutex
	conn      Connection
	sessionID string
	playerID  string
	waiters   map[chan *entity.ServerMessage]struct{}
}

func NewGameSession(logger *slog.Logger, dial Dialer, notifier Notifier, observer Observer, moveTimeout time.Duration) *GameSession {
	if moveTimeout <= 0 {
		moveTimeout = defaultMoveTimeout
	}

	that := &GameSession{
		logger:      logger.With("component", "game-session"),
		dial:        dial,
		notifier:    notifier,
		observer:    observer,
		moveTimeout: moveTimeout,
		gate:        &Gate{},
		interpreter: NewInterpreter(logger, notifier, observer),
		waiters:     make(map[chan *entity.ServerMessage]struct{}),
	}

	that.guard = AllOf(that.isConnected, that.gate.Unlocked, that.isPlayable)

	return that
}

// Join - opens the connection for the pair, tearing down any previous one first.
func (that *GameSession) Join(ctx context.Context, sessionID, playerID string) {
	that.joinMu.Lock()
	defer that.joinMu.Unlock()

	log := that.logger.With("method", "Join", "session", sessionID, "player", playerID)

	that.closeConnection()
	that.interpreter.Reset()

	conn := that.dial(ctx, sessionID, playerID, that.handleMessage, that.handleConnectivity)

	that.mu.Lock()
	that.conn = conn
	that.sessionID = sessionID
	that.playerID = playerID
	that.mu.Unlock()

	log.Info("joining session")
}

// Close - tears down the connection; safe to call more than once.
func (that *GameSession) Close() {
	that.joinMu.Lock()
	defer that.joinMu.Unlock()

	that.closeConnection()
}

// CanMove - whether the UI should accept a move right now.
func (that *GameSession) CanMove() bool {
	return that.guard()
}

// Locked - a move is in flight.
func (that *GameSession) Locked() bool {
	return that.gate.Locked()
}

func (that *GameSession) Connected() bool {
	conn := that.connection()
	return conn != nil && conn.Connected()
}

func (that *GameSession) Snapshot() (*entity.Snapshot, bool) {
	return that.interpreter.Snapshot()
}

func (that *GameSession) Outcome() entity.Outcome {
	return that.interpreter.Outcome()
}

// Move - sends a move and waits for the server to answer it.
func (that *GameSession) Move(ctx context.Context, row, col int) error {
	log := that.logger.With("method", "Move", "row", row, "col", col)

	if !that.guard() {
		return apperror.ErrInputDisabled
	}

	err := that.gate.Run(ctx, func(ctx context.Context) error {
		return that.sendMove(ctx, entity.Move{Row: row, Col: col})
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperror.ErrMoveTimeout), errors.Is(err, apperror.ErrConnectionClosed):
		log.Warn("move failed", "error", err)
		that.notifier.Notify(Notification{
			Title:       moveErrorTitle,
			Description: err.Error(),
			Severity:    SeverityError,
		})
	case errors.Is(err, apperror.ErrMoveRejected):
		// already surfaced by the interpreter
		log.Info("move rejected", "error", err)
	default:
		log.Warn("move failed", "error", err)
	}

	return err
}

func (that *GameSession) sendMove(ctx context.Context, move entity.Move) error {
	conn := that.connection()
	if conn == nil {
		return apperror.ErrNotJoined
	}

	if !conn.Connected() {
		conn.Send(move)
		return nil
	}

	reply := make(chan *entity.ServerMessage, 1)
	that.addWaiter(reply)
	defer that.removeWaiter(reply)

	conn.Send(move)

	timer := time.NewTimer(that.moveTimeout)
	defer timer.Stop()

	select {
	case msg := <-reply:
		if msg.IsError() {
			return fmt.Errorf("%w: %s", apperror.ErrMoveRejected, msg.Error)
		}
		return nil
	case <-conn.Done():
		return apperror.ErrConnectionClosed
	case <-timer.C:
		return fmt.Errorf("%w: waited %s", apperror.ErrMoveTimeout, that.moveTimeout)
	case <-ctx.Done():
		return fmt.Errorf("move cancelled: %w", ctx.Err())
	}
}

func (that *GameSession) handleMessage(msg *entity.ServerMessage) {
	that.interpreter.Interpret(msg)

	that.mu.Lock()
	waiters := that.waiters
	that.waiters = make(map[chan *entity.ServerMessage]struct{})
	that.mu.Unlock()

	for waiter := range waiters {
		waiter <- msg
	}
}

func (that *GameSession) handleConnectivity(connected bool) {
	that.logger.Info("connectivity changed", "connected", connected)
	that.observer.OnConnectivity(connected)
}

func (that *GameSession) addWaiter(waiter chan *entity.ServerMessage) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.waiters[waiter] = struct{}{}
}

func (that *GameSession) removeWaiter(waiter chan *entity.ServerMessage) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.waiters, waiter)
}

func (that *GameSession) connection() Connection {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.conn
}

func (that *GameSession) closeConnection() {
	that.mu.Lock()
	conn := that.conn
	sessionID, playerID := that.sessionID, that.playerID
	that.conn = nil
	that.mu.Unlock()

	if conn != nil {
		conn.Close()
		that.logger.Info("connection closed", "session", sessionID, "player", playerID)
	}
}

func (that *GameSession) isConnected() bool {
	return that.Connected()
}

// isPlayable - there is a state, it is our turn and the game is not over.
func (that *GameSession) isPlayable() bool {
	snapshot, ok := that.interpreter.Snapshot()
	return ok && snapshot.YourTurn && !snapshot.GameOver
}
