package usecase

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const gameErrorTitle = "Game error"

type Result int

const (
	ResultState Result = iota
	ResultError
)

// Interpreter turns inbound server messages into the observed game state.
type Interpreter struct {
	logger   *slog.Logger
	notifier Notifier
	observer Observer

	mu       sync.Mutex
	snapshot *entity.Snapshot
	revealed bool
}

func NewInterpreter(logger *slog.Logger, notifier Notifier, observer Observer) *Interpreter {
	return &Interpreter{
		logger:   logger.With("component", "interpreter"),
		notifier: notifier,
		observer: observer,
	}
}

// Interpret - an error report is surfaced as a notification and leaves the state alone,
// anything else replaces the snapshot wholesale.
func (that *Interpreter) Interpret(msg *entity.ServerMessage) Result {
	log := that.logger.With("method", "Interpret")

	if msg.IsError() {
		log.Info("game server reported an error", "error", msg.Error)
		that.notifier.Notify(Notification{
			Title:       gameErrorTitle,
			Description: msg.Error,
			Severity:    SeverityError,
		})

		return ResultError
	}

	snapshot := msg.Snapshot.Clone()

	that.mu.Lock()
	that.snapshot = snapshot
	// the game_over flag is repeated on every terminal snapshot, reveal only the first one
	reveal := snapshot.GameOver && !that.revealed
	that.revealed = snapshot.GameOver
	that.mu.Unlock()

	that.observer.OnState(snapshot.Clone())

	if reveal {
		outcome := entity.DeriveOutcome(snapshot)
		log.Info("game over", "outcome", outcome)
		that.observer.OnOutcome(outcome)
	}

	return ResultState
}

// Snapshot - copy of the latest state, false until the first state message.
func (that *Interpreter) Snapshot() (*entity.Snapshot, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.snapshot == nil {
		return nil, false
	}

	return that.snapshot.Clone(), true
}

// Outcome - derived from the latest snapshot, OutcomeNone while the game goes on.
func (that *Interpreter) Outcome() entity.Outcome {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.DeriveOutcome(that.snapshot)
}

// Reset - forgets the state, used when the session is joined again.
func (that *Interpreter) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.snapshot = nil
	that.revealed = false
}
