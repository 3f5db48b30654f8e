package usecase

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Severity string

// Notification - transient message for the notification surface.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

type Notifier interface {
	Notify(notification Notification)
}

// Observer - rendering surface fed by a game session.
type Observer interface {
	OnState(snapshot *entity.Snapshot)
	OnConnectivity(connected bool)
	OnOutcome(outcome entity.Outcome)
}

// Connection - one live link to the join endpoint.
type Connection interface {
	Send(payload any)
	Connected() bool
	Done() <-chan struct{}
	Close()
}

// Dialer opens a connection for a (session, player) pair and wires its callbacks.
type Dialer func(
	ctx context.Context,
	sessionID, playerID string,
	onMessage func(msg *entity.ServerMessage),
	onConnectivity func(connected bool),
) Connection
