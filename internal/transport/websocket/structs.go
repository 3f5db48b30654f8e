package websocket

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// State - lifecycle position of a connection.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (that State) String() string {
	switch that {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MessageHandler receives every decoded inbound message, in transmission order.
type MessageHandler func(msg *entity.ServerMessage)

// ConnectivityHandler receives true when the connection opens and false when it closes.
type ConnectivityHandler func(connected bool)

// Options configure a single connection to the join endpoint.
type Options struct {
	BaseURL          string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	Reconnect        ReconnectPolicy

	OnMessage      MessageHandler
	OnConnectivity ConnectivityHandler
}
