package websocket

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownPolicy = errors.New("unknown reconnect policy")

// ReconnectPolicy decides whether a connection closed by the remote side is dialed again.
type ReconnectPolicy interface {
	// Retry is asked after the attempt-th close; ok=false leaves the connection closed for good.
	Retry(attempt int) (delay time.Duration, ok bool)
	Name() string
}

// NoReconnect - the connection is opened once and never retried.
type NoReconnect struct{}

func (NoReconnect) Retry(int) (time.Duration, bool) {
	return 0, false
}

func (NoReconnect) Name() string {
	return "none"
}

// PolicyByName - resolves a configured policy name.
func PolicyByName(name string) (ReconnectPolicy, error) {
	switch name {
	case "", NoReconnect{}.Name():
		return NoReconnect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
}
