package usecase

import (
	"context"
	"sync/atomic"
)

// Gate counts admitted actions that have not settled yet. It never rejects:
// callers check Locked (through a Guard) before running an action.
type Gate struct {
	count atomic.Int64
}

// Run - increments before action starts and decrements once it settles, on every exit path.
func (that *Gate) Run(ctx context.Context, action func(ctx context.Context) error) error {
	that.count.Add(1)
	defer that.count.Add(-1)

	return action(ctx)
}

func (that *Gate) Locked() bool {
	return that.count.Load() != 0
}

func (that *Gate) Unlocked() bool {
	return !that.Locked()
}

func (that *Gate) Count() int64 {
	return that.count.Load()
}
