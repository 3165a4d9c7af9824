package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/wordbomb/internal/dependencies/clock"
	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/game"
)

// roomEntry is one row of the registry table. Its mutex serializes every
// change to the room, including the ones made by timer callbacks. It also
// owns the room's pending timers and acts as the engine's game.Timers for
// that room.
type roomEntry struct {
	owner *Controller

	mu            sync.Mutex
	room          *model.Room
	closed        bool // removed from the table; every handler is a no-op
	stopped       bool // controller shut down; nothing new gets scheduled
	turnTimer     clock.Timer
	cooldownTimer clock.Timer
}

var _ game.Timers = (*roomEntry)(nil)

// ArmTurnTimeout replaces the pending turn timeout. Caller holds e.mu.
func (e *roomEntry) ArmTurnTimeout(turnSeq uint64, d time.Duration) {
	e.CancelTurnTimeout()
	if e.closed || e.stopped {
		return
	}
	e.turnTimer = e.owner.clock.AfterFunc(d, func() {
		e.owner.fireTurnTimeout(e, turnSeq)
	})
}

// CancelTurnTimeout stops the pending turn timeout, if any. Caller holds e.mu.
func (e *roomEntry) CancelTurnTimeout() {
	if e.turnTimer != nil {
		e.turnTimer.Stop()
		e.turnTimer = nil
	}
}

// ArmCooldown replaces the pending cooldown. Caller holds e.mu.
func (e *roomEntry) ArmCooldown(gameSeq uint64, d time.Duration) {
	if e.cooldownTimer != nil {
		e.cooldownTimer.Stop()
		e.cooldownTimer = nil
	}
	if e.closed || e.stopped {
		return
	}
	e.cooldownTimer = e.owner.clock.AfterFunc(d, func() {
		e.owner.fireCooldown(e, gameSeq)
	})
}

func (e *roomEntry) stopTimers() {
	e.CancelTurnTimeout()
	if e.cooldownTimer != nil {
		e.cooldownTimer.Stop()
		e.cooldownTimer = nil
	}
}

// fireTurnTimeout runs on the timer's goroutine. The engine discards the
// call if the turn it was armed for is already over.
func (c *Controller) fireTurnTimeout(e *roomEntry, turnSeq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.stopped {
		return
	}
	c.dispatch(c.engine.HandleTimeout(context.Background(), e.room, turnSeq, e))
}

// fireCooldown runs on the timer's goroutine
func (c *Controller) fireCooldown(e *roomEntry, gameSeq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.stopped {
		return
	}
	c.dispatch(c.engine.HandleCooldown(e.room, gameSeq))
}
