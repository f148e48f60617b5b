// Package ambient holds the "current span" for call chains that cannot pass a
// context.Context explicitly, such as callbacks invoked by a UI framework.
//
// A Slot belongs to exactly one logical call chain (for example the goroutine
// that runs a UI dispatcher loop). There is no global slot: hosts with several
// concurrent chains create one Slot per chain. A Slot is safe for concurrent
// use, but callbacks sharing one still share its current span; callbacks that
// take a context.Context are parented to that argument instead.
//
// The only mutation discipline is save/restore:
//
//	s := slot.Suspend()   // save the current context, clear the slot
//	defer s.Restore()     // put the saved context back, exactly once
package ambient

import (
	"context"
	"sync"

	"github.com/jonwraymond/callspan/span"
)

// State is the lifecycle state of a Suspension.
type State int

const (
	// StateIdle means nothing has been saved yet.
	StateIdle State = iota
	// StateSuspended means a context is saved and awaiting restore.
	StateSuspended
	// StateRestored means the saved context has been put back.
	StateRestored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSuspended:
		return "suspended"
	case StateRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// Slot holds the current context of one call chain.
//
// Installs form a stack. Restoring a Suspension removes only its own entry,
// so a restore that arrives out of order never brings back a context that a
// later install replaced and has since been released.
type Slot struct {
	mu    sync.Mutex
	base  context.Context
	stack []*Suspension
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{base: context.Background()}
}

// Context returns the slot's current context. A nil or empty slot yields
// context.Background().
func (s *Slot) Context() context.Context {
	if s == nil {
		return context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Slot) current() context.Context {
	if n := len(s.stack); n > 0 {
		return s.stack[n-1].ctx
	}
	if s.base == nil {
		return context.Background()
	}
	return s.base
}

// Current returns the span carried by the current context, or nil.
func (s *Slot) Current() *span.Handle {
	return span.FromContext(s.Context())
}

// Install makes ctx the slot's current context. The returned Suspension
// puts the previous context back.
func (s *Slot) Install(ctx context.Context) *Suspension {
	if s == nil {
		return &Suspension{state: StateRestored}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sus := &Suspension{
		slot:  s,
		saved: s.current(),
		ctx:   ctx,
		state: StateSuspended,
	}
	s.stack = append(s.stack, sus)
	return sus
}

// Suspend saves the current context and clears the slot, so spans started
// from it are parentless until the Suspension is restored.
func (s *Slot) Suspend() *Suspension {
	return s.Install(context.Background())
}

// remove drops p from the stack. It reports whether p was present.
func (s *Slot) remove(p *Suspension) bool {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i] == p {
			copy(s.stack[i:], s.stack[i+1:])
			s.stack[len(s.stack)-1] = nil
			s.stack = s.stack[:len(s.stack)-1]
			return true
		}
	}
	return false
}

// Suspension records one save of a Slot.
//
// Transitions: idle -> suspended on creation, suspended -> restored on the
// first Restore. Later Restore calls are no-ops.
type Suspension struct {
	slot  *Slot
	saved context.Context
	ctx   context.Context
	state State
}

// State returns the current lifecycle state.
func (p *Suspension) State() State {
	if p == nil {
		return StateIdle
	}
	if p.slot == nil {
		return p.state
	}
	p.slot.mu.Lock()
	defer p.slot.mu.Unlock()
	return p.state
}

// Saved returns the span that was current when the slot was suspended.
func (p *Suspension) Saved() *span.Handle {
	if p == nil || p.saved == nil {
		return nil
	}
	return span.FromContext(p.saved)
}

// Restore undoes the install. In order, the slot goes back to the saved
// context; out of order, only this install is dropped and the slot keeps
// whatever was installed after it. Only the first call has an effect.
func (p *Suspension) Restore() {
	if p == nil || p.slot == nil {
		return
	}
	p.slot.mu.Lock()
	defer p.slot.mu.Unlock()
	if p.state != StateSuspended {
		return
	}
	p.slot.remove(p)
	p.state = StateRestored
}
