package unwind

import (
	"fmt"

	"fortio.org/safecast"

	"ember/internal/ir"
	"ember/internal/types"
)

// ScopeID is a stable index into the scope stack, captured at push time.
type ScopeID int32

// NoScopeID marks the absence of a scope.
const NoScopeID ScopeID = -1

// DropValue is one scheduled destruction obligation: destroy the value
// in local Val of type Ty. SkipDtor requests a shallow teardown of the
// active variant's direct fields without running the type's own
// destructor hook. Immutable once scheduled.
type DropValue struct {
	Val      ir.LocalID
	Ty       types.TypeID
	SkipDtor bool
}

type cachedEarlyExit struct {
	label       Label
	block       ir.BlockID
	lastCleanup int
}

// Scope holds the pending drops of one lexical or control region plus
// the exit blocks previously generated through it. The cleanups list
// only grows; consumption is tracked by the cached lastCleanup counts,
// never by removal.
type Scope struct {
	cleanups         []DropValue
	cachedEarlyExits []cachedEarlyExit
	cachedLandingPad ir.BlockID
}

func newScope() *Scope {
	return &Scope{cachedLandingPad: ir.NoBlockID}
}

// cachedEarlyExit returns the newest cached exit matching the label,
// with the number of cleanups it already covers.
func (s *Scope) cachedEarlyExit(label Label) (ir.BlockID, int, bool) {
	for i := len(s.cachedEarlyExits) - 1; i >= 0; i-- {
		if s.cachedEarlyExits[i].label.Matches(label) {
			return s.cachedEarlyExits[i].block, s.cachedEarlyExits[i].lastCleanup, true
		}
	}
	return ir.NoBlockID, 0, false
}

func (s *Scope) addCachedEarlyExit(label Label, bb ir.BlockID, lastCleanup int) {
	s.cachedEarlyExits = append(s.cachedEarlyExits, cachedEarlyExit{
		label:       label,
		block:       bb,
		lastCleanup: lastCleanup,
	})
}

// needsInvoke reports whether this scope has work to do when unwinding
// crosses it.
func (s *Scope) needsInvoke() bool {
	return s.cachedLandingPad != ir.NoBlockID || len(s.cleanups) > 0
}

// PushScope opens a new empty cleanup scope and returns its stable
// index.
func (c *Context) PushScope() ScopeID {
	raw, err := safecast.Conv[int32](len(c.scopes))
	if err != nil {
		panic(fmt.Errorf("unwind: scope id overflow: %w", err))
	}
	id := ScopeID(raw)
	c.scopes = append(c.scopes, newScope())
	c.log.Debug().Int32("scope", int32(id)).Msg("push cleanup scope")
	return id
}

// ScheduleDrop schedules a deep drop of the value in local val of type
// ty into the given scope. No-op when the type carries no destruction
// obligation.
func (c *Context) ScheduleDrop(scope ScopeID, val ir.LocalID, ty types.TypeID) {
	if !c.Types.NeedsDrop(ty) {
		return
	}
	c.scheduleClean(scope, DropValue{Val: val, Ty: ty})
}

// ScheduleDropFields schedules a shallow drop: the active variant's
// direct fields are torn down without invoking the type's own
// destructor hook. Used when a partially constructed value must be
// cleaned up while its destructor will run (or already ran) elsewhere.
//
// Skipping when the type needs no drop at all is an optimization; it is
// always sound to schedule conservatively.
func (c *Context) ScheduleDropFields(scope ScopeID, val ir.LocalID, ty types.TypeID) {
	if !c.Types.NeedsDrop(ty) {
		return
	}
	c.scheduleClean(scope, DropValue{Val: val, Ty: ty, SkipDtor: true})
}

func (c *Context) scheduleClean(scope ScopeID, drop DropValue) {
	if scope < 0 || int(scope) >= len(c.scopes) {
		panic(fmt.Errorf("unwind: scheduling into closed scope %d (stack depth %d)", scope, len(c.scopes)))
	}
	s := c.scopes[scope]
	s.cleanups = append(s.cleanups, drop)
	// Previously generated unwinding code for this scope is now stale.
	// The scope's own early exits stay: a regenerated chain reuses them
	// as its suffix and emits only the drops they do not cover. Inner
	// scopes' caches route through that stale suffix, so theirs go.
	s.cachedLandingPad = ir.NoBlockID
	for i := int(scope) + 1; i < len(c.scopes); i++ {
		c.scopes[i].cachedEarlyExits = nil
		c.scopes[i].cachedLandingPad = ir.NoBlockID
	}
	c.log.Debug().
		Int32("scope", int32(scope)).
		Int32("local", int32(drop.Val)).
		Str("type", c.Types.Name(drop.Ty)).
		Bool("skip_dtor", drop.SkipDtor).
		Msg("schedule drop")
}

// PopAndEmit removes the top scope, which must be the one identified by
// scope, and emits its drops for the normal (non-unwinding) exit path
// in reverse scheduling order, starting at block bb. Returns the block
// the emission ended on.
func (c *Context) PopAndEmit(scope ScopeID, bb ir.BlockID) ir.BlockID {
	if int(scope) != len(c.scopes)-1 {
		panic(fmt.Errorf("unwind: popping scope %d but top is %d", scope, len(c.scopes)-1))
	}
	s := c.popScope()
	c.log.Debug().Int32("scope", int32(scope)).Int("drops", len(s.cleanups)).Msg("pop and emit scope")
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		bb = c.emitDrop(bb, s.cleanups[i])
	}
	return bb
}

// NeedsInvoke reports whether any open scope has pending cleanups that
// must run on unwinding. Callers use it to decide whether calls need an
// unwind edge at all.
func (c *Context) NeedsInvoke() bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if c.scopes[i].needsInvoke() {
			return true
		}
	}
	return false
}

// Depth returns the current scope stack depth.
func (c *Context) Depth() int {
	return len(c.scopes)
}

func (c *Context) popScope() *Scope {
	if len(c.scopes) == 0 {
		panic(fmt.Errorf("unwind: popping empty scope stack"))
	}
	s := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	return s
}

func (c *Context) pushScopeRecord(s *Scope) {
	c.scopes = append(c.scopes, s)
}

func (c *Context) topScope() *Scope {
	if len(c.scopes) == 0 {
		panic(fmt.Errorf("unwind: empty scope stack"))
	}
	return c.scopes[len(c.scopes)-1]
}
