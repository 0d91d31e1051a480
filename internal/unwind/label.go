package unwind

import (
	"fmt"

	"ember/internal/ir"
)

// LabelKind tags the two unwinding protocols.
type LabelKind uint8

const (
	// LandingPadKind is the table-based protocol.
	LandingPadKind LabelKind = iota
	// CleanupPadKind is the funclet-based protocol.
	CleanupPadKind
)

func (k LabelKind) String() string {
	switch k {
	case LandingPadKind:
		return "landingpad"
	case CleanupPadKind:
		return "cleanuppad"
	default:
		return fmt.Sprintf("LabelKind(%d)", k)
	}
}

// Label identifies the unwinding protocol an exit block belongs to.
// For CleanupPadKind, Pad is the cleanup-pad value anchoring the block
// it was started on.
type Label struct {
	Kind LabelKind
	Pad  ir.ValueID
}

// Matches reports label equality. Two labels match on tag alone: the
// cache keys on "same unwinding protocol", never on a specific pad.
func (l Label) Matches(o Label) bool {
	return l.Kind == o.Kind
}

// branch transfers control from `from` to `to` in the way this label's
// protocol requires: an ordinary branch for the table protocol, a
// cleanup return targeting `to` for the funclet protocol.
func (l Label) branch(c *Context, from, to ir.BlockID) {
	if l.Kind == CleanupPadKind {
		c.terminate(from, ir.Terminator{
			Kind:       ir.TermCleanupRet,
			CleanupRet: ir.CleanupRetTerm{Pad: l.Pad, Target: to},
		})
		return
	}
	c.terminate(from, ir.Terminator{Kind: ir.TermGoto, Goto: ir.GotoTerm{Target: to}})
}

// start prepares a freshly allocated block to act as an exit of this
// label's protocol and returns the label identifying the block itself.
// For the funclet protocol a new cleanup pad is emitted and becomes the
// block's funclet anchor; for the table protocol the block runs in the
// generic unwinding funclet context.
//
// The cursor must be on bb.
func (l Label) start(c *Context, bb ir.BlockID) Label {
	switch l.Kind {
	case CleanupPadKind:
		pad := c.emitCleanupPad()
		c.Fn.Block(bb).Funclet = ir.Funclet{Kind: ir.FuncletMSVC, Pad: pad}
		return Label{Kind: CleanupPadKind, Pad: pad}
	case LandingPadKind:
		c.Fn.Block(bb).Funclet = ir.Funclet{Kind: ir.FuncletGNU}
		return l
	default:
		panic(fmt.Errorf("unwind: unknown label kind %d", l.Kind))
	}
}
