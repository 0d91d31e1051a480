package ir

import "ember/internal/types"

type FuncID int32
type BlockID int32
type LocalID int32
type ValueID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
	NoValueID ValueID = -1
)

// Local is one stack slot of a function.
type Local struct {
	Name string
	Type types.TypeID
}

// FuncletKind records which unwinding funclet context a block runs in.
type FuncletKind uint8

const (
	// FuncletNone marks ordinary blocks outside any unwinding context.
	FuncletNone FuncletKind = iota
	// FuncletGNU marks blocks reached through a table-based landing pad.
	FuncletGNU
	// FuncletMSVC marks blocks anchored to a specific cleanup pad.
	FuncletMSVC
)

// Funclet is the operand-bundle context attached to calls emitted inside
// unwinding code. For FuncletMSVC, Pad is the owning cleanup-pad value.
type Funclet struct {
	Kind FuncletKind
	Pad  ValueID
}
