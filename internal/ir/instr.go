package ir

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrCall represents a call instruction.
	InstrCall InstrKind = iota
	// InstrLandingPad accepts an in-flight exception on table-based
	// targets and produces the exception record.
	InstrLandingPad
	// InstrCleanupPad opens a funclet-based cleanup scope and produces
	// the pad token.
	InstrCleanupPad
	// InstrLoadLocal reads a local slot.
	InstrLoadLocal
	// InstrStoreLocal writes a local slot.
	InstrStoreLocal
	// InstrExtractValue projects one component out of an aggregate value.
	InstrExtractValue
	// InstrNop represents a no-op instruction.
	InstrNop
)

// Instr represents one instruction. Result is the value the instruction
// produces, or NoValueID.
type Instr struct {
	Kind   InstrKind
	Result ValueID

	Call       CallInstr
	LandingPad LandingPadInstr
	CleanupPad CleanupPadInstr
	LoadLocal  LoadLocalInstr
	StoreLocal StoreLocalInstr
	Extract    ExtractValueInstr
}

// ArgKind distinguishes call argument forms.
type ArgKind uint8

const (
	// ArgValue passes an instruction result.
	ArgValue ArgKind = iota
	// ArgLocalAddr passes the address of a local slot.
	ArgLocalAddr
)

// Arg is one call argument.
type Arg struct {
	Kind  ArgKind
	Val   ValueID
	Local LocalID
}

// ValueArg builds an instruction-result argument.
func ValueArg(v ValueID) Arg {
	return Arg{Kind: ArgValue, Val: v}
}

// LocalAddrArg builds an address-of-local argument.
func LocalAddrArg(l LocalID) Arg {
	return Arg{Kind: ArgLocalAddr, Local: l}
}

// CallInstr calls a runtime or glue symbol. Funclet carries the operand
// bundle for calls emitted inside unwinding code.
type CallInstr struct {
	Callee  string
	Args    []Arg
	Funclet Funclet
}

// LandingPadInstr is the table-protocol entry instruction. Cleanup marks
// the "catch everything, run cleanups" clause.
type LandingPadInstr struct {
	Personality string
	Cleanup     bool
}

// CleanupPadInstr is the funclet-protocol entry instruction. It carries
// no filters: it matches every exception.
type CleanupPadInstr struct{}

// LoadLocalInstr reads a local slot.
type LoadLocalInstr struct {
	Local LocalID
}

// StoreLocalInstr writes a value into a local slot.
type StoreLocalInstr struct {
	Local LocalID
	Val   ValueID
}

// ExtractValueInstr projects component Index out of aggregate Agg.
type ExtractValueInstr struct {
	Agg   ValueID
	Index int
}
