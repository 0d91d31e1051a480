package ir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermReturn
	TermResume
	TermCleanupRet
	TermUnreachable
)

type Terminator struct {
	Kind TermKind

	Goto        GotoTerm
	Return      ReturnTerm
	Resume      ResumeTerm
	CleanupRet  CleanupRetTerm
	Unreachable struct{}
}

type GotoTerm struct {
	Target BlockID
}

type ReturnTerm struct{}

// ResumeTerm hands the exception record back to the unwinding runtime.
type ResumeTerm struct {
	Exc ValueID
}

// CleanupRetTerm ends a funclet. Target NoBlockID means unwinding
// continues into the caller.
type CleanupRetTerm struct {
	Pad    ValueID
	Target BlockID
}
