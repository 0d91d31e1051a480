package ir

// Block is one basic block. Name is a debugging aid only; block identity
// is the ID.
type Block struct {
	ID      BlockID
	Name    string
	Funclet Funclet
	Instrs  []Instr
	Term    Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
