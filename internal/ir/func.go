package ir

import "ember/internal/types"

// Func is one function under construction.
type Func struct {
	ID   FuncID
	Name string

	Result types.TypeID

	// Personality is the exception-personality symbol attached to the
	// function, set when the first landing pad is emitted.
	Personality string

	Locals []Local
	Blocks []Block
	Entry  BlockID
}

// Block returns the block with the given ID, or nil.
func (f *Func) Block(id BlockID) *Block {
	if f == nil || id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}
