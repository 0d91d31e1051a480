package unwind

import (
	"ember/internal/ir"
	"ember/internal/types"
)

// GlueSymbol returns the runtime drop-glue symbol for a type. The
// shallow variant tears down the active variant's direct fields without
// invoking the type's own destructor hook.
func GlueSymbol(in *types.Interner, ty types.TypeID, skipDtor bool) string {
	prefix := "ember_drop."
	if skipDtor {
		prefix = "ember_drop_contents."
	}
	return prefix + in.Name(ty)
}

// emitDrop emits one destruction at position bb and returns the
// position emission ended on. The call carries the funclet bundle of
// the block it lands in, so drops inside unwinding blocks stay anchored
// to their pad.
func (c *Context) emitDrop(bb ir.BlockID, d DropValue) ir.BlockID {
	c.StartBlock(bb)
	c.emitCall(GlueSymbol(c.Types, d.Ty, d.SkipDtor), []ir.Arg{ir.LocalAddrArg(d.Val)})
	return bb
}
