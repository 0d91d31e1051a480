package ir

type Module struct {
	Funcs      map[FuncID]*Func
	FuncByName map[string]FuncID
}

func NewModule() *Module {
	return &Module{
		Funcs:      make(map[FuncID]*Func),
		FuncByName: make(map[string]FuncID),
	}
}

// Add registers a function in the module.
func (m *Module) Add(f *Func) {
	if m == nil || f == nil {
		return
	}
	m.Funcs[f.ID] = f
	if f.Name != "" {
		m.FuncByName[f.Name] = f.ID
	}
}
