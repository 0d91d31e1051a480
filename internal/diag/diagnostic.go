package diag

// Code identifies a diagnostic category.
type Code uint16

const (
	CodeNone Code = iota
	// CodeMissingLangItem: a runtime item the output requires is not
	// defined anywhere in the compilation.
	CodeMissingLangItem
	// CodeUnknownLangItem: a declaration claims a language-item name
	// the compiler does not know.
	CodeUnknownLangItem
)

func (c Code) String() string {
	switch c {
	case CodeMissingLangItem:
		return "E0601"
	case CodeUnknownLangItem:
		return "E0602"
	default:
		return "E0000"
	}
}

// Diagnostic is one user-facing report. Subject optionally names the
// item or symbol the report is about.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  string
}
