package ui

// Status glyphs for one-line CLI messages.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolWarn     = "!"
	SymbolComplete = "●"
)
