// Package lsystem defines the data model around the rewriting engine: symbols,
// production rules, complete L-system definitions, the built-in preset library
// and the input policy that callers apply before expanding a system.
package lsystem

// A Symbol is a single unit of an L-system sequence.
type Symbol byte

// The structural constants. They never carry rules in a well-formed system.
const (
	TurnRight Symbol = '+'
	TurnLeft  Symbol = '-'
	PushState Symbol = '['
	PopState  Symbol = ']'
)

// IsVariable returns true if the symbol is a letter, i.e. something a rule may
// replace.
func (s Symbol) IsVariable() bool {
	return s.IsDrawing() || s.IsMove()
}

// IsConstant returns true for the four structural symbols.
func (s Symbol) IsConstant() bool {
	switch s {
	case TurnRight, TurnLeft, PushState, PopState:
		return true
	default:
		return false
	}
}

// IsDrawing returns true if a turtle moves forward while drawing on this
// symbol.
func (s Symbol) IsDrawing() bool {
	return s >= 'A' && s <= 'Z'
}

// IsMove returns true if a turtle moves forward without drawing on this symbol.
func (s Symbol) IsMove() bool {
	return s >= 'a' && s <= 'z'
}

// Valid returns true if the symbol belongs to the L-system alphabet.
func (s Symbol) Valid() bool {
	return s.IsVariable() || s.IsConstant()
}

// String returns the symbol as a one-character string.
func (s Symbol) String() string {
	return string(rune(s))
}
