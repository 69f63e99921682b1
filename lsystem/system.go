package lsystem

import (
	"fmt"
	"io"
	"unicode"
)

// An LSystem is a complete definition that can be expanded and drawn.
//
// TurnAngle and StartDirection are in degrees. The rewriting engine never
// reads them; they travel with the expanded sequence to the turtle renderer.
type LSystem struct {
	Name           string
	Axiom          string
	Rules          RuleSet
	Iterations     int
	TurnAngle      float64
	StartDirection float64
}

// Describe prints the details of a system.
func Describe(w io.Writer, sys LSystem) error {
	var err error

	printf := func(format string, args ...any) {
		if err != nil {
			return
		}

		_, err = fmt.Fprintf(w, format, args...)
	}

	printf("\nThis system has these details:\n\n\t")
	printf("Axiom: %s\n\t", sys.Axiom)
	printf("Rule(s): {\n\t\t")

	for _, r := range sys.Rules.Rules() {
		printf("%s\n\t\t", r)
	}

	printf("}\n\t")
	printf("Iterations: %d\n\t", sys.Iterations)
	printf("Turn Angle: %.2f\n\t", sys.TurnAngle)
	printf("Starting Direction: %.2f\n\n", sys.StartDirection)

	return err
}

// RulesFor returns the letters of an axiom that need rules, in the order they
// first appear. Letters are de-duplicated case-insensitively, so "Ff" yields
// only 'F'.
func RulesFor(axiom string) []Symbol {
	var seen [256]bool

	out := []Symbol{}

	for i := 0; i < len(axiom); i++ {
		s := Symbol(axiom[i])
		if !s.IsVariable() {
			continue
		}

		key := unicode.ToUpper(rune(s))
		if seen[key] {
			continue
		}

		seen[key] = true

		out = append(out, s)
	}

	return out
}

// MissingRules returns the letters that are reachable from the axiom through
// the rules but have no rule of their own, in the order they are discovered.
func MissingRules(axiom string, rules RuleSet) []Symbol {
	var (
		visited [256]bool
		missing []Symbol
	)

	queue := []byte(axiom)

	for len(queue) > 0 {
		s := Symbol(queue[0])
		queue = queue[1:]

		if !s.IsVariable() || visited[s] {
			continue
		}

		visited[s] = true

		replacement, ok := rules.Lookup(s)
		if !ok {
			missing = append(missing, s)
			continue
		}

		queue = append(queue, replacement...)
	}

	return missing
}
