package lsystem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// A Rule replaces one symbol by a fixed sequence of symbols.
type Rule struct {
	Symbol      Symbol
	Replacement string
}

// String formats the rule the way Describe prints it.
func (r Rule) String() string {
	return fmt.Sprintf("%c -> %s", r.Symbol, r.Replacement)
}

// ParseRule parses a rule written as "F=FF" or "F->FF". Surrounding spaces are
// ignored.
func ParseRule(s string) (Rule, error) {
	var lhs, rhs string

	switch {
	case strings.Contains(s, "->"):
		lhs, rhs, _ = strings.Cut(s, "->")
	case strings.Contains(s, "="):
		lhs, rhs, _ = strings.Cut(s, "=")
	default:
		return Rule{}, fmt.Errorf("rule %q: missing \"=\" or \"->\"", s)
	}

	lhs = strings.TrimSpace(lhs)
	rhs = strings.TrimSpace(rhs)

	if len(lhs) != 1 {
		return Rule{}, fmt.Errorf(
			"rule %q: left-hand side must be exactly one symbol", s)
	}

	return Rule{Symbol: Symbol(lhs[0]), Replacement: rhs}, nil
}

// A RuleSet maps symbols to their replacements. The zero value is an empty
// rule set.
//
// When two rules name the same symbol, the one defined first wins and the
// later one is dropped.
type RuleSet struct {
	rules        []Rule
	replacements map[Symbol][]byte
}

// NewRuleSet creates a RuleSet from rules in definition order.
func NewRuleSet(rules ...Rule) RuleSet {
	rs := RuleSet{
		rules:        make([]Rule, 0, len(rules)),
		replacements: make(map[Symbol][]byte, len(rules)),
	}

	for _, r := range rules {
		if _, defined := rs.replacements[r.Symbol]; defined {
			continue
		}

		rs.rules = append(rs.rules, r)
		rs.replacements[r.Symbol] = []byte(r.Replacement)
	}

	return rs
}

// UnmarshalJSON decodes a JSON object such as {"F": "FF"} into a RuleSet.
// Keys must be exactly one symbol long. Rules keep the order of the document,
// so a repeated key resolves the same way as in NewRuleSet.
func (rs *RuleSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*rs = NewRuleSet()
		return nil
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("rules must be a JSON object")
	}

	var rules []Rule
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		key := tok.(string)
		if len(key) != 1 {
			return fmt.Errorf("rule key %q must be exactly one symbol", key)
		}

		var replacement string
		if err := dec.Decode(&replacement); err != nil {
			return fmt.Errorf("rule %q: %w", key, err)
		}

		rules = append(rules, Rule{Symbol: Symbol(key[0]), Replacement: replacement})
	}

	*rs = NewRuleSet(rules...)

	return nil
}

// Len returns the number of distinct symbols that have a rule.
func (rs RuleSet) Len() int {
	return len(rs.rules)
}

// Lookup returns the replacement of a symbol, and whether the symbol has a
// rule at all. The returned slice must not be modified.
func (rs RuleSet) Lookup(s Symbol) ([]byte, bool) {
	r, ok := rs.replacements[s]
	return r, ok
}

// Has returns true if the symbol has a rule.
func (rs RuleSet) Has(s Symbol) bool {
	_, ok := rs.replacements[s]
	return ok
}

// Rules returns the rules in definition order.
func (rs RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)

	return out
}

// Map returns the rule set as a symbol-to-replacement map.
func (rs RuleSet) Map() map[string]string {
	m := make(map[string]string, len(rs.rules))
	for _, r := range rs.rules {
		m[r.Symbol.String()] = r.Replacement
	}

	return m
}
