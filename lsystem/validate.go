package lsystem

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Default limits applied to user-entered systems.
const (
	DefaultMaxLength     = 15
	DefaultMaxIterations = 8
)

// A ValidationError reports one field of a system that breaks the input
// policy.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// A Validator checks user-entered systems before they reach the engine. The
// engine itself accepts anything; the limits here keep expansions small enough
// to draw.
type Validator struct {
	// MaxLength bounds the axiom and every replacement.
	MaxLength int

	// MaxIterations bounds the iteration count. Iterations must be positive.
	MaxIterations int

	// RequireClosure rejects systems in which a letter reachable from the
	// axiom has no rule.
	RequireClosure bool
}

// DefaultValidator returns the validator used for interactive input.
func DefaultValidator() Validator {
	return Validator{
		MaxLength:     DefaultMaxLength,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate returns nil if the system satisfies the policy, or all the
// violations joined together.
func (v Validator) Validate(sys LSystem) error {
	var errs []error

	errs = append(errs, v.validateAxiom(sys.Axiom)...)
	errs = append(errs, v.validateRules(sys.Rules)...)

	if v.RequireClosure {
		for _, s := range MissingRules(sys.Axiom, sys.Rules) {
			errs = append(errs, &ValidationError{
				Field:  "rules",
				Reason: fmt.Sprintf("no rule for %q", s.String()),
			})
		}
	}

	if err := v.ValidateIterations(sys.Iterations); err != nil {
		errs = append(errs, err)
	}

	if err := validateDegrees("turn angle", sys.TurnAngle); err != nil {
		errs = append(errs, err)
	}

	if err := validateDegrees("start direction", sys.StartDirection); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateIterations checks an iteration count on its own. It returns nil or a
// *ValidationError.
func (v Validator) ValidateIterations(n int) error {
	if n <= 0 {
		return &ValidationError{
			Field:  "iterations",
			Reason: "must be a positive integer",
		}
	}

	if n > v.MaxIterations {
		return &ValidationError{
			Field: "iterations",
			Reason: fmt.Sprintf(
				"must be less than or equal to %d", v.MaxIterations),
		}
	}

	return nil
}

func (v Validator) validateAxiom(axiom string) []error {
	var errs []error

	switch {
	case len(axiom) == 0:
		errs = append(errs, &ValidationError{
			Field:  "axiom",
			Reason: "must be more than 0 characters long",
		})
	case len(axiom) > v.MaxLength:
		errs = append(errs, &ValidationError{
			Field: "axiom",
			Reason: fmt.Sprintf(
				"must be less than or equal to %d characters long",
				v.MaxLength),
		})
	}

	if err := validateAlphabet("axiom", axiom); err != nil {
		errs = append(errs, err)
	}

	return errs
}

func (v Validator) validateRules(rules RuleSet) []error {
	var errs []error

	for _, r := range rules.Rules() {
		field := fmt.Sprintf("rule %q", r.Symbol.String())

		if !r.Symbol.IsVariable() {
			errs = append(errs, &ValidationError{
				Field:  field,
				Reason: "only letters can have rules",
			})
		}

		// Generations never shrink.
		if len(r.Replacement) == 0 {
			errs = append(errs, &ValidationError{
				Field:  field,
				Reason: "replacement cannot be empty",
			})
		} else if len(r.Replacement) > v.MaxLength {
			errs = append(errs, &ValidationError{
				Field: field,
				Reason: fmt.Sprintf(
					"cannot be longer than %d characters", v.MaxLength),
			})
		}

		if err := validateAlphabet(field, r.Replacement); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func validateAlphabet(field, s string) error {
	if strings.ContainsRune(s, ' ') {
		return &ValidationError{Field: field, Reason: "must not contain spaces"}
	}

	for i := 0; i < len(s); i++ {
		if !Symbol(s[i]).Valid() {
			return &ValidationError{
				Field: field,
				Reason: "can only contain letters and the symbols " +
					"+, -, [, and ]",
			}
		}
	}

	return nil
}

func validateDegrees(field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &ValidationError{Field: field, Reason: "must be a finite number"}
	case v < 0:
		return &ValidationError{
			Field:  field,
			Reason: "must be greater than or equal to 0",
		}
	case v > 360:
		return &ValidationError{
			Field:  field,
			Reason: "must be less than or equal to 360",
		}
	}

	return nil
}
