package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

type expandOptions struct {
	preset     string
	axiom      string
	rules      []string
	iterations int
	angle      float64
	direction  float64
	output     string
	json       bool
}

// renderInput is the hand-off to a turtle renderer.
type renderInput struct {
	Name           string  `json:"name,omitempty"`
	Sequence       string  `json:"sequence"`
	Length         int     `json:"length"`
	TurnAngle      float64 `json:"turn_angle"`
	StartDirection float64 `json:"start_direction"`
}

func newExpandCmd(root *rootOptions) *cobra.Command {
	opts := &expandOptions{}

	expandCmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand an L-system.",
		Long: "`expand --preset NAME` expands a built-in system. " +
			"`expand --axiom A --rule F=FF --iterations N` expands a " +
			"user-entered system after validating it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExpand(cmd, root, opts)
		},
	}

	flags := expandCmd.Flags()
	flags.StringVarP(&opts.preset, "preset", "p", "",
		"Expand a built-in system.")
	flags.StringVarP(&opts.axiom, "axiom", "a", "",
		"The initial sequence.")
	flags.StringArrayVarP(&opts.rules, "rule", "r", nil,
		"A rule written as F=FF or F->FF. Can be repeated.")
	flags.IntVarP(&opts.iterations, "iterations", "n", 1,
		"The number of rewrite passes.")
	flags.Float64Var(&opts.angle, "angle", 90,
		"The turn angle in degrees, passed to the renderer.")
	flags.Float64Var(&opts.direction, "direction", 0,
		"The starting direction in degrees, passed to the renderer.")
	flags.StringVarP(&opts.output, "output", "o", "",
		"Write to this file instead of stdout.")
	flags.BoolVar(&opts.json, "json", false,
		"Write the renderer input as JSON.")
	expandCmd.MarkFlagsMutuallyExclusive("preset", "axiom")
	expandCmd.MarkFlagsMutuallyExclusive("preset", "rule")

	return expandCmd
}

func runExpand(
	cmd *cobra.Command,
	root *rootOptions,
	opts *expandOptions,
) error {
	sys, err := opts.system(cmd, root.validator())
	if err != nil {
		return err
	}

	for _, s := range lsystem.MissingRules(sys.Axiom, sys.Rules) {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"warning: %s has no rule and will not change\n", s)
	}

	session := root.newSession(cmd)

	seq, err := session.engine.ExpandSystem(sys)
	if err != nil {
		return errors.Join(fmt.Errorf("expanding: %w", err), session.close())
	}

	if err := session.close(); err != nil {
		return err
	}

	if opts.output == "" {
		return writeSequence(cmd.OutOrStdout(), sys, seq, opts.json)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}

	return errors.Join(writeSequence(f, sys, seq, opts.json), f.Close())
}

func (o *expandOptions) system(
	cmd *cobra.Command,
	validator lsystem.Validator,
) (lsystem.LSystem, error) {
	if o.preset != "" {
		sys, ok := lsystem.Preset(o.preset)
		if !ok {
			return sys, fmt.Errorf("unknown preset %q", o.preset)
		}

		if cmd.Flags().Changed("iterations") {
			if err := validator.ValidateIterations(o.iterations); err != nil {
				return sys, fmt.Errorf("invalid system:\n%w", err)
			}

			sys.Iterations = o.iterations
		}

		return sys, nil
	}

	if o.axiom == "" && len(o.rules) == 0 {
		return lsystem.LSystem{}, errors.New(
			"either --preset or --axiom and --rule is required")
	}

	rules := make([]lsystem.Rule, 0, len(o.rules))
	for _, s := range o.rules {
		r, err := lsystem.ParseRule(s)
		if err != nil {
			return lsystem.LSystem{}, err
		}

		rules = append(rules, r)
	}

	sys := lsystem.LSystem{
		Axiom:          o.axiom,
		Rules:          lsystem.NewRuleSet(rules...),
		Iterations:     o.iterations,
		TurnAngle:      o.angle,
		StartDirection: o.direction,
	}

	if err := validator.Validate(sys); err != nil {
		return sys, fmt.Errorf("invalid system:\n%w", err)
	}

	return sys, nil
}

func writeSequence(
	w io.Writer,
	sys lsystem.LSystem,
	seq []byte,
	asJSON bool,
) error {
	if !asJSON {
		_, err := fmt.Fprintf(w, "%s\n", seq)
		return err
	}

	enc := json.NewEncoder(w)

	return enc.Encode(renderInput{
		Name:           sys.Name,
		Sequence:       string(seq),
		Length:         len(seq),
		TurnAngle:      sys.TurnAngle,
		StartDirection: sys.StartDirection,
	})
}
