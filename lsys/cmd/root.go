// Package cmd provides the command-line interface of lsys.
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
	"github.com/hunterpope03/c-l-system-studio/recording"
	"github.com/hunterpope03/c-l-system-studio/rewriting"
)

// Execute loads the configuration and runs the command named by the process
// arguments.
func Execute() error {
	cfg, err := LoadConfig(".env")
	if err != nil {
		return err
	}

	return newRootCmd(cfg).Execute()
}

type rootOptions struct {
	cfg     Config
	verbose bool
	record  string
	budget  int
}

func newRootCmd(cfg Config) *cobra.Command {
	opts := &rootOptions{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "lsys",
		Short: "lsys expands and draws Lindenmayer systems.",
		Long: `lsys expands Lindenmayer systems into turtle-graphics ` +
			`instructions. It can expand built-in or user-entered systems ` +
			`and serve a web page that draws them.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Log every step of the expansion to stderr.")
	flags.StringVar(&opts.record, "record", cfg.RecordPath,
		"Record expansion statistics into this SQLite database "+
			"(without the .sqlite3 extension).")
	flags.IntVar(&opts.budget, "budget", cfg.MemoryBudget,
		"Fail expansions that need more than this many bytes. "+
			"0 means no limit.")

	rootCmd.AddCommand(
		newExpandCmd(opts),
		newPresetsCmd(),
		newServeCmd(opts),
	)

	return rootCmd
}

func (o *rootOptions) validator() lsystem.Validator {
	v := lsystem.DefaultValidator()
	v.MaxIterations = o.cfg.MaxIterations

	return v
}

// session is an engine configured by the persistent flags, along with the
// resources it holds.
type session struct {
	engine   *rewriting.Engine
	recorder recording.DataRecorder
	hook     *recording.ExpansionRecorder
}

func (o *rootOptions) newSession(cmd *cobra.Command) *session {
	builder := rewriting.MakeBuilder().WithName("Engine")
	if o.budget > 0 {
		builder = builder.WithAllocator(rewriting.NewBudgetAllocator(o.budget))
	}

	s := &session{engine: builder.Build()}

	if o.verbose {
		s.engine.AcceptHook(rewriting.NewLogHook(
			log.New(cmd.ErrOrStderr(), "", log.LstdFlags|log.Lmicroseconds)))
	}

	if o.record != "" {
		s.recorder = recording.New(o.record)
		s.hook = recording.NewExpansionRecorder(s.recorder)
		s.engine.AcceptHook(s.hook)
	}

	return s
}

func (s *session) close() error {
	if s.recorder == nil {
		return nil
	}

	if err := s.recorder.Close(); err != nil {
		return fmt.Errorf("closing recording: %w", err)
	}

	return nil
}
