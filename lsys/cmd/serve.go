package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hunterpope03/c-l-system-studio/monitoring"
	"github.com/hunterpope03/c-l-system-studio/recording"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	port int
	open bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web page that expands and draws systems.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, opts)
		},
	}

	serveCmd.Flags().IntVar(&opts.port, "port", root.cfg.MonitorPort,
		"The port to listen on. Ports below 1000 pick a random port.")
	serveCmd.Flags().BoolVar(&opts.open, "open", false,
		"Open the page in the default browser.")

	return serveCmd
}

func runServe(
	cmd *cobra.Command,
	root *rootOptions,
	opts *serveOptions,
) error {
	session := root.newSession(cmd)
	defer session.close()

	monitor := monitoring.NewMonitor().
		WithPortNumber(opts.port).
		WithValidator(root.validator())
	monitor.RegisterEngine(session.engine)

	if session.hook != nil {
		session.hook.SetAutoFlush(true)

		reader, err := recording.NewReader(root.record + ".sqlite3")
		if err != nil {
			return err
		}
		defer reader.Close()

		monitor.RegisterRunReader(reader)
	}

	url, err := monitor.StartServer()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", url)

	if opts.open {
		if err := monitoring.OpenInBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(),
				"cannot open browser: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(
		cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout)
	defer cancel()

	return monitor.Stop(shutdownCtx)
}
