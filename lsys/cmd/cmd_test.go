package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
	"github.com/hunterpope03/c-l-system-studio/recording"
	"github.com/hunterpope03/c-l-system-studio/rewriting"
)

func run(cfg Config, args ...string) (string, string, error) {
	return runContext(context.Background(), cfg, args...)
}

func runContext(
	ctx context.Context,
	cfg Config,
	args ...string,
) (string, string, error) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)

	root := newRootCmd(cfg)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)

	return stdout.String(), stderr.String(), err
}

var _ = Describe("expand", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
	})

	It("should expand a user-entered system", func() {
		out, _, err := run(cfg,
			"expand", "--axiom", "F", "--rule", "F=F+F", "--iterations", "3")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("F+F+F+F+F+F+F+F\n"))
	})

	It("should accept several rules", func() {
		out, _, err := run(cfg,
			"expand", "-a", "X", "-r", "X->F[+X][-X]FX", "-r", "F=FF", "-n", "1")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("F[+X][-X]FX\n"))
	})

	It("should write the renderer input as JSON", func() {
		out, _, err := run(cfg,
			"expand", "--preset", "koch-island", "--iterations", "1", "--json")

		Expect(err).NotTo(HaveOccurred())

		in := renderInput{}
		Expect(json.Unmarshal([]byte(out), &in)).To(Succeed())
		Expect(in.Name).To(Equal("koch-island"))
		Expect(in.Sequence).To(Equal(
			"FF+F+F+F+FF+FF+F+F+F+FF+FF+F+F+F+FF+FF+F+F+F+FF"))
		Expect(in.Length).To(Equal(len(in.Sequence)))
		Expect(in.TurnAngle).To(Equal(90.0))
	})

	It("should write into a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "out.txt")

		out, _, err := run(cfg,
			"expand", "-a", "F", "-r", "F=FF", "-n", "2", "-o", path)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())

		content, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("FFFF\n"))
	})

	It("should warn about letters without rules", func() {
		_, errOut, err := run(cfg, "expand", "-a", "FX", "-r", "F=FF")

		Expect(err).NotTo(HaveOccurred())
		Expect(errOut).To(ContainSubstring("warning: X has no rule"))
	})

	It("should reject invalid systems", func() {
		_, _, err := run(cfg,
			"expand", "-a", "F F", "-r", "F=FF", "-n", "9")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("axiom: must not contain spaces"))
		Expect(err.Error()).To(ContainSubstring("iterations"))
	})

	It("should use the configured iteration limit", func() {
		cfg.MaxIterations = 2

		_, _, err := run(cfg, "expand", "-a", "F", "-r", "F=FF", "-n", "3")

		Expect(err).To(MatchError(ContainSubstring(
			"must be less than or equal to 2")))
	})

	It("should bound the iterations of a preset", func() {
		out, _, err := run(cfg,
			"expand", "-p", "koch-island", "-n", "12", "--json")

		Expect(out).To(BeEmpty())

		var verr *lsystem.ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Field).To(Equal("iterations"))
		Expect(err).To(MatchError(ContainSubstring(
			"must be less than or equal to 8")))
	})

	It("should reject negative iterations for a preset", func() {
		_, _, err := run(cfg, "expand", "-p", "koch-island", "-n", "-3")

		Expect(err).To(MatchError(ContainSubstring(
			"iterations: must be a positive integer")))
	})

	It("should keep the built-in iterations of a preset", func() {
		out, _, err := run(cfg, "expand", "-p", "dragon-curve", "--json")

		Expect(err).NotTo(HaveOccurred())

		in := renderInput{}
		Expect(json.Unmarshal([]byte(out), &in)).To(Succeed())
		Expect(in.Length).To(BeNumerically(">", 0))
	})

	It("should report a file it cannot write", func() {
		dir := GinkgoT().TempDir()

		_, _, err := run(cfg, "expand", "-a", "F", "-r", "F=FF", "-o", dir)

		Expect(err).To(HaveOccurred())
	})

	It("should reject malformed rules", func() {
		_, _, err := run(cfg, "expand", "-a", "F", "-r", "FF")

		Expect(err).To(MatchError(ContainSubstring("missing")))
	})

	It("should require a system", func() {
		_, _, err := run(cfg, "expand")

		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown presets", func() {
		_, _, err := run(cfg, "expand", "--preset", "fern")

		Expect(err).To(MatchError(`unknown preset "fern"`))
	})

	It("should fail when the budget is exceeded", func() {
		_, _, err := run(cfg,
			"expand", "-a", "F", "-r", "F=FF", "-n", "3", "--budget", "10")

		Expect(err).To(MatchError(rewriting.ErrAllocationFailure))
	})

	It("should log the expansion when verbose", func() {
		_, errOut, err := run(cfg,
			"expand", "-a", "F", "-r", "F=FF", "--verbose")

		Expect(err).NotTo(HaveOccurred())
		Expect(errOut).To(ContainSubstring("Engine: Iterating 1/1"))
		Expect(errOut).To(ContainSubstring("Engine: Done"))
	})

	It("should record expansions", func() {
		path := filepath.Join(GinkgoT().TempDir(), "runs")

		_, _, err := run(cfg,
			"expand", "-a", "F", "-r", "F=FF", "-n", "2", "--record", path)
		Expect(err).NotTo(HaveOccurred())

		reader, err := recording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()
		recording.MapTables(reader)

		runs, err := recording.RecentExpansions(context.Background(), reader, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(1))
		Expect(runs[0].FinalLength).To(Equal(4))
	})
})

var _ = Describe("presets", func() {
	It("should list the presets", func() {
		out, _, err := run(DefaultConfig(), "presets")

		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Split(strings.TrimSpace(out), "\n")).To(HaveLen(10))
		Expect(out).To(MatchRegexp(`dragon-curve\s+FX\s+18 iterations`))
	})

	It("should describe a preset", func() {
		out, _, err := run(DefaultConfig(), "presets", "dragon-curve")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Axiom: FX"))
		Expect(out).To(ContainSubstring("X -> X+YF+"))
		Expect(out).To(ContainSubstring("Turn Angle: 90.00"))
	})

	It("should reject unknown presets", func() {
		_, _, err := run(DefaultConfig(), "presets", "fern")

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("serve", func() {
	It("should stop when the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out, _, err := runContext(ctx, DefaultConfig(), "serve")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Serving on http://localhost:"))
	})
})

var _ = Describe("LoadConfig", func() {
	unset := func() {
		for _, name := range []string{
			EnvRecordPath, EnvMonitorPort, EnvMaxIterations, EnvMemoryBudget,
		} {
			os.Unsetenv(name)
		}
	}

	BeforeEach(unset)
	AfterEach(unset)

	It("should use defaults without a file", func() {
		cfg, err := LoadConfig(filepath.Join(GinkgoT().TempDir(), ".env"))

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(DefaultConfig()))
	})

	It("should read the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(path, []byte(
			"LSYS_RECORD_PATH=runs\n"+
				"LSYS_MONITOR_PORT=8080\n"+
				"LSYS_MAX_ITERATIONS=5\n"+
				"LSYS_MEMORY_BUDGET=1000000\n"), 0o644)).To(Succeed())

		cfg, err := LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(Config{
			RecordPath:    "runs",
			MonitorPort:   8080,
			MaxIterations: 5,
			MemoryBudget:  1_000_000,
		}))
	})

	It("should prefer variables already set", func() {
		path := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(path,
			[]byte("LSYS_MAX_ITERATIONS=5\n"), 0o644)).To(Succeed())
		os.Setenv(EnvMaxIterations, "3")

		cfg, err := LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxIterations).To(Equal(3))
	})

	It("should reject malformed numbers", func() {
		os.Setenv(EnvMemoryBudget, "lots")

		_, err := LoadConfig(filepath.Join(GinkgoT().TempDir(), ".env"))

		Expect(err).To(MatchError(ContainSubstring(EnvMemoryBudget)))
	})

	It("should feed the flag defaults", func() {
		cfg := DefaultConfig()
		cfg.MemoryBudget = 10

		_, _, err := run(cfg, "expand", "-a", "F", "-r", "F=FF", "-n", "3")

		Expect(err).To(MatchError(rewriting.ErrAllocationFailure))
	})
})
