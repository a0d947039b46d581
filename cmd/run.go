package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eduwrench/simclient/sim"
	"github.com/eduwrench/simclient/sim/compose"
	"github.com/eduwrench/simclient/sim/history"
	"github.com/eduwrench/simclient/sim/render"
	"github.com/eduwrench/simclient/sim/scenario"
	"github.com/eduwrench/simclient/sim/session"
	"github.com/eduwrench/simclient/sim/submit"
)

var (
	serverURL      string        // Base URL of the simulation service
	requestTimeout time.Duration // Per-request deadline
	validationMode string        // "all" or "first"
	paramSets      []string      // name=value overrides
	exportDir      string        // Directory for header/CSV export
	pngPath        string        // Utilization chart output
	recordHistory  bool          // Record the outcome in the history database
)

// runOptions carries everything one submission needs.
type runOptions struct {
	Scenario       scenario.Scenario
	Server         string
	Timeout        time.Duration
	ValidationMode string
	Sets           []string
	ExportDir      string
	PNGPath        string
	History        *history.Store // nil disables recording
}

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Submit a scenario to the simulation service and show the results",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !sim.IsValidValidationMode(validationMode) {
			logrus.Fatalf("Invalid --validation %q: must be all or first", validationMode)
		}
		cat, err := loadCatalog()
		if err != nil {
			logrus.Fatalf("Failed to load scenarios: %v", err)
		}
		sc, ok := cat.Lookup(args[0])
		if !ok {
			logrus.Fatalf("Unknown scenario %q (known: %s)", args[0], strings.Join(cat.Names(), ", "))
		}
		svc, err := openSessions()
		if err != nil {
			logrus.Fatalf("Failed to open session: %v", err)
		}

		opts := runOptions{
			Scenario:       sc,
			Server:         serverURL,
			Timeout:        requestTimeout,
			ValidationMode: validationMode,
			Sets:           paramSets,
			ExportDir:      exportDir,
			PNGPath:        pngPath,
		}
		if recordHistory {
			path, err := resolveHistoryPath()
			if err != nil {
				logrus.Fatalf("Failed to locate history database: %v", err)
			}
			store, err := history.Open(path)
			if err != nil {
				logrus.Warnf("History disabled: %v", err)
			} else {
				defer func() { _ = store.Close() }()
				opts.History = store
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if _, err := runScenario(ctx, opts, svc, cmd.OutOrStdout()); err != nil {
			logrus.Debugf("run %s: %v", sc.Name, err)
			stop()
			os.Exit(1)
		}
	},
}

// runScenario performs one submission, rendering the outcome to out as the
// controller reports it. The returned error is already explained on out.
func runScenario(ctx context.Context, opts runOptions, sessions submit.SessionSource, out io.Writer) (submit.State, error) {
	cfg := submit.DefaultConfig()
	cfg.Timeout = opts.Timeout
	cfg.ValidationMode = sim.ValidationMode(opts.ValidationMode)

	ctrl := submit.NewController(cfg, opts.Scenario, sessions, submit.NewClient(opts.Server, 0))
	defer ctrl.Close()

	if err := applySets(ctrl.Form(), opts.Sets); err != nil {
		fmt.Fprintln(out, err)
		return submit.State{}, err
	}

	started := time.Now()
	var renderErr error
	ctrl.Subscribe(func(s submit.State) {
		switch s.Phase {
		case submit.Submitting:
			logrus.Infof("Submitting %s (request %s)", opts.Scenario.Name, s.RequestID)
		case submit.Succeeded:
			renderErr = render.RenderAll(out, s.Result, render.TextAdapters()...)
			sum := compose.Summarize(s.Result)
			fmt.Fprintf(out, "\n%d tasks on %d hosts, makespan %.2f\n", sum.TotalTasks, sum.Hosts, sum.Makespan)
		case submit.Failed:
			fmt.Fprintln(out, s.Notice)
		}
		if opts.History != nil && (s.Phase == submit.Succeeded || s.Phase == submit.Failed) {
			user := sessions.Current().Identity.UserName
			if _, err := opts.History.Record(history.EntryFromState(opts.Scenario.Name, user, s, started, time.Now())); err != nil {
				logrus.Warnf("Failed to record history: %v", err)
			}
		}
	})

	p, err := ctrl.Submit(ctx)
	if err != nil {
		var verr *sim.ValidationError
		switch {
		case errors.Is(err, sim.ErrUnauthorized):
			fmt.Fprintln(out, session.SignInPrompt)
		case errors.As(err, &verr):
			visible := sim.VisibleViolations(ctrl.Form(), verr.Result)
			for _, field := range visible.Fields() {
				fmt.Fprintf(out, "%s: %s\n", field, visible[field].Message)
			}
		}
		return ctrl.State(), err
	}

	// The controller resolves p with ErrSuperseded as soon as ctx ends.
	state, err := p.Wait(context.Background())
	if errors.Is(err, submit.ErrSuperseded) {
		fmt.Fprintln(out, "Submission cancelled")
		return ctrl.State(), err
	}
	if err != nil {
		return state, err
	}
	if renderErr != nil {
		return state, renderErr
	}
	return state, writeArtifacts(opts, ctrl.Form(), state)
}

// applySets applies name=value overrides; name may be a parameter name or its wire field.
func applySets(form *sim.FormModel, sets []string) error {
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q: expected name=value", kv)
		}
		target := name
		for _, d := range form.Descriptors() {
			if d.WireName() == name {
				target = d.Name
				break
			}
		}
		if err := form.Set(target, value); err != nil {
			return fmt.Errorf("--set %s: %w", name, err)
		}
	}
	return nil
}

// writeArtifacts writes the optional export and chart for a successful run.
func writeArtifacts(opts runOptions, form *sim.FormModel, state submit.State) error {
	if opts.ExportDir != "" {
		if err := os.MkdirAll(opts.ExportDir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
		base := filepath.Join(opts.ExportDir, opts.Scenario.Name+"-"+state.RequestID)
		header := &compose.ExportHeader{
			Version:    1,
			Scenario:   opts.Scenario.Name,
			RequestID:  state.RequestID,
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
			Parameters: compose.ParamStrings(form.Params()),
		}
		if err := compose.ExportTable(state.Result, header, base+"-header.yaml", base+"-tasks.csv"); err != nil {
			return err
		}
		logrus.Infof("Exported %d rows to %s-tasks.csv", header.Tasks, base)
	}
	if opts.PNGPath != "" {
		f, err := os.Create(opts.PNGPath)
		if err != nil {
			return fmt.Errorf("creating chart file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := (render.UtilizationPNG{Title: opts.Scenario.Title}).Render(f, state.Result); err != nil {
			return fmt.Errorf("rendering chart: %w", err)
		}
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&serverURL, "server", "http://localhost:3000", "Base URL of the simulation service")
	runCmd.Flags().DurationVar(&requestTimeout, "timeout", 60*time.Second, "Per-request timeout (0 disables)")
	runCmd.Flags().StringVar(&validationMode, "validation", "all", "Validation mode: all (report every invalid field) or first")
	runCmd.Flags().StringArrayVar(&paramSets, "set", nil, "Parameter override name=value (can be repeated)")
	runCmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory to write the task table (YAML header + CSV)")
	runCmd.Flags().StringVar(&pngPath, "png", "", "Write a utilization bar chart PNG to this path")
	runCmd.Flags().BoolVar(&recordHistory, "record", true, "Record the outcome in the history database")

	rootCmd.AddCommand(runCmd)
}
