package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/comalice/psl/internal/config"
	"github.com/comalice/psl/internal/core"
	"github.com/comalice/psl/internal/extensibility"
	"github.com/comalice/psl/internal/production"
)

type runOptions struct {
	patch       string
	nodes       []string
	metros      []string
	watch       bool
	lua         bool
	metricsAddr string
	stateDir    string
	stateFormat string
}

// longRunning reports whether run should keep serving after the script.
func (o *runOptions) longRunning() bool {
	return o.watch || len(o.metros) > 0 || o.metricsAddr != ""
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [SCRIPT]",
		Short: "Deliver a message script to a patch and print every output",
		Long: `Deliver a message script to a patch and print every output as
"node value". Nodes come from --patch and --node. The script is read from
SCRIPT, or from standard input when SCRIPT is "-" or omitted (unless a
long-running flag is set). With --watch, --metro or --metrics-addr the
runtime keeps running after the script until interrupted.`,
		Example: `  echo 'sum 7
  sum:1 3
  sum bang' | psl run --node sum=add

  psl run --patch synth.yaml --metro clock=250ms --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.patch, "patch", "", "patch file (.yaml, .yml or .toml)")
	f.StringArrayVar(&opts.nodes, "node", nil, "declare a node as ID=SELECTOR (repeatable)")
	f.StringArrayVar(&opts.metros, "metro", nil, "bang node ID every interval, as ID=DURATION (repeatable)")
	f.BoolVar(&opts.watch, "watch", false, "reload --patch when it changes")
	f.BoolVar(&opts.lua, "lua", false, "evaluate expr messages with the Lua engine")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringVar(&opts.stateDir, "state-dir", "", "restore node state from and save it to this directory")
	f.StringVar(&opts.stateFormat, "state-format", "json", "state file format: json or yaml")
	return cmd
}

func runPatch(cmd *cobra.Command, args []string, opts *runOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := slog.Default()

	p, err := buildPatch(opts)
	if err != nil {
		return err
	}

	pubs := production.FanOut{production.NewWriterPublisher(cmd.OutOrStdout())}
	coreOpts := []core.Option{core.WithLogger(logger)}
	if opts.lua {
		coreOpts = append(coreOpts, core.WithEvaluator(extensibility.LuaEvaluator{}))
	}
	if opts.metricsAddr != "" {
		m := production.NewMetrics(prometheus.DefaultRegisterer)
		pubs = append(pubs, m)
		coreOpts = append(coreOpts, core.WithObserver(m))
		srv := serveMetrics(opts.metricsAddr, logger)
		defer srv.Shutdown(context.Background())
	}
	if opts.stateDir != "" {
		persister, err := newPersister(opts.stateFormat, opts.stateDir)
		if err != nil {
			return err
		}
		coreOpts = append(coreOpts, core.WithPersister(persister))
	}
	coreOpts = append(coreOpts, core.WithPublisher(pubs))

	rt, err := p.Build(coreOpts...)
	if err != nil {
		return err
	}
	if opts.stateDir != "" {
		if err := rt.Load(ctx); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("restore state: %w", err)
		}
	}

	in, closeIn, err := scriptInput(cmd, args, opts)
	if err != nil {
		return err
	}
	if in != nil {
		err = deliverScript(rt, in, logger)
		closeIn()
		if err != nil {
			return err
		}
	}

	if opts.longRunning() {
		if err := serve(ctx, rt, opts, logger); err != nil {
			return err
		}
	}

	if opts.stateDir != "" {
		if err := rt.Save(context.Background()); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	return rt.Stop()
}

// buildPatch merges --patch and --node declarations.
func buildPatch(opts *runOptions) (*config.Patch, error) {
	p := &config.Patch{Name: "psl"}
	if opts.patch != "" {
		loaded, err := config.Load(opts.patch)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	for _, decl := range opts.nodes {
		id, selector, ok := strings.Cut(decl, "=")
		if !ok {
			return nil, fmt.Errorf("--node %q: want ID=SELECTOR", decl)
		}
		p.Nodes = append(p.Nodes, config.NodeSpec{ID: id, Selector: selector})
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newPersister(format, dir string) (core.Persister, error) {
	switch format {
	case "json":
		return production.NewJSONPersister(dir)
	case "yaml":
		return production.NewYAMLPersister(dir)
	default:
		return nil, fmt.Errorf("--state-format %q: want json or yaml", format)
	}
}

// scriptInput returns nil when there is no script to read.
func scriptInput(cmd *cobra.Command, args []string, opts *runOptions) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case len(args) == 1 && args[0] != "-":
		f, err := os.Open(args[0])
		if err != nil {
			return nil, noop, err
		}
		return f, func() { f.Close() }, nil
	case len(args) == 1 || !opts.longRunning():
		return cmd.InOrStdin(), noop, nil
	default:
		return nil, noop, nil
	}
}

// deliverScript hands every script message to rt in order. Rejected
// messages are logged; they do not stop the script.
func deliverScript(rt *core.Runtime, in io.Reader, logger *slog.Logger) error {
	src := extensibility.NewScriptSource(in, logger)
	for msg := range src.Events() {
		if err := rt.Deliver(msg); err != nil {
			logger.Warn("message rejected", "message", msg.String(), "err", err)
		}
	}
	return src.Err()
}

// serve runs the event loop with metronomes and the patch watcher until ctx
// is canceled.
func serve(ctx context.Context, rt *core.Runtime, opts *runOptions, logger *slog.Logger) error {
	if err := rt.Start(); err != nil {
		return err
	}
	for _, decl := range opts.metros {
		id, interval, ok := strings.Cut(decl, "=")
		if !ok {
			return fmt.Errorf("--metro %q: want ID=DURATION", decl)
		}
		d, err := time.ParseDuration(interval)
		if err != nil || d <= 0 {
			return fmt.Errorf("--metro %q: bad interval", decl)
		}
		ts := extensibility.NewTimerSource(id, d)
		defer ts.Stop()
		rt.Attach(ts)
	}
	if opts.watch && opts.patch != "" {
		w, err := config.NewWatcher(opts.patch, func(p *config.Patch) {
			if err := p.Reconcile(rt); err != nil {
				logger.Warn("patch not applied", "path", opts.patch, "err", err)
			}
		}, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}
	logger.Info("serving", "runtime", rt.ID(), "nodes", len(rt.Nodes()))
	<-ctx.Done()
	return nil
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	return srv
}
