// Package main provides the demobox CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/protobuf/types/known/structpb"

	apiconnect "github.com/osa030/demobox/internal/api/connect"
	"github.com/osa030/demobox/internal/app/demo"
	"github.com/osa030/demobox/internal/app/frontend"
	"github.com/osa030/demobox/internal/app/hook"
	"github.com/osa030/demobox/internal/app/player"
	"github.com/osa030/demobox/internal/app/presenter"
	"github.com/osa030/demobox/internal/app/source"
	"github.com/osa030/demobox/internal/domain/catalog"
	"github.com/osa030/demobox/internal/domain/segment"
	"github.com/osa030/demobox/internal/infra/config"
	"github.com/osa030/demobox/internal/infra/logger"
)

var (
	app        = kingpin.New("demobox", "Step-by-step runner for notebook-style demo code")
	configPath = app.Flag("config", "Path to config file (built-in defaults if missing)").Default("config/demobox.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// run command
	runCmd        = app.Command("run", "Run a demo, or list the demos of a source")
	runIdentifier = runCmd.Arg("identifier", "Demo identifier, e.g. '<gh_matplotlib>/animation' or 'demos.py:demo_example'").Required().String()
	runFrontend   = runCmd.Flag("frontend", "Frontend: stepwise, batch or collector (default from config)").Short('f').String()
	runNotebook   = runCmd.Flag("notebook-out", "Also write the presented demo to this .ipynb file").String()
	runServe      = runCmd.Flag("serve", "Serve the remote-control API while the demo runs").Bool()

	// remote command
	remoteCmd       = app.Command("remote", "Control a demo started with 'run --serve'")
	remoteServer    = remoteCmd.Flag("server", "Server address").Default("http://127.0.0.1:8765").String()
	remoteToken     = remoteCmd.Flag("token", "Remote token (or set DEMOBOX_REMOTE_TOKEN env)").Envar("DEMOBOX_REMOTE_TOKEN").String()
	remoteNextCmd   = remoteCmd.Command("next", "Present the next step")
	remoteStopCmd   = remoteCmd.Command("stop", "Abort the running demo")
	remoteStatusCmd = remoteCmd.Command("status", "Show the demo status")

	// list-sources command
	listSourcesCmd = app.Command("list-sources", "List configured demo sources and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Remote commands need no config
	switch command {
	case remoteNextCmd.FullCommand(), remoteStopCmd.FullCommand(), remoteStatusCmd.FullCommand():
		initLogger(logger.Config{})
		defer logger.Close()
		client := apiconnect.NewRemoteClient(http.DefaultClient, *remoteServer, *remoteToken)
		if err := remote(context.Background(), client, command); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load config before the logger, which takes its output from it
	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	initLogger(logger.Config{Output: cfg.Log.Output, Level: cfg.Log.Level})
	defer logger.Close()
	if found {
		zlog.Debug().Msgf("Loaded config from %s", *configPath)
	} else {
		zlog.Debug().Msgf("Config %s not found, using built-in defaults", *configPath)
	}

	ctx := context.Background()

	switch command {
	case listSourcesCmd.FullCommand():
		if err := listSources(ctx, cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
			logger.Close()
			os.Exit(1)
		}
	case runCmd.FullCommand():
		if err := run(ctx, cfg, *runIdentifier); err != nil {
			zlog.Debug().Msgf("run failed: %+v", err)
			logger.Close()
			os.Exit(1)
		}
	}
}

// initLogger initializes the logger, command-line flags taking precedence.
func initLogger(cfg logger.Config) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if *verbose {
		cfg.Level = "debug"
	}
	if *logfile != "" {
		cfg.Output = *logfile
	}
	if err := logger.Init(cfg); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
}

// run executes a demo. Using a separate function ensures deferred cleanup
// runs even when returning with an error.
func run(ctx context.Context, cfg *config.Config, identifier string) (retErr error) {
	name := cfg.Frontend
	if *runFrontend != "" {
		name = *runFrontend
	}
	kind, err := frontend.ParseKind(name)
	if err != nil {
		fmt.Println(err)
		return err
	}

	console, err := presenter.NewConsole(os.Stdout, presenter.ConsoleConfig{
		Style:    cfg.Presenter.Style,
		WordWrap: cfg.Presenter.WordWrap,
	})
	if err != nil {
		return fmt.Errorf("failed to create console: %w", err)
	}

	done := newStopNotifier()
	presenters := presenter.Multi{console, done}
	if *runNotebook != "" {
		notebook := presenter.NewNotebook(*runNotebook)
		presenters = append(presenters, notebook)
		defer func() {
			if err := checkNotebook(notebook, console); err != nil && retErr == nil {
				retErr = err
			}
		}()
	}

	signalReg := hook.NewRegistry()
	defer signalReg.Close()

	fe, err := frontend.New(kind, frontend.Deps{
		Presenter: presenters,
		Signal:    signalReg,
		Verify: func(collected []segment.Segment) error {
			console.RenderMessage(fmt.Sprintf("Collected %d segment(s)", len(collected)))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create frontend: %w", err)
	}

	chain, err := source.NewChainFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create sources: %w", err)
	}

	runner := demo.NewRunner(chain, fe, kind, presenters)
	if err := runner.Run(ctx, identifier); err != nil {
		return err
	}
	if !runner.IsRunning() {
		return nil
	}

	if !*runServe {
		return newConsoleHost(os.Stdout, signalReg, runner).Loop(ctx)
	}

	server, serverErrCh := startRemoteServer(cfg, runner, signalReg)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Error().Msgf("Failed to shut down server: %v", err)
		}
	}()

	// Wait for the demo to end, a shutdown signal, or a server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-done.C():
		zlog.Info().Msg("Demo ended, shutting down...")
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
		_ = runner.Abort()
	case err := <-serverErrCh:
		_ = runner.Abort()
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// startRemoteServer serves the remote-control API with h2c (HTTP/2 cleartext) support.
func startRemoteServer(cfg *config.Config, runner *demo.Runner, signalReg *hook.Registry) (*http.Server, <-chan error) {
	mux := http.NewServeMux()

	remoteAuthInterceptor := apiconnect.NewRemoteAuthInterceptor(cfg.Remote.Token)
	path, handler := apiconnect.NewRemoteServiceHandler(
		apiconnect.NewRemoteService(runner, signalReg),
		connect.WithInterceptors(remoteAuthInterceptor),
	)
	mux.Handle(path, handler)

	server := &http.Server{
		Addr:    cfg.Remote.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting remote-control server: addr=%s", cfg.Remote.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	return server, serverErrCh
}

// checkNotebook reports a failed notebook write to the user.
func checkNotebook(nb *presenter.Notebook, out player.Presenter) error {
	err := nb.Err()
	if err == nil {
		return nil
	}
	out.RenderMessage(fmt.Sprintf("Failed to write notebook: %v", err))
	return err
}

func remote(ctx context.Context, client *apiconnect.RemoteClient, command string) error {
	var (
		resp *structpb.Struct
		err  error
	)
	switch command {
	case remoteNextCmd.FullCommand():
		resp, err = client.Advance(ctx)
	case remoteStopCmd.FullCommand():
		resp, err = client.Abort(ctx)
	case remoteStatusCmd.FullCommand():
		resp, err = client.Status(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Println("\n=== DEMO STATUS ===")
	for _, key := range []string{"running", "remaining", "presented", "fired", "signals", "identifier", "frontend", "message"} {
		if v, ok := resp.Fields[key]; ok {
			fmt.Printf("%s: %v\n", key, v.AsInterface())
		}
	}
	fmt.Println()
	return nil
}

func listSources(ctx context.Context, cfg *config.Config) error {
	chain, err := source.NewChainFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println("Configured demo sources (the last one able to handle an identifier is used):")
	fmt.Println()
	for i, p := range chain.Providers() {
		if s, ok := p.(fmt.Stringer); ok {
			fmt.Printf("  %d. %-8s %s\n", i+1, p.Name(), s.String())
			continue
		}
		fmt.Printf("  %d. %s\n", i+1, p.Name())
	}
	fmt.Println()
	return nil
}

// stopNotifier is a presenter that only reports when a demo ends.
type stopNotifier struct {
	ch chan struct{}
}

func newStopNotifier() *stopNotifier {
	return &stopNotifier{ch: make(chan struct{}, 1)}
}

func (n *stopNotifier) C() <-chan struct{} { return n.ch }

func (n *stopNotifier) NotifyStopped(player.StopReason) {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

func (n *stopNotifier) RenderTableOfContents(string, []catalog.Entry) {}
func (n *stopNotifier) RenderStep(segment.Segment)                    {}
func (n *stopNotifier) NotifyStarted()                                {}
func (n *stopNotifier) RenderMessage(string)                          {}
