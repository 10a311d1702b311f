// Package cli wires configuration, transport, scenarios and reporting into
// the authcheck command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"authcheck/apiclient"
	"authcheck/config"
	"authcheck/coordinator"
	"authcheck/envinfo"
	"authcheck/logging"
	"authcheck/output"
	"authcheck/recorder"
	"authcheck/scenario"
	"authcheck/ssh"
)

// Version is the tool version, overridable at link time.
var Version = "1.0.0"

// ErrTestsFailed is returned by Run when at least one scenario failed or
// the health check aborted the run.
var ErrTestsFailed = errors.New("authentication tests failed")

// App represents the main application
type App struct {
	flags  *Flags
	logger zerolog.Logger
	stdout io.Writer
	now    func() time.Time
}

// NewApp parses args and creates an application writing the transcript to
// stdout and logs to stderr.
func NewApp(args []string, stdout, stderr io.Writer) (*App, error) {
	flags, err := ParseFlags(args, stderr)
	if err != nil {
		return nil, err
	}

	return &App{
		flags:  flags,
		logger: logging.Console(stderr, flags.Verbose),
		stdout: stdout,
		now:    time.Now,
	}, nil
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// Run executes the main application logic
func (a *App) Run(ctx context.Context) error {
	if a.flags.Version {
		fmt.Fprintf(a.stdout, "authcheck version %s\n", Version)
		return nil
	}

	a.logger.Debug().Str("file", a.flags.ConfigFile).Msg("Loading configuration")
	cfg, err := config.LoadConfig(a.flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.logger.Info().Str("name", cfg.Name).Str("base_url", cfg.BaseURL).Msg("Loaded configuration")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.flags.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, a.flags.Timeout)
		defer cancel()
	}
	stop := a.setupSignalHandling(cancel)
	defer stop()

	var clientOpts []apiclient.Option
	var tunnelAddr string
	if cfg.Tunnel != nil {
		tunnel := ssh.NewTunnel(cfg.Tunnel)
		tunnelAddr = tunnel.Config().Address()
		a.logger.Info().Str("bastion", tunnelAddr).Msg("Opening SSH tunnel")
		if err := tunnel.Connect(ctx); err != nil {
			return fmt.Errorf("failed to open SSH tunnel: %w", err)
		}
		defer func() {
			if err := tunnel.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("Error closing SSH tunnel")
			}
		}()
		clientOpts = append(clientOpts, apiclient.WithDialer(tunnel.DialContext))
	}

	client, err := apiclient.NewClient(cfg.BaseURL, apiclient.Timeouts{
		Health:  cfg.Timeouts.Health,
		Request: cfg.Timeouts.Request,
	}, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	scenarios, err := scenario.Resolve(cfg.Scenarios)
	if err != nil {
		return err
	}

	rec := recorder.New(recorder.WithOutput(a.stdout))
	fixture := scenario.NewFixture(cfg.Fixture.EmailPrefix, cfg.Fixture.EmailDomain, cfg.Fixture.Password, cfg.Fixture.Name)
	env := &scenario.Env{
		API:        client,
		Recorder:   rec,
		Fixture:    fixture,
		CORSOrigin: cfg.CORSOrigin,
	}

	coord := coordinator.NewCoordinator(env, scenarios,
		coordinator.WithPause(cfg.Pause),
		coordinator.WithOutput(a.stdout),
		coordinator.WithLogger(a.logger),
	)
	a.logger.Debug().Int("scenarios", len(scenarios)).Msg("Starting test execution")
	startTime := time.Now()
	tally, err := coord.Run(ctx)
	if err != nil {
		return fmt.Errorf("test execution failed: %w", err)
	}
	a.logger.Debug().Dur("duration", time.Since(startTime)).Stringer("state", coord.State()).Msg("Test execution completed")

	var environment map[string]any
	if cfg.CollectEnv {
		collector := envinfo.NewCollector(a.logger, nil)
		environment = collector.Collect(ctx, envinfo.Target{
			BaseURL:     cfg.BaseURL,
			Tunnel:      tunnelAddr,
			ToolVersion: Version,
		})
	}

	summary := output.BuildSummary(rec.Results(), fixture.Email, a.now(), environment)
	if err := output.WriteReport(cfg.ReportPath, summary); err != nil {
		return err
	}
	output.PrintSaved(a.stdout, cfg.ReportPath)

	if !tally.Success {
		a.logger.Debug().Int("failed", tally.Failed()).Int("total", tally.Total).Msg("Some tests failed")
		return ErrTestsFailed
	}
	return nil
}

// setupSignalHandling cancels the run on SIGINT or SIGTERM. The returned
// function stops listening.
func (a *App) setupSignalHandling(cancel context.CancelFunc) func() {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			a.logger.Warn().Stringer("signal", sig).Msg("Received signal, shutting down")
			cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
