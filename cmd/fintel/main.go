// Command fintel runs the multi-agent financial analysis server.
//
// Usage:
//
//	fintel serve --config config.yaml
//	fintel serve --provider openai --model gpt-4o-mini
//	fintel validate --config config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/Aspect5/fintel-v2-sub000/pkg/agents"
	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/llms"
	"github.com/Aspect5/fintel-v2-sub000/pkg/logger"
	"github.com/Aspect5/fintel-v2-sub000/pkg/observability"
	"github.com/Aspect5/fintel-v2-sub000/pkg/server"
	"github.com/Aspect5/fintel-v2-sub000/pkg/tools"
	"github.com/Aspect5/fintel-v2-sub000/pkg/workflow"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the analysis server."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("fintel version %s\n", version)
	return nil
}

// ValidateCmd checks a configuration file without starting the server.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	if cli.Config == "" {
		return fmt.Errorf("validate requires --config")
	}
	if _, err := config.Load(cli.Config); err != nil {
		return err
	}
	fmt.Printf("%s is valid\n", cli.Config)
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	// Zero-config options, used when no config file is given.
	Provider string `help:"Primary LLM provider (openai, anthropic, ollama)."`
	Model    string `help:"Model name."`
	APIKey   string `name:"api-key" help:"API key (defaults to environment variable)."`
	BaseURL  string `name:"base-url" help:"Custom API base URL."`

	Port    int  `help:"Port to listen on." default:"8080"`
	Observe bool `help:"Enable metrics and tracing."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadOrDefault(cli.Config, config.ZeroConfigOptions{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
	})
	if err != nil {
		return err
	}
	if c.Port != 0 && c.Port != 8080 {
		cfg.Server.Port = c.Port
	}

	log := logger.GetLogger()

	if c.Observe {
		if err := observability.InitMetrics(ctx); err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		if err := observability.InitTracing(ctx, cfg.Logger.Level == "debug"); err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := observability.Shutdown(shutdownCtx); err != nil {
				log.Warn("observability shutdown failed", "error", err)
			}
		}()
	}

	providers, err := llms.BuildRegistry(&cfg.LLM)
	if err != nil {
		return err
	}

	invoker := tools.NewInvoker(
		tools.DefaultCatalog(cfg.Tools),
		time.Duration(cfg.Tools.Timeout)*time.Second,
	)
	engine := workflow.NewEngine(cfg, agents.DefaultCatalog(), invoker, providers, log)
	srv := server.New(&cfg.Server, engine, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
		if err := srv.Stop(context.Background()); err != nil {
			return err
		}
		return nil
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("fintel"),
		kong.Description("Multi-agent financial analysis server."),
		kong.UsageOnError(),
	)

	output := os.Stderr
	cleanup := func() {}
	if cli.LogFile != "" {
		file, fileCleanup, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		output = file
		cleanup = fileCleanup
	}
	defer cleanup()
	logger.Init(logger.ParseLevel(cli.LogLevel), output, cli.LogFormat)

	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cleanup()
		os.Exit(1)
	}
}
