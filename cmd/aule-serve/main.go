package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appconfig "github.com/manthysbr/auleServe/internal/config"
	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	if err := c.execute(ctx, os.Args[1:]); err != nil {
		c.logger.Error("aule-serve failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

// cli holds the state shared by every subcommand.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	envFiles    []string
	keyPath     string
	trace       bool
	metricsFile string

	logger          *slog.Logger
	cfg             *domain.AppConfig
	shutdownTracing telemetry.ShutdownFunc

	root *cobra.Command
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	c := &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: telemetry.NewLogger(stderr, domain.LogConfig{Level: "info", Format: "auto"}),
	}

	root := &cobra.Command{
		Use:           "aule-serve",
		Short:         "Run a tag-speaking model and route its tool calls to message channels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !c.trace {
				return nil
			}
			shutdown, err := telemetry.SetupTracing(c.stderr)
			if err != nil {
				return err
			}
			c.shutdownTracing = shutdown
			return nil
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	flags.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "dotenv files loaded before environment overrides")
	flags.StringVar(&c.keyPath, "key-file", appconfig.DefaultKeyPath(), "secret key used for enc: values")
	flags.BoolVar(&c.trace, "trace", false, "export spans to stderr")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		c.newRunCmd(),
		c.newParseCmd(),
		c.newReceiveCmd(),
		c.newPromptCmd(),
		c.newEncryptCmd(),
	)
	c.root = root
	return c
}

// execute runs the command line, then flushes spans and metrics even when
// the command failed.
func (c *cli) execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)

	if c.shutdownTracing != nil {
		if serr := c.shutdownTracing(context.WithoutCancel(ctx)); serr != nil {
			err = errors.Join(err, fmt.Errorf("failed to flush spans: %w", serr))
		}
	}
	if c.metricsFile != "" {
		if merr := telemetry.WriteMetrics(c.metricsFile); merr != nil {
			err = errors.Join(err, merr)
		}
	}
	return err
}

// loadConfig reads the configuration and replaces the bootstrap logger with
// one honoring log.level and log.format.
func (c *cli) loadConfig() error {
	cfg, err := appconfig.Load(appconfig.Options{
		Path:     c.configPath,
		EnvFiles: c.envFiles,
		KeyPath:  c.keyPath,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg
	c.logger = telemetry.NewLogger(c.stderr, cfg.Log)

	masked := appconfig.Masked(cfg)
	c.logger.Debug("configuration loaded",
		"llm_mode", masked.LLM.Mode,
		"llm_base_url", masked.LLM.BaseURL,
		"llm_model", masked.LLM.Model,
		"llm_api_key", masked.LLM.APIKey,
		"transport", masked.Channels.Transport,
		"connection_string", masked.Channels.ConnectionString,
		"web_queue", masked.Channels.WebQueue,
		"azure_queue", masked.Channels.AzureQueue,
	)
	return nil
}
