package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/minibeans/internal/factory"
	redisstorage "github.com/mcoot/minibeans/internal/storage/redis"
)

var (
	cfg *Config
	app *factory.App
	out *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()
	app = nil
	out = nil

	// flagCfg receives flag values; only flags the user set override the
	// file and environment
	flagCfg := DefaultConfig()
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "beans",
		Short: "Client for the Mini World Beans rewards ledger",
		Long: `beans is a client for the Mini World Beans rewards ledger.

It keeps a local player identity per profile, shows your balance and the
leaderboard, submits withdrawals and support questions, and gives admins
access to withdrawal requests, support messages and balance adjustments.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv("BEANS_CONFIG")
			}
			loaded, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			overrideFromFlags(cmd, loaded, flagCfg)
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())

			app, err = factory.New(factoryConfig(cfg, newLogger(cfg.Verbose, cmd.ErrOrStderr()), out))
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (env: BEANS_CONFIG)")
	pf.StringVar(&flagCfg.Endpoint, "endpoint", flagCfg.Endpoint, "Ledger API URL (env: BEANS_ENDPOINT)")
	pf.StringVar(&flagCfg.Store, "store", flagCfg.Store, "Local profile store: file, memory, redis (env: BEANS_STORE)")
	pf.StringVar(&flagCfg.StateDir, "state-dir", flagCfg.StateDir, "Directory for the file store (env: BEANS_STATE_DIR)")
	pf.StringVar(&flagCfg.RedisURL, "redis-url", flagCfg.RedisURL, "Redis URL for the redis store (env: BEANS_REDIS_URL)")
	pf.StringVar(&flagCfg.Profile, "profile", flagCfg.Profile, "Local profile name (env: BEANS_PROFILE)")
	pf.DurationVar(&flagCfg.Timeout, "timeout", flagCfg.Timeout, "Timeout for each ledger request")
	pf.StringVarP(&flagCfg.Output, "output", "o", flagCfg.Output, "Output format: text, json")
	pf.BoolVarP(&flagCfg.Verbose, "verbose", "v", flagCfg.Verbose, "Log requests to stderr")

	// Add subcommands
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newWithdrawCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newEarnCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newAdminCmd())

	return rootCmd
}

func overrideFromFlags(cmd *cobra.Command, c, flags *Config) {
	changed := cmd.Flags().Changed
	if changed("endpoint") {
		c.Endpoint = flags.Endpoint
	}
	if changed("store") {
		c.Store = flags.Store
	}
	if changed("state-dir") {
		c.StateDir = flags.StateDir
	}
	if changed("redis-url") {
		c.RedisURL = flags.RedisURL
	}
	if changed("profile") {
		c.Profile = flags.Profile
	}
	if changed("timeout") {
		c.Timeout = flags.Timeout
	}
	if changed("output") {
		c.Output = flags.Output
	}
	if changed("verbose") {
		c.Verbose = flags.Verbose
	}
}

func factoryConfig(c *Config, logger *slog.Logger, o *Output) factory.Config {
	fc := factory.Config{
		Endpoint:    c.Endpoint,
		StorageType: c.Store,
		StateDir:    c.StateDir,
		Profile:     c.Profile,
		HTTPTimeout: c.Timeout,
		Notifier:    o,
		Logger:      logger,
	}
	if c.Store == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

func newLogger(verbose bool, stderr io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// reportedError marks a failure the user has already been notified about
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// Run executes the CLI with args and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		_ = app.Close()
	}
	if err == nil {
		return 0
	}

	var re *reportedError
	if !errors.As(err, &re) {
		o := out
		if o == nil {
			o = NewOutput(cfg.Output, stdout, stderr)
		}
		o.PrintError(err)
	}
	return 1
}

// Execute runs the root command against the process arguments
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
