// Command fricu-server runs the key/value HTTP service: a pre-forked
// pool of workers, each driving its own epoll/kqueue event loop against a
// shared listening socket and a private SQLite-backed store handle.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/fricu/fricu-server/internal/config"
	"github.com/fricu/fricu-server/internal/kvstore"
	"github.com/fricu/fricu-server/internal/logging"
	"github.com/fricu/fricu-server/internal/supervisor"
)

// version is overwritten via -ldflags at release build time; it must
// parse as a valid semantic version for the version subcommand to print
// anything beyond the raw string.
var version = "0.0.0-dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string
	var logJSON bool

	root := &cobra.Command{
		Use:   "fricu-server",
		Short: "A pre-forked, epoll/kqueue-driven key-value HTTP service backed by SQLite",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of console-formatted text")

	root.AddCommand(versionCmd())
	root.AddCommand(serveCmd(&logLevel, &logJSON))
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.NewVersion(version)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}
}

func serveCmd(logLevel *string, logJSON *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the server and block until a terminating signal arrives",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.Config{
				Level:      logging.Level(*logLevel),
				JSONOutput: *logJSON,
			})
			log := logging.WithComponent("bootstrap")

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			maxFD, err := supervisor.TuneFDLimit()
			if err != nil {
				log.Warn().Err(err).Int("fd_limit", maxFD).Msg("could not raise file descriptor limit")
			}

			if err := kvstore.Bootstrap(cfg.DBPath, log); err != nil {
				return fmt.Errorf("bootstrap store: %w", err)
			}

			listenFD, err := supervisor.Listen(cfg.BindAddr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.BindAddr, err)
			}

			log.Info().
				Str("bind_addr", cfg.BindAddr).
				Str("db_path", cfg.DBPath).
				Int("workers", cfg.Workers).
				Msg("starting worker pool")

			pool := &supervisor.Pool{
				Workers:  cfg.Workers,
				ListenFD: listenFD,
				DBPath:   cfg.DBPath,
				MaxFD:    maxFD,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- pool.Run() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				return nil
			case err := <-errCh:
				return fmt.Errorf("worker pool exited: %w", err)
			}
		},
	}
}
