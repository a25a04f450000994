package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirelobby/internal/app"
	"github.com/vovakirdan/wirelobby/internal/config"
	logpkg "github.com/vovakirdan/wirelobby/internal/log"
)

var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "wirelobby",
		Short:         "Lobby and signaling relay for peer-to-peer sessions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	cmd.Flags().StringP("addr", "a", config.Default().Addr, "HTTP listen address")
	cmd.Flags().StringP("log-level", "l", config.Default().LogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", config.Default().LogFormat, "log format (console, json)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	})

	return cmd
}

func serve(cmd *cobra.Command, configPath string) error {
	bootLogger := logpkg.New("info", "console")

	cfg, resolvedPath, err := config.Load(bootLogger, configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logpkg.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", resolvedPath).Str("version", version).Msg("starting wirelobby")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(&cfg, logger).Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
