// Command mediakit runs pixel region conversions and encoder probes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug bool
	json  bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mediakit",
		Short:         "Pixel region conversion and media transform tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", true, "log as JSON")

	cmd.AddCommand(newConvertCommand(opts))
	cmd.AddCommand(newProbeCommand(opts))
	return cmd
}

// logger builds the process logger. --debug takes precedence over level.
func (o *rootOptions) logger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if o.debug {
		logLevel = slog.LevelDebug
	}
	if level != "" && !o.debug {
		if err := logLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logger *slog.Logger
	if o.json {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
	}
	slog.SetDefault(logger)
	return logger, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("mediakit failed", "error", err)
		os.Exit(1)
	}
}
