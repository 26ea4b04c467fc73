package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/flocktrack/flocktrack/cmd/apiserver"
	"github.com/flocktrack/flocktrack/cmd/migrator"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "{}"

	isVersionCmd            bool
	gracefulShutdownSec     int64
	gracefulShutdownMessage string
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flocktrack",
		Short: "FlockTrack - poultry farm management",
		Long:  `FlockTrack is a multi-tenant service for poultry farms to track coops, flocks, daily production and purchases.`,
	}

	cmd.PersistentFlags().Int64Var(&gracefulShutdownSec, "graceful-shutdown", 1, "graceful shutdown seconds")
	cmd.PersistentFlags().StringVar(&gracefulShutdownMessage, "graceful-shutdown-message", "Graceful shutdown in %d seconds",
		"graceful shutdown message")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "FlockTrack Version",
			RunE: func(cmd *cobra.Command, args []string) error {
				isVersionCmd = true
				value, err := utils.ExtractFromComplexValue(BuildInfo)
				if err != nil {
					return err
				}
				fmt.Println(value)
				return nil
			},
		},
		apiserver.Cmd(BuildInfo),
		migrator.Cmd(BuildInfo),
	)

	return cmd
}

func main() {
	ctx, cancelOnSignal := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancelOnSignal()

	err := rootCmd().ExecuteContext(ctx)
	if err != nil {
		slogctx.Error(ctx, "Failed to start the application", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// graceful shutdown so running goroutines may finish
	if !isVersionCmd {
		_, _ = fmt.Fprintln(os.Stderr, fmt.Sprintf(gracefulShutdownMessage, gracefulShutdownSec))
		time.Sleep(time.Duration(gracefulShutdownSec) * time.Second)
	}
}
