package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ntpstep/ntpstep/internal/rpc"
	"github.com/ntpstep/ntpstep/pkg/ntpstep"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Re-check the clock on an interval",
	Long: `monitor repeats the one-shot cycle on a ticker: query, report drift,
and with --set-system step the clock whenever the offset passes the
threshold. There is no slewing; every correction is a plain step.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

var monitorFlags struct {
	interval time.Duration
	detach   bool
	stop     bool
	socket   string
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorFlags.interval, "interval", time.Minute,
		"time between sync cycles")
	monitorCmd.Flags().BoolVar(&monitorFlags.detach, "detach", false,
		"run in the background as "+daemonName)
	monitorCmd.Flags().BoolVar(&monitorFlags.stop, "stop", false,
		"stop a detached monitor")
	monitorCmd.Flags().StringVar(&monitorFlags.socket, "socket", rpc.DefaultSocket,
		"unix socket the status command reads from")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monitorFlags.stop {
		return stopDaemon()
	}

	if monitorFlags.detach {
		child, err := daemonCtx.Reborn()
		if err != nil {
			if errors.Is(err, daemon.ErrWouldBlock) {
				return errors.New("monitor already running; stop it with --stop")
			}
			return fmt.Errorf("unable to detach: %w", err)
		}
		if child != nil {
			fmt.Printf("Monitor daemon (%s, %d) started.\n", daemonName, child.Pid)
			return nil
		}
		defer daemonCtx.Release()
	}

	logger := newLogger()
	defer logger.Sync()

	system, err := ntpstep.NewSystem(logger, configFromFlags())
	if err != nil {
		return err
	}

	statusServer := rpc.NewStatusServer(monitorFlags.socket)
	go func() {
		if err := statusServer.Listen(); err != nil {
			logger.Warn("status server failed", zap.Error(err))
		}
	}()
	defer statusServer.Close()

	logger.Info("monitor started",
		zap.Duration("interval", monitorFlags.interval),
		zap.Bool("set_system", rootFlags.setSystem))

	ticker := time.NewTicker(monitorFlags.interval)
	defer ticker.Stop()

	var cycles uint64
	for {
		cycles++
		monitorCycle(cmd.Context(), logger, system, statusServer, cycles)

		select {
		case <-cmd.Context().Done():
			logger.Info("monitor stopping")
			return nil
		case <-ticker.C:
		}
	}
}

func monitorCycle(ctx context.Context, logger *zap.Logger, system *ntpstep.System, statusServer *rpc.StatusServer, cycles uint64) {
	result, outcome, err := system.Sync(ctx)

	status := rpc.Status{
		LastSync: time.Now(),
		NextSync: time.Now().Add(monitorFlags.interval),
		Cycles:   cycles,
	}

	if err != nil {
		logger.Warn("sync cycle failed", zap.Error(err))
		status.LastError = err.Error()
	}
	if result != nil {
		status.Server = result.Server
		status.Offset = result.Offset
		status.Delay = result.Delay
		status.Stratum = result.Stratum
		status.RefID = result.RefID

		logger.Info("drift measured",
			zap.String("server", result.Server),
			zap.Duration("offset", result.Offset),
			zap.Duration("delay", result.Delay))
	}
	if outcome != nil {
		status.Applied = outcome.Applied
	}

	statusServer.Record(status)
}
