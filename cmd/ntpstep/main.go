package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ntpstep/ntpstep/internal/clock"
	"github.com/ntpstep/ntpstep/internal/ntp"
	"github.com/ntpstep/ntpstep/pkg/ntpstep"
)

const timeLayout = "2006-01-02 15:04:05 MST"

var rootCmd = &cobra.Command{
	Use:   "ntpstep",
	Short: "Query NTP servers and step the system clock",
	Long: `ntpstep asks an NTP server for the time, reports the local clock's
offset, and can step the system clock when the offset is past a
threshold. Without --server the default pool is tried in order.`,
	Args:          cobra.NoArgs,
	RunE:          runSync,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var rootFlags struct {
	server    string
	timeout   time.Duration
	threshold time.Duration
	version   uint8
	setSystem bool
	syncRTC   bool
	debug     bool
	plain     bool
}

func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&rootFlags.server, "server", "s", "",
		"NTP server to query instead of the default list ("+strings.Join(ntpstep.DefaultServers(), ", ")+")")
	persistent.DurationVar(&rootFlags.timeout, "timeout", ntpstep.DefaultTimeout,
		"per-server query timeout")
	persistent.DurationVar(&rootFlags.threshold, "threshold", ntpstep.DefaultThreshold,
		"minimum |offset| before the clock is stepped")
	persistent.Uint8Var(&rootFlags.version, "ntp-version", uint8(ntp.VERSION),
		"NTP protocol version to speak (3 or 4)")
	persistent.BoolVarP(&rootFlags.setSystem, "set-system", "S", false,
		"step the system clock to the synchronized time")
	persistent.BoolVar(&rootFlags.syncRTC, "sync-rtc", false,
		"after a step, also write the hardware clock (linux only)")
	persistent.BoolVarP(&rootFlags.debug, "debug", "d", false,
		"enable debug logging")

	rootCmd.Flags().BoolVar(&rootFlags.plain, "plain", false,
		"disable the interactive progress display")
}

func configFromFlags() ntpstep.Config {
	config := ntpstep.Config{
		Timeout:   rootFlags.timeout,
		Threshold: rootFlags.threshold,
		Version:   byte(rootFlags.version),
		SetSystem: rootFlags.setSystem,
		SyncRTC:   rootFlags.syncRTC,
	}
	if rootFlags.server != "" {
		config.Servers = []string{rootFlags.server}
	}
	return config
}

func newLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	if !rootFlags.debug {
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return zap.Must(config.Build())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}

		fmt.Fprintln(os.Stderr, "Error:", err)

		var privilegeError *clock.PrivilegeError
		if errors.As(err, &privilegeError) {
			fmt.Fprintln(os.Stderr, "Stepping the clock needs elevated privileges; re-run as root or Administrator.")
		}
		os.Exit(1)
	}
}
