package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ntpstep/ntpstep/internal/clock"
	"github.com/ntpstep/ntpstep/internal/ui"
	"github.com/ntpstep/ntpstep/pkg/ntpstep"
)

func runSync(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	system, err := ntpstep.NewSystem(logger, configFromFlags())
	if err != nil {
		return err
	}

	if !rootFlags.plain && isatty.IsTerminal(os.Stdout.Fd()) {
		return runSyncInteractive(cmd.Context(), system)
	}

	result, outcome, err := system.Sync(cmd.Context())
	if result != nil {
		// a failed clock step still leaves a reportable measurement
		fmt.Print(formatResult(result, outcome))
	}
	return err
}

func formatResult(result *ntpstep.SyncResult, outcome *clock.Outcome) string {
	var b strings.Builder

	serverInfo := fmt.Sprintf("%s, stratum %d", result.Server, result.Stratum)
	if result.RefID != "" {
		serverInfo += ", refid " + result.RefID
	}

	resultLine(&b, "Server time:", ui.ValueStyle(result.Time.Local().Format(timeLayout)))
	resultLine(&b, "Local time:", time.Now().Local().Format(timeLayout))
	resultLine(&b, "Offset:", fmt.Sprintf("%s (delay %s; %s)",
		ui.ValueStyle(formatOffset(result.Offset)),
		result.Delay.Round(time.Microsecond),
		serverInfo))
	resultLine(&b, "Clock step:", describeOutcome(outcome))

	return b.String()
}

func resultLine(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", ui.TitleStyle(fmt.Sprintf("%-12s", label)), value)
}

func describeOutcome(outcome *clock.Outcome) string {
	switch {
	case outcome == nil:
		return ui.HelpStyle("not requested (use --set-system)")
	case outcome.Applied:
		return ui.GoodStyle(fmt.Sprintf("stepped %s via %s", formatOffset(outcome.Delta), outcome.Writer))
	default:
		return ui.HelpStyle(fmt.Sprintf("skipped, offset %s is within the threshold", formatOffset(outcome.Delta)))
	}
}

func formatOffset(offset time.Duration) string {
	rounded := offset.Round(time.Microsecond)
	if rounded >= 0 {
		return "+" + rounded.String()
	}
	return rounded.String()
}
