package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ntpstep/ntpstep/internal/ui"
	"github.com/ntpstep/ntpstep/pkg/ntpstep"
)

var compareCmd = &cobra.Command{
	Use:   "compare [server]",
	Short: "Cross-check a measurement against an independent NTP client",
	Long: `compare queries one server twice, once with the native client and once
with beevik/ntp, and reports how far apart the two offsets land. Large
disagreement points at a problem on our side, not the server's.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

// two well-behaved clients on the same host should land well inside this
const agreementBudget = 50 * time.Millisecond

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	server := rootFlags.server
	if len(args) > 0 {
		server = args[0]
	}
	if server == "" {
		server = ntpstep.DefaultServers()[0]
	}

	logger := newLogger()
	defer logger.Sync()

	config := configFromFlags()
	config.SetSystem = false

	system, err := ntpstep.NewSystem(logger, config)
	if err != nil {
		return err
	}

	comparison, err := system.Compare(server)
	if err != nil {
		return err
	}

	printComparisonLine("Native:", comparison.Native)
	printComparisonLine("Reference:", comparison.Reference)

	verdict := ui.GoodStyle("clients agree")
	if comparison.Disagreement > agreementBudget {
		verdict = ui.BadStyle("clients disagree, check the native packet handling")
	}
	fmt.Printf("%s %s (%s)\n",
		ui.TitleStyle(fmt.Sprintf("%-10s", "Spread:")),
		ui.ValueStyle(comparison.Disagreement.Round(time.Microsecond).String()),
		verdict)

	return nil
}

func printComparisonLine(source string, result *ntpstep.SyncResult) {
	fmt.Printf("%s offset %s, delay %s (stratum %d, refid %s)\n",
		ui.TitleStyle(fmt.Sprintf("%-10s", source)),
		ui.ValueStyle(formatOffset(result.Offset)),
		result.Delay.Round(time.Microsecond),
		result.Stratum,
		result.RefID)
}
