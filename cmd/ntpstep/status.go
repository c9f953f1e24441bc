package main

import (
	"errors"
	"fmt"
	stdrpc "net/rpc"
	"time"

	"github.com/spf13/cobra"

	"github.com/ntpstep/ntpstep/internal/rpc"
	"github.com/ntpstep/ntpstep/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running monitor's last measurement",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusFlags struct {
	socket string
}

const fetchStatusTimeout = 2 * time.Second

func init() {
	statusCmd.Flags().StringVar(&statusFlags.socket, "socket", rpc.DefaultSocket,
		"unix socket of the monitor daemon")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := stdrpc.Dial("unix", statusFlags.socket)
	if err != nil {
		return fmt.Errorf("connecting to the monitor daemon: %w", err)
	}
	defer client.Close()

	var status rpc.Status
	call := client.Go("StatusServer.FetchStatus", 0, &status, nil)
	select {
	case done := <-call.Done:
		if done.Error != nil {
			return fmt.Errorf("fetching status: %w", done.Error)
		}
	case <-time.After(fetchStatusTimeout):
		return errors.New("monitor daemon did not answer")
	}

	if status.Cycles == 0 {
		fmt.Println("Monitor is running; the first cycle has not finished yet.")
		return nil
	}

	fmt.Println(ui.TitleStyle("ntpstep monitor"))
	fmt.Printf("%s %s (cycle %d)\n", label("Last sync:"), status.LastSync.Local().Format(timeLayout), status.Cycles)
	fmt.Printf("%s %s\n", label("Next sync:"), status.NextSync.Local().Format(timeLayout))

	if status.Server != "" {
		serverInfo := fmt.Sprintf("%s, stratum %d", status.Server, status.Stratum)
		if status.RefID != "" {
			serverInfo += ", refid " + status.RefID
		}
		fmt.Printf("%s %s (delay %s; %s)\n", label("Offset:"),
			ui.ValueStyle(formatOffset(status.Offset)),
			status.Delay.Round(time.Microsecond),
			serverInfo)
	}

	if status.Applied {
		fmt.Printf("%s %s\n", label("Clock step:"), ui.GoodStyle("applied last cycle"))
	}
	if status.LastError != "" {
		fmt.Printf("%s %s\n", label("Last error:"), ui.BadStyle(status.LastError))
	}
	return nil
}

func label(text string) string {
	return ui.TitleStyle(fmt.Sprintf("%-11s", text))
}
