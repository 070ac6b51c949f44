package commands

import (
	"context"
	"fmt"
	"os"

	"jecna-client/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var verbose bool
var dumpDir string

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs, including every request made to the portal.")
	rootCmd.PersistentFlags().StringVar(&dumpDir, "dump", "", "Write every request and response exchanged with the portal into this directory (cleared first, may start with <dev_state>).")
}

var rootCmd = &cobra.Command{
	Use:   "jecna",
	Short: "jecna is a CLI for reading grades from the SPŠE Ječná student portal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
