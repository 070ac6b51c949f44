package commands

import (
	"fmt"
	"os"

	"jecna-client/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyUser    string
	historySubject string
)

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "", "The user to print history of, defaults to the logged in user.")
	historyCmd.Flags().StringVarP(&historySubject, "subject", "s", "", "Only print history of this subject.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--subject <name>] [--user <username>]",
	Short: "Prints the saved history of subject averages.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		user := historyUser
		if user == "" {
			auth, err := credentials(cfg, "", "")
			if err != nil {
				serviceutil.Fatal("failed to determine user", err)
			}
			user = auth.Username
		}

		store := openStore(cmd.Context(), cfg)
		series, err := store.Pull(cmd.Context(), user)
		if err != nil {
			serviceutil.Fatal("failed to read history", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Předmět", "Datum", "Období", "Průměr"})

		clock := newClock()
		for _, s := range series {
			if historySubject != "" && s.Subject != historySubject {
				continue
			}
			for _, snapshot := range s.Snapshots {
				t.AppendRow(table.Row{
					s.Subject,
					snapshot.Time.In(clock.Location()).Format("02.01.2006 15:04"),
					fmt.Sprintf("%s, %s", snapshot.SchoolYear, snapshot.Half),
					fmt.Sprintf("%.2f", snapshot.Value),
				})
			}
			t.AppendSeparator()
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
