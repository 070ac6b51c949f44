package commands

import (
	"fmt"
	"io"
	"os"

	"jecna-client/pkg/jecna"
	"jecna-client/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var subjectsPeriod periodFlags

func init() {
	subjectsPeriod.register(subjectsCmd)
	rootCmd.AddCommand(subjectsCmd)
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects [--year <year>] [--half <1|2>]",
	Short: "Prints a table of all subjects with their averages.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		clock := newClock()
		year, half, err := subjectsPeriod.resolve(clock)
		if err != nil {
			serviceutil.Fatal("invalid period", err)
		}

		client, _ := loggedInClient(cmd.Context(), cfg, clock, false)
		page, err := client.FetchGrades(cmd.Context(), year, half)
		if err != nil {
			serviceutil.Fatal("failed to fetch grades", err)
		}
		renderSubjects(os.Stdout, page)
	},
}

func formatAverage(avg float64, err error) string {
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", avg)
}

func renderSubjects(out io.Writer, page jecna.GradesPage) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(fmt.Sprintf("%s, %s", page.SchoolYear(), page.Half()))
	t.AppendHeader(table.Row{"Předmět", "Zkratka", "Známky", "Průměr", "Vážený průměr", "Výsledná"})

	for _, s := range page.Subjects() {
		final := ""
		if s.FinalGrade != nil {
			final = s.FinalGrade.String()
		}
		t.AppendRow(table.Row{
			s.Name.Full,
			s.Name.Short,
			s.Grades.Len(),
			formatAverage(s.Grades.Average()),
			formatAverage(s.Grades.WeightedAverage()),
			final,
		})
	}

	behaviour := page.Behaviour()
	t.AppendFooter(table.Row{"Chování", "", len(behaviour.Notifications), "", "", behaviour.FinalGrade.String()})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
