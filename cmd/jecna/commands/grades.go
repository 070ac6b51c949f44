package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"jecna-client/pkg/jecna"
	"jecna-client/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	gradesPeriod  periodFlags
	gradesSubject string
	gradesPart    string
)

func init() {
	gradesPeriod.register(gradesCmd)
	gradesCmd.Flags().StringVarP(&gradesSubject, "subject", "s", "", "The subject to print grades of (full name or abbreviation).")
	gradesCmd.Flags().StringVar(&gradesPart, "part", "", "Only print grades of this part of the subject (ex. Teorie).")
	gradesCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(gradesCmd)
}

var gradesCmd = &cobra.Command{
	Use:   "grades --subject <name> [--year <year>] [--half <1|2>] [--part <label>]",
	Short: "Prints the average and the grades of a subject.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		clock := newClock()
		year, half, err := gradesPeriod.resolve(clock)
		if err != nil {
			serviceutil.Fatal("invalid period", err)
		}

		client, _ := loggedInClient(cmd.Context(), cfg, clock, false)
		page, err := client.FetchGrades(cmd.Context(), year, half)
		if err != nil {
			serviceutil.Fatal("failed to fetch grades", err)
		}

		subject, err := page.Lookup(gradesSubject)
		if err != nil {
			serviceutil.Fatal("failed to find subject", err)
		}

		var partition *jecna.Partition
		if cmd.Flags().Changed("part") {
			p := jecna.PartOf(gradesPart)
			partition = &p
		}
		printSubject(os.Stdout, subject, partition)
	},
}

// printSubject prints the average and the grades of a subject, every
// partition is printed when partition is nil.
func printSubject(out io.Writer, subject jecna.Subject, partition *jecna.Partition) {
	avg, err := subject.Grades.Average()
	if errors.Is(err, jecna.ErrNoGrades) {
		fmt.Fprintf(out, "Průměr z %s: -\n", subject.Name.Full)
	} else {
		fmt.Fprintf(out, "Průměr z %s: %.2f\n", subject.Name.Full, avg)
	}

	if partition != nil {
		for _, grade := range subject.Grades.ForPartition(*partition) {
			fmt.Fprintln(out, grade.String())
		}
		return
	}

	for _, p := range subject.Grades.Partitions() {
		indent := ""
		if label, ok := p.Label(); ok {
			fmt.Fprintf(out, "%s:\n", label)
			indent = "  "
		}
		for _, grade := range subject.Grades.ForPartition(p) {
			fmt.Fprintf(out, "%s%s\n", indent, grade.String())
		}
	}
}
