package commands

import (
	"fmt"

	"jecna-client/internal/components/chrono"
	"jecna-client/pkg/jecna"

	"github.com/spf13/cobra"
)

type periodFlags struct {
	year int
	half int
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.year, "year", 0, "The calendar year the school year starts in, defaults to the current school year.")
	cmd.Flags().IntVar(&p.half, "half", 0, "The half of the school year (1 or 2), defaults to the current half.")
}

func (p periodFlags) resolve(clock chrono.API) (jecna.SchoolYear, jecna.SchoolYearHalf, error) {
	year := jecna.CurrentSchoolYear(clock)
	if p.year != 0 {
		year = jecna.NewSchoolYear(p.year)
	}
	half := jecna.CurrentHalf(clock)
	if p.half != 0 {
		half = jecna.SchoolYearHalf(p.half)
		if !half.Valid() {
			return jecna.SchoolYear{}, 0, fmt.Errorf("--half must be 1 or 2, got %d", p.half)
		}
	}
	return year, half, nil
}
