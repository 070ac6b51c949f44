package jecna

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jecna-client/internal/components/chrono"
)

// SchoolYear is identified by the calendar year it starts in,
// SchoolYear{2021} is the year 2021/2022.
type SchoolYear struct {
	FirstCalendarYear int
}

func NewSchoolYear(firstCalendarYear int) SchoolYear {
	return SchoolYear{FirstCalendarYear: firstCalendarYear}
}

func (y SchoolYear) SecondCalendarYear() int {
	return y.FirstCalendarYear + 1
}

func (y SchoolYear) String() string {
	return fmt.Sprintf("%d/%d", y.FirstCalendarYear, y.SecondCalendarYear())
}

// ParseSchoolYear parses the "2021/2022" format used by the portal.
func ParseSchoolYear(s string) (SchoolYear, error) {
	first, second, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return SchoolYear{}, fmt.Errorf("invalid school year %q: missing '/'", s)
	}
	firstYear, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return SchoolYear{}, fmt.Errorf("invalid school year %q: %w", s, err)
	}
	secondYear, err := strconv.Atoi(strings.TrimSpace(second))
	if err != nil {
		return SchoolYear{}, fmt.Errorf("invalid school year %q: %w", s, err)
	}
	if secondYear != firstYear+1 {
		return SchoolYear{}, fmt.Errorf("invalid school year %q: years are not consecutive", s)
	}
	return SchoolYear{FirstCalendarYear: firstYear}, nil
}

// SchoolYearFromDate returns the school year a date belongs to, a school year
// begins in September.
func SchoolYearFromDate(t time.Time) SchoolYear {
	if t.Month() >= time.September {
		return SchoolYear{FirstCalendarYear: t.Year()}
	}
	return SchoolYear{FirstCalendarYear: t.Year() - 1}
}

func CurrentSchoolYear(clock chrono.API) SchoolYear {
	return SchoolYearFromDate(clock.Now())
}

type SchoolYearHalf int

const (
	FirstHalf SchoolYearHalf = iota + 1
	SecondHalf
)

func (h SchoolYearHalf) Valid() bool {
	return h == FirstHalf || h == SecondHalf
}

func (h SchoolYearHalf) String() string {
	switch h {
	case FirstHalf:
		return "1. pololetí"
	case SecondHalf:
		return "2. pololetí"
	}
	return fmt.Sprintf("SchoolYearHalf(%d)", int(h))
}

// HalfFromDate returns the half a date falls in, February through August
// belong to the second half.
func HalfFromDate(t time.Time) SchoolYearHalf {
	if t.Month() >= time.February && t.Month() <= time.August {
		return SecondHalf
	}
	return FirstHalf
}

func CurrentHalf(clock chrono.API) SchoolYearHalf {
	return HalfFromDate(clock.Now())
}

// ParseSchoolYearHalf parses the label of the half select on the grades page.
func ParseSchoolYearHalf(s string) (SchoolYearHalf, error) {
	switch strings.TrimSpace(s) {
	case "1. pololetí":
		return FirstHalf, nil
	case "2. pololetí":
		return SecondHalf, nil
	}
	return 0, fmt.Errorf("unknown school year half: %q", s)
}

const (
	schoolYearIdKey     = "schoolYearId"
	schoolYearHalfIdKey = "schoolYearHalfId"
	// the portal numbers school years from 2008/2009
	schoolYearIdOffset = 2008
)

func encodePeriod(year SchoolYear, half SchoolYearHalf) map[string]string {
	return map[string]string{
		schoolYearIdKey:     strconv.Itoa(year.FirstCalendarYear - schoolYearIdOffset),
		schoolYearHalfIdKey: strconv.Itoa(int(half)),
	}
}
