package jecna

import (
	"fmt"
	"strconv"
	"time"
)

// Name is a name as displayed by the portal with an optional abbreviation,
// ex. "Matematika (M)".
type Name struct {
	Full  string
	Short string
}

func (n Name) String() string {
	if n.Short == "" {
		return n.Full
	}
	return fmt.Sprintf("%s (%s)", n.Full, n.Short)
}

// Grade is a single mark a student received in a subject.
type Grade struct {
	// Value is one of '1'..'5' or 'N' (not classified).
	Value rune
	// Small grades carry half the weight of a regular grade.
	Small bool
	// Teacher is nil when the portal does not show details of the grade.
	Teacher     *Name
	Description string
	ReceiveDate time.Time
	ID          int
}

// clone returns a grade that shares no memory with g.
func (g Grade) clone() Grade {
	if g.Teacher != nil {
		teacher := *g.Teacher
		g.Teacher = &teacher
	}
	return g
}

func (g Grade) ValueChar() rune {
	return g.Value
}

// NumericValue returns the value as a number, ok is false for 'N'.
func (g Grade) NumericValue() (int, bool) {
	if g.Value < '1' || g.Value > '5' {
		return 0, false
	}
	return int(g.Value - '0'), true
}

func (g Grade) Weight() int {
	if g.Small {
		return 1
	}
	return 2
}

func (g Grade) String() string {
	if g.Description == "" {
		return string(g.Value)
	}
	return fmt.Sprintf("%c - %s", g.Value, g.Description)
}

type FinalGradeKind int

const (
	FinalGradeValue FinalGradeKind = iota
	FinalGradeExcused
	FinalGradeGradesWarning
	FinalGradeAbsenceWarning
	FinalGradeGradesAndAbsenceWarning
)

// FinalGrade is the grade a subject is closed with at the end of a half,
// Value is only set for FinalGradeValue.
type FinalGrade struct {
	Kind  FinalGradeKind
	Value int
}

func (f FinalGrade) String() string {
	switch f.Kind {
	case FinalGradeExcused:
		return "U"
	case FinalGradeGradesWarning:
		return "5?"
	case FinalGradeAbsenceWarning:
		return "N?"
	case FinalGradeGradesAndAbsenceWarning:
		return "5? N?"
	}
	return strconv.Itoa(f.Value)
}

type NotificationType int

const (
	NotificationGood NotificationType = iota
	NotificationBad
)

func (t NotificationType) String() string {
	if t == NotificationGood {
		return "good"
	}
	return "bad"
}

// NotificationReference points to a praise or reprimand in the student's record.
type NotificationReference struct {
	Type     NotificationType
	Message  string
	RecordID int
}

type Behaviour struct {
	Notifications []NotificationReference
	FinalGrade    FinalGrade
}

func (b Behaviour) clone() Behaviour {
	if b.Notifications != nil {
		notifications := make([]NotificationReference, len(b.Notifications))
		copy(notifications, b.Notifications)
		b.Notifications = notifications
	}
	return b
}
