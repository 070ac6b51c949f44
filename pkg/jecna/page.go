package jecna

import (
	"errors"
	"strings"

	"github.com/antzucaro/matchr"
)

// Subject is a single row of the grades page.
type Subject struct {
	Name   Name
	Grades Grades
	// FinalGrade is nil until the subject is closed.
	FinalGrade *FinalGrade
}

// clone copies the final grade, Grades never hands out shared memory.
func (s Subject) clone() Subject {
	if s.FinalGrade != nil {
		final := *s.FinalGrade
		s.FinalGrade = &final
	}
	return s
}

// GradesPage is the parsed grades page of one half of a school year.
type GradesPage struct {
	subjects   []Subject
	behaviour  Behaviour
	schoolYear SchoolYear
	half       SchoolYearHalf
}

func (p GradesPage) SchoolYear() SchoolYear {
	return p.schoolYear
}

func (p GradesPage) Half() SchoolYearHalf {
	return p.half
}

func (p GradesPage) Behaviour() Behaviour {
	return p.behaviour.clone()
}

// Subjects returns the subjects in the order they appear on the page.
func (p GradesPage) Subjects() []Subject {
	out := make([]Subject, len(p.subjects))
	for i, s := range p.subjects {
		out[i] = s.clone()
	}
	return out
}

func (p GradesPage) SubjectNames() []string {
	out := make([]string, len(p.subjects))
	for i, s := range p.subjects {
		out[i] = s.Name.Full
	}
	return out
}

// Subject finds a subject by its full name, the abbreviation is tried second.
func (p GradesPage) Subject(name string) (Subject, bool) {
	for _, s := range p.subjects {
		if s.Name.Full == name {
			return s.clone(), true
		}
	}
	for _, s := range p.subjects {
		if s.Name.Short != "" && s.Name.Short == name {
			return s.clone(), true
		}
	}
	return Subject{}, false
}

// Lookup is like Subject but returns a *SubjectNotFoundError suggesting
// the most similar subject name when nothing matches.
func (p GradesPage) Lookup(name string) (Subject, error) {
	subject, ok := p.Subject(name)
	if ok {
		return subject, nil
	}

	closest := ""
	highest := 0.0
	for _, s := range p.subjects {
		similarity := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(s.Name.Full), false)
		if similarity > highest {
			highest = similarity
			closest = s.Name.Full
		}
	}
	if highest < 0.7 {
		closest = ""
	}
	return Subject{}, &SubjectNotFoundError{Name: name, Closest: closest}
}

type GradesPageBuilder struct {
	subjects   []Subject
	behaviour  *Behaviour
	schoolYear *SchoolYear
	half       SchoolYearHalf
}

func (b *GradesPageBuilder) AddSubject(s Subject) *GradesPageBuilder {
	b.subjects = append(b.subjects, s)
	return b
}

func (b *GradesPageBuilder) SetBehaviour(behaviour Behaviour) *GradesPageBuilder {
	b.behaviour = &behaviour
	return b
}

func (b *GradesPageBuilder) SetSchoolYear(year SchoolYear) *GradesPageBuilder {
	b.schoolYear = &year
	return b
}

func (b *GradesPageBuilder) SetHalf(half SchoolYearHalf) *GradesPageBuilder {
	b.half = half
	return b
}

func (b *GradesPageBuilder) Build() (GradesPage, error) {
	if b.behaviour == nil {
		return GradesPage{}, errors.New("behaviour has not been set")
	}
	if b.schoolYear == nil {
		return GradesPage{}, errors.New("school year has not been set")
	}
	if !b.half.Valid() {
		return GradesPage{}, errors.New("school year half has not been set")
	}
	subjects := make([]Subject, len(b.subjects))
	for i, s := range b.subjects {
		subjects[i] = s.clone()
	}
	return GradesPage{
		subjects:   subjects,
		behaviour:  b.behaviour.clone(),
		schoolYear: *b.schoolYear,
		half:       b.half,
	}, nil
}
