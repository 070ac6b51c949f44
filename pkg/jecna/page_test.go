package jecna

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGradesPageLookup(t *testing.T) {
	page := parseGradesFixture(t)

	math, err := page.Lookup("Matematika")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Matematika", math.Name.Full)

	byShort, err := page.Lookup("M")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, math.Name, byShort.Name)

	_, err = page.Lookup("Matematyka")
	require.ErrorIs(t, err, ErrSubjectNotFound)
	var notFound *SubjectNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "Matematyka", notFound.Name)
	require.Equal(t, "Matematika", notFound.Closest)

	_, err = page.Lookup("Qqq")
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "", notFound.Closest)

	// the behaviour row is not a subject
	_, ok := page.Subject("Chování")
	require.False(t, ok)
}

func TestGradesPageImmutable(t *testing.T) {
	page := parseGradesFixture(t)

	subjects := page.Subjects()
	subjects[0] = Subject{Name: Name{Full: "Changed"}}
	require.Equal(t, "Matematika", page.Subjects()[0].Name.Full)

	grades := page.Subjects()[0].Grades.All()
	grades[0].Value = '5'
	grades[0].Teacher.Full = "Changed"
	math, _ := page.Subject("Matematika")
	require.Equal(t, '1', math.Grades.All()[0].Value)
	require.Equal(t, "Jan Novák", math.Grades.All()[0].Teacher.Full)

	partition := math.Grades.ForPartition(Undivided())
	partition[0].Teacher.Short = "Xyz"
	require.Equal(t, "Nov", math.Grades.All()[0].Teacher.Short)

	math.FinalGrade.Value = 5
	page.Subjects()[0].FinalGrade.Value = 4
	again, err := page.Lookup("M")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, &FinalGrade{Kind: FinalGradeValue, Value: 2}, again.FinalGrade)

	behaviour := page.Behaviour()
	behaviour.Notifications[0].Message = "Changed"
	require.Equal(t, "Pochvala třídního učitele", page.Behaviour().Notifications[0].Message)
}

func TestGradesPageBuilder(t *testing.T) {
	_, err := (&GradesPageBuilder{}).Build()
	require.Error(t, err)

	page, err := (&GradesPageBuilder{}).
		AddSubject(Subject{Name: Name{Full: "Fyzika", Short: "F"}}).
		SetBehaviour(Behaviour{FinalGrade: FinalGrade{Value: 1}}).
		SetSchoolYear(NewSchoolYear(2023)).
		SetHalf(FirstHalf).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"Fyzika"}, page.SubjectNames())
	require.Equal(t, NewSchoolYear(2023), page.SchoolYear())
	require.Equal(t, FirstHalf, page.Half())
}
