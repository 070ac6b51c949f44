package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jecna-client/internal/components/chrono"
	"jecna-client/pkg/gradestore"
	"jecna-client/pkg/jecna"

	"github.com/stretchr/testify/require"
)

func testSubject() jecna.Subject {
	grades := &jecna.GradesBuilder{}
	grades.
		Add(jecna.PartOf("Teorie"), jecna.Grade{Value: '1', Description: "Test OOP", ID: 1}).
		Add(jecna.PartOf("Cvičení"), jecna.Grade{Value: '4', ID: 2}).
		Add(jecna.PartOf("Teorie"), jecna.Grade{Value: 'N', Small: true, ID: 3})
	return jecna.Subject{
		Name:   jecna.Name{Full: "Programové vybavení", Short: "PV"},
		Grades: grades.Build(),
	}
}

func testPage(t *testing.T, subjects ...jecna.Subject) jecna.GradesPage {
	builder := &jecna.GradesPageBuilder{}
	for _, s := range subjects {
		builder.AddSubject(s)
	}
	page, err := builder.
		SetBehaviour(jecna.Behaviour{FinalGrade: jecna.FinalGrade{Value: 1}}).
		SetSchoolYear(jecna.NewSchoolYear(2021)).
		SetHalf(jecna.SecondHalf).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return page
}

func TestPrintSubject(t *testing.T) {
	var out bytes.Buffer
	printSubject(&out, testSubject(), nil)
	require.Equal(
		t,
		"Průměr z Programové vybavení: 2.50\n"+
			"Teorie:\n"+
			"  1 - Test OOP\n"+
			"  N\n"+
			"Cvičení:\n"+
			"  4\n",
		out.String(),
	)

	out.Reset()
	practice := jecna.PartOf("Cvičení")
	printSubject(&out, testSubject(), &practice)
	require.Equal(t, "Průměr z Programové vybavení: 2.50\n4\n", out.String())

	out.Reset()
	printSubject(&out, jecna.Subject{Name: jecna.Name{Full: "Tělesná výchova"}}, nil)
	require.Equal(t, "Průměr z Tělesná výchova: -\n", out.String())
}

func TestRenderSubjects(t *testing.T) {
	var out bytes.Buffer
	renderSubjects(&out, testPage(t, testSubject()))

	rendered := out.String()
	require.Contains(t, rendered, "Programové vybavení")
	require.Contains(t, rendered, "2.50")
	require.Contains(t, rendered, "2021/2022, 2. pololetí")
}

func TestPeriodFlags(t *testing.T) {
	clock := chrono.FixedImpl{Time: time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC)}

	year, half, err := periodFlags{}.resolve(clock)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, jecna.NewSchoolYear(2022), year)
	require.Equal(t, jecna.FirstHalf, half)

	year, half, err = periodFlags{year: 2020, half: 2}.resolve(clock)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, jecna.NewSchoolYear(2020), year)
	require.Equal(t, jecna.SecondHalf, half)

	_, _, err = periodFlags{half: 3}.resolve(clock)
	require.Error(t, err)
}

func TestCredentials(t *testing.T) {
	cfg := Config{AuthFile: filepath.Join(t.TempDir(), "jecna", "auth")}

	_, err := credentials(cfg, "", "")
	require.Error(t, err)

	err = saveAuth(cfg.AuthFile, jecna.Auth{Username: "novak", Password: "heslo"})
	if err != nil {
		t.Fatal(err)
	}
	auth, err := credentials(cfg, "", "")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, jecna.Auth{Username: "novak", Password: "heslo"}, auth)

	cfg.Username = "config"
	cfg.Password = "secret"
	auth, err = credentials(cfg, "", "")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "config", auth.Username)

	auth, err = credentials(cfg, "flag", "pass")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "flag", auth.Username)
}

type staticFetcher struct {
	page  jecna.GradesPage
	calls int
}

func (f *staticFetcher) FetchGrades(ctx context.Context, year jecna.SchoolYear, half jecna.SchoolYearHalf) (jecna.GradesPage, error) {
	f.calls++
	return f.page, nil
}

func TestWatcherTick(t *testing.T) {
	database, err := gradestore.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	store := gradestore.NewStore(database)
	err = store.Migrate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	fetcher := &staticFetcher{page: testPage(t, testSubject())}
	w := watcher{
		fetcher: fetcher,
		store:   store,
		clock:   chrono.FixedImpl{Time: time.Date(2022, time.March, 20, 12, 0, 0, 0, time.UTC)},
		user:    "novak",
	}
	w.tick(context.Background(), false)
	require.Equal(t, 1, fetcher.calls)

	unseen, err := store.UnseenGrades(context.Background(), "novak", fetcher.page)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, unseen, 0)

	series, err := store.Pull(context.Background(), "novak")
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, series, 1)
	require.True(t, strings.HasPrefix(series[0].Subject, "Programové"))
	require.InDelta(t, 2.5, series[0].Snapshots[0].Value, 1e-9)
}
