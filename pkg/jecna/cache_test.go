package jecna

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls int
	err   error
	page  GradesPage
}

func (f *countingFetcher) FetchGrades(ctx context.Context, year SchoolYear, half SchoolYearHalf) (GradesPage, error) {
	f.calls++
	if f.err != nil {
		return GradesPage{}, f.err
	}
	return f.page, nil
}

func TestCachedGrades(t *testing.T) {
	fetcher := &countingFetcher{page: parseGradesFixture(t)}
	cached := NewCachedGrades(fetcher, 4, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		page, err := cached.FetchGrades(ctx, NewSchoolYear(2021), SecondHalf)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, NewSchoolYear(2021), page.SchoolYear())
	}
	require.Equal(t, 1, fetcher.calls)

	_, err := cached.FetchGrades(ctx, NewSchoolYear(2021), FirstHalf)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 2, fetcher.calls)

	cached.Invalidate()
	_, err = cached.FetchGrades(ctx, NewSchoolYear(2021), SecondHalf)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 3, fetcher.calls)
}

func TestCachedGradesErrors(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("portal down")}
	cached := NewCachedGrades(fetcher, 4, time.Minute)
	ctx := context.Background()

	_, err := cached.FetchGrades(ctx, NewSchoolYear(2021), SecondHalf)
	require.Error(t, err)
	_, err = cached.FetchGrades(ctx, NewSchoolYear(2021), SecondHalf)
	require.Error(t, err)
	require.Equal(t, 2, fetcher.calls)
}
