package jecna

import (
	"context"
	"time"

	"jecna-client/internal/components/assert"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// GradesFetcher is implemented by *Client and *CachedGrades.
type GradesFetcher interface {
	FetchGrades(ctx context.Context, year SchoolYear, half SchoolYearHalf) (GradesPage, error)
}

type period struct {
	year SchoolYear
	half SchoolYearHalf
}

// CachedGrades keeps recently fetched grade pages for ttl so repeated lookups
// of the same half do not hit the portal. Failed fetches are not cached.
type CachedGrades struct {
	inner GradesFetcher
	cache *expirable.LRU[period, GradesPage]
}

func NewCachedGrades(inner GradesFetcher, size int, ttl time.Duration) *CachedGrades {
	assert.NotNil(inner)
	assert.Positive(size, "cache size")
	return &CachedGrades{
		inner: inner,
		cache: expirable.NewLRU[period, GradesPage](size, nil, ttl),
	}
}

func (c *CachedGrades) FetchGrades(ctx context.Context, year SchoolYear, half SchoolYearHalf) (GradesPage, error) {
	key := period{year: year, half: half}
	page, ok := c.cache.Get(key)
	if ok {
		return page, nil
	}
	page, err := c.inner.FetchGrades(ctx, year, half)
	if err != nil {
		return GradesPage{}, err
	}
	c.cache.Add(key, page)
	return page, nil
}

// Invalidate drops every cached page.
func (c *CachedGrades) Invalidate() {
	c.cache.Purge()
}
