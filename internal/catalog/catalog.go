// Package catalog resolves the operator's visible set of courses: favorited
// courses when any exist, otherwise all active enrollments. The resolved
// list is cached for the process lifetime.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coursecast/internal/canvas"
)

// CourseLister is the slice of the gateway the resolver needs.
type CourseLister interface {
	ListCoursesPage(ctx context.Context, page, perPage int) ([]canvas.Course, error)
}

// Resolver fetches and caches the course catalog.
type Resolver struct {
	client   CourseLister
	log      *zap.Logger
	pageSize int
	cache    []canvas.Course
}

// NewResolver builds a catalog resolver. pageSize bounds each listing page;
// the resolver always loops pages until exhaustion, so pageSize only affects
// the number of round trips.
func NewResolver(client CourseLister, pageSize int, log *zap.Logger) *Resolver {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Resolver{client: client, pageSize: pageSize, log: log}
}

// FetchAll lists every active course, following pagination until a short
// page signals exhaustion. Results are deduplicated by id, first occurrence
// wins, API order otherwise preserved.
func (r *Resolver) FetchAll(ctx context.Context) ([]canvas.Course, error) {
	var all []canvas.Course
	seen := make(map[int64]bool)

	for page := 1; ; page++ {
		batch, err := r.client.ListCoursesPage(ctx, page, r.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list courses (page %d): %w", page, err)
		}
		for _, c := range batch {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			all = append(all, c)
		}
		if len(batch) < r.pageSize {
			break
		}
	}

	r.log.Debug("fetched course catalog", zap.Int("courses", len(all)))
	return all, nil
}

// FetchFavorites lists active courses and keeps only the favorited ones.
// The favorites include flag on the listing call is a hint to the API; the
// is_favorite filter here is the authoritative step.
func (r *Resolver) FetchFavorites(ctx context.Context) ([]canvas.Course, error) {
	all, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	var favorites []canvas.Course
	for _, c := range all {
		if c.IsFavorite {
			favorites = append(favorites, c)
		}
	}
	return favorites, nil
}

// Resolve returns the operator's catalog: favorites when any exist, else all
// active courses. An empty favorites set is not an error, it just falls
// through to the full list. The first successful resolution is cached.
func (r *Resolver) Resolve(ctx context.Context) ([]canvas.Course, error) {
	if r.cache != nil {
		return r.cache, nil
	}

	all, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var favorites []canvas.Course
	for _, c := range all {
		if c.IsFavorite {
			favorites = append(favorites, c)
		}
	}
	if len(favorites) > 0 {
		r.cache = favorites
	} else {
		r.log.Debug("no favorited courses, falling back to all active")
		r.cache = all
	}
	return r.cache, nil
}

// Refresh drops the cache and re-resolves.
func (r *Resolver) Refresh(ctx context.Context) ([]canvas.Course, error) {
	r.cache = nil
	return r.Resolve(ctx)
}
