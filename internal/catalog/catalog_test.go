package catalog

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursecast/internal/canvas"
)

// fakeLister serves canned pages and counts fetches.
type fakeLister struct {
	pages   [][]canvas.Course
	err     error
	fetches int
}

func (f *fakeLister) ListCoursesPage(ctx context.Context, page, perPage int) ([]canvas.Course, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	if page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

func course(id int64, name string, fav bool) canvas.Course {
	return canvas.Course{ID: id, Name: name, CourseCode: name, IsFavorite: fav}
}

func TestResolver_FetchAllFollowsPagination(t *testing.T) {
	lister := &fakeLister{pages: [][]canvas.Course{
		{course(1, "A", false), course(2, "B", false)},
		{course(3, "C", false), course(4, "D", false)},
		{course(5, "E", false)},
	}}
	r := NewResolver(lister, 2, zap.NewNop())

	all, err := r.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, 3, lister.fetches, "must loop pages until a short page")
}

func TestResolver_FetchAllDeduplicatesByID(t *testing.T) {
	lister := &fakeLister{pages: [][]canvas.Course{
		{course(1, "A", false), course(2, "B", false)},
		{course(2, "B", false), course(3, "C", false)},
	}}
	r := NewResolver(lister, 2, zap.NewNop())

	all, err := r.FetchAll(context.Background())
	require.NoError(t, err)

	want := []canvas.Course{course(1, "A", false), course(2, "B", false), course(3, "C", false)}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_ResolvePrefersFavorites(t *testing.T) {
	lister := &fakeLister{pages: [][]canvas.Course{
		{course(1, "A", false), course(2, "B", true), course(3, "C", true)},
	}}
	r := NewResolver(lister, 100, zap.NewNop())

	got, err := r.Resolve(context.Background())
	require.NoError(t, err)

	want := []canvas.Course{course(2, "B", true), course(3, "C", true)}
	assert.Equal(t, want, got)
}

func TestResolver_ResolveFallsBackToAllWhenNoFavorites(t *testing.T) {
	lister := &fakeLister{pages: [][]canvas.Course{
		{course(1, "A", false), course(2, "B", false)},
	}}
	r := NewResolver(lister, 100, zap.NewNop())

	got, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2, "empty favorites must fall back to all active courses")
}

func TestResolver_ResolveCachesAndRefreshRefetches(t *testing.T) {
	lister := &fakeLister{pages: [][]canvas.Course{
		{course(1, "A", true)},
	}}
	r := NewResolver(lister, 100, zap.NewNop())

	ctx := context.Background()
	_, err := r.Resolve(ctx)
	require.NoError(t, err)
	_, err = r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.fetches, "second Resolve must hit the cache")

	_, err = r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.fetches, "Refresh must force a re-fetch")
}

func TestResolver_FetchErrorPropagates(t *testing.T) {
	lister := &fakeLister{err: &canvas.APIError{Status: 503, Message: "down"}}
	r := NewResolver(lister, 100, zap.NewNop())

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.Nil(t, r.cache, "failed resolve must not populate the cache")
}
