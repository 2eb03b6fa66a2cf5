package mapper

import (
	"reflect"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

type MovieSummary struct {
	Title   string `neo4j:"column:movieTitle"`
	Ratings int    `neo4j:"column:ratingCount"`
	Year    int64
	Ignored string `neo4j:"-"`
}

func projector(t *testing.T) *Reader {
	t.Helper()
	return NewReader(mapping.NewMappingContext())
}

func TestProjectStruct(t *testing.T) {
	r := projector(t)
	records := []*neo4j.Record{
		{Keys: []string{"movieTitle", "ratingCount", "year"}, Values: []any{"Heat", int64(2), int64(1995)}},
		{Keys: []string{"movieTitle", "ratingCount"}, Values: []any{"Top Gear", int64(0)}},
	}

	values, err := r.Project(records, reflect.TypeFor[MovieSummary]())
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, MovieSummary{Title: "Heat", Ratings: 2, Year: 1995}, values[0].Interface())
	assert.Equal(t, MovieSummary{Title: "Top Gear"}, values[1].Interface())
}

func TestProjectPointerAndScalar(t *testing.T) {
	r := projector(t)

	v, err := r.ProjectRecord(&neo4j.Record{Keys: []string{"movieTitle", "ratingCount"}, Values: []any{"Heat", int64(1)}}, reflect.TypeFor[*MovieSummary]())
	require.NoError(t, err)
	assert.Equal(t, "Heat", v.Interface().(*MovieSummary).Title)

	v, err = r.ProjectRecord(&neo4j.Record{Keys: []string{"count(n)"}, Values: []any{int64(3)}}, reflect.TypeFor[int]())
	require.NoError(t, err)
	assert.Equal(t, 3, v.Interface())

	released := time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC)
	v, err = r.ProjectRecord(&neo4j.Record{Keys: []string{"released"}, Values: []any{released}}, reflect.TypeFor[time.Time]())
	require.NoError(t, err)
	assert.Equal(t, released, v.Interface())
}

func TestProjectErrors(t *testing.T) {
	r := projector(t)

	_, err := r.ProjectRecord(&neo4j.Record{Keys: []string{"movieTitle"}, Values: []any{"Heat"}}, reflect.TypeFor[MovieSummary]())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSuchColumn)
	assert.Contains(t, err.Error(), "ratingCount")

	_, err = r.ProjectRecord(&neo4j.Record{Keys: []string{"movieTitle", "ratingCount"}, Values: []any{"Heat", "many"}}, reflect.TypeFor[MovieSummary]())
	assert.ErrorIs(t, err, ErrMapping)

	_, err = r.ProjectRecord(&neo4j.Record{Keys: []string{"count(n)"}, Values: []any{nil}}, reflect.TypeFor[int64]())
	assert.ErrorIs(t, err, ErrNullResult)

	_, err = r.ProjectRecord(&neo4j.Record{Keys: []string{"a", "b"}, Values: []any{1, 2}}, reflect.TypeFor[int64]())
	assert.ErrorIs(t, err, ErrMapping)
}
