package query

import (
	"reflect"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

type Director struct {
	mapping.Node

	ID   string `neo4j:"id"`
	Name string
}

type Critic struct {
	mapping.Node

	Name string `neo4j:"id"`
}

type Review struct {
	mapping.RelationshipProperties

	ID     int64 `neo4j:"id,generated"`
	Stars  int
	Critic *Critic `neo4j:"targetNode"`
}

type Movie struct {
	mapping.Node

	Title    string `neo4j:"id"`
	Released time.Time
	Year     int64
	Tags     []string
	Location dbtype.Point2D
	Info     map[string]string `neo4j:"composite"`
	Active   bool
	Director *Director `neo4j:"relationship:DIRECTED,direction:INCOMING"`
	Reviews  []*Review
}

const loadTail = " OPTIONAL MATCH p = (n)-[:`DIRECTED`|`REVIEWS`*0..1]-() RETURN n, collect(DISTINCT p) AS __paths__"

func newCreator(t *testing.T, method string, returns ReturnKind, params ...Parameter) (*Creator, error) {
	t.Helper()
	ctx := mapping.NewMappingContext()
	e, err := ctx.RequiredNodeDescription(reflect.TypeOf(Movie{}))
	require.NoError(t, err)
	return NewCreator(ctx, e, method, params, returns)
}

func TestCreate(t *testing.T) {
	point := dbtype.Point2D{X: 13.4, Y: 52.5, SpatialRefId: 4326}

	tests := []struct {
		name    string
		method  string
		returns ReturnKind
		params  []Parameter
		args    []any
		cypher  string
		values  map[string]any
	}{
		{
			name:   "simple property",
			method: "findByTitle",
			params: []Parameter{Param[string]("title")},
			args:   []any{"Top Gear"},
			cypher: "MATCH (n:`Movie`) WHERE n.title = $title WITH DISTINCT n" + loadTail,
			values: map[string]any{"title": "Top Gear"},
		},
		{
			name:   "positional parameters",
			method: "findByTitleOrYearGreaterThan",
			params: []Parameter{{Type: reflect.TypeFor[string]()}, {Type: reflect.TypeFor[int64]()}},
			args:   []any{"Heat", int64(1990)},
			cypher: "MATCH (n:`Movie`) WHERE n.title = $0 OR n.year > $1 WITH DISTINCT n" + loadTail,
			values: map[string]any{"0": "Heat", "1": int64(1990)},
		},
		{
			name:   "ignore case",
			method: "findByTitleIgnoreCase",
			params: []Parameter{Param[string]("title")},
			args:   []any{"heat"},
			cypher: "MATCH (n:`Movie`) WHERE toLower(n.title) = toLower($title) WITH DISTINCT n" + loadTail,
			values: map[string]any{"title": "heat"},
		},
		{
			name:   "all ignore case skips non-string properties",
			method: "findByTitleAndYearAllIgnoreCase",
			params: []Parameter{Param[string]("title"), Param[int64]("year")},
			args:   []any{"heat", int64(1995)},
			cypher: "MATCH (n:`Movie`) WHERE toLower(n.title) = toLower($title) AND n.year = $year WITH DISTINCT n" + loadTail,
			values: map[string]any{"title": "heat", "year": int64(1995)},
		},
		{
			name:   "like",
			method: "findByTitleLike",
			params: []Parameter{Param[string]("title")},
			args:   []any{"Gear"},
			cypher: "MATCH (n:`Movie`) WHERE n.title =~ '.*' + $title + '.*' WITH DISTINCT n" + loadTail,
			values: map[string]any{"title": "Gear"},
		},
		{
			name:   "not like ignoring case",
			method: "findByTitleNotLikeIgnoreCase",
			params: []Parameter{Param[string]("title")},
			args:   []any{"gear"},
			cypher: "MATCH (n:`Movie`) WHERE NOT (n.title =~ '(?i).*' + $title + '.*') WITH DISTINCT n" + loadTail,
			values: map[string]any{"title": "gear"},
		},
		{
			name:   "containing on a list property",
			method: "findByTagsContaining",
			params: []Parameter{Param[string]("tag")},
			args:   []any{"cars"},
			cypher: "MATCH (n:`Movie`) WHERE $tag IN n.tags WITH DISTINCT n" + loadTail,
			values: map[string]any{"tag": "cars"},
		},
		{
			name:   "not containing on a string property",
			method: "findByTitleNotContaining",
			params: []Parameter{Param[string]("part")},
			args:   []any{"Gear"},
			cypher: "MATCH (n:`Movie`) WHERE NOT (n.title CONTAINS $part) WITH DISTINCT n" + loadTail,
			values: map[string]any{"part": "Gear"},
		},
		{
			name:   "not in",
			method: "findByYearNotIn",
			params: []Parameter{Param[[]int64]("years")},
			args:   []any{[]int64{1999, 2001}},
			cypher: "MATCH (n:`Movie`) WHERE NOT (n.year IN $years) WITH DISTINCT n" + loadTail,
			values: map[string]any{"years": []any{int64(1999), int64(2001)}},
		},
		{
			name:   "between two values",
			method: "findByYearBetween",
			params: []Parameter{Param[int64]("from"), Param[int64]("to")},
			args:   []any{int64(1990), int64(2000)},
			cypher: "MATCH (n:`Movie`) WHERE n.year >= $from AND n.year <= $to WITH DISTINCT n" + loadTail,
			values: map[string]any{"from": int64(1990), "to": int64(2000)},
		},
		{
			name:    "between a lower-bounded range",
			method:  "countByYearBetween",
			returns: ReturnsCount,
			params:  []Parameter{Param[domain.Range]("years")},
			args:    []any{domain.AtLeast(int64(2000))},
			cypher:  "MATCH (n:`Movie`) WHERE n.year >= $years.lb RETURN count(DISTINCT n)",
			values:  map[string]any{"years": map[string]any{"lb": int64(2000)}},
		},
		{
			name:    "between an exclusive range",
			method:  "existsByYearBetween",
			returns: ReturnsBool,
			params:  []Parameter{Param[domain.Range]("years")},
			args:    []any{domain.Open(int64(1), int64(9))},
			cypher:  "MATCH (n:`Movie`) WHERE n.year > $years.lb AND n.year < $years.ub RETURN count(n) > 0",
			values:  map[string]any{"years": map[string]any{"lb": int64(1), "ub": int64(9)}},
		},
		{
			name:   "temporal",
			method: "findByReleasedAfter",
			params: []Parameter{Param[time.Time]("date")},
			args:   []any{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
			cypher: "MATCH (n:`Movie`) WHERE n.released > $date WITH DISTINCT n" + loadTail,
			values: map[string]any{"date": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:   "null and boolean checks",
			method: "findByYearIsNullAndActiveTrueAndTagsIsNotEmpty",
			cypher: "MATCH (n:`Movie`) WHERE n.year IS NULL AND n.active = true AND size(n.tags) > 0 WITH DISTINCT n" + loadTail,
			values: map[string]any{},
		},
		{
			name:   "near without distance sorts",
			method: "findByLocationNear",
			params: []Parameter{Param[dbtype.Point2D]("point")},
			args:   []any{point},
			cypher: "MATCH (n:`Movie`) WITH DISTINCT n ORDER BY point.distance(n.location, $point) ASC" +
				loadTail + " ORDER BY point.distance(n.location, $point) ASC",
			values: map[string]any{"point": point},
		},
		{
			name:   "near with distance",
			method: "findByLocationNear",
			params: []Parameter{Param[dbtype.Point2D]("point"), Param[domain.Distance]("max")},
			args:   []any{point, domain.NewDistance(2, domain.Kilometers)},
			cypher: "MATCH (n:`Movie`) WHERE point.distance(n.location, $point) <= $max WITH DISTINCT n" + loadTail,
			values: map[string]any{"point": point, "max": 2000.0},
		},
		{
			name:   "near with distance range",
			method: "findByLocationNear",
			params: []Parameter{Param[domain.Range]("ring"), Param[dbtype.Point2D]("point")},
			args:   []any{domain.Closed(domain.NewDistance(1), domain.NewDistance(5)), point},
			cypher: "MATCH (n:`Movie`) WHERE point.distance(n.location, $point) >= $ring.lb AND point.distance(n.location, $point) <= $ring.ub WITH DISTINCT n" + loadTail,
			values: map[string]any{"point": point, "ring": map[string]any{"lb": 1.0, "ub": 5.0}},
		},
		{
			name:   "within circle",
			method: "findByLocationWithin",
			params: []Parameter{Param[domain.Circle]("area")},
			args:   []any{domain.Circle{Center: point, Radius: domain.NewDistance(10)}},
			cypher: "MATCH (n:`Movie`) WHERE point.distance(n.location, $area.center) <= $area.radius WITH DISTINCT n" + loadTail,
			values: map[string]any{"area": map[string]any{"center": point, "radius": 10.0}},
		},
		{
			name:   "within box",
			method: "findByLocationWithin",
			params: []Parameter{Param[domain.Box]("area")},
			args:   []any{domain.Box{LowerLeft: point, UpperRight: point}},
			cypher: "MATCH (n:`Movie`) WHERE point.withinBBox(n.location, $area.llc, $area.urc) WITH DISTINCT n" + loadTail,
			values: map[string]any{"area": map[string]any{"llc": point, "urc": point}},
		},
		{
			name:   "traversal",
			method: "findByDirectorName",
			params: []Parameter{Param[string]("name")},
			args:   []any{"Mann"},
			cypher: "MATCH (n:`Movie`), (n)<-[r_director:`DIRECTED`]-(n_director:`Director`) WHERE n_director.name = $name WITH DISTINCT n" + loadTail,
			values: map[string]any{"name": "Mann"},
		},
		{
			name:   "relationship property",
			method: "findByReviewsStarsGreaterThanEqual",
			params: []Parameter{Param[int]("stars")},
			args:   []any{4},
			cypher: "MATCH (n:`Movie`), (n)-[r_reviews:`REVIEWS`]->(n_reviews:`Critic`) WHERE r_reviews.stars >= $stars WITH DISTINCT n" + loadTail,
			values: map[string]any{"stars": int64(4)},
		},
		{
			name:   "limit and static order",
			method: "findFirst3ByYearOrderByTitleDesc",
			params: []Parameter{Param[int64]("year")},
			args:   []any{int64(2000)},
			cypher: "MATCH (n:`Movie`) WHERE n.year = $year WITH DISTINCT n ORDER BY n.title DESC LIMIT 3" + loadTail + " ORDER BY n.title DESC",
			values: map[string]any{"year": int64(2000)},
		},
		{
			name:   "pageable and sort arguments",
			method: "findByActiveFalse",
			params: []Parameter{Param[domain.Pageable]("page"), Param[domain.Sort]("sort")},
			args:   []any{domain.PageRequest(1, 10), domain.Sort{domain.Asc("Year")}},
			cypher: "MATCH (n:`Movie`) WHERE n.active = false WITH DISTINCT n ORDER BY n.year ASC SKIP 10 LIMIT 10" + loadTail + " ORDER BY n.year ASC",
			values: map[string]any{},
		},
		{
			name:    "delete returning a count",
			method:  "deleteByTitle",
			returns: ReturnsCount,
			params:  []Parameter{Param[string]("title")},
			args:    []any{"Heat"},
			cypher:  "MATCH (n:`Movie`) WHERE n.title = $title WITH DISTINCT n DETACH DELETE n RETURN count(*)",
			values:  map[string]any{"title": "Heat"},
		},
		{
			name:    "delete returning nothing",
			method:  "removeByYearLessThan",
			returns: ReturnsNothing,
			params:  []Parameter{Param[int64]("year")},
			args:    []any{int64(1950)},
			cypher:  "MATCH (n:`Movie`) WHERE n.year < $year WITH DISTINCT n DETACH DELETE n",
			values:  map[string]any{"year": int64(1950)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCreator(t, tt.method, tt.returns, tt.params...)
			require.NoError(t, err)
			got, err := c.Create(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.cypher, got.Cypher)
			assert.Equal(t, tt.values, got.Params)
		})
	}
}

func TestCreateFlags(t *testing.T) {
	c, err := newCreator(t, "findTop2ByActiveTrue", ReturnsEntities)
	require.NoError(t, err)
	st, err := c.Create(nil)
	require.NoError(t, err)
	assert.True(t, st.IsLimiting)
	assert.Equal(t, int64(2), st.Limit)
	assert.False(t, st.IsCount || st.IsExists || st.IsDelete)

	c, err = newCreator(t, "countByActiveTrue", ReturnsCount)
	require.NoError(t, err)
	st, err = c.Create(nil)
	require.NoError(t, err)
	assert.True(t, st.IsCount)

	c, err = newCreator(t, "deleteByActiveTrue", ReturnsNothing)
	require.NoError(t, err)
	st, err = c.Create(nil)
	require.NoError(t, err)
	assert.True(t, st.IsDelete)
}

func TestCreateCount(t *testing.T) {
	c, err := newCreator(t, "findByTitle", ReturnsPage, Param[string]("title"), Param[domain.Pageable]("page"))
	require.NoError(t, err)
	st, err := c.CreateCount([]any{"Heat", domain.PageRequest(0, 5)})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Movie`) WHERE n.title = $title RETURN count(DISTINCT n)", st.Cypher)
	assert.True(t, st.IsCount)
}

func TestCreateProjection(t *testing.T) {
	c, err := newCreator(t, "findByYear", ReturnsProjection, Param[int64]("year"))
	require.NoError(t, err)
	st, err := c.Create([]any{int64(1995)})
	require.NoError(t, err)
	assert.Contains(t, st.Cypher, "WHERE n.year = $year WITH DISTINCT n RETURN elementId(n) AS __internalNeo4jId__, n.title AS title")
}

func TestNewCreatorErrors(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		returns ReturnKind
		params  []Parameter
		message string
	}{
		{"unknown property", "findByBudget", ReturnsEntities, []Parameter{Param[int]("b")}, "no property Budget found for type Movie"},
		{"composite property", "findByInfo", ReturnsEntities, []Parameter{Param[map[string]string]("i")}, "composite properties"},
		{"ignore case on a number", "findByYearIgnoreCase", ReturnsEntities, []Parameter{Param[int64]("y")}, "only the case of String based properties can be ignored"},
		{"ignore case on a keyword", "findByTitleGreaterThanIgnoreCase", ReturnsEntities, []Parameter{Param[string]("t")}, "[Is, Equals, IsNot, Not, IsLike, Like"},
		{"temporal keyword on a number", "findByYearAfter", ReturnsEntities, []Parameter{Param[int64]("y")}, "[IsBefore, Before, IsAfter, After]"},
		{"empty check on a scalar", "findByTitleIsEmpty", ReturnsEntities, nil, "collection properties"},
		{"near on a number", "findByYearNear", ReturnsEntities, []Parameter{Param[dbtype.Point2D]("p")}, "dbtype.Point2D, dbtype.Point3D"},
		{"near without a point", "findByLocationNear", ReturnsEntities, []Parameter{Param[string]("p")}, "requires a reference point"},
		{"within without an area", "findByLocationWithin", ReturnsEntities, []Parameter{Param[dbtype.Point2D]("p")}, "requires an area"},
		{"not enough parameters", "findByTitleAndYear", ReturnsEntities, []Parameter{Param[string]("t")}, "Not enough formal, bindable parameters for parts"},
		{"special parameters are not bindable", "findByTitle", ReturnsEntities, []Parameter{Param[domain.Pageable]("p")}, "Not enough formal, bindable parameters for parts"},
		{"delete returning entities", "deleteByTitle", ReturnsEntity, []Parameter{Param[string]("t")}, "can only return the number of deleted nodes or nothing"},
		{"count returning entities", "countByTitle", ReturnsEntities, []Parameter{Param[string]("t")}, "must return a count"},
		{"exists returning a count", "existsByTitle", ReturnsCount, []Parameter{Param[string]("t")}, "must return a bool"},
		{"find returning nothing", "findByTitle", ReturnsNothing, []Parameter{Param[string]("t")}, "cannot return nothing"},
		{"unknown sort property", "findByTitleOrderByBudgetAsc", ReturnsEntities, []Parameter{Param[string]("t")}, "invalid sort property"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCreator(t, tt.method, tt.returns, tt.params...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDerivation)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), tt.method)
		})
	}
}

func TestCreateChecksArguments(t *testing.T) {
	c, err := newCreator(t, "findByTitle", ReturnsEntities, Param[string]("title"))
	require.NoError(t, err)

	_, err = c.Create(nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = c.Create([]any{42})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
