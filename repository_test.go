package neopersist_test

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	neopersist "github.com/saulfrancisco-ruizacevedo/neopersist-ogm"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/internal/mocks"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

type Person struct {
	neopersist.Node

	Name string `neo4j:"id"`
	Born int64
}

type Movie struct {
	neopersist.Node

	Title    string `neo4j:"id"`
	Released int64
	Director *Person `neo4j:"relationship:DIRECTED,direction:INCOMING"`
}

type Tag struct {
	neopersist.Node

	Name string `neo4j:"id"`
}

type Note struct {
	neopersist.Node

	ID   int64 `neo4j:"id,generated"`
	Text string
}

type Account struct {
	neopersist.Node

	Login  string   `neo4j:"id"`
	Labels []string `neo4j:"dynamicLabels"`
}

type runCall struct {
	query  string
	params map[string]any
}

func result(keys []string, rows ...[]any) *neo4j.EagerResult {
	res := &neo4j.EagerResult{Keys: keys}
	for _, row := range rows {
		res.Records = append(res.Records, &neo4j.Record{Keys: keys, Values: row})
	}
	return res
}

func saved(elementID string, id any) *neo4j.EagerResult {
	return result([]string{"__internalNeo4jId__", "__id__"}, []any{elementID, id})
}

func count(n int64) *neo4j.EagerResult {
	return result([]string{"count"}, []any{n})
}

// scripted answers the runner's calls with results in order and records the calls.
func scripted(runner *mocks.MockDBRunner, results ...*neo4j.EagerResult) *[]runCall {
	calls := &[]runCall{}
	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(len(results)).
		DoAndReturn(func(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
			res := results[len(*calls)]
			*calls = append(*calls, runCall{query: query, params: params})
			return res, nil
		})
	return calls
}

func newRepository[T any](t *testing.T) (*neopersist.Repository[T], *mocks.MockDBRunner) {
	t.Helper()
	runner := mocks.NewMockDBRunner(gomock.NewController(t))
	repo, err := neopersist.RepositoryFor[T](neopersist.NewPersistenceManager(runner))
	require.NoError(t, err)
	return repo, runner
}

var (
	heatNode = dbtype.Node{Id: 1, ElementId: "4:db:1", Labels: []string{"Movie"},
		Props: map[string]any{"title": "Heat", "released": int64(1995)}}
	mannNode = dbtype.Node{Id: 2, ElementId: "4:db:2", Labels: []string{"Person"},
		Props: map[string]any{"name": "Michael Mann", "born": int64(1943)}}
	directed = dbtype.Relationship{Id: 9, ElementId: "5:db:9", Type: "DIRECTED",
		StartId: 2, StartElementId: "4:db:2", EndId: 1, EndElementId: "4:db:1"}
)

func TestNewRepositoryRejectsNonEntities(t *testing.T) {
	pm := neopersist.NewPersistenceManager(mocks.NewMockDBRunner(gomock.NewController(t)))

	_, err := neopersist.RepositoryFor[int](pm)
	assert.ErrorIs(t, err, neopersist.ErrNotEntity)

	_, err = neopersist.RepositoryFor[Movie](pm)
	assert.NoError(t, err)
}

func TestRepositorySaveCascadesRelationships(t *testing.T) {
	repo, runner := newRepository[Movie](t)
	calls := scripted(runner,
		saved("4:db:1", "Heat"),
		result(nil),
		saved("4:db:2", "Michael Mann"),
		result([]string{"__internalNeo4jId__"}, []any{"5:db:9"}),
	)

	movie := &Movie{Title: "Heat", Released: 1995, Director: &Person{Name: "Michael Mann", Born: 1943}}
	require.NoError(t, repo.Save(context.Background(), movie))
	require.Len(t, *calls, 4)

	c := (*calls)[0]
	assert.Contains(t, c.query, "MERGE (n:`Movie` {title: $__id__}) SET n = $__properties__")
	assert.Equal(t, "Heat", c.params["__id__"])
	assert.Equal(t, map[string]any{"title": "Heat", "released": int64(1995)}, c.params["__properties__"])

	c = (*calls)[1]
	assert.Equal(t, "MATCH (startNode)<-[relProps:`DIRECTED`]-(:`Person`) WHERE elementId(startNode) = $fromId DELETE relProps", c.query)
	assert.Equal(t, map[string]any{"fromId": "4:db:1"}, c.params)

	c = (*calls)[2]
	assert.Contains(t, c.query, "MERGE (n:`Person` {name: $__id__})")
	assert.Equal(t, map[string]any{"name": "Michael Mann", "born": int64(1943)}, c.params["__properties__"])

	c = (*calls)[3]
	assert.Contains(t, c.query, "MERGE (startNode)<-[relProps:`DIRECTED`]-(endNode)")
	assert.Equal(t, map[string]any{"fromId": "4:db:1", "toId": "4:db:2"}, c.params)
}

func TestRepositorySaveLeavesNilRelationshipsAlone(t *testing.T) {
	repo, runner := newRepository[Movie](t)
	calls := scripted(runner, saved("4:db:1", "Heat"))

	require.NoError(t, repo.Save(context.Background(), &Movie{Title: "Heat"}))
	assert.Len(t, *calls, 1)
}

func TestRepositorySaveInternalID(t *testing.T) {
	repo, runner := newRepository[Note](t)
	calls := scripted(runner, saved("4:db:7", int64(7)), saved("4:db:7", int64(7)))
	note := &Note{Text: "first"}

	require.NoError(t, repo.Save(context.Background(), note))
	assert.Equal(t, int64(7), note.ID)
	assert.Contains(t, (*calls)[0].query, "CREATE (n:`Note`)")
	assert.NotContains(t, (*calls)[0].params, "__id__")

	note.Text = "second"
	require.NoError(t, repo.Save(context.Background(), note))
	assert.Contains(t, (*calls)[1].query, "MATCH (n:`Note`) WHERE id(n) = $__id__")
	assert.Equal(t, int64(7), (*calls)[1].params["__id__"])
	assert.Equal(t, map[string]any{"text": "second"}, (*calls)[1].params["__properties__"])
}

func TestRepositorySaveReconcilesDynamicLabels(t *testing.T) {
	repo, runner := newRepository[Account](t)
	calls := scripted(runner,
		result([]string{"__labels__"}, []any{[]any{"Old", "Keep"}}),
		saved("4:db:3", "daniela"),
	)

	require.NoError(t, repo.Save(context.Background(), &Account{Login: "daniela", Labels: []string{"Keep", "New"}}))
	require.Len(t, *calls, 2)
	assert.Equal(t, []string{"Account"}, (*calls)[0].params["__staticLabels__"])
	assert.Contains(t, (*calls)[1].query, "SET n:`Keep`:`New` REMOVE n:`Old`")
}

func TestRepositorySaveAllBatches(t *testing.T) {
	repo, runner := newRepository[Tag](t)
	calls := scripted(runner, result(nil))

	require.NoError(t, repo.SaveAll(context.Background(), []*Tag{{Name: "crime"}, {Name: "heist"}}))
	require.Len(t, *calls, 1)
	assert.Contains(t, (*calls)[0].query, "UNWIND $__entities__ AS entity")
	assert.Equal(t, []any{
		map[string]any{"__id__": "crime", "__properties__": map[string]any{"name": "crime"}},
		map[string]any{"__id__": "heist", "__properties__": map[string]any{"name": "heist"}},
	}, (*calls)[0].params["__entities__"])
}

func TestRepositoryFindByID(t *testing.T) {
	repo, runner := newRepository[Movie](t)
	calls := scripted(runner,
		result([]string{"n", "__paths__"}, []any{heatNode, []any{
			dbtype.Path{Nodes: []dbtype.Node{heatNode, mannNode}, Relationships: []dbtype.Relationship{directed}},
		}}),
		result([]string{"n", "__paths__"}),
	)

	movie, err := repo.FindByID(context.Background(), "Heat")
	require.NoError(t, err)
	assert.Equal(t, "Heat", movie.Title)
	assert.Equal(t, int64(1995), movie.Released)
	require.NotNil(t, movie.Director)
	assert.Equal(t, "Michael Mann", movie.Director.Name)
	assert.Contains(t, (*calls)[0].query, "MATCH (n:`Movie`) WHERE n.title = $__id__")
	assert.Equal(t, "Heat", (*calls)[0].params["__id__"])

	_, err = repo.FindByID(context.Background(), "Ronin")
	assert.ErrorIs(t, err, neopersist.ErrNotFound)
}

func TestRepositoryFindAllWithOptions(t *testing.T) {
	repo, runner := newRepository[Movie](t)
	calls := scripted(runner, result([]string{"n", "__paths__"}, []any{heatNode, []any{}}))

	movies, err := repo.FindAll(context.Background(), neopersist.WithLoadDepth(0))
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Nil(t, movies[0].Director)
	assert.NotContains(t, (*calls)[0].query, "OPTIONAL MATCH")
}

func TestRepositoryCountByProperty(t *testing.T) {
	repo, runner := newRepository[Movie](t)
	calls := scripted(runner, count(2))

	n, err := repo.CountByProperty(context.Background(), "Released", 1995)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "MATCH (n:`Movie`) WHERE n.released = $value RETURN count(DISTINCT n)", (*calls)[0].query)
	assert.Equal(t, map[string]any{"value": int64(1995)}, (*calls)[0].params)

	_, err = repo.CountByProperty(context.Background(), "budget", 1)
	assert.ErrorIs(t, err, neopersist.ErrUnknownProperty)
}

func TestRepositoryFindOne(t *testing.T) {
	other := heatNode
	other.ElementId, other.Props = "4:db:5", map[string]any{"title": "Thief"}

	tests := []struct {
		name    string
		result  *neo4j.EagerResult
		wantErr error
	}{
		{name: "single", result: result([]string{"m"}, []any{heatNode})},
		{name: "none", result: result([]string{"m"}), wantErr: neopersist.ErrNotFound},
		{name: "several", result: result([]string{"m"}, []any{heatNode}, []any{other}), wantErr: neopersist.ErrIncorrectResultSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, runner := newRepository[Movie](t)
			scripted(runner, tt.result)

			qb := gocypher.NewQueryBuilder().
				Match(gocypher.N("m", "Movie").WithProperties(map[string]interface{}{"released": 1995})).
				Return("m")
			movie, err := repo.FindOne(context.Background(), qb)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Heat", movie.Title)
		})
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo, runner := newRepository[Movie](t)
	calls := scripted(runner, result(nil), count(3))

	require.NoError(t, repo.Delete(context.Background(), "Heat"))
	assert.Equal(t, "MATCH (n:`Movie`) WHERE n.title = $__id__ WITH DISTINCT n DETACH DELETE n", (*calls)[0].query)

	n, err := repo.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestFindGraph(t *testing.T) {
	runner := mocks.NewMockDBRunner(gomock.NewController(t))
	pm := neopersist.NewPersistenceManager(runner)
	path := dbtype.Path{Nodes: []dbtype.Node{mannNode, heatNode}, Relationships: []dbtype.Relationship{directed}}
	scripted(runner,
		result([]string{"p", "m", "r"}, []any{path, heatNode, directed}, []any{path, mannNode, directed}),
		result(nil),
	)

	qb := gocypher.NewQueryBuilder().Match(gocypher.N("m", "Movie")).Return("m")
	graph, err := pm.FindGraph(context.Background(), qb)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "4:db:2", graph.Nodes[0].ID)
	assert.Equal(t, &neopersist.Edge{ID: "5:db:9", Source: "4:db:2", Target: "4:db:1", Type: "DIRECTED"}, graph.Edges[0])

	_, err = pm.FindGraph(context.Background(), qb)
	assert.ErrorIs(t, err, neopersist.ErrNotFound)
}

func TestCreateRelationRequiresPropertyIDs(t *testing.T) {
	pm := neopersist.NewPersistenceManager(mocks.NewMockDBRunner(gomock.NewController(t)))

	err := pm.CreateRelation(context.Background(), &Note{ID: 1}, &Tag{Name: "x"}, "TAGGED", nil)
	assert.ErrorContains(t, err, "internal id")

	err = pm.CreateRelation(context.Background(), Tag{Name: "x"}, &Tag{Name: "y"}, "RELATED", nil)
	assert.ErrorContains(t, err, "non-nil pointer")
}

func TestPersistenceManagerSharesMappingContext(t *testing.T) {
	ctx := mapping.NewMappingContext()
	pm := neopersist.NewPersistenceManager(mocks.NewMockDBRunner(gomock.NewController(t)), neopersist.WithMappingContext(ctx))
	assert.Same(t, ctx, pm.MappingContext())
}
