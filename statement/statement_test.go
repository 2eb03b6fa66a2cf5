package statement

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

type Person struct {
	mapping.Node `neo4j:"primaryLabel:Person,labels:Human"`

	ID        string   `neo4j:"id"`
	Name      string   `neo4j:"property:name"`
	CreatedAt int64    `neo4j:"property:createdAt,readonly"`
	Labels    []string `neo4j:"dynamicLabels"`
	Roles     []*Role  `neo4j:"relationship:ACTED_IN"`
	Friends   []*Person
}

type Movie struct {
	mapping.Node

	InternalID string    `neo4j:"id,generated"`
	Title      string    `neo4j:"property:title"`
	Director   *Director `neo4j:"relationship:DIRECTED,direction:INCOMING"`
}

type Director struct {
	mapping.Node

	ID   int64 `neo4j:"id,generated"`
	Name string
}

type Role struct {
	mapping.RelationshipProperties

	ID    int64  `neo4j:"id,generated"`
	Name  string `neo4j:"property:role"`
	Movie *Movie `neo4j:"targetNode"`
}

func entityOf(t *testing.T, v any) *mapping.PersistentEntity {
	t.Helper()
	ctx := mapping.NewMappingContext()
	e, err := ctx.PersistentEntity(reflect.TypeOf(v))
	require.NoError(t, err)
	return e
}

func TestIDExpression(t *testing.T) {
	tests := []struct {
		name   string
		entity any
		want   string
	}{
		{"assigned", Person{}, "n.id"},
		{"element id", Movie{}, "elementId(n)"},
		{"internal id", Director{}, "id(n)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entityOf(t, tt.entity)
			assert.Equal(t, tt.want, IDExpression(e).Cypher())
			assert.Equal(t, tt.want+" = $__id__", IDCondition(e).Cypher())
			assert.Equal(t, tt.want+" IN $__ids__", IDsCondition(e).Cypher())
		})
	}
}

func TestMatchDeleteCountExists(t *testing.T) {
	b := NewBuilder()
	e := entityOf(t, Person{})
	cond := cypher.Eq(cypher.AnyNode("n").Property("name"), cypher.Param("name"))

	assert.Equal(t, "MATCH (n:`Person`) WHERE n.name = $name RETURN n",
		b.PrepareMatchOf(e, cond).Return(cypher.Name("n")).Cypher())
	assert.Equal(t, "MATCH (n:`Person`) WITH DISTINCT n DETACH DELETE n",
		b.PrepareDeleteOf(e, cypher.NoCondition()).Cypher())
	assert.Equal(t, "MATCH (n:`Person`) WHERE n.name = $name WITH DISTINCT n DETACH DELETE n RETURN count(*)",
		b.PrepareDeleteCountOf(e, cond).Cypher())
	assert.Equal(t, "MATCH (n:`Person`) WHERE n.name = $name RETURN count(DISTINCT n)",
		b.PrepareCount(e, cond).Cypher())
	assert.Equal(t, "MATCH (n:`Person`) RETURN count(n) > 0",
		b.PrepareExists(e, nil).Cypher())
}

func TestPrepareSaveOf(t *testing.T) {
	b := NewBuilder()
	tests := []struct {
		name   string
		entity any
		isNew  bool
		add    []string
		remove []string
		want   string
	}{
		{
			name:   "assigned id with read-only property and dynamic labels",
			entity: Person{},
			add:    []string{"Active"},
			remove: []string{"Retired"},
			want: "MERGE (n:`Person` {id: $__id__}) SET n:`Human` WITH n, $__properties__ AS __props__ " +
				"SET n = __props__{.*, createdAt: n.createdAt} SET n:`Active` REMOVE n:`Retired` " +
				"RETURN elementId(n) AS __internalNeo4jId__, n.id AS __id__",
		},
		{
			name:   "new node with internal id",
			entity: Movie{},
			isNew:  true,
			want: "CREATE (n:`Movie`) SET n = $__properties__ " +
				"RETURN elementId(n) AS __internalNeo4jId__, elementId(n) AS __id__",
		},
		{
			name:   "existing node with internal id",
			entity: Director{},
			want: "MATCH (n:`Director`) WHERE id(n) = $__id__ SET n = $__properties__ " +
				"RETURN elementId(n) AS __internalNeo4jId__, id(n) AS __id__",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.PrepareSaveOf(entityOf(t, tt.entity), tt.isNew, tt.add, tt.remove).Cypher()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrepareSaveAllOf(t *testing.T) {
	b := NewBuilder()

	type Tag struct {
		mapping.Node
		Name string `neo4j:"id"`
		Hits int
	}
	st, err := b.PrepareSaveAllOf(entityOf(t, Tag{}))
	require.NoError(t, err)
	assert.Equal(t, "UNWIND $__entities__ AS entity MERGE (n:`Tag` {name: entity.__id__}) "+
		"SET n = entity.__properties__ RETURN elementId(n) AS __internalNeo4jId__, n.name AS __id__", st.Cypher())

	_, err = b.PrepareSaveAllOf(entityOf(t, Movie{}))
	assert.Error(t, err)
	_, err = b.PrepareSaveAllOf(entityOf(t, Person{}))
	assert.Error(t, err)
}

func TestDynamicLabelsStatement(t *testing.T) {
	got := NewBuilder().CreateStatementReturningDynamicLabels(entityOf(t, Person{})).Cypher()
	assert.Equal(t, "MATCH (n:`Person`) WHERE n.id = $__id__ RETURN [l IN labels(n) WHERE NOT l IN $__staticLabels__] AS __labels__", got)
}

func TestRelationshipStatements(t *testing.T) {
	b := NewBuilder()
	person := entityOf(t, Person{})
	movie := entityOf(t, Movie{})

	roles, ok := person.RelationshipByField("Roles")
	require.True(t, ok)
	friends, ok := person.RelationshipByField("Friends")
	require.True(t, ok)
	director, ok := movie.RelationshipByField("Director")
	require.True(t, ok)

	assert.Equal(t, "MATCH (startNode), (endNode) WHERE elementId(startNode) = $fromId AND elementId(endNode) = $toId "+
		"CREATE (startNode)-[relProps:`ACTED_IN`]->(endNode) SET relProps = $__properties__ "+
		"RETURN elementId(relProps) AS __internalNeo4jId__, id(relProps) AS __id__",
		b.CreateRelationshipCreateQuery(roles).Cypher())
	assert.Equal(t, "MATCH (startNode), (endNode) WHERE elementId(startNode) = $fromId AND elementId(endNode) = $toId "+
		"MERGE (startNode)-[relProps:`FRIENDS`]->(endNode) RETURN elementId(relProps) AS __internalNeo4jId__",
		b.CreateRelationshipCreateQuery(friends).Cypher())
	assert.Equal(t, "MATCH (startNode), (endNode) WHERE elementId(startNode) = $fromId AND elementId(endNode) = $toId "+
		"MERGE (startNode)<-[relProps:`DIRECTED`]-(endNode) RETURN elementId(relProps) AS __internalNeo4jId__",
		b.CreateRelationshipCreateQuery(director).Cypher())

	assert.Equal(t, "MATCH (startNode)-[relProps:`ACTED_IN`]->(:`Movie`) WHERE elementId(startNode) = $fromId DELETE relProps",
		b.CreateRelationshipRemoveQuery(roles).Cypher())
	assert.Equal(t, "MATCH (startNode)<-[relProps:`DIRECTED`]-(:`Director`) WHERE elementId(startNode) = $fromId DELETE relProps",
		b.CreateRelationshipRemoveQuery(director).Cypher())
}

func TestOrderBy(t *testing.T) {
	e := entityOf(t, Person{})
	items, err := OrderBy(e, domain.Sort{domain.Asc("Name"), domain.Desc("createdAt").WithIgnoreCase()})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "n.name ASC", items[0].Cypher())
	assert.Equal(t, "toLower(n.createdAt) DESC", items[1].Cypher())

	_, err = OrderBy(e, domain.By("unknown"))
	assert.ErrorIs(t, err, ErrInvalidSort)

	items, err = OrderBy(entityOf(t, Movie{}), domain.By("InternalID"))
	require.NoError(t, err)
	assert.Equal(t, "elementId(n) ASC", items[0].Cypher())
}

func TestPaging(t *testing.T) {
	st := Paging(cypher.Match(cypher.AnyNode("n")), domain.PageRequest(3, 20))
	assert.Equal(t, "MATCH (n) SKIP 60 LIMIT 20", st.Cypher())
	st = Paging(cypher.Match(cypher.AnyNode("n")), domain.Unpaged)
	assert.Equal(t, "MATCH (n)", st.Cypher())
}

func TestPrepareLoad(t *testing.T) {
	b := NewBuilder()
	person := entityOf(t, Person{})

	st, err := b.PrepareLoad(person, Load{Depth: DefaultDepth})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Person`) WITH DISTINCT n "+
		"OPTIONAL MATCH p = (n)-[:`ACTED_IN`|`FRIENDS`|`DIRECTED`*0..1]-() "+
		"RETURN n, collect(DISTINCT p) AS __paths__", st.Cypher())

	st, err = b.PrepareLoad(person, Load{
		Condition: IDCondition(person),
		Page:      domain.PageRequest(1, 10, domain.Asc("Name")),
		Depth:     -1,
	})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Person`) WHERE n.id = $__id__ WITH DISTINCT n ORDER BY n.name ASC SKIP 10 LIMIT 10 "+
		"OPTIONAL MATCH p = (n)-[:`ACTED_IN`|`FRIENDS`|`DIRECTED`*0..]-() "+
		"RETURN n, collect(DISTINCT p) AS __paths__ ORDER BY n.name ASC", st.Cypher())

	st, err = b.PrepareLoad(entityOf(t, Director{}), Load{Limit: 1, Depth: 2})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Director`) WITH DISTINCT n LIMIT 1 RETURN n, [] AS __paths__", st.Cypher())

	_, err = b.PrepareLoad(person, Load{Sort: domain.By("nope")})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestRelationshipTypesAreCached(t *testing.T) {
	b := NewBuilder()
	e := entityOf(t, Movie{})
	first := b.RelationshipTypes(e)
	assert.Equal(t, []string{"DIRECTED"}, first)
	assert.Equal(t, first, b.RelationshipTypes(e))
}

func TestPrepareProjection(t *testing.T) {
	st, err := NewBuilder().PrepareProjection(entityOf(t, Director{}), Load{Sort: domain.By("Name"), Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Director`) WITH DISTINCT n ORDER BY n.name ASC LIMIT 3 "+
		"RETURN elementId(n) AS __internalNeo4jId__, id(n) AS id, n.name AS name", st.Cypher())
}
