package mapper

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

type Profile struct {
	mapping.Node

	ID        string `neo4j:"id,generated,generator:uuid"`
	Name      string
	Picture   []byte
	CreatedAt int64             `neo4j:"readonly"`
	Settings  map[string]string `neo4j:"composite,prefix:settings,delimiter:_"`
	Labels    []string          `neo4j:"dynamicLabels"`
	Secret    string            `neo4j:"-"`
}

func writerFor(t *testing.T, v any, opts ...mapping.Option) (*Writer, *mapping.PersistentEntity) {
	t.Helper()
	ctx := mapping.NewMappingContext(opts...)
	e, err := ctx.PersistentEntity(reflect.TypeOf(v))
	require.NoError(t, err)
	return NewWriter(ctx), e
}

func TestWriterProperties(t *testing.T) {
	w, e := writerFor(t, Profile{})
	p := &Profile{
		ID:        "p-1",
		Name:      "Daniela",
		Picture:   []byte{98, 99, 100, 101, 102},
		CreatedAt: 42,
		Settings:  map[string]string{"theme": "dark"},
		Labels:    []string{"Admin"},
		Secret:    "hidden",
	}

	props, err := w.Properties(e, reflect.ValueOf(p))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":             "p-1",
		"name":           "Daniela",
		"picture":        "YmNkZWY=",
		"settings_theme": "dark",
	}, props)
}

func TestWriterPropertiesTombstonesCompositeEntries(t *testing.T) {
	w, e := writerFor(t, Profile{})
	p := &Profile{ID: "p-1", Settings: map[string]string{"theme": "dark", "lang": "en"}}

	props, err := w.Properties(e, reflect.ValueOf(p))
	require.NoError(t, err)
	assert.Contains(t, props, "settings_lang")

	delete(p.Settings, "lang")
	props, err = w.Properties(e, reflect.ValueOf(p))
	require.NoError(t, err)
	assert.NotContains(t, props, "settings_lang")
	assert.Equal(t, "dark", props["settings_theme"])
}

func TestWriterSkipsInternalIDAndAddsTypeInfo(t *testing.T) {
	w, e := writerFor(t, Movie{})
	movie := &Movie{}
	rating := &Rating{ID: 7, Stars: 4}

	ratingEntity := e.Relationships()[0].Properties
	props, err := w.Properties(ratingEntity, reflect.ValueOf(rating))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"stars": int64(4), NameOfTypeProperty: "Rating"}, props)

	props, err = w.Properties(e, reflect.ValueOf(movie))
	require.NoError(t, err)
	assert.NotContains(t, props, "id")
}

func TestAssignID(t *testing.T) {
	w, e := writerFor(t, Profile{})

	p := &Profile{}
	assigned, err := w.AssignID(e, reflect.ValueOf(p))
	require.NoError(t, err)
	assert.True(t, assigned)
	assert.Len(t, p.ID, 36)

	id := p.ID
	assigned, err = w.AssignID(e, reflect.ValueOf(p))
	require.NoError(t, err)
	assert.False(t, assigned)
	assert.Equal(t, id, p.ID)
}

func TestAssignIDGeneratorError(t *testing.T) {
	type Ticket struct {
		mapping.Node

		Code string `neo4j:"id,generated,generatorRef:broken"`
	}
	boom := errors.New("boom")
	w, e := writerFor(t, Ticket{}, mapping.WithIDGenerator("broken", mapping.IDGeneratorFunc(func(string, any) (any, error) {
		return nil, boom
	})))

	_, err := w.AssignID(e, reflect.ValueOf(&Ticket{}))
	assert.ErrorIs(t, err, boom)
}

func TestEntityParam(t *testing.T) {
	w, e := writerFor(t, Profile{})
	p := &Profile{ID: "p-1", Name: "Daniela", Labels: []string{"Admin"}}

	param, err := w.EntityParam(e, reflect.ValueOf(p))
	require.NoError(t, err)
	assert.Equal(t, "p-1", param["__id__"])
	assert.Equal(t, []string{"Profile", "Admin"}, param["__labels__"])
	assert.Equal(t, "Daniela", param["__properties__"].(map[string]any)["name"])
}

func TestArgument(t *testing.T) {
	w, _ := writerFor(t, Profile{})

	v, err := w.Argument(&Profile{ID: "p-2"})
	require.NoError(t, err)
	assert.Equal(t, "p-2", v.(map[string]any)["__id__"])

	v, err = w.Argument([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, v)

	v, err = w.Argument((*Profile)(nil))
	require.NoError(t, err)
	assert.Nil(t, v)
}
