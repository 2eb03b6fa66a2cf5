package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	opts := parseTag("Person, labels:A|B| ,readonly,property:full_name")

	assert.Equal(t, "Person", opts.bare)
	assert.Equal(t, []string{"A", "B"}, opts.list("labels"))
	assert.True(t, opts.has("readonly"))
	v, ok := opts.value("property")
	assert.True(t, ok)
	assert.Equal(t, "full_name", v)

	flagFirst := parseTag("id,generated")
	assert.Empty(t, flagFirst.bare)
	assert.True(t, flagFirst.has("id"))
	assert.True(t, flagFirst.has("generated"))

	assert.Empty(t, parseTag("").flags)
	assert.Nil(t, parseTag("x").list("labels"))
}

func TestPropertyName(t *testing.T) {
	tests := map[string]string{
		"Name":      "name",
		"ID":        "id",
		"URLPath":   "urlPath",
		"FirstName": "firstName",
		"x":         "x",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, propertyName(in), in)
	}
}

func TestRelationshipType(t *testing.T) {
	tests := map[string]string{
		"ActedIn":     "ACTED_IN",
		"Knows":       "KNOWS",
		"HTTPClients": "HTTP_CLIENTS",
		"Owns2Cars":   "OWNS2_CARS",
		"friends":     "FRIENDS",
	}
	for in, want := range tests {
		assert.Equal(t, want, relationshipType(in), in)
	}
}
