package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageable(t *testing.T) {
	p := PageRequest(2, 10, Desc("name"))
	assert.True(t, p.IsPaged())
	assert.Equal(t, int64(20), p.Offset())
	assert.Equal(t, 3, p.Next().Page)
	assert.Equal(t, Sort{{Property: "name", Direction: Descending}}, p.Sort)
	assert.False(t, Unpaged.IsPaged())
}

func TestPage(t *testing.T) {
	tests := []struct {
		name    string
		page    Page[int]
		pages   int
		hasNext bool
	}{
		{"first of three", Page[int]{Pageable: PageRequest(0, 10), Total: 25}, 3, true},
		{"last", Page[int]{Pageable: PageRequest(2, 10), Total: 25}, 3, false},
		{"exact", Page[int]{Pageable: PageRequest(0, 5), Total: 5}, 1, false},
		{"unpaged", Page[int]{Total: 7}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pages, tt.page.TotalPages())
			assert.Equal(t, tt.hasNext, tt.page.HasNext())
		})
	}
}

func TestSort(t *testing.T) {
	s := By("a", "b").And(Sort{Desc("c").WithIgnoreCase()})
	assert.Len(t, s, 3)
	assert.True(t, s[2].IgnoreCase)
	assert.Equal(t, "a: ASC, b: ASC, c: DESC", s.String())
	assert.False(t, Sort(nil).IsSorted())
}

func TestRange(t *testing.T) {
	r := AtLeast(3)
	assert.True(t, r.Lower.Bounded)
	assert.True(t, r.Lower.Inclusive)
	assert.False(t, r.Upper.Bounded)

	r = Open(1, 2)
	assert.False(t, r.Lower.Inclusive)
	assert.False(t, r.Upper.Inclusive)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 2500.0, NewDistance(2.5, Kilometers).Normalized(), 1e-9)
	assert.InDelta(t, 12.0, NewDistance(12).Normalized(), 1e-9)
	assert.InDelta(t, 4.0, Distance{Value: 4}.Normalized(), 1e-9)
}
