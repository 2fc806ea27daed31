package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func TestStoreUpsertNeverDuplicatesIDs(t *testing.T) {
	s := NewStore()
	s.Upsert(Record{"id": "a", "name": "Alpha"})
	s.Upsert(Record{"id": "b", "name": "Beta"})
	s.Upsert(Record{"id": "a", "name": "Alpha 2"})
	s.Upsert(Record{"id": "c", "name": "Gamma"})
	s.Upsert(Record{"id": "b", "name": "Beta 2"})

	items := s.Items()
	assert.Equal(t, []string{"a", "b", "c"}, ids(items))
	assert.Equal(t, "Alpha 2", items[0]["name"], "replaced in place")
	assert.Equal(t, "Beta 2", items[1]["name"])
}

func TestStoreReplaceAllCollapsesDuplicates(t *testing.T) {
	s := NewStore()
	s.Upsert(Record{"id": "old"})

	s.ReplaceAll([]Record{
		{"id": "b", "name": "first"},
		{"id": "a"},
		{"id": "b", "name": "second"},
		nil,
	})

	items := s.Items()
	assert.Equal(t, []string{"b", "a"}, ids(items))
	assert.Equal(t, "second", items[0]["name"])
}

func TestStoreRemoveClearsMatchingCurrent(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Record{{"id": "a", "name": "Alpha"}, {"id": "b", "name": "Beta"}})

	s.SetCurrent(Record{"id": "b"})
	s.Remove("a")
	assert.Equal(t, []string{"b"}, ids(s.Items()))
	require.NotNil(t, s.Current(), "current only cleared when it matches")

	s.Remove("b")
	assert.Empty(t, s.Items())
	assert.Nil(t, s.Current())

	s.Remove("missing")
	assert.Empty(t, s.Items())
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Record{{"id": "a", "name": "Alpha"}})

	items := s.Items()
	items[0]["name"] = "mutated"
	items = append(items, Record{"id": "z"})

	assert.Equal(t, "Alpha", s.Items()[0]["name"])
	assert.Equal(t, 1, s.Len())

	cur := Record{"id": "a"}
	s.SetCurrent(cur)
	cur["id"] = "changed"
	assert.Equal(t, "a", s.Current().ID())
}

func TestStoreStatePatches(t *testing.T) {
	s := NewStore()

	s.SetSearchTerm("eng")
	assert.Equal(t, "eng", s.SearchTerm())

	s.SetFilters(map[string]string{"category": "Technical", "department": "IT"})
	s.SetFilters(map[string]string{"department": ""})
	assert.Equal(t, map[string]string{"category": "Technical"}, s.Filters())

	assert.Equal(t, Sort{Direction: Asc}, s.Sort())
	s.SetSort("name", Desc)
	assert.Equal(t, Sort{Key: "name", Direction: Desc}, s.Sort())
	s.SetSort("name", "sideways")
	assert.Equal(t, Asc, s.Sort().Direction)
}
