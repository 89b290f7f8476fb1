package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/jsonsh/internal/flatten"
	"github.com/jacoelho/jsonsh/internal/token"
)

func decodeOne(t *testing.T, data string) any {
	t.Helper()
	for doc, err := range Documents([]byte(data)) {
		require.NoError(t, err)
		return doc
	}
	t.Fatalf("no document in %q", data)
	return nil
}

func roots(matches []Match, root string) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Root(root, '_'))
	}
	return out
}

func TestSelectLocations(t *testing.T) {
	tests := []struct {
		name string
		expr string
		doc  string
		want []string
	}{
		{
			name: "whole document",
			expr: "$",
			doc:  `{"a":1}`,
			want: []string{"root"},
		},
		{
			name: "array wildcard",
			expr: "$.a[*]",
			doc:  `{"a":[1,{"y":2},3]}`,
			want: []string{"root_a_0", "root_a_1", "root_a_2"},
		},
		{
			name: "member wildcard sorted",
			expr: "$.*",
			doc:  `{"b":1,"a":2,"c":[3]}`,
			want: []string{"root_a", "root_b", "root_c"},
		},
		{
			name: "indices sort numerically",
			expr: "$[*]",
			doc:  `[0,1,2,3,4,5,6,7,8,9,10,11]`,
			want: []string{
				"root_0", "root_1", "root_2", "root_3", "root_4", "root_5",
				"root_6", "root_7", "root_8", "root_9", "root_10", "root_11",
			},
		},
		{
			name: "descendants",
			expr: "$..id",
			doc:  `{"id":1,"items":[{"id":2},{"id":3}]}`,
			want: []string{"root_id", "root_items_0_id", "root_items_1_id"},
		},
		{
			name: "filter",
			expr: `$.items[?@.ok == true].name`,
			doc:  `{"items":[{"name":"a","ok":true},{"name":"b","ok":false},{"name":"c","ok":true}]}`,
			want: []string{"root_items_0_name", "root_items_2_name"},
		},
		{
			name: "no match",
			expr: "$.missing",
			doc:  `{"a":1}`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, sel.String())

			got := roots(sel.Select(decodeOne(t, tt.doc)), "root")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchSourceFlattensWithLocation(t *testing.T) {
	sel, err := Compile("$.settings")
	require.NoError(t, err)

	matches := sel.Select(decodeOne(t, `{"settings":{"z":[true,null],"a":"x","m":2.5}}`))
	require.Len(t, matches, 1)

	src, err := matches[0].Source()
	require.NoError(t, err)

	pairs, err := flatten.Collect(src, flatten.WithRoot(matches[0].Root("cfg", '.')), flatten.WithSeparator('.'))
	require.NoError(t, err)

	want := []flatten.Pair{
		{Path: "cfg.settings.a", Value: token.Text("x")},
		{Path: "cfg.settings.m", Value: token.Number(2.5)},
		{Path: "cfg.settings.z.0", Value: token.True()},
		{Path: "cfg.settings.z.1", Value: token.Null()},
	}
	assert.Equal(t, want, pairs)
}

func TestMatchSourceScalar(t *testing.T) {
	m := Match{Segments: []Segment{{Name: "n"}, {Index: 3, IsIndex: true}}, Node: "v"}

	src, err := m.Source()
	require.NoError(t, err)

	pairs, err := flatten.Collect(src, flatten.WithRoot(m.Root("root", '_')))
	require.NoError(t, err)
	assert.Equal(t, []flatten.Pair{{Path: "root_n_3", Value: token.Text("v")}}, pairs)
}

func TestCompileError(t *testing.T) {
	_, err := Compile("$.[")
	require.ErrorIs(t, err, ErrInvalidPath)

	_, err = Compile("items")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestDocuments(t *testing.T) {
	var docs []any
	for doc, err := range Documents([]byte(`{"a":1} [2] 3`)) {
		require.NoError(t, err)
		docs = append(docs, doc)
	}

	assert.Equal(t, []any{map[string]any{"a": 1.0}, []any{2.0}, 3.0}, docs)
}

func TestDocumentsDecodeError(t *testing.T) {
	var (
		count   int
		lastErr error
	)
	for _, err := range Documents([]byte(`{"a":1} {"b":}`)) {
		if err != nil {
			lastErr = err
			break
		}
		count++
	}

	assert.Equal(t, 1, count)
	require.ErrorIs(t, lastErr, ErrDecode)
}

func TestCompareSegments(t *testing.T) {
	idx := func(i int) Segment { return Segment{Index: i, IsIndex: true} }
	name := func(s string) Segment { return Segment{Name: s} }

	assert.Equal(t, -1, compareSegments([]Segment{idx(2)}, []Segment{idx(10)}))
	assert.Equal(t, -1, compareSegments([]Segment{idx(9)}, []Segment{name("a")}))
	assert.Equal(t, 1, compareSegments([]Segment{name("b")}, []Segment{name("a")}))
	assert.Equal(t, -1, compareSegments([]Segment{name("a")}, []Segment{name("a"), idx(0)}))
	assert.Equal(t, 0, compareSegments([]Segment{name("a"), idx(1)}, []Segment{name("a"), idx(1)}))
}
