package jsonl

import (
	"strings"
	"testing"
	"time"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/schema"
	"github.com/go-sif/sortagg/table"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const people = `{"name": "Sean", "meta": { "index": 1, "first": "Sean", "last": "McIntyre"}, "score": 1.5}
{"name": "Chris", "meta": { "index": 3, "first": "Chris", "last": "Dickson"}, "score": null}
# a comment
{"name": "Phil", "meta": { "index": 2, "first": "Phil", "last": "Laliberté"}, "score": 2}

{"name": "Fahd", "meta": { "index": 4, "first": "Fahd"}, "active": true}`

func peopleSchema() sortagg.Schema {
	return schema.Of(
		"name", &sortagg.StringColumnType{},
		"meta.index", &sortagg.Int64ColumnType{},
		"meta.last", &sortagg.StringColumnType{},
		"score", &sortagg.Float64ColumnType{},
		"active", &sortagg.BoolColumnType{},
	)
}

func TestJSONLParserBlocks(t *testing.T) {
	parser := CreateParser(&ParserConf{BlockSize: 3, Comment: '#'})
	it, err := parser.Parse(strings.NewReader(people), peopleSchema(), table.NewBackend())
	require.Nil(t, err)
	totalRows := 0
	blocks := 0
	for it.HasNextBlock() {
		b, err := it.NextBlock()
		require.Nil(t, err)
		totalRows += b.NumRows()
		blocks++
	}
	require.Equal(t, 2, blocks)
	require.Equal(t, 4, totalRows)
}

func TestParseValues(t *testing.T) {
	b, err := Parse(strings.NewReader(strings.Replace(people, "# a comment\n", "", 1)), peopleSchema(), table.NewBackend())
	require.Nil(t, err)
	require.Equal(t, 4, b.NumRows())
	require.Equal(t, []interface{}{"Sean", int64(1), "McIntyre", 1.5, nil}, b.Row(0).Values())
	require.Equal(t, []interface{}{"Chris", int64(3), "Dickson", nil, nil}, b.Row(1).Values())
	require.Equal(t, []interface{}{"Phil", int64(2), "Laliberté", 2.0, nil}, b.Row(2).Values())
	require.Equal(t, []interface{}{"Fahd", int64(4), nil, nil, true}, b.Row(3).Values())
}

func TestParseReportsLineNumbers(t *testing.T) {
	data := `{"name": "a", "meta": {"index": 1}}
{"name": 7}
not json
{"name": "b", "meta": {"index": 1.5}}`
	s := schema.Of("name", &sortagg.StringColumnType{}, "meta.index", &sortagg.Int64ColumnType{})
	_, err := Parse(strings.NewReader(data), s, table.NewBackend())
	require.NotNil(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 3)
	require.Contains(t, merr.Errors[0].Error(), "Line 2")
	require.Contains(t, merr.Errors[1].Error(), "Line 3")
	require.Contains(t, merr.Errors[2].Error(), "Line 4")
	require.Contains(t, err.Error(), "Unable to parse 3 lines")
}

func TestParseHeaderLinesAndTimes(t *testing.T) {
	data := "when,ignored\n{\"when\": \"2020-01-02\", \"what\": {\"nested\": [1, 2]}}"
	s := schema.Of("when", &sortagg.TimeColumnType{Format: "2006-01-02"}, "what", &sortagg.AnyColumnType{})
	it, err := CreateParser(&ParserConf{HeaderLines: 1}).Parse(strings.NewReader(data), s, table.NewBackend())
	require.Nil(t, err)
	b, err := it.NextBlock()
	require.Nil(t, err)
	require.Equal(t, 1, b.NumRows())
	when, ok, err := b.Row(0).GetTime("when")
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), when)
	require.Equal(t, map[string]interface{}{"nested": []interface{}{float64(1), float64(2)}}, b.Row(0).Values()[1])
}

func TestParseJSONRowRequiresObject(t *testing.T) {
	_, err := ParseJSONRow([]string{"a"}, []sortagg.ColumnType{&sortagg.Int64ColumnType{}}, gjson.Parse("[1, 2]"))
	require.NotNil(t, err)
}
