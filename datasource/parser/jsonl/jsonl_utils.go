package jsonl

import (
	"fmt"
	"math"
	"time"

	"github.com/go-sif/sortagg"
	"github.com/tidwall/gjson"
)

func parseValue(val gjson.Result, colName string, colType sortagg.ColumnType) (interface{}, error) {
	// parse type
	switch ct := colType.(type) {
	case *sortagg.BoolColumnType:
		if val.Type != gjson.True && val.Type != gjson.False {
			return nil, fmt.Errorf("Column %s was not a boolean. Was: %s", colName, val.Raw)
		}
		return val.Bool(), nil
	case *sortagg.Int64ColumnType:
		if val.Type != gjson.Number || val.Num != math.Trunc(val.Num) {
			return nil, fmt.Errorf("Column %s was not an integer. Was: %s", colName, val.Raw)
		}
		return val.Int(), nil
	case *sortagg.Float64ColumnType:
		if val.Type != gjson.Number {
			return nil, fmt.Errorf("Column %s was not a number. Was: %s", colName, val.Raw)
		}
		return val.Float(), nil
	case *sortagg.StringColumnType:
		if val.Type != gjson.String {
			return nil, fmt.Errorf("Column %s was not a string. Was: %s", colName, val.Raw)
		}
		return val.Str, nil
	case *sortagg.TimeColumnType:
		format := ct.Format
		if len(format) == 0 {
			format = time.RFC3339Nano
		}
		tval, err := time.Parse(format, val.Str)
		if val.Type != gjson.String || err != nil {
			return nil, fmt.Errorf("Column %s could not be parsed as datetime with format %s. Was: %s", colName, format, val.Raw)
		}
		return tval, nil
	case *sortagg.AnyColumnType:
		return val.Value(), nil
	default:
		return nil, fmt.Errorf("JSONL parsing does not support column type %T", colType)
	}
}

// ParseJSONRow extracts one value per column from a JSON object, treating
// each column name as a gjson path. Missing values and JSON nulls are null.
func ParseJSONRow(colNames []string, colTypes []sortagg.ColumnType, row gjson.Result) ([]interface{}, error) {
	if !row.IsObject() {
		return nil, fmt.Errorf("Row must be a JSON object. Was: %s", row.Raw)
	}
	values := make([]interface{}, len(colNames))
	for idx, colName := range colNames {
		val := row.Get(colName)
		if !val.Exists() || val.Type == gjson.Null {
			continue
		}
		parsed, err := parseValue(val, colName, colTypes[idx])
		if err != nil {
			return nil, err
		}
		values[idx] = parsed
	}
	return values, nil
}
