package dsv

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-sif/sortagg"
)

// Parses a slice of strings into values, according to a schema
func scanRow(conf *ParserConf, names []string, colTypes []sortagg.ColumnType, rowStrings []string, values []interface{}) error {
	for i := 0; i < len(rowStrings); i++ {
		colVal := rowStrings[i]
		// check for a nil value
		if len(colVal) == 0 || colVal == conf.NilValue {
			values[i] = nil
			continue
		}
		// otherwise, parse type
		switch ct := colTypes[i].(type) {
		case *sortagg.BoolColumnType:
			bval, err := strconv.ParseBool(colVal)
			if err != nil {
				return err
			}
			values[i] = bval
		case *sortagg.Int64ColumnType:
			ival, err := strconv.ParseInt(colVal, 10, 64)
			if err != nil {
				return err
			}
			values[i] = ival
		case *sortagg.Float64ColumnType:
			fval, err := strconv.ParseFloat(colVal, 64)
			if err != nil {
				return err
			}
			values[i] = fval
		case *sortagg.StringColumnType, *sortagg.AnyColumnType:
			values[i] = colVal
		case *sortagg.TimeColumnType:
			format := ct.Format
			if len(format) == 0 {
				format = time.RFC3339Nano
			}
			tval, err := time.Parse(format, colVal)
			if err != nil {
				return fmt.Errorf("Column %s could not be parsed as datetime with format %s. Was: %#v", names[i], format, colVal)
			}
			values[i] = tval
		default:
			return fmt.Errorf("DSV parsing does not support column type %T", colTypes[i])
		}
	}
	return nil
}
