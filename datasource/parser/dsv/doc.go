// Package dsv parses delimiter-separated values (such as CSV) into Blocks
package dsv
