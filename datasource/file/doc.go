// Package file provides a DataSource which reads data from a set of files on disk.
// Each file is parsed independently, so Blocks never span files.
package file
