package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/datasource"
)

// DataSource is a set of files containing data which will be parsed into Blocks
type DataSource struct {
	glob   string
	parser datasource.Parser
	schema sortagg.Schema
}

// CreateDataSource is a factory for DataSources
func CreateDataSource(glob string, parser datasource.Parser, schema sortagg.Schema) *DataSource {
	return &DataSource{glob: glob, parser: parser, schema: schema}
}

// Analyze returns the files matched by this DataSource's glob
func (fs *DataSource) Analyze() ([]string, error) {
	matches, err := filepath.Glob(fs.glob)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("Glob %s produced 0 files", fs.glob)
	}
	return matches, nil
}

// Load parses every matched file, producing Blocks of at most parser.BlockSize() rows.
// Blocks never span files.
func (fs *DataSource) Load(backend sortagg.Backend) ([]sortagg.Block, error) {
	files, err := fs.Analyze()
	if err != nil {
		return nil, err
	}
	blocks := []sortagg.Block{}
	for _, path := range files {
		loaded, err := fs.loadFile(path, backend)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		blocks = append(blocks, loaded...)
	}
	return blocks, nil
}

func (fs *DataSource) loadFile(path string, backend sortagg.Backend) ([]sortagg.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	it, err := fs.parser.Parse(f, fs.schema, backend)
	if err != nil {
		return nil, err
	}
	return datasource.Drain(it)
}
