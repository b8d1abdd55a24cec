package serialization

import (
	"io"
	"sync"

	"github.com/go-sif/sortagg"
	"github.com/pierrec/lz4"
)

// LZ4Serializer is a BlockSerializer which compresses gob-encoded Blocks with the lz4 compression algorithm
type LZ4Serializer struct {
	lock         sync.Mutex
	compressor   *lz4.Writer
	decompressor *lz4.Reader
	gob          *GobSerializer
}

// NewLZ4Serializer instantiates a new LZ4Serializer
func NewLZ4Serializer() *LZ4Serializer {
	return &LZ4Serializer{
		compressor:   lz4.NewWriter(nil),
		decompressor: lz4.NewReader(nil),
		gob:          NewGobSerializer(),
	}
}

// Name returns the name of this BlockSerializer
func (ls *LZ4Serializer) Name() string {
	return "lz4"
}

// Serialize writes a compressed Block to w
func (ls *LZ4Serializer) Serialize(w io.Writer, b sortagg.Block) error {
	ls.lock.Lock()
	defer ls.lock.Unlock()
	ls.compressor.Reset(w)
	if err := ls.gob.Serialize(ls.compressor, b); err != nil {
		return err
	}
	return ls.compressor.Close()
}

// Deserialize reads a compressed Block from r
func (ls *LZ4Serializer) Deserialize(r io.Reader, backend sortagg.Backend) (sortagg.Block, error) {
	ls.lock.Lock()
	defer ls.lock.Unlock()
	ls.decompressor.Reset(r)
	return ls.gob.Deserialize(ls.decompressor, backend)
}
