package serialization

import (
	"io"
	"sync"

	"github.com/go-sif/sortagg"
	"github.com/klauspost/compress/zstd"
)

// ZstdSerializer is a BlockSerializer which compresses gob-encoded Blocks with zstd
type ZstdSerializer struct {
	lock         sync.Mutex
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
	gob          *GobSerializer
}

// NewZstdSerializer instantiates a new ZstdSerializer
func NewZstdSerializer() (*ZstdSerializer, error) {
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &ZstdSerializer{
		compressor:   compressor,
		decompressor: decompressor,
		gob:          NewGobSerializer(),
	}, nil
}

// Name returns the name of this BlockSerializer
func (zs *ZstdSerializer) Name() string {
	return "zstd"
}

// Serialize writes a compressed Block to w
func (zs *ZstdSerializer) Serialize(w io.Writer, b sortagg.Block) error {
	zs.lock.Lock()
	defer zs.lock.Unlock()
	zs.compressor.Reset(w)
	if err := zs.gob.Serialize(zs.compressor, b); err != nil {
		return err
	}
	return zs.compressor.Close()
}

// Deserialize reads a compressed Block from r
func (zs *ZstdSerializer) Deserialize(r io.Reader, backend sortagg.Backend) (sortagg.Block, error) {
	zs.lock.Lock()
	defer zs.lock.Unlock()
	if err := zs.decompressor.Reset(r); err != nil {
		return nil, err
	}
	return zs.gob.Deserialize(zs.decompressor, backend)
}

// Close releases the resources held by this ZstdSerializer
func (zs *ZstdSerializer) Close() {
	zs.decompressor.Close()
}
