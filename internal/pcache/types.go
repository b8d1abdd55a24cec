package pcache

// BlockCache is a cache for encoded Blocks, keyed by Block ID
type BlockCache interface {
	Destroy()
	GetOrAdd(key string, encode func() ([]byte, error)) ([]byte, error) // returns the cached value for key, encoding and caching it first if absent. Concurrent calls for the same key encode once.
	Get(key string) (value []byte, ok bool)                             // returns the cached value for key, if present, marking it as recently used
	CurrentSize() int
	Resize(frac float64) // resize by a fraction RELATIVE TO THE CURRENT NUMBER OF ITEMS IN THE CACHE
}
