package pcache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/docker/docker/pkg/locker"
)

// lru is an LRU cache for encoded Blocks
type lru struct {
	config     *LRUConfig
	plocks     *locker.Locker
	pmapLock   sync.Mutex
	pmap       map[string]*list.Element
	recentList *list.List // back is oldest, front is newest
	maxSize    int
}

type cachedBlock struct {
	key   string
	value []byte
}

// LRUConfig configures an LRU BlockCache
type LRUConfig struct {
	InitialSize int // the maximum number of Blocks to retain. Must be at least 1
}

// NewLRU produces an LRU BlockCache
func NewLRU(config *LRUConfig) (BlockCache, error) {
	if config.InitialSize < 1 {
		return nil, fmt.Errorf("LRUConfig.InitialSize %d must be at least 1", config.InitialSize)
	}
	return &lru{
		config:     config,
		plocks:     locker.New(),
		pmap:       make(map[string]*list.Element),
		recentList: list.New(),
		maxSize:    config.InitialSize,
	}, nil
}

func (c *lru) Destroy() {
	c.pmapLock.Lock()
	defer c.pmapLock.Unlock()
	c.pmap = make(map[string]*list.Element)
	c.recentList.Init()
}

func (c *lru) GetOrAdd(key string, encode func() ([]byte, error)) ([]byte, error) {
	c.plocks.Lock(key)
	defer c.plocks.Unlock(key)
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := encode()
	if err != nil {
		return nil, err
	}
	c.add(key, value)
	return value, nil
}

func (c *lru) Get(key string) ([]byte, bool) {
	c.pmapLock.Lock()
	defer c.pmapLock.Unlock()
	e, ok := c.pmap[key]
	if !ok {
		return nil, false
	}
	c.recentList.MoveToFront(e)
	return e.Value.(*cachedBlock).value, true
}

func (c *lru) add(key string, value []byte) {
	c.pmapLock.Lock()
	defer c.pmapLock.Unlock()
	if e, ok := c.pmap[key]; ok {
		e.Value.(*cachedBlock).value = value
		c.recentList.MoveToFront(e)
		return
	}
	c.pmap[key] = c.recentList.PushFront(&cachedBlock{key: key, value: value})
	c.evict()
}

// evict drops the oldest entries until the cache fits within maxSize. pmapLock must be held.
func (c *lru) evict() {
	for c.recentList.Len() > c.maxSize {
		oldest := c.recentList.Back()
		c.recentList.Remove(oldest)
		delete(c.pmap, oldest.Value.(*cachedBlock).key)
	}
}

func (c *lru) CurrentSize() int {
	c.pmapLock.Lock()
	defer c.pmapLock.Unlock()
	return c.recentList.Len()
}

func (c *lru) Resize(frac float64) {
	c.pmapLock.Lock()
	defer c.pmapLock.Unlock()
	newSize := int(float64(c.recentList.Len()) * frac)
	if newSize < 1 {
		newSize = 1
	}
	c.maxSize = newSize
	c.evict()
}
