package sortagg

import (
	"sort"
	"sync"

	"github.com/go-sif/sortagg/errors"
)

// DefaultBackendName is the name of the built-in table backend
const DefaultBackendName = "native"

// Backend is a table library, providing construction and the bulk operations
// which cannot be expressed through the Block interface alone
type Backend interface {
	Name() string                             // Name returns the name this Backend is registered under
	EmptyBlock() Block                        // EmptyBlock produces a Block with no rows and no columns
	NewBuilder(schema Schema) BlockBuilder    // NewBuilder produces a BlockBuilder for Blocks with the given Schema
	Sort(b Block, key SortKey) (Block, error) // Sort produces a stable sort of a Block according to a SortKey
	Concat(blocks []Block) (Block, error)     // Concat produces a Block containing the rows of all given Blocks, in order
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// RegisterBackend makes a Backend available by name. Registering a second
// Backend under the same name replaces the first.
func RegisterBackend(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[b.Name()] = b
}

// OpenBackend retrieves a registered Backend by name
func OpenBackend(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, errors.MissingBackendError{Name: name, Fallback: DefaultBackendName}
	}
	return b, nil
}

// Backends returns the names of all registered Backends, sorted
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
