package operations

import (
	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/dispatch"
)

// resolveEnv fills in the defaults of an Env: the built-in Backend (which must
// have been registered by importing the table package) and a local Pool
func resolveEnv(env *sortagg.Env) (*sortagg.Env, error) {
	resolved := sortagg.Env{}
	if env != nil {
		resolved = *env
	}
	if resolved.Backend == nil {
		backend, err := sortagg.OpenBackend(sortagg.DefaultBackendName)
		if err != nil {
			return nil, err
		}
		resolved.Backend = backend
	}
	if resolved.Dispatcher == nil {
		resolved.Dispatcher = dispatch.NewPool(&dispatch.PoolOptions{
			Logger:   resolved.Log(),
			Progress: resolved.Progress,
		})
	}
	resolved.Logger = resolved.Log()
	return &resolved, nil
}
