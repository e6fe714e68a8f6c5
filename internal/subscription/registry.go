package subscription

import (
	"runtime"
	"sync"
	"weak"

	"extrinsicScope/internal/model"
)

// Key identifies a pipeline by chain and account.
type Key struct {
	ChainID   string
	AccountID model.AccountID
}

// PipelineFactory builds a new pipeline for an account on a chain.
type PipelineFactory func(account model.AccountID, chain model.Chain) *Pipeline

// Registry shares one live pipeline per chain and account. It holds weak
// references only: a pipeline nobody else references is collected and its
// entry removed.
type Registry struct {
	factory PipelineFactory

	mu        sync.Mutex
	pipelines map[Key]weak.Pointer[Pipeline]
}

func NewRegistry(factory PipelineFactory) *Registry {
	return &Registry{
		factory:   factory,
		pipelines: make(map[Key]weak.Pointer[Pipeline]),
	}
}

// GetOrCreate returns the live pipeline for account on chain, creating it if
// needed.
func (r *Registry) GetOrCreate(account model.AccountID, chain model.Chain) *Pipeline {
	key := Key{ChainID: chain.ChainID, AccountID: account}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ref, ok := r.pipelines[key]; ok {
		if pipeline := ref.Value(); pipeline != nil {
			return pipeline
		}
	}

	pipeline := r.factory(account, chain)
	ref := weak.Make(pipeline)
	r.pipelines[key] = ref
	runtime.AddCleanup(pipeline, r.evict, entry{key: key, ref: ref})
	return pipeline
}

// Len returns the number of entries, live or not yet cleaned up.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pipelines)
}

type entry struct {
	key Key
	ref weak.Pointer[Pipeline]
}

func (r *Registry) evict(e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.pipelines[e.key]; ok && current == e.ref {
		delete(r.pipelines, e.key)
	}
}
