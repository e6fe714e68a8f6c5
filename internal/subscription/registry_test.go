package subscription

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"extrinsicScope/internal/extrinsic"
	"extrinsicScope/internal/model"
)

func newTestRegistry(created *int) *Registry {
	return NewRegistry(func(account model.AccountID, chain model.Chain) *Pipeline {
		*created++
		return NewPipeline(extrinsic.NewProcessor(account, chain, zap.NewNop()), Deps{})
	})
}

func TestRegistrySharesPipeline(t *testing.T) {
	created := 0
	registry := newTestRegistry(&created)
	chain := testChain()

	first := registry.GetOrCreate(testAccount(t, alice), chain)
	second := registry.GetOrCreate(testAccount(t, alice), chain)
	require.Same(t, first, second)
	require.Equal(t, 1, created)

	other := registry.GetOrCreate(testAccount(t, bob), chain)
	require.NotSame(t, first, other)

	kusama := chain
	kusama.ChainID = "kusama"
	require.NotSame(t, first, registry.GetOrCreate(testAccount(t, alice), kusama))

	require.Equal(t, 3, created)
	require.Equal(t, 3, registry.Len())
	runtime.KeepAlive(first)
	runtime.KeepAlive(other)
}

func TestRegistryReleasesUnreferencedPipelines(t *testing.T) {
	created := 0
	registry := newTestRegistry(&created)

	func() {
		registry.GetOrCreate(testAccount(t, alice), testChain())
	}()
	require.Equal(t, 1, registry.Len())

	require.Eventually(t, func() bool {
		runtime.GC()
		return registry.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	registry.GetOrCreate(testAccount(t, alice), testChain())
	require.Equal(t, 2, created)
}
