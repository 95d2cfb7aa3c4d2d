package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Put(1, State{Step: StepName})
	state, ok := store.Get(1)
	assert.True(t, ok)
	assert.Equal(t, StepName, state.Step)
	assert.True(t, state.Active())
	assert.False(t, state.UpdatedAt.IsZero())

	store.Delete(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := NewMemoryStore()
	store.Put(1, State{Step: StepSymbol})

	_, ok := store.Get(2)
	assert.False(t, ok)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.Put(id, State{Step: StepConfirm})
			store.Get(id)
			store.Delete(id)
		}(int64(i))
	}
	wg.Wait()
}

func TestStateActive(t *testing.T) {
	assert.False(t, State{}.Active())
	assert.True(t, State{Step: StepDescription}.Active())
}
