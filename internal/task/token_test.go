package task

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken_InitiallyNotCancelled(t *testing.T) {
	token := NewToken()

	assert.False(t, token.Cancelled())
	assert.NoError(t, token.Err())
}

func TestToken_CancelIsMonotonic(t *testing.T) {
	token := NewToken()

	token.Cancel()

	assert.True(t, token.Cancelled())
	assert.ErrorIs(t, token.Err(), ErrCancelled)

	// There is no reset: the token stays cancelled.
	assert.True(t, token.Cancelled())
}

func TestToken_CancelIsIdempotent(t *testing.T) {
	token := NewToken()

	token.Cancel()
	token.Cancel()

	assert.True(t, token.Cancelled())
}

func TestToken_CancelFromManyGoroutines(t *testing.T) {
	token := NewToken()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token.Cancel()
		}()
	}
	wg.Wait()

	assert.True(t, token.Cancelled())
}
