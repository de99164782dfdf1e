package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLockSerializesSameUser(t *testing.T) {
	ul := NewUserLock()

	const goroutines = 32
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ul.Lock(7)
			counter++
			ul.Unlock(7)
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestUserLockIndependentUsers(t *testing.T) {
	ul := NewUserLock()

	ul.Lock(1)
	defer ul.Unlock(1)

	// A different user's lock must still be free.
	assert.True(t, ul.TryLock(2))
	ul.Unlock(2)
}

func TestTryLockHeld(t *testing.T) {
	ul := NewUserLock()

	require.True(t, ul.TryLock(7))
	assert.False(t, ul.TryLock(7))
	ul.Unlock(7)
	assert.True(t, ul.TryLock(7))
	ul.Unlock(7)
}

func TestWithLock(t *testing.T) {
	ul := NewUserLock()

	called := false
	err := ul.WithLock(7, func() error {
		called = true
		assert.False(t, ul.TryLock(7), "lock is held inside the callback")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, ul.TryLock(7), "lock is released after the callback")
	ul.Unlock(7)
}

func TestWithLockPropagatesError(t *testing.T) {
	ul := NewUserLock()

	want := assert.AnError
	err := ul.WithLock(7, func() error { return want })
	assert.ErrorIs(t, err, want)
}
