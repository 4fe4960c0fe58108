package keylock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/funnel-bot/internal/lib/keylock"
)

func TestKeyLock_SameKeySerialized(t *testing.T) {
	kl := keylock.New()

	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Lock("user:1")
			defer kl.Unlock("user:1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyLock_DifferentKeysIndependent(t *testing.T) {
	kl := keylock.New()

	kl.Lock("a")
	done := make(chan struct{})
	go func() {
		kl.Lock("b")
		kl.Unlock("b")
		close(done)
	}()
	// захват "b" не должен ждать освобождения "a"
	<-done
	kl.Unlock("a")
}
