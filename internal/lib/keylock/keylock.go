// Package keylock реализует мьютексы, сгруппированные по ключу.
// Используется для сериализации конкурентной обработки постбэков
// одного пользователя: две горутины с одним ключом выполняются по очереди,
// разные ключи не блокируют друг друга.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock набор мьютексов по строковому ключу.
// Записи создаются по требованию и удаляются, когда никто не держит ключ.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New создает пустой KeyLock.
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*entry)}
}

// Lock захватывает мьютекс ключа key, блокируясь при необходимости.
func (kl *KeyLock) Lock(key string) {
	kl.mu.Lock()
	e, ok := kl.locks[key]
	if !ok {
		e = &entry{}
		kl.locks[key] = e
	}
	e.refs++
	kl.mu.Unlock()

	e.mu.Lock()
}

// Unlock освобождает мьютекс ключа key.
func (kl *KeyLock) Unlock(key string) {
	kl.mu.Lock()
	e, ok := kl.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(kl.locks, key)
		}
	}
	kl.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
