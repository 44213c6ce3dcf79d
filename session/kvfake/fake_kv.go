package kvfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/procure-client/session"
)

var _ session.BatchKV = (*FakeKV)(nil)

// FakeKV is an in-memory session.KV. It also backs the "memory" session backend.
type FakeKV struct {
	values map[string]string
	lock   sync.RWMutex

	// Err, when set, is returned by every operation.
	Err error
}

func NewFakeKV() *FakeKV {
	return &FakeKV{
		values: make(map[string]string),
	}
}

func (kv *FakeKV) Get(_ context.Context, key string) (string, error) {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	if kv.Err != nil {
		return "", kv.Err
	}
	return kv.values[key], nil
}

func (kv *FakeKV) Set(_ context.Context, key, value string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	if kv.Err != nil {
		return kv.Err
	}
	if value == "" {
		delete(kv.values, key)
		return nil
	}
	kv.values[key] = value
	return nil
}

func (kv *FakeKV) SetMany(_ context.Context, values map[string]string) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	if kv.Err != nil {
		return kv.Err
	}
	for key, value := range values {
		if value == "" {
			delete(kv.values, key)
			continue
		}
		kv.values[key] = value
	}
	return nil
}

func (kv *FakeKV) Clear(_ context.Context) error {
	kv.lock.Lock()
	defer kv.lock.Unlock()
	if kv.Err != nil {
		return kv.Err
	}
	kv.values = make(map[string]string)
	return nil
}

// Len returns the number of stored keys.
func (kv *FakeKV) Len() int {
	kv.lock.RLock()
	defer kv.lock.RUnlock()
	return len(kv.values)
}
