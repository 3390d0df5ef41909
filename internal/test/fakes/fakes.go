package fakes

import (
	"sync"

	"github.com/futurehomeno/cliffhanger/storage"
)

type fakeConfigStorage struct {
	mu           sync.RWMutex
	model        interface{}
	modelFactory func() interface{}
	saves        int
}

// NewConfigStorage returns a fake implementation for storage.Storage keeping the model in memory.
// Not suitable for production use.
func NewConfigStorage(model interface{}, modelFactory func() interface{}) storage.Storage[interface{}] {
	return &fakeConfigStorage{model: model, modelFactory: modelFactory}
}

// Saves returns how many times a fake storage created by NewConfigStorage was saved.
func Saves(s storage.Storage[interface{}]) int {
	f, ok := s.(*fakeConfigStorage)
	if !ok {
		return 0
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.saves
}

func (f *fakeConfigStorage) Load() error {
	return nil
}

func (f *fakeConfigStorage) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saves++

	return nil
}

func (f *fakeConfigStorage) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.model = f.modelFactory()

	return nil
}

func (f *fakeConfigStorage) Model() interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.model
}
