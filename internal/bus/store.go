package bus

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotWriteable is returned when an external actor writes a read-only path.
var ErrNotWriteable = errors.New("path is not writeable")

// Observer is notified about every registered or changed value.
type Observer func(path string, value interface{}, text string)

// Store is an in-memory Registry implementation which also accepts writes from external actors.
type Store struct {
	mu sync.RWMutex

	name      string
	items     map[string]*entry
	order     []string
	observers []Observer
}

type entry struct {
	item  Item
	value interface{}
}

func (e *entry) text() string {
	if e.item.Formatter == nil {
		return Plain(e.item.Path, e.value)
	}

	return e.item.Formatter(e.item.Path, e.value)
}

// NewStore creates a new empty store for a bus service.
func NewStore(name string) *Store {
	return &Store{
		name:  name,
		items: make(map[string]*entry),
	}
}

// Name returns the bus service name.
func (s *Store) Name() string {
	return s.name
}

// Observe adds an observer of value changes.
func (s *Store) Observe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, o)
}

func (s *Store) Register(item Item) error {
	s.mu.Lock()

	if _, ok := s.items[item.Path]; ok {
		s.mu.Unlock()

		return errors.Errorf("path %s is already registered", item.Path)
	}

	e := &entry{item: item, value: item.Initial}
	s.items[item.Path] = e
	s.order = append(s.order, item.Path)
	text := e.text()
	observers := s.observers

	s.mu.Unlock()

	s.notify(observers, item.Path, item.Initial, text)

	return nil
}

func (s *Store) Get(path string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[path]
	if !ok {
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(path string, value interface{}) error {
	s.mu.Lock()

	e, ok := s.items[path]
	if !ok {
		s.mu.Unlock()

		return errors.Wrap(ErrUnknownPath, path)
	}

	if reflect.DeepEqual(e.value, value) {
		s.mu.Unlock()

		return nil
	}

	e.value = value
	text := e.text()
	observers := s.observers

	s.mu.Unlock()

	s.notify(observers, path, value, text)

	return nil
}

// Write handles a write of an external actor. The change handler of the path decides whether the value is accepted.
func (s *Store) Write(path string, value interface{}) (bool, error) {
	s.mu.RLock()
	e, ok := s.items[path]

	var item Item
	if ok {
		item = e.item
	}

	s.mu.RUnlock()

	if !ok {
		return false, errors.Wrap(ErrUnknownPath, path)
	}

	if !item.Writeable {
		return false, errors.Wrap(ErrNotWriteable, path)
	}

	if item.OnChange != nil && !item.OnChange(path, value) {
		return false, nil
	}

	if item.HandlerCommits {
		return true, nil
	}

	if err := s.Set(path, value); err != nil {
		return false, err
	}

	return true, nil
}

// Text returns the formatted value of a path.
func (s *Store) Text(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[path]
	if !ok {
		return "", false
	}

	return e.text(), true
}

// Paths returns all registered paths in registration order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, len(s.order))
	copy(paths, s.order)

	return paths
}

func (s *Store) notify(observers []Observer, path string, value interface{}, text string) {
	for _, o := range observers {
		o(path, value, text)
	}
}
