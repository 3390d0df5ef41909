package bus

import (
	"github.com/pkg/errors"
)

// ErrUnknownPath is returned for operations on a path that was never registered.
var ErrUnknownPath = errors.New("path is not registered")

// ChangeHandler is called when an external actor writes a writeable path.
// Returning false rejects the write.
type ChangeHandler func(path string, value interface{}) bool

// Item describes a single object path on the bus.
type Item struct {
	Path      string
	Initial   interface{}
	Formatter Formatter
	Writeable bool
	OnChange  ChangeHandler
	// HandlerCommits marks items whose change handler stores accepted values itself.
	HandlerCommits bool
}

// Registry is the typed key-value object store shared with the energy management system.
type Registry interface {
	// Register adds a new path with its initial value.
	Register(item Item) error
	// Get returns the current value of a path.
	Get(path string) (interface{}, bool)
	// Set stores a new value for a path, it never triggers the change handler.
	Set(path string, value interface{}) error
}
