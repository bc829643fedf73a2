package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat reports a group none of whose encodings the
	// environment supports.
	ErrUnsupportedFormat = errors.New("no supported format")
	// ErrTextureCreation reports a failure to decode or materialize image
	// data.
	ErrTextureCreation = errors.New("texture creation failed")
	// ErrLoadFailed is the terminal error latched on the completion handle
	// once no unresolved group can ever complete.
	ErrLoadFailed = errors.New("load failed")
)

// LoadError is the failure event emitted on the completion handle.
type LoadError struct {
	Name string
	URL  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q from %s: %v", e.Name, e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
