package shared

import "github.com/pkg/errors"

// ErrNullDereference is returned when an empty handle is dereferenced.
var ErrNullDereference = errors.New("shared: dereference of empty handle")
