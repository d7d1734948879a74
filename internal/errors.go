package internal

import "errors"

// ErrInvalidWatchSource is returned when Watch is given something that is
// neither a getter function nor an observable value.
var ErrInvalidWatchSource = errors.New("reactive: invalid watch source")

// ErrNotStructured is returned when a value that is not a Record, List or
// Proxy is used where an observable target is required.
var ErrNotStructured = errors.New("reactive: value is not a record or list")

// ErrNilCallback is returned when Watch is given no callback.
var ErrNilCallback = errors.New("reactive: nil watch callback")
