package model

import "errors"

// ErrNotFound is returned when a user or record does not exist. It is a normal
// negative result; handlers map it to 404.
var ErrNotFound = errors.New("not found")
