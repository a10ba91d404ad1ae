package repository

import "errors"

// ErrNotFound is returned by all repositories when the requested row does
// not exist or is not visible to the caller.
var ErrNotFound = errors.New("not found")
