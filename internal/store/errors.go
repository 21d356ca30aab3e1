package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrReadOnly = errors.New("read_only_transaction")
	ErrStorage  = errors.New("storage_error")
)

// StorageError reports a failure of the key-value medium. It matches
// ErrStorage with errors.Is.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
