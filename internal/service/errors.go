package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error taxonomy for the conversation subsystem. Handlers branch on these with
// errors.Is; anything wrapping ErrStoreUnavailable means the durable store
// rejected or never saw the write.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr classifies a repository error: a missing row is a NotFound, anything
// else is treated as the store being unavailable.
func storeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
