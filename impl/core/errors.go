package core

import (
	"errors"
	"fmt"

	repository "webstore/internal/database"
)

var (
	ErrNoAdmin         = errors.New("no admin user found")
	ErrNotParticipant  = errors.New("sender is not a conversation participant")
	ErrForbidden       = errors.New("not allowed")
	ErrAlreadyReviewed = errors.New("product already reviewed")
	ErrUserHasOrders   = errors.New("user has orders and cannot be deleted")
	ErrCategoryExists  = errors.New("category already exists")
	ErrNoOrderItems    = errors.New("order has no items")
	ErrAdminImmutable  = errors.New("admin user cannot be deleted")
)

// ErrNotFound mirrors the repository sentinel so handlers can map it to 404
// without importing the storage package.
var ErrNotFound = repository.ErrNotFound

func errNotInitialized(name string) error {
	return fmt.Errorf("%s not initialized", name)
}
