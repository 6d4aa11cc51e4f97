package core

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
	"webstore/internal/service/auth"
)

// Register creates a user account and logs it in, returning the user and
// a fresh token.
func (c *Core) Register(ctx context.Context, name, email, password string) (*entity.User, string, error) {
	if c.authService == nil {
		return nil, "", errNotInitialized("auth service")
	}

	user, err := c.authService.Register(ctx, name, email, password)
	if err != nil {
		return nil, "", err
	}

	return c.authService.Login(ctx, user.Email, password)
}

func (c *Core) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	if c.authService == nil {
		return nil, "", errNotInitialized("auth service")
	}
	return c.authService.Login(ctx, email, password)
}

// UpdateProfile lets a user change their own name, email and password.
// Blank fields keep their current value.
func (c *Core) UpdateProfile(ctx context.Context, user *entity.User, name, email, password string) (*entity.User, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	if name != "" {
		user.Name = name
	}
	if email != "" && email != user.Email {
		if _, err := c.repo.GetUserByEmail(ctx, email); err == nil {
			return nil, auth.ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = email
	}

	if password != "" {
		if c.authService == nil {
			return nil, errNotInitialized("auth service")
		}
		if err := c.authService.UpdatePassword(ctx, user, password); err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = time.Now()
	if err := c.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (c *Core) Users(ctx context.Context) ([]entity.User, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.ListUsers(ctx)
}

func (c *Core) User(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.GetUserByID(ctx, id)
}

// UpdateUserByAdmin changes another user's name, email and role.
func (c *Core) UpdateUserByAdmin(ctx context.Context, id primitive.ObjectID, name, email string, isAdmin bool) (*entity.User, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	user, err := c.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" && email != user.Email {
		if _, err := c.repo.GetUserByEmail(ctx, email); err == nil {
			return nil, auth.ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if isAdmin {
		user.Role = entity.AdminRole
	} else {
		user.Role = entity.UserRole
	}

	user.UpdatedAt = time.Now()
	if err := c.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes a customer account. Admin accounts and customers with
// order history are refused.
func (c *Core) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}

	user, err := c.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrAdminImmutable
	}

	orders, err := c.repo.CountUserOrders(ctx, id)
	if err != nil {
		return err
	}
	if orders > 0 {
		return ErrUserHasOrders
	}

	return c.repo.DeleteUser(ctx, id)
}
