package storage

import (
	"context"

	"github.com/suteetoe/storefront/internal/model"
)

// GetAllUsers lists staff accounts, newest first
func (s *TenantStorage) GetAllUsers(ctx context.Context) []model.User {
	return listRows[model.User](ctx, s, "user", "list", nil)
}

// GetUserByID returns the user or nil
func (s *TenantStorage) GetUserByID(ctx context.Context, id int64) *model.User {
	return findRow[model.User](ctx, s, "user", "get", "id = ?", id)
}

// GetUserByUsername returns the user or nil
func (s *TenantStorage) GetUserByUsername(ctx context.Context, username string) *model.User {
	return findRow[model.User](ctx, s, "user", "get_by_username", "username = ?", username)
}

// UpdateUser applies the set fields of patch. Users are never created here.
func (s *TenantStorage) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	return updateRow[model.User](ctx, s, "user", id, patch.Updates(s.timestamp()))
}
