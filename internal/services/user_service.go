package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/authmail/authmail-be/internal/apierr"
	"github.com/authmail/authmail-be/internal/models"
)

// UserServiceProvider defines the interface for user queries.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides read access to user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apierr.NotFound("User not found")
		}
		return models.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}
