package repository

import (
	"context"

	"github.com/vytor/headcount/internal/models"
)

// UserRepository handles user data access
type UserRepository interface {
	Upsert(ctx context.Context, name string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
}
