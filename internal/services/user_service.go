package services

import (
	"context"
	"strings"

	"github.com/vytor/headcount/internal/errors"
	"github.com/vytor/headcount/internal/logger"
	"github.com/vytor/headcount/internal/models"
	"github.com/vytor/headcount/internal/repository"
)

const maxNameLength = 64

// UserService handles user-related business logic
type UserService interface {
	Login(ctx context.Context, name string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	History(ctx context.Context, filter models.HistoryFilter) ([]models.GameResult, error)
	Summary(ctx context.Context, userID int64) (*models.HistorySummary, error)
	RecordResult(ctx context.Context, result models.GameResult) (int64, error)
}

type userService struct {
	users   repository.UserRepository
	results repository.ResultRepository
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, results repository.ResultRepository) UserService {
	return &userService{users: users, results: results}
}

// Login returns the record for the given name, creating it on first sight.
// The same name always maps to the same user.
func (s *userService) Login(ctx context.Context, name string) (*models.User, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if len(name) > maxNameLength {
		return nil, errors.NewValidationError("name", "too long")
	}

	log.Debug("logging in user: name=%s", name)
	user, err := s.users.Upsert(ctx, name)
	if err != nil {
		log.Error("failed to upsert user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("user logged in: id=%d name=%s", user.ID, user.Name)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.Get(ctx, id)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", id)
	}
	return user, nil
}

func (s *userService) History(ctx context.Context, filter models.HistoryFilter) ([]models.GameResult, error) {
	log := logger.FromContext(ctx)

	results, err := s.results.ListByUser(ctx, filter)
	if err != nil {
		log.Error("failed to list history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return results, nil
}

func (s *userService) Summary(ctx context.Context, userID int64) (*models.HistorySummary, error) {
	log := logger.FromContext(ctx)

	summary, err := s.results.Summary(ctx, userID)
	if err != nil {
		log.Error("failed to compute summary: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return summary, nil
}

func (s *userService) RecordResult(ctx context.Context, result models.GameResult) (int64, error) {
	log := logger.FromContext(ctx)

	id, err := s.results.Insert(ctx, result)
	if err != nil {
		log.Error("failed to record result: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("result recorded: id=%d user_id=%d correct=%t", id, result.UserID, result.Correct)
	return id, nil
}
