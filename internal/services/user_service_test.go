package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/headcount/internal/errors"
	"github.com/vytor/headcount/internal/models"
	"github.com/vytor/headcount/internal/services"
	"github.com/vytor/headcount/internal/testutil/mocks"
)

func TestLogin_TrimsAndUpserts(t *testing.T) {
	users := new(mocks.MockUserRepository)
	results := new(mocks.MockResultRepository)
	svc := services.NewUserService(users, results)

	users.On("Upsert", mock.Anything, "alice").Return(&models.User{ID: 1, Name: "alice"}, nil)

	user, err := svc.Login(context.Background(), "  alice  ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	users.AssertExpectations(t)
}

func TestLogin_EmptyNameRejected(t *testing.T) {
	svc := services.NewUserService(new(mocks.MockUserRepository), new(mocks.MockResultRepository))

	for _, name := range []string{"", "   "} {
		_, err := svc.Login(context.Background(), name)
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	}
}

func TestLogin_NameTooLong(t *testing.T) {
	svc := services.NewUserService(new(mocks.MockUserRepository), new(mocks.MockResultRepository))

	_, err := svc.Login(context.Background(), strings.Repeat("x", 65))
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestLogin_RepositoryFailureWrapped(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := services.NewUserService(users, new(mocks.MockResultRepository))

	users.On("Upsert", mock.Anything, "bob").Return(nil, fmt.Errorf("disk full"))

	_, err := svc.Login(context.Background(), "bob")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
}

func TestGet_NotFound(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := services.NewUserService(users, new(mocks.MockResultRepository))

	users.On("Get", mock.Anything, int64(7)).Return(nil, nil)

	_, err := svc.Get(context.Background(), 7)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestHistory_PassesFilterThrough(t *testing.T) {
	results := new(mocks.MockResultRepository)
	svc := services.NewUserService(new(mocks.MockUserRepository), results)

	correct := true
	filter := models.HistoryFilter{UserID: 3, Correct: &correct, Limit: 10}
	expected := []models.GameResult{{ID: 1, UserID: 3, Correct: true, Date: time.Now()}}
	results.On("ListByUser", mock.Anything, filter).Return(expected, nil)

	list, err := svc.History(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, expected, list)
	results.AssertExpectations(t)
}

func TestRecordResult(t *testing.T) {
	results := new(mocks.MockResultRepository)
	svc := services.NewUserService(new(mocks.MockUserRepository), results)

	res := models.GameResult{UserID: 5, ElapsedSeconds: 42, Correct: true, Date: time.Now()}
	results.On("Insert", mock.Anything, res).Return(int64(11), nil)

	id, err := svc.RecordResult(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}
