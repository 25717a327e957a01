package repository

import (
	"context"

	"github.com/vytor/headcount/internal/models"
)

// ResultRepository handles game result data access
type ResultRepository interface {
	Insert(ctx context.Context, result models.GameResult) (int64, error)
	ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.GameResult, error)
	Summary(ctx context.Context, userID int64) (*models.HistorySummary, error)
}
