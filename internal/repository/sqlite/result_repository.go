package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/headcount/internal/logger"
	"github.com/vytor/headcount/internal/models"
	"github.com/vytor/headcount/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type resultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository implementation
func NewResultRepository(db *sql.DB) repository.ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Insert(ctx context.Context, result models.GameResult) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("inserting result: user_id=%d correct=%t elapsed=%d", result.UserID, result.Correct, result.ElapsedSeconds)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO game_results (user_id, date, elapsed_seconds, correct)
VALUES (?, ?, ?, ?)
`, result.UserID, result.Date, result.ElapsedSeconds, result.Correct)
	if err != nil {
		log.Error("failed to insert result: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to read inserted result id: %v", err)
		return 0, err
	}
	log.Debug("result inserted: id=%d", id)
	return id, nil
}

func (r *resultRepository) ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("listing results: user_id=%d limit=%d offset=%d", filter.UserID, filter.Limit, filter.Offset)

	query := sqlBuilder.Select(
		"id", "user_id", "date", "elapsed_seconds", "correct", "created_at",
	).From("game_results").
		Where(squirrel.Eq{"user_id": filter.UserID}).
		OrderBy("date DESC", "id DESC")

	if filter.Correct != nil {
		query = query.Where(squirrel.Eq{"correct": *filter.Correct})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list results: %v", err)
		return nil, err
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		var g models.GameResult
		if err := rows.Scan(&g.ID, &g.UserID, &g.Date, &g.ElapsedSeconds, &g.Correct, &g.CreatedAt); err != nil {
			log.Error("failed to scan result row: %v", err)
			return nil, err
		}
		results = append(results, g)
	}

	log.Debug("found %d results", len(results))
	return results, rows.Err()
}

func (r *resultRepository) Summary(ctx context.Context, userID int64) (*models.HistorySummary, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("computing history summary: user_id=%d", userID)

	var s models.HistorySummary
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0),
       MIN(CASE WHEN correct THEN elapsed_seconds END),
       AVG(elapsed_seconds)
FROM game_results
WHERE user_id = ?
`, userID).Scan(&s.Total, &s.Correct, &s.BestSeconds, &s.AvgSeconds)
	if err != nil {
		log.Error("failed to compute summary: %v", err)
		return nil, err
	}
	return &s, nil
}
