package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/panel-dashboard/internal/domain"
)

// ActivityRepository stores audit entries.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	ListRecent(ctx context.Context, limit int) ([]domain.Activity, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (user_id, action, description, type, metadata)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	metadata := activity.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return r.pool.QueryRow(ctx, query,
		activity.UserID,
		activity.Action,
		activity.Description,
		activity.Type,
		metadata,
	).Scan(&activity.ID, &activity.CreatedAt)
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	const query = `
        SELECT a.id, a.user_id, a.action, a.description, a.type, a.metadata, a.created_at, COALESCE(u.email, '')
        FROM activities a LEFT JOIN users u ON u.id = a.user_id
        ORDER BY a.created_at DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	const query = `
        SELECT a.id, a.user_id, a.action, a.description, a.type, a.metadata, a.created_at, COALESCE(u.email, '')
        FROM activities a LEFT JOIN users u ON u.id = a.user_id
        WHERE a.user_id=$1
        ORDER BY a.created_at DESC LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

func (r *activityRepository) list(ctx context.Context, query string, args ...any) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.Action,
			&activity.Description,
			&activity.Type,
			&activity.Metadata,
			&activity.CreatedAt,
			&activity.UserEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
