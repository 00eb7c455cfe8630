package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pendium/hippo-admin/internal/domain/event"
)

// FeedbackRepository implements event.FeedbackRepository with PostgreSQL.
type FeedbackRepository struct {
	db *pgxpool.Pool
}

// NewFeedbackRepository creates a new PostgreSQL feedback repository.
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ListInWindow returns feedback created inside [start, end).
func (r *FeedbackRepository) ListInWindow(ctx context.Context, start, end time.Time) ([]event.UserFeedback, error) {
	query := `
		SELECT id, email, thread_uuid, turn_uuid, is_liked, feedback, created_at
		FROM user_feedbacks
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	feedback := make([]event.UserFeedback, 0)
	for rows.Next() {
		var fb event.UserFeedback
		var flags []byte
		if err := rows.Scan(&fb.ID, &fb.Email, &fb.ThreadUUID, &fb.TurnUUID, &fb.IsLiked, &flags, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if len(flags) > 0 {
			if err := json.Unmarshal(flags, &fb.Feedback); err != nil {
				return nil, fmt.Errorf("failed to decode feedback flags: %w", err)
			}
		}
		feedback = append(feedback, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	return feedback, nil
}
