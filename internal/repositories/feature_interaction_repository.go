package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pendium/hippo-admin/internal/domain/event"
)

// FeatureInteractionRepository implements
// event.FeatureInteractionRepository with PostgreSQL. The interaction
// payload is opaque JSONB; its "interaction" field is the discriminant.
type FeatureInteractionRepository struct {
	db *pgxpool.Pool
}

// NewFeatureInteractionRepository creates a new PostgreSQL feature
// interaction repository.
func NewFeatureInteractionRepository(db *pgxpool.Pool) *FeatureInteractionRepository {
	return &FeatureInteractionRepository{db: db}
}

// ListByNames returns interactions inside [start, end) whose discriminant
// is one of names.
func (r *FeatureInteractionRepository) ListByNames(ctx context.Context, start, end time.Time, names []string) ([]event.FeatureInteraction, error) {
	query := `
		SELECT id, thread_uuid, email, timestamp, interaction
		FROM feature_interactions
		WHERE timestamp >= $1 AND timestamp < $2
		  AND interaction->>'interaction' = ANY($3)
		ORDER BY timestamp`

	rows, err := r.db.Query(ctx, query, start, end, names)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]event.FeatureInteraction, 0)
	for rows.Next() {
		var fi event.FeatureInteraction
		var payload []byte
		if err := rows.Scan(&fi.ID, &fi.ThreadUUID, &fi.Email, &fi.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan feature interaction: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &fi.Payload); err != nil {
				return nil, fmt.Errorf("failed to decode interaction payload: %w", err)
			}
		}
		if name, ok := fi.Payload["interaction"].(string); ok {
			fi.Name = name
		}
		interactions = append(interactions, fi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feature interactions: %w", err)
	}
	return interactions, nil
}
