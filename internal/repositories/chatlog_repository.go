package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pendium/hippo-admin/internal/domain/event"
)

// ChatLogRepository implements event.ChatLogRepository with PostgreSQL.
// Calendar-day grouping happens in the database, always in the product's
// canonical timezone.
type ChatLogRepository struct {
	db       *pgxpool.Pool
	timezone string
}

// NewChatLogRepository creates a new PostgreSQL chat log repository.
func NewChatLogRepository(db *pgxpool.Pool, timezone string) *ChatLogRepository {
	return &ChatLogRepository{db: db, timezone: timezone}
}

// ListQueryEvents returns aggregation projections of user-role chats
// inside [start, end). Rows with NULL created_at never qualify; the range
// predicate already excludes them.
func (r *ChatLogRepository) ListQueryEvents(ctx context.Context, start, end time.Time, emails []string) ([]event.QueryEvent, error) {
	query := `
		SELECT email, thread_uuid, created_at, chat_history
		FROM chat_logs
		WHERE role = 'user'
		  AND is_deleted = false
		  AND created_at >= $1 AND created_at < $2`
	args := []interface{}{start, end}

	if emails != nil {
		query += ` AND email = ANY($3)`
		args = append(args, emails)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list query events: %w", err)
	}
	defer rows.Close()

	events := make([]event.QueryEvent, 0)
	for rows.Next() {
		var ev event.QueryEvent
		var history []byte
		if err := rows.Scan(&ev.Email, &ev.ThreadUUID, &ev.CreatedAt, &history); err != nil {
			return nil, fmt.Errorf("failed to scan query event: %w", err)
		}
		var turns []event.Turn
		if len(history) > 0 {
			if err := json.Unmarshal(history, &turns); err != nil {
				return nil, fmt.Errorf("failed to decode chat history: %w", err)
			}
		}
		ev.Turns = len(turns)
		for _, turn := range turns {
			ev.InputTokens += turn.Tokens.InputCount
			ev.OutputTokens += turn.Tokens.OutputCount
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query events: %w", err)
	}
	return events, nil
}

// DistinctActiveEmails returns the distinct emails with at least one
// user-role chat inside [start, end).
func (r *ChatLogRepository) DistinctActiveEmails(ctx context.Context, start, end time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT email
		FROM chat_logs
		WHERE role = 'user'
		  AND is_deleted = false
		  AND created_at >= $1 AND created_at < $2`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list active emails: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active emails: %w", err)
	}
	return emails, nil
}

// LastActivity returns each email's most recent chat timestamp.
func (r *ChatLogRepository) LastActivity(ctx context.Context, emails []string) (map[string]time.Time, error) {
	query := `
		SELECT email, MAX(created_at)
		FROM chat_logs
		WHERE role = 'user'
		  AND is_deleted = false
		  AND created_at IS NOT NULL`
	args := []interface{}{}

	if emails != nil {
		query += ` AND email = ANY($1)`
		args = append(args, emails)
	}
	query += ` GROUP BY email`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query last activity: %w", err)
	}
	defer rows.Close()

	activity := make(map[string]time.Time)
	for rows.Next() {
		var email string
		var last time.Time
		if err := rows.Scan(&email, &last); err != nil {
			return nil, fmt.Errorf("failed to scan last activity: %w", err)
		}
		activity[email] = last
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read last activity: %w", err)
	}
	return activity, nil
}

// List returns one page of chat logs for the admin browser, newest first,
// plus the total match count.
func (r *ChatLogRepository) List(ctx context.Context, filter event.ChatLogFilter) ([]*event.ChatLog, int64, error) {
	where, args := r.browserFilter(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM chat_logs ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count chat logs: %w", err)
	}

	query := `
		SELECT id, email, thread_uuid, role, chat_history, is_deleted, created_at, updated_at
		FROM chat_logs ` + where + `
		ORDER BY created_at DESC NULLS LAST
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list chat logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*event.ChatLog, 0)
	for rows.Next() {
		var cl event.ChatLog
		var history []byte
		if err := rows.Scan(&cl.ID, &cl.Email, &cl.ThreadUUID, &cl.Role, &history, &cl.IsDeleted, &cl.CreatedAt, &cl.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan chat log: %w", err)
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &cl.Turns); err != nil {
				return nil, 0, fmt.Errorf("failed to decode chat history: %w", err)
			}
		}
		logs = append(logs, &cl)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read chat logs: %w", err)
	}
	return logs, total, nil
}

// CountPerDay returns chat counts grouped by canonical-zone calendar day.
func (r *ChatLogRepository) CountPerDay(ctx context.Context, filter event.ChatLogFilter) (map[string]int, error) {
	where, args := r.browserFilter(filter)

	query := fmt.Sprintf(`
		SELECT to_char(created_at AT TIME ZONE %s, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM chat_logs %s
		GROUP BY day`, placeholder(len(args)+1), where)
	args = append(args, r.timezone)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count chats per day: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		counts[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read day counts: %w", err)
	}
	return counts, nil
}

// DistinctEmails returns the distinct senders matching the filter.
func (r *ChatLogRepository) DistinctEmails(ctx context.Context, filter event.ChatLogFilter) ([]string, error) {
	where, args := r.browserFilter(filter)

	rows, err := r.db.Query(ctx, `SELECT DISTINCT email FROM chat_logs `+where+` ORDER BY email`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat senders: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan sender: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read senders: %w", err)
	}
	return emails, nil
}

// browserFilter builds the shared WHERE clause of the browsing endpoint
// queries. created_at IS NOT NULL keeps never-timestamped rows out of the
// histogram even without a range filter.
func (r *ChatLogRepository) browserFilter(filter event.ChatLogFilter) (string, []interface{}) {
	clauses := []string{"is_deleted = false", "created_at IS NOT NULL"}
	args := []interface{}{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := placeholder(len(args))
		clauses = append(clauses, fmt.Sprintf("(email ILIKE %s OR chat_history::text ILIKE %s)", p, p))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		clauses = append(clauses, "email = "+placeholder(len(args)))
	}
	if filter.Date != "" {
		args = append(args, r.timezone, filter.Date)
		clauses = append(clauses, fmt.Sprintf(
			"to_char(created_at AT TIME ZONE %s, 'YYYY-MM-DD') = %s",
			placeholder(len(args)-1), placeholder(len(args))))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		clauses = append(clauses, "created_at >= "+placeholder(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
