package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatrelay/internal/models"
)

type TranscriptRepo struct {
	pool *pgxpool.Pool
}

func NewTranscriptRepo(pool *pgxpool.Pool) *TranscriptRepo {
	return &TranscriptRepo{pool: pool}
}

// Create stores an exchange. Re-delivered exchanges are ignored.
func (r *TranscriptRepo) Create(ctx context.Context, ex *models.Exchange) error {
	query := `INSERT INTO transcripts (id, session_id, user_text, bot_text, created_at)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, ex.ID, ex.SessionID, ex.UserText, ex.BotText, ex.CreatedAt)
	return err
}

// ListBySession returns a session's exchanges oldest first.
func (r *TranscriptRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.Exchange, error) {
	query := `SELECT id, session_id, user_text, bot_text, created_at
		FROM transcripts WHERE session_id = $1 ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Exchange
	for rows.Next() {
		var ex models.Exchange
		if err := rows.Scan(&ex.ID, &ex.SessionID, &ex.UserText, &ex.BotText, &ex.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}
