package detection

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/pestguard-go/apperror"
)

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// InsertHistory appends one prediction record. There is no deduplication
// and no update path.
func (r *PostgresRepository) InsertHistory(ctx context.Context, record *HistoryRecord) (*HistoryRecord, error) {
	query := `INSERT INTO history (username, image, pest, confidence)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, record.Username, record.Image, record.Pest, record.Confidence).
		Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to record history", err)
	}
	return record, nil
}

// GetPestInfo looks up the knowledge table case-insensitively by name.
func (r *PostgresRepository) GetPestInfo(ctx context.Context, pestName string) (*PestInfo, error) {
	var info PestInfo
	query := `SELECT id, pest_name, reason, solution, prevention
	          FROM pest_info
	          WHERE LOWER(pest_name) = LOWER($1)`

	err := r.pool.QueryRow(ctx, query, pestName).
		Scan(&info.ID, &info.PestName, &info.Reason, &info.Solution, &info.Prevention)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("no pest info for %q", pestName), err)
		}
		return nil, apperror.NewDatabaseError("failed to look up pest info", err)
	}
	return &info, nil
}

// ListHistory returns every record for username, newest first. The id
// tiebreak keeps same-timestamp rows in insertion order.
func (r *PostgresRepository) ListHistory(ctx context.Context, username string) ([]HistoryRecord, error) {
	query := `SELECT id, username, image, pest, confidence, created_at
	          FROM history
	          WHERE username = $1
	          ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list history", err)
	}
	defer rows.Close()

	records := []HistoryRecord{}
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Image, &rec.Pest, &rec.Confidence, &rec.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan history row", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list history", err)
	}
	return records, nil
}
