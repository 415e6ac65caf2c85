package detection

import "context"

// Repository covers the history log and the pest knowledge table.
// GetPestInfo returns a NotFoundError for an unrecognized label; the
// caller degrades to placeholder text rather than failing the request.
type Repository interface {
	InsertHistory(ctx context.Context, record *HistoryRecord) (*HistoryRecord, error)
	GetPestInfo(ctx context.Context, pestName string) (*PestInfo, error)
	ListHistory(ctx context.Context, username string) ([]HistoryRecord, error)
}
