package detection

import "time"

// HistoryRecord is one durable log entry of a prediction made for a user.
// Confidence is stored as a 0-100 percentage rounded to two decimals;
// records are append-only and never mutated.
type HistoryRecord struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Image      string    `json:"image"`
	Pest       string    `json:"pest"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// PestInfo is a row of the read-only pest knowledge table.
type PestInfo struct {
	ID         int    `json:"id"`
	PestName   string `json:"pest_name"`
	Reason     string `json:"reason"`
	Solution   string `json:"solution"`
	Prevention string `json:"prevention"`
}
