package session

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is the persisted summary of a run: enough to restore the headline
// numbers or submit them to a leaderboard.
type RunRecord struct {
	SessionID  string    `json:"sessionId"`
	Seed       string    `json:"seed"`
	Layer      int       `json:"layer"`
	Score      int       `json:"score"`
	ElapsedMs  float64   `json:"elapsedMs"`
	Build      []string  `json:"build"`
	Gold       int       `json:"gold"`
	Experience int       `json:"experience"`
	GameOver   bool      `json:"gameOver"`
	RecordedAt time.Time `json:"recordedAt"`
}

// NewSessionID returns a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id parses as a UUID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
