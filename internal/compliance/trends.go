package compliance

import (
	"math"
	"time"

	"charityprep/internal/models"
)

// Direction summarises how the score moved since the previous period
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Trends compares the current score with stored history. All fields are nil
// when there is not enough history.
type Trends struct {
	LastMonth *int       `json:"lastMonth"`
	Change    *float64   `json:"change"`
	Direction *Direction `json:"direction"`
}

// HistoryPoint is the part of a snapshot the trend calculation needs
type HistoryPoint struct {
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryFromSnapshots adapts stored snapshots, keeping their order
func HistoryFromSnapshots(snapshots []models.ComplianceScoreSnapshot) []HistoryPoint {
	points := make([]HistoryPoint, 0, len(snapshots))
	for _, s := range snapshots {
		points = append(points, HistoryPoint{Score: s.Score, CreatedAt: s.CreatedAt})
	}
	return points
}

// CalculateTrends compares currentScore with history, which must be sorted
// newest first. The newest stored snapshot belongs to the period being
// reported, so the comparison point is history[1].
func CalculateTrends(history []HistoryPoint, currentScore int) Trends {
	if len(history) < 2 {
		return Trends{}
	}

	previous := history[1].Score
	change := math.Round(float64(currentScore-previous)*10) / 10

	direction := DirectionStable
	if math.Abs(change) >= 1 {
		if change > 0 {
			direction = DirectionUp
		} else {
			direction = DirectionDown
		}
	}

	return Trends{
		LastMonth: &previous,
		Change:    &change,
		Direction: &direction,
	}
}
