package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a fishing outing. Completing it triggers segment effort
// detection over its catches.
type Session struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	Title             *string    `json:"title" db:"title"`
	StartTime         time.Time  `json:"start_time" db:"start_time"`
	EndTime           *time.Time `json:"end_time" db:"end_time"`
	WeatherDifficulty *float64   `json:"weather_difficulty" db:"weather_difficulty"`
	IsCompleted       bool       `json:"is_completed" db:"is_completed"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// Catch is a single landed fish. Latitude/longitude may be missing when the
// catch was logged without GPS; such catches cannot match any segment.
type Catch struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Latitude  *float64  `json:"latitude" db:"latitude"`
	Longitude *float64  `json:"longitude" db:"longitude"`
	WeightKg  *float64  `json:"weight_kg" db:"weight_kg"`
	Species   *string   `json:"species" db:"species"`
	CaughtAt  time.Time `json:"caught_at" db:"caught_at"`
}
