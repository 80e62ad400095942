package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeLegendEarned NotificationType = "legend_earned"
	TypeLegendLost   NotificationType = "legend_lost"
	TypePersonalBest NotificationType = "personal_best"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	ReadAt    *time.Time       `json:"read_at" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
