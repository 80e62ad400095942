package segment

import (
	"time"

	"github.com/google/uuid"
)

type SegmentKind string

const (
	KindSpot  SegmentKind = "spot"
	KindRoute SegmentKind = "route"
	KindZone  SegmentKind = "zone"
)

type Category string

const (
	CategoryMostCatches      Category = "most_catches"
	CategoryBiggestFish      Category = "biggest_fish"
	CategoryTotalWeight      Category = "total_weight"
	CategorySpeciesDiversity Category = "species_diversity"
)

type Timeframe string

const (
	TimeframeAllTime Timeframe = "all_time"
	TimeframeYear    Timeframe = "year"
	TimeframeMonth   Timeframe = "month"
	TimeframeWeek    Timeframe = "week"
)

// Categories and Timeframes enumerate the full leaderboard cross-product.
var (
	Categories = []Category{CategoryMostCatches, CategoryBiggestFish, CategoryTotalWeight, CategorySpeciesDiversity}
	Timeframes = []Timeframe{TimeframeAllTime, TimeframeYear, TimeframeMonth, TimeframeWeek}
)

type LegendStatus string

const (
	LegendActive    LegendStatus = "active"
	LegendDethroned LegendStatus = "dethroned"
)

// Segment is a named geographic feature a user can attempt. Spots carry a
// radius in meters; routes and zones carry a serialized boundary polygon.
type Segment struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Name          string      `json:"name" db:"name"`
	Description   *string     `json:"description" db:"description"`
	Kind          SegmentKind `json:"segment_type" db:"segment_type"`
	CenterLat     float64     `json:"center_lat" db:"center_lat"`
	CenterLng     float64     `json:"center_lng" db:"center_lng"`
	Radius        *float64    `json:"radius" db:"radius"`
	Bounds        *string     `json:"bounds" db:"bounds"`
	Difficulty    *string     `json:"difficulty" db:"difficulty"`
	Tags          []string    `json:"tags" db:"tags"`
	IsActive      bool        `json:"is_active" db:"is_active"`
	CreatedBy     uuid.UUID   `json:"created_by" db:"created_by"`
	ActivityCount int         `json:"activity_count" db:"activity_count"`
	TotalCatches  int         `json:"total_catches" db:"total_catches"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// Effort is one scored attempt by one user against one segment. Rows are
// append-only: IsPR is fixed at creation time and never revoked.
type Effort struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	SegmentID         uuid.UUID  `json:"segment_id" db:"segment_id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	SessionID         *uuid.UUID `json:"session_id" db:"session_id"`
	CatchID           *uuid.UUID `json:"catch_id" db:"catch_id"`
	EffortScore       int        `json:"effort_score" db:"effort_score"`
	CatchCount        int        `json:"catch_count" db:"catch_count"`
	TotalWeight       float64    `json:"total_weight" db:"total_weight"`
	BiggestFish       float64    `json:"biggest_fish" db:"biggest_fish"`
	SpeciesDiversity  int        `json:"species_diversity" db:"species_diversity"`
	WeatherDifficulty *float64   `json:"weather_difficulty" db:"weather_difficulty"`
	IsPR              bool       `json:"is_pr" db:"is_pr"`
	CompletedAt       time.Time  `json:"completed_at" db:"completed_at"`
}

// LeaderboardEntry is a materialized ranking row keyed by
// (segment, user, category, timeframe).
type LeaderboardEntry struct {
	SegmentID    uuid.UUID `json:"segment_id" db:"segment_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Category     Category  `json:"category" db:"category"`
	Timeframe    Timeframe `json:"timeframe" db:"timeframe"`
	Value        float64   `json:"value" db:"value"`
	Rank         int       `json:"rank" db:"rank"`
	Efforts      int       `json:"efforts" db:"efforts"`
	LastEffortAt time.Time `json:"last_effort_at" db:"last_effort_at"`
}

// LocalLegend records a current or former title holder of a segment. At most
// one row per segment has status=active at any time.
type LocalLegend struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	SegmentID   uuid.UUID    `json:"segment_id" db:"segment_id"`
	UserID      uuid.UUID    `json:"user_id" db:"user_id"`
	Status      LegendStatus `json:"status" db:"status"`
	EffortCount int          `json:"effort_count" db:"effort_count"`
	AchievedAt  time.Time    `json:"achieved_at" db:"achieved_at"`
	DethronedAt *time.Time   `json:"dethroned_at" db:"dethroned_at"`
}

type CreateSegmentRequest struct {
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Kind        SegmentKind `json:"segment_type"`
	CenterLat   float64     `json:"center_lat"`
	CenterLng   float64     `json:"center_lng"`
	Radius      *float64    `json:"radius"`
	Bounds      *string     `json:"bounds"`
	Difficulty  *string     `json:"difficulty"`
	Tags        []string    `json:"tags"`
}

type UpdateSegmentRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Difficulty  *string  `json:"difficulty"`
	Tags        []string `json:"tags"`
}

// ManualEffortRequest carries caller-supplied aggregates for the admin
// "record effort" operation.
type ManualEffortRequest struct {
	CatchID           *uuid.UUID `json:"catch_id"`
	SessionID         *uuid.UUID `json:"session_id"`
	CatchCount        int        `json:"catch_count"`
	TotalWeight       *float64   `json:"total_weight"`
	BiggestFish       *float64   `json:"biggest_fish"`
	SpeciesDiversity  *int       `json:"species_diversity"`
	WeatherDifficulty *float64   `json:"weather_difficulty"`
}

// SegmentDetails decorates a segment with its current legend and effort count
// for the read endpoints.
type SegmentDetails struct {
	*Segment
	CurrentLegend *LocalLegend `json:"current_legend"`
	EffortsCount  int          `json:"efforts_count"`
}

type SegmentWithDistance struct {
	SegmentDetails
	DistanceMeters float64 `json:"distance"`
}
