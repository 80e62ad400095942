package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hookedAPI/internal/segment"
	"hookedAPI/internal/types/notification"
	"hookedAPI/middleware"
)

// SegmentService owns the segments domain: it implements segment.Store over
// Postgres and hosts the effort engine, so the session-completion path and
// the manual-effort endpoint share one pipeline.
type SegmentService struct {
	db           *pgxpool.Pool
	engine       *segment.Engine
	notifService *NotificationService
}

func NewSegmentService(db *pgxpool.Pool, notifService *NotificationService) *SegmentService {
	s := &SegmentService{
		db:           db,
		notifService: notifService,
	}
	s.engine = segment.NewEngine(s)
	s.engine.OnLegendChange = s.notifyLegendChange
	s.engine.OnPersonalBest = s.notifyPersonalBest
	return s
}

// Engine exposes the effort pipeline to sibling services.
func (s *SegmentService) Engine() *segment.Engine {
	return s.engine
}

const segmentColumns = `id, name, description, segment_type, center_lat, center_lng, radius, bounds, difficulty, tags, is_active, created_by, activity_count, total_catches, created_at, updated_at`

func scanSegment(row pgx.Row) (*segment.Segment, error) {
	seg := &segment.Segment{}
	err := row.Scan(
		&seg.ID,
		&seg.Name,
		&seg.Description,
		&seg.Kind,
		&seg.CenterLat,
		&seg.CenterLng,
		&seg.Radius,
		&seg.Bounds,
		&seg.Difficulty,
		&seg.Tags,
		&seg.IsActive,
		&seg.CreatedBy,
		&seg.ActivityCount,
		&seg.TotalCatches,
		&seg.CreatedAt,
		&seg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// --- segment.Store implementation -----------------------------------------

func (s *SegmentService) ActiveSegments(ctx context.Context) ([]*segment.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments WHERE is_active = true`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active segments: %w", err)
	}
	defer rows.Close()

	var segments []*segment.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (s *SegmentService) SegmentByID(ctx context.Context, id uuid.UUID) (*segment.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments WHERE id = $1`

	seg, err := scanSegment(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("segment %s: %w", id, segment.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}
	return seg, nil
}

func (s *SegmentService) BestEffortScore(ctx context.Context, segmentID, userID uuid.UUID) (int, bool, error) {
	query := `
	SELECT effort_score FROM segment_efforts
	WHERE segment_id = $1 AND user_id = $2
	ORDER BY effort_score DESC
	LIMIT 1
	`

	var score int
	err := s.db.QueryRow(ctx, query, segmentID, userID).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get best effort: %w", err)
	}
	return score, true, nil
}

func (s *SegmentService) CreateEffort(ctx context.Context, e *segment.Effort) error {
	query := `
	INSERT INTO segment_efforts (id, segment_id, user_id, session_id, catch_id, effort_score, catch_count, total_weight, biggest_fish, species_diversity, weather_difficulty, is_pr, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.Exec(ctx, query,
		e.ID, e.SegmentID, e.UserID, e.SessionID, e.CatchID,
		e.EffortScore, e.CatchCount, e.TotalWeight, e.BiggestFish,
		e.SpeciesDiversity, e.WeatherDifficulty, e.IsPR, e.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create effort: %w", err)
	}

	middleware.ObserveEffortRecorded()
	return nil
}

func (s *SegmentService) EffortsSince(ctx context.Context, segmentID uuid.UUID, since time.Time) ([]*segment.Effort, error) {
	query := `
	SELECT id, segment_id, user_id, session_id, catch_id, effort_score, catch_count, total_weight, biggest_fish, species_diversity, weather_difficulty, is_pr, completed_at
	FROM segment_efforts
	WHERE segment_id = $1 AND completed_at >= $2
	ORDER BY completed_at DESC
	`

	rows, err := s.db.Query(ctx, query, segmentID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query efforts: %w", err)
	}
	defer rows.Close()

	var efforts []*segment.Effort
	for rows.Next() {
		e := &segment.Effort{}
		err := rows.Scan(
			&e.ID, &e.SegmentID, &e.UserID, &e.SessionID, &e.CatchID,
			&e.EffortScore, &e.CatchCount, &e.TotalWeight, &e.BiggestFish,
			&e.SpeciesDiversity, &e.WeatherDifficulty, &e.IsPR, &e.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan effort: %w", err)
		}
		efforts = append(efforts, e)
	}
	return efforts, rows.Err()
}

func (s *SegmentService) CountUserEffortsSince(ctx context.Context, segmentID, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM segment_efforts WHERE segment_id = $1 AND user_id = $2 AND completed_at >= $3`,
		segmentID, userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count efforts: %w", err)
	}
	return count, nil
}

func (s *SegmentService) IncrementSegmentStats(ctx context.Context, segmentID uuid.UUID, catches int) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE segments SET activity_count = activity_count + 1, total_catches = total_catches + $2, updated_at = NOW() WHERE id = $1`,
		segmentID, catches,
	)
	if err != nil {
		return fmt.Errorf("failed to update segment stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("segment %s: %w", segmentID, segment.ErrNotFound)
	}
	return nil
}

func (s *SegmentService) UpsertLeaderboardEntry(ctx context.Context, entry *segment.LeaderboardEntry) error {
	query := `
	INSERT INTO segment_leaderboards (segment_id, user_id, category, timeframe, value, rank, efforts, last_effort_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (segment_id, user_id, category, timeframe)
	DO UPDATE SET value = EXCLUDED.value, rank = EXCLUDED.rank, efforts = EXCLUDED.efforts, last_effort_at = EXCLUDED.last_effort_at
	`

	_, err := s.db.Exec(ctx, query,
		entry.SegmentID, entry.UserID, entry.Category, entry.Timeframe,
		entry.Value, entry.Rank, entry.Efforts, entry.LastEffortAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}
	return nil
}

func (s *SegmentService) PruneLeaderboard(ctx context.Context, segmentID uuid.UUID, category segment.Category, timeframe segment.Timeframe, keep []uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM segment_leaderboards WHERE segment_id = $1 AND category = $2 AND timeframe = $3 AND user_id <> ALL($4)`,
		segmentID, category, timeframe, keep,
	)
	if err != nil {
		return fmt.Errorf("failed to prune leaderboard: %w", err)
	}
	return nil
}

func (s *SegmentService) ActiveLegend(ctx context.Context, segmentID uuid.UUID) (*segment.LocalLegend, error) {
	query := `
	SELECT id, segment_id, user_id, status, effort_count, achieved_at, dethroned_at
	FROM local_legends
	WHERE segment_id = $1 AND status = 'active'
	`

	l := &segment.LocalLegend{}
	err := s.db.QueryRow(ctx, query, segmentID).Scan(
		&l.ID, &l.SegmentID, &l.UserID, &l.Status, &l.EffortCount, &l.AchievedAt, &l.DethronedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active legend: %w", err)
	}
	return l, nil
}

func (s *SegmentService) DethroneLegend(ctx context.Context, legendID uuid.UUID, at time.Time) error {
	// Conditional on the row still being active so two challengers cannot
	// both dethrone the same incumbent.
	tag, err := s.db.Exec(ctx,
		`UPDATE local_legends SET status = 'dethroned', dethroned_at = $2 WHERE id = $1 AND status = 'active'`,
		legendID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to dethrone legend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("legend %s already dethroned: %w", legendID, segment.ErrConflict)
	}
	return nil
}

func (s *SegmentService) CreateLegend(ctx context.Context, l *segment.LocalLegend) error {
	// The partial unique index on (segment_id) WHERE status = 'active' is the
	// authority for the one-active-legend invariant.
	query := `
	INSERT INTO local_legends (id, segment_id, user_id, status, effort_count, achieved_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query, l.ID, l.SegmentID, l.UserID, l.Status, l.EffortCount, l.AchievedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("segment %s already has an active legend: %w", l.SegmentID, segment.ErrConflict)
		}
		return fmt.Errorf("failed to create legend: %w", err)
	}
	return nil
}

// --- engine entry points ---------------------------------------------------

func (s *SegmentService) RecordManualEffort(ctx context.Context, segmentID, userID uuid.UUID, req *segment.ManualEffortRequest) (*segment.Effort, error) {
	return s.engine.RecordManualEffort(ctx, segmentID, userID, req)
}

func (s *SegmentService) RecordSessionEfforts(ctx context.Context, sessionID, userID uuid.UUID, catches []segment.CatchData, weatherDifficulty *float64) error {
	return s.engine.RecordSessionEfforts(ctx, sessionID, userID, catches, weatherDifficulty)
}

// --- notifications ---------------------------------------------------------

func (s *SegmentService) notifyLegendChange(ctx context.Context, tr segment.LegendTransition) {
	middleware.ObserveLegendTransition()

	seg, err := s.SegmentByID(ctx, tr.SegmentID)
	if err != nil {
		log.Printf("notifyLegendChange: failed to load segment %s: %v", tr.SegmentID, err)
		return
	}

	if err := s.notifService.CreateNotification(ctx, tr.NewLegend.UserID, notification.TypeLegendEarned,
		"You are the Local Legend!",
		fmt.Sprintf("You are now the Local Legend of %s with %d efforts in the last 90 days.", seg.Name, tr.NewLegend.EffortCount),
	); err != nil {
		log.Printf("notifyLegendChange: failed to notify new legend: %v", err)
	}

	if tr.Dethroned != nil {
		if err := s.notifService.CreateNotification(ctx, tr.Dethroned.UserID, notification.TypeLegendLost,
			"Your title was taken",
			fmt.Sprintf("You have been dethroned as the Local Legend of %s.", seg.Name),
		); err != nil {
			log.Printf("notifyLegendChange: failed to notify dethroned legend: %v", err)
		}
	}
}

func (s *SegmentService) notifyPersonalBest(ctx context.Context, e *segment.Effort) {
	if err := s.notifService.CreateNotification(ctx, e.UserID, notification.TypePersonalBest,
		"New personal record!",
		fmt.Sprintf("You set a new PR with an effort score of %d.", e.EffortScore),
	); err != nil {
		log.Printf("notifyPersonalBest: failed to notify user %s: %v", e.UserID, err)
	}
}

// --- query surface ---------------------------------------------------------

func (s *SegmentService) CreateSegment(ctx context.Context, userID uuid.UUID, req *segment.CreateSegmentRequest) (*segment.Segment, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", segment.ErrInvalidInput)
	}

	kind := req.Kind
	if kind == "" {
		kind = segment.KindSpot
	}
	switch kind {
	case segment.KindSpot, segment.KindRoute, segment.KindZone:
	default:
		return nil, fmt.Errorf("%w: unknown segment type %q", segment.ErrInvalidInput, kind)
	}

	// Duplicate-location guard: reject a second active segment within
	// ~0.001 degrees of an existing center.
	var existingID uuid.UUID
	err := s.db.QueryRow(ctx, `
	SELECT id FROM segments
	WHERE is_active = true
	  AND center_lat BETWEEN $1 - 0.001 AND $1 + 0.001
	  AND center_lng BETWEEN $2 - 0.001 AND $2 + 0.001
	LIMIT 1
	`, req.CenterLat, req.CenterLng).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("segment %s already exists at this location: %w", existingID, segment.ErrConflict)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check for duplicate segment: %w", err)
	}

	radius := req.Radius
	bounds := req.Bounds
	if kind == segment.KindSpot {
		bounds = nil
		if radius == nil {
			r := 100.0
			radius = &r
		}
	} else {
		radius = nil
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
	INSERT INTO segments (id, name, description, segment_type, center_lat, center_lng, radius, bounds, difficulty, tags, is_active, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, NOW(), NOW())
	RETURNING ` + segmentColumns

	seg, err := scanSegment(s.db.QueryRow(ctx, query,
		uuid.New(), req.Name, req.Description, kind, req.CenterLat, req.CenterLng,
		radius, bounds, req.Difficulty, tags, userID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create segment: %w", err)
	}
	return seg, nil
}

func (s *SegmentService) GetSegmentDetails(ctx context.Context, id uuid.UUID) (*segment.SegmentDetails, error) {
	seg, err := s.SegmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorateSegment(ctx, seg)
}

func (s *SegmentService) decorateSegment(ctx context.Context, seg *segment.Segment) (*segment.SegmentDetails, error) {
	legend, err := s.ActiveLegend(ctx, seg.ID)
	if err != nil {
		return nil, err
	}

	var effortsCount int
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM segment_efforts WHERE segment_id = $1`, seg.ID).Scan(&effortsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count efforts: %w", err)
	}

	return &segment.SegmentDetails{Segment: seg, CurrentLegend: legend, EffortsCount: effortsCount}, nil
}

// NearbySegments prefilters on a bounding box in SQL, then measures the exact
// Haversine distance and sorts nearest first.
func (s *SegmentService) NearbySegments(ctx context.Context, lat, lng, radiusM float64) ([]*segment.SegmentWithDistance, error) {
	radiusDegrees := radiusM / 111000

	query := `SELECT ` + segmentColumns + `
	FROM segments
	WHERE is_active = true
	  AND center_lat BETWEEN $1 - $3 AND $1 + $3
	  AND center_lng BETWEEN $2 - $3 AND $2 + $3
	ORDER BY total_catches DESC
	`

	rows, err := s.db.Query(ctx, query, lat, lng, radiusDegrees)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby segments: %w", err)
	}
	defer rows.Close()

	var candidates []*segment.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		candidates = append(candidates, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*segment.SegmentWithDistance, 0, len(candidates))
	for _, seg := range candidates {
		distanceM := segment.DistanceKm(lat, lng, seg.CenterLat, seg.CenterLng) * 1000
		if distanceM > radiusM {
			continue
		}
		details, err := s.decorateSegment(ctx, seg)
		if err != nil {
			return nil, err
		}
		result = append(result, &segment.SegmentWithDistance{
			SegmentDetails: *details,
			DistanceMeters: math.Round(distanceM),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DistanceMeters < result[j].DistanceMeters
	})
	return result, nil
}

func (s *SegmentService) ExploreSegments(ctx context.Context, filter string, page, limit int) ([]*segment.SegmentDetails, int, error) {
	orderBy := "total_catches DESC"
	switch filter {
	case "recent":
		orderBy = "created_at DESC"
	case "active":
		orderBy = "activity_count DESC"
	}

	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT `+segmentColumns+` FROM segments WHERE is_active = true ORDER BY %s LIMIT $1 OFFSET $2`, orderBy)

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to explore segments: %w", err)
	}
	defer rows.Close()

	var details []*segment.SegmentDetails
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan segment: %w", err)
		}
		d, err := s.decorateSegment(ctx, seg)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM segments WHERE is_active = true`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count segments: %w", err)
	}

	return details, total, nil
}

func (s *SegmentService) UpdateSegment(ctx context.Context, id, userID uuid.UUID, req *segment.UpdateSegmentRequest) (*segment.Segment, error) {
	seg, err := s.SegmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seg.CreatedBy != userID {
		return nil, fmt.Errorf("only the creator can update a segment: %w", segment.ErrInvalidInput)
	}

	query := `
	UPDATE segments
	SET
		name = COALESCE($2, name),
		description = COALESCE($3, description),
		difficulty = COALESCE($4, difficulty),
		tags = COALESCE($5, tags),
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + segmentColumns

	updated, err := scanSegment(s.db.QueryRow(ctx, query, id, req.Name, req.Description, req.Difficulty, req.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to update segment: %w", err)
	}
	return updated, nil
}

// DeactivateSegment soft-deletes: efforts, leaderboards and legend history
// survive, the segment just stops matching new sessions.
func (s *SegmentService) DeactivateSegment(ctx context.Context, id, userID uuid.UUID) error {
	seg, err := s.SegmentByID(ctx, id)
	if err != nil {
		return err
	}
	if seg.CreatedBy != userID {
		return fmt.Errorf("only the creator can deactivate a segment: %w", segment.ErrInvalidInput)
	}

	_, err = s.db.Exec(ctx, `UPDATE segments SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate segment: %w", err)
	}
	return nil
}

func (s *SegmentService) GetLeaderboard(ctx context.Context, segmentID uuid.UUID, category segment.Category, timeframe segment.Timeframe, limit int) ([]*segment.LeaderboardEntry, error) {
	if _, err := s.SegmentByID(ctx, segmentID); err != nil {
		return nil, err
	}

	query := `
	SELECT segment_id, user_id, category, timeframe, value, rank, efforts, last_effort_at
	FROM segment_leaderboards
	WHERE segment_id = $1 AND category = $2 AND timeframe = $3
	ORDER BY rank ASC
	LIMIT $4
	`

	rows, err := s.db.Query(ctx, query, segmentID, category, timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*segment.LeaderboardEntry
	for rows.Next() {
		e := &segment.LeaderboardEntry{}
		err := rows.Scan(&e.SegmentID, &e.UserID, &e.Category, &e.Timeframe, &e.Value, &e.Rank, &e.Efforts, &e.LastEffortAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SegmentService) GetEfforts(ctx context.Context, segmentID uuid.UUID, userID *uuid.UUID, page, limit int) ([]*segment.Effort, int, error) {
	offset := (page - 1) * limit

	where := "WHERE segment_id = $1"
	args := []any{segmentID}
	if userID != nil {
		where += " AND user_id = $2"
		args = append(args, *userID)
	}

	query := fmt.Sprintf(`
	SELECT id, segment_id, user_id, session_id, catch_id, effort_score, catch_count, total_weight, biggest_fish, species_diversity, weather_difficulty, is_pr, completed_at
	FROM segment_efforts
	%s
	ORDER BY effort_score DESC
	LIMIT %d OFFSET %d
	`, where, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query efforts: %w", err)
	}
	defer rows.Close()

	var efforts []*segment.Effort
	for rows.Next() {
		e := &segment.Effort{}
		err := rows.Scan(
			&e.ID, &e.SegmentID, &e.UserID, &e.SessionID, &e.CatchID,
			&e.EffortScore, &e.CatchCount, &e.TotalWeight, &e.BiggestFish,
			&e.SpeciesDiversity, &e.WeatherDifficulty, &e.IsPR, &e.CompletedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan effort: %w", err)
		}
		efforts = append(efforts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM segment_efforts %s`, where)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count efforts: %w", err)
	}

	return efforts, total, nil
}

func (s *SegmentService) GetLegendHistory(ctx context.Context, segmentID uuid.UUID) ([]*segment.LocalLegend, error) {
	query := `
	SELECT id, segment_id, user_id, status, effort_count, achieved_at, dethroned_at
	FROM local_legends
	WHERE segment_id = $1
	ORDER BY achieved_at DESC
	`

	rows, err := s.db.Query(ctx, query, segmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query legend history: %w", err)
	}
	defer rows.Close()

	var legends []*segment.LocalLegend
	for rows.Next() {
		l := &segment.LocalLegend{}
		err := rows.Scan(&l.ID, &l.SegmentID, &l.UserID, &l.Status, &l.EffortCount, &l.AchievedAt, &l.DethronedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legend: %w", err)
		}
		legends = append(legends, l)
	}
	return legends, rows.Err()
}
