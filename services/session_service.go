package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hookedAPI/internal/segment"
	"hookedAPI/internal/types/session"
)

type SessionService struct {
	db             *pgxpool.Pool
	segmentService *SegmentService
}

func NewSessionService(db *pgxpool.Pool, segmentService *SegmentService) *SessionService {
	return &SessionService{
		db:             db,
		segmentService: segmentService,
	}
}

func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	query := `
	SELECT id, user_id, title, start_time, end_time, weather_difficulty, is_completed, created_at
	FROM fishing_sessions
	WHERE id = $1
	`

	sess := &session.Session{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&sess.ID, &sess.UserID, &sess.Title, &sess.StartTime,
		&sess.EndTime, &sess.WeatherDifficulty, &sess.IsCompleted, &sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, segment.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

func (s *SessionService) GetSessionCatches(ctx context.Context, sessionID uuid.UUID) ([]*session.Catch, error) {
	query := `
	SELECT id, session_id, user_id, latitude, longitude, weight_kg, species, caught_at
	FROM catches
	WHERE session_id = $1
	ORDER BY caught_at ASC
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query catches: %w", err)
	}
	defer rows.Close()

	var catches []*session.Catch
	for rows.Next() {
		c := &session.Catch{}
		err := rows.Scan(&c.ID, &c.SessionID, &c.UserID, &c.Latitude, &c.Longitude, &c.WeightKg, &c.Species, &c.CaughtAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catch: %w", err)
		}
		catches = append(catches, c)
	}
	return catches, rows.Err()
}

// CompleteSession marks a session finished and runs segment effort detection
// over its catches. Completing an already-completed session is rejected so
// the pipeline never double-records a session.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID, userID uuid.UUID) (*session.Session, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("session %s does not belong to user: %w", sessionID, segment.ErrNotFound)
	}
	if sess.IsCompleted {
		return nil, fmt.Errorf("%w: session already completed", segment.ErrInvalidInput)
	}

	catches, err := s.GetSessionCatches(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE fishing_sessions
	SET is_completed = true, end_time = COALESCE(end_time, NOW())
	WHERE id = $1
	RETURNING id, user_id, title, start_time, end_time, weather_difficulty, is_completed, created_at
	`

	updated := &session.Session{}
	err = s.db.QueryRow(ctx, query, sessionID).Scan(
		&updated.ID, &updated.UserID, &updated.Title, &updated.StartTime,
		&updated.EndTime, &updated.WeatherDifficulty, &updated.IsCompleted, &updated.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	catchData := make([]segment.CatchData, 0, len(catches))
	for _, c := range catches {
		catchData = append(catchData, segment.CatchData{
			ID:        c.ID,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			WeightKg:  c.WeightKg,
			Species:   c.Species,
		})
	}

	if err := s.segmentService.RecordSessionEfforts(ctx, sessionID, userID, catchData, sess.WeatherDifficulty); err != nil {
		// The session is already marked complete; surface the pipeline
		// failure so the caller can retry effort recording.
		log.Printf("CompleteSession: effort pipeline failed for session %s: %v", sessionID, err)
		return nil, err
	}

	return updated, nil
}
