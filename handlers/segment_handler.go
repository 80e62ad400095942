package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"hookedAPI/internal/segment"
	"hookedAPI/middleware"
	"hookedAPI/services"
)

type SegmentHandler struct {
	segmentService *services.SegmentService
}

func NewSegmentHandler(segmentService *services.SegmentService) *SegmentHandler {
	return &SegmentHandler{
		segmentService: segmentService,
	}
}

func (h *SegmentHandler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req segment.CreateSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	seg, err := h.segmentService.CreateSegment(ctx, userID, &req)
	if err != nil {
		log.Printf("CreateSegment Handler: Service error: %v", err)
		respondWithError(w, statusFromError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Segment created successfully",
		"segment": seg,
	})
}

func (h *SegmentHandler) GetNearbySegments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'lat' is required")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'lng' is required")
		return
	}

	radiusM := 50000.0
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radiusM, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusM <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid radius")
			return
		}
	}

	segments, err := h.segmentService.NearbySegments(ctx, lat, lng, radiusM)
	if err != nil {
		log.Printf("GetNearbySegments Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get nearby segments")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"segments": segments})
}

func (h *SegmentHandler) ExploreSegments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := paginationParams(r, 20)
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = "popular"
	}

	segments, total, err := h.segmentService.ExploreSegments(ctx, filter, page, limit)
	if err != nil {
		log.Printf("ExploreSegments Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to explore segments")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"segments":   segments,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *SegmentHandler) GetSegment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment id")
		return
	}

	details, err := h.segmentService.GetSegmentDetails(ctx, id)
	if err != nil {
		respondWithError(w, statusFromError(err), "Segment not found")
		return
	}

	respondWithJSON(w, http.StatusOK, details)
}

func (h *SegmentHandler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment id")
		return
	}

	var req segment.UpdateSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.segmentService.UpdateSegment(ctx, id, userID, &req)
	if err != nil {
		log.Printf("UpdateSegment Handler: Service error: %v", err)
		respondWithError(w, statusFromError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Segment updated successfully",
		"segment": updated,
	})
}

func (h *SegmentHandler) DeactivateSegment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment id")
		return
	}

	if err := h.segmentService.DeactivateSegment(ctx, id, userID); err != nil {
		log.Printf("DeactivateSegment Handler: Service error: %v", err)
		respondWithError(w, statusFromError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Segment deactivated successfully"})
}

func (h *SegmentHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment id")
		return
	}

	category := segment.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = segment.CategoryMostCatches
	}
	timeframe := segment.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = segment.TimeframeAllTime
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	entries, err := h.segmentService.GetLeaderboard(ctx, id, category, timeframe, limit)
	if err != nil {
		respondWithError(w, statusFromError(err), "Failed to get leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"category":    category,
		"timeframe":   timeframe,
		"leaderboard": entries,
	})
}

func (h *SegmentHandler) GetEfforts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment id")
		return
	}

	var filterUser *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid userId")
			return
		}
		filterUser = &parsed
	}

	page, limit := paginationParams(r, 20)

	efforts, total, err := h.segmentService.GetEfforts(ctx, id, filterUser, page, limit)
	if err != nil {
		respondWithError(w, statusFromError(err), "Failed to get efforts")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"efforts":    efforts,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *SegmentHandler) GetLegendHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment id")
		return
	}

	legends, err := h.segmentService.GetLegendHistory(ctx, id)
	if err != nil {
		respondWithError(w, statusFromError(err), "Failed to get legend history")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"legends": legends})
}

func (h *SegmentHandler) RecordManualEffort(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment id")
		return
	}

	var req segment.ManualEffortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	effort, err := h.segmentService.RecordManualEffort(ctx, id, userID, &req)
	if err != nil {
		log.Printf("RecordManualEffort Handler: Service error: %v", err)
		respondWithError(w, statusFromError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Effort recorded successfully",
		"effort":  effort,
		"is_pr":   effort.IsPR,
	})
}

// Helper functions

func statusFromError(err error) int {
	switch {
	case errors.Is(err, segment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, segment.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, segment.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func paginationParams(r *http.Request, defaultLimit int) (page, limit int) {
	page = 1
	limit = defaultLimit
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return page, limit
}

func paginationMeta(page, limit, total int) map[string]any {
	return map[string]any{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": int(math.Ceil(float64(total) / float64(limit))),
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
