package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"memory-map-backend/internal/cluster"
	"memory-map-backend/internal/geo"
	"memory-map-backend/internal/models"
	"memory-map-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// CoarseNearbyDegrees is the planar radius of the coarse nearby lookup
const CoarseNearbyDegrees = 0.05

// MemoryNotifier is told about every memory created, with the users who may see it
type MemoryNotifier interface {
	MemoryAdded(ctx context.Context, memory models.Memory, recipientIDs []string)
}

// MemoryService handles memory-related business logic
type MemoryService struct {
	memoryRepo    repository.MemoryRepository
	friendService *FriendService
	notifiers     []MemoryNotifier
	now           func() time.Time
}

// NewMemoryService creates a new memory service
func NewMemoryService(memoryRepo repository.MemoryRepository, friendService *FriendService, notifiers ...MemoryNotifier) *MemoryService {
	return &MemoryService{
		memoryRepo:    memoryRepo,
		friendService: friendService,
		notifiers:     notifiers,
		now:           time.Now,
	}
}

// CreateMemoryRequest represents a memory submitted by a user
type CreateMemoryRequest struct {
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Date        models.Date `json:"date"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	PhotoURL    string      `json:"photo_url"`
	GroupTag    string      `json:"group_tag"`
	Public      *bool       `json:"public"`
}

// Validate checks the request against the current day
func (r *CreateMemoryRequest) Validate(today models.Date) error {
	if !(geo.Point{Lat: r.Latitude, Lng: r.Longitude}).Valid() {
		return fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if r.Date.After(today) {
		return fmt.Errorf("%w: date %s is in the future", ErrValidation, r.Date)
	}
	return nil
}

// Create validates and stores a memory owned by userID, then notifies the owner and friends
func (s *MemoryService) Create(ctx context.Context, userID string, req CreateMemoryRequest) (*models.Memory, error) {
	now := s.now().UTC()
	if err := req.Validate(models.NewDate(now)); err != nil {
		return nil, err
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}
	memory := &models.Memory{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Date:        req.Date,
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		PhotoURL:    req.PhotoURL,
		GroupTag:    strings.TrimSpace(req.GroupTag),
		OwnerID:     userID,
		Public:      public,
		CreatedAt:   now,
	}
	if err := s.memoryRepo.Create(ctx, memory); err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}
	memory.OwnedByViewer = true

	log.Info().
		Int64("memory_id", memory.ID).
		Str("user_id", userID).
		Str("location", memory.Location).
		Msg("Memory created")

	friendIDs, err := s.friendService.FriendIDs(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load friends for notification")
	}
	recipients := append([]string{userID}, friendIDs...)
	for _, n := range s.notifiers {
		n.MemoryAdded(ctx, *memory, recipients)
	}

	return memory, nil
}

// ViewState builds the state a listing is computed against
func (s *MemoryService) ViewState(ctx context.Context, viewerID string, filter models.ViewFilter) (models.ViewState, error) {
	state := models.ViewState{Filter: filter, ViewerID: viewerID}
	if viewerID == "" {
		return state, nil
	}
	friends, err := s.friendService.FriendSet(ctx, viewerID)
	if err != nil {
		return state, err
	}
	state.FriendIDs = friends
	return state, nil
}

// List returns the memories visible under state, in id order
func (s *MemoryService) List(ctx context.Context, state models.ViewState) ([]models.Memory, error) {
	all, err := s.memoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return state.Apply(all), nil
}

// Timeline returns the visible memories, earliest date first
func (s *MemoryService) Timeline(ctx context.Context, state models.ViewState) ([]models.Memory, error) {
	memories, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Before(&memories[j])
	})
	return memories, nil
}

// Clusters groups the visible memories into map markers
func (s *MemoryService) Clusters(ctx context.Context, state models.ViewState, opts cluster.Options) ([]models.Cluster, error) {
	memories, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}
	clusters, err := cluster.Build(memories, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return clusters, nil
}

// NearbyMemory is a memory with its distance from the lookup point
type NearbyMemory struct {
	models.Memory
	DistanceMeters float64 `json:"distance_meters"`
}

// Nearby returns visible memories within radiusMeters of point, closest first
func (s *MemoryService) Nearby(ctx context.Context, state models.ViewState, point geo.Point, radiusMeters float64) ([]NearbyMemory, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters <= 0 {
		return nil, fmt.Errorf("%w: radius must be a positive finite number", ErrValidation)
	}
	memories, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}

	nearby := []NearbyMemory{}
	for _, m := range memories {
		d := geo.Distance(point.Lat, point.Lng, m.Latitude, m.Longitude)
		if d <= radiusMeters {
			nearby = append(nearby, NearbyMemory{Memory: m, DistanceMeters: d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	return nearby, nil
}

// NearbyCoarse returns visible memories within CoarseNearbyDegrees of point in
// plain degree space, in id order. Distances are reported in meters.
func (s *MemoryService) NearbyCoarse(ctx context.Context, state models.ViewState, point geo.Point) ([]NearbyMemory, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	memories, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}

	nearby := []NearbyMemory{}
	for _, m := range memories {
		if geo.DegreeDistance(point.Lat, point.Lng, m.Latitude, m.Longitude) <= CoarseNearbyDegrees {
			nearby = append(nearby, NearbyMemory{
				Memory:         m,
				DistanceMeters: geo.Distance(point.Lat, point.Lng, m.Latitude, m.Longitude),
			})
		}
	}
	return nearby, nil
}

// AreaSummary counts visible memories in one H3 cell
type AreaSummary struct {
	Cell      string  `json:"cell"`
	Count     int     `json:"count"`
	MemoryIDs []int64 `json:"memory_ids"`
}

// Areas buckets the visible memories by H3 cell, busiest cell first
func (s *MemoryService) Areas(ctx context.Context, state models.ViewState, resolution int) ([]AreaSummary, error) {
	if resolution < 0 || resolution > 15 {
		return nil, fmt.Errorf("%w: resolution must be between 0 and 15", ErrValidation)
	}
	memories, err := s.List(ctx, state)
	if err != nil {
		return nil, err
	}

	byCell := map[string]*AreaSummary{}
	for _, m := range memories {
		p := geo.Point{Lat: m.Latitude, Lng: m.Longitude}
		if !p.Valid() {
			continue
		}
		cell, err := geo.CellOf(p, resolution)
		if err != nil {
			return nil, err
		}
		key := cell.String()
		area, ok := byCell[key]
		if !ok {
			area = &AreaSummary{Cell: key}
			byCell[key] = area
		}
		area.Count++
		area.MemoryIDs = append(area.MemoryIDs, m.ID)
	}

	areas := make([]AreaSummary, 0, len(byCell))
	for _, a := range byCell {
		areas = append(areas, *a)
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Count != areas[j].Count {
			return areas[i].Count > areas[j].Count
		}
		return areas[i].Cell < areas[j].Cell
	})
	return areas, nil
}

// Members loads the memories behind an activated marker, checking the viewer may see each one.
// Repeated ids are collapsed to their first occurrence.
func (s *MemoryService) Members(ctx context.Context, state models.ViewState, ids []int64) ([]models.Memory, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: memory_ids is required", ErrValidation)
	}
	ids = uniqueIDs(ids)
	memories, err := s.memoryRepo.GetByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, fmt.Errorf("failed to get memories: %w", err)
	}

	visible := state.Apply(memories)
	if len(visible) != len(memories) {
		return nil, ErrMemoryNotFound
	}
	return visible, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
