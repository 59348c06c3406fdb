package repository

import (
	"fmt"
	"os"
	"time"

	"memory-map-backend/internal/models"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Memories []seedMemory `yaml:"memories"`
}

type seedMemory struct {
	ID          int64       `yaml:"id"`
	Latitude    float64     `yaml:"latitude"`
	Longitude   float64     `yaml:"longitude"`
	Date        models.Date `yaml:"date"`
	Location    string      `yaml:"location"`
	Description string      `yaml:"description"`
	PhotoURL    string      `yaml:"photo_url"`
	GroupTag    string      `yaml:"group_tag"`
	OwnerID     string      `yaml:"owner_id"`
	Public      *bool       `yaml:"public"`
}

// LoadSeed reads demo memories from a YAML file. Seed memories are public
// unless marked otherwise and must carry a positive unique id.
func LoadSeed(path string) ([]models.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML
func ParseSeed(data []byte) ([]models.Memory, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	now := time.Now().UTC()
	seen := make(map[int64]bool, len(f.Memories))
	memories := make([]models.Memory, 0, len(f.Memories))
	for i, s := range f.Memories {
		if s.ID <= 0 {
			return nil, fmt.Errorf("seed memory #%d: id must be positive", i+1)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("seed memory %d: %w", s.ID, ErrAlreadyExists)
		}
		seen[s.ID] = true

		public := true
		if s.Public != nil {
			public = *s.Public
		}
		memories = append(memories, models.Memory{
			ID:          s.ID,
			Latitude:    s.Latitude,
			Longitude:   s.Longitude,
			Date:        s.Date,
			Location:    s.Location,
			Description: s.Description,
			PhotoURL:    s.PhotoURL,
			GroupTag:    s.GroupTag,
			OwnerID:     s.OwnerID,
			Public:      public,
			CreatedAt:   now,
		})
	}
	return memories, nil
}
