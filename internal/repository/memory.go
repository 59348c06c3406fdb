package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memory-map-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgMemoryRepository handles database operations for memories
type PgMemoryRepository struct {
	db *pgxpool.Pool
}

// NewPgMemoryRepository creates a new memory repository
func NewPgMemoryRepository(db *pgxpool.Pool) *PgMemoryRepository {
	return &PgMemoryRepository{db: db}
}

const memoryColumns = `id, latitude, longitude, taken_on, location, description,
		photo_url, group_tag, owner_id, public, created_at`

// Create inserts a memory and fills its id from the identity sequence
func (r *PgMemoryRepository) Create(ctx context.Context, m *models.Memory) error {
	query := `
		INSERT INTO memories (latitude, longitude, taken_on, location, description,
			photo_url, group_tag, owner_id, public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		m.Latitude, m.Longitude, m.Date.Time, m.Location, m.Description,
		m.PhotoURL, m.GroupTag, m.OwnerID, m.Public, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}
	return nil
}

// Import inserts seed memories with their own ids and moves the sequence past them
func (r *PgMemoryRepository) Import(ctx context.Context, memories []models.Memory, progress func()) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO memories (` + memoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	for i := range memories {
		m := &memories[i]
		_, err := tx.Exec(ctx, query,
			m.ID, m.Latitude, m.Longitude, m.Date.Time, m.Location, m.Description,
			m.PhotoURL, m.GroupTag, m.OwnerID, m.Public, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to import memory %d: %w", m.ID, err)
		}
		if progress != nil {
			progress()
		}
	}

	_, err = tx.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('memories', 'id'),
			GREATEST((SELECT COALESCE(MAX(id), 0) FROM memories), $1))
	`, FirstMemoryID-1)
	if err != nil {
		return fmt.Errorf("failed to advance memory sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// List returns all memories ordered by id
func (r *PgMemoryRepository) List(ctx context.Context) ([]models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	memories, err := scanMemories(rows)
	if err != nil {
		return nil, err
	}
	return memories, nil
}

// GetByIDs returns the requested memories in the order given
func (r *PgMemoryRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get memories: %w", err)
	}
	defer rows.Close()

	found, err := scanMemories(rows)
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids)
}

func scanMemories(rows pgx.Rows) ([]models.Memory, error) {
	var memories []models.Memory
	for rows.Next() {
		var (
			m       models.Memory
			takenOn time.Time
		)
		err := rows.Scan(
			&m.ID, &m.Latitude, &m.Longitude, &takenOn, &m.Location, &m.Description,
			&m.PhotoURL, &m.GroupTag, &m.OwnerID, &m.Public, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		m.Date = models.NewDate(takenOn)
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memories: %w", err)
	}
	return memories, nil
}

// orderByIDs arranges found in the order of ids; a repeated id is kept at its first position
func orderByIDs(found []models.Memory, ids []int64) ([]models.Memory, error) {
	byID := make(map[int64]models.Memory, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	seen := make(map[int64]bool, len(ids))
	result := make([]models.Memory, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		m, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("memory %d: %w", id, ErrNotFound)
		}
		seen[id] = true
		result = append(result, m)
	}
	return result, nil
}

// isNoRows reports whether err is pgx's empty result error
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
