package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-map-backend/internal/models"
)

func loadTestSeed(t *testing.T) []models.Memory {
	t.Helper()
	memories, err := LoadSeed(filepath.Join("..", "..", "testdata", "seed.yaml"))
	require.NoError(t, err)
	return memories
}

func TestLoadSeed(t *testing.T) {
	memories := loadTestSeed(t)
	require.Len(t, memories, 6)

	assert.Equal(t, int64(1), memories[0].ID)
	assert.Equal(t, "Sky Tower", memories[0].Location)
	assert.Equal(t, "2019-05-01", memories[0].Date.String())
	assert.True(t, memories[0].Public)
	assert.Equal(t, "harbour", memories[3].GroupTag)
	assert.False(t, memories[5].Public)
}

func TestParseSeedRejects(t *testing.T) {
	tests := map[string]string{
		"duplicate id": "memories:\n  - {id: 1, date: \"2020-01-01\"}\n  - {id: 1, date: \"2020-01-02\"}\n",
		"missing id":   "memories:\n  - {latitude: 1, date: \"2020-01-01\"}\n",
		"bad date":     "memories:\n  - {id: 1, date: \"yesterday\"}\n",
		"bad yaml":     "memories: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLocalMemoryRepositorySequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo, err := NewLocalMemoryRepository(loadTestSeed(t))
	require.NoError(t, err)

	first := &models.Memory{Location: "new"}
	second := &models.Memory{Location: "newer"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, FirstMemoryID, first.ID)
	assert.Equal(t, FirstMemoryID+1, second.ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, int64(101), all[7].ID)
}

func TestLocalMemoryRepositoryIDsAfterLargeSeed(t *testing.T) {
	repo, err := NewLocalMemoryRepository([]models.Memory{{ID: 250}, {ID: 3}})
	require.NoError(t, err)

	m := &models.Memory{}
	require.NoError(t, repo.Create(context.Background(), m))
	assert.Equal(t, int64(251), m.ID)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), all[0].ID)
}

func TestLocalMemoryRepositoryDuplicateSeed(t *testing.T) {
	_, err := NewLocalMemoryRepository([]models.Memory{{ID: 1}, {ID: 1}})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLocalMemoryRepositoryGetByIDs(t *testing.T) {
	ctx := context.Background()
	repo, err := NewLocalMemoryRepository(loadTestSeed(t))
	require.NoError(t, err)

	got, err := repo.GetByIDs(ctx, []int64{3, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)

	_, err = repo.GetByIDs(ctx, []int64{1, 42})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = repo.GetByIDs(ctx, []int64{2, 1, 2, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestLocalMemoryRepositoryListIsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo, err := NewLocalMemoryRepository(loadTestSeed(t))
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	all[0].Location = "mutated"

	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sky Tower", again[0].Location)
}

func TestLocalMemoryRepositoryConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo, err := NewLocalMemoryRepository(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, &models.Memory{}))
		}()
	}
	wg.Wait()

	all, err := repo.List(ctx)
	require.NoError(t, err)
	seen := map[int64]bool{}
	for _, m := range all {
		assert.False(t, seen[m.ID], "duplicate id %d", m.ID)
		seen[m.ID] = true
	}
	assert.Len(t, seen, 50)
}

func TestLocalUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLocalUserRepository()

	user := &models.User{ID: "u1", Code: "ABC123", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{ID: "u2", Code: "ABC123"}), ErrAlreadyExists)

	got, err := repo.GetByCode(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	exists, err := repo.CodeExists(ctx, "ZZZ999")
	require.NoError(t, err)
	assert.False(t, exists)

	token := "device"
	require.NoError(t, repo.UpdatePushToken(ctx, "u1", &token))
	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.PushToken)
	assert.Equal(t, "device", *got.PushToken)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePushToken(ctx, "missing", nil), ErrNotFound)
}

func TestLocalFriendRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLocalFriendRepository()

	require.NoError(t, repo.Create(ctx, &models.Friendship{UserAID: "zed", UserBID: "amy"}))
	assert.ErrorIs(t, repo.Create(ctx, &models.Friendship{UserAID: "amy", UserBID: "zed"}), ErrAlreadyExists)
	require.NoError(t, repo.Create(ctx, &models.Friendship{UserAID: "amy", UserBID: "bob"}))

	exists, err := repo.Exists(ctx, "zed", "amy")
	require.NoError(t, err)
	assert.True(t, exists)

	friends, err := repo.ListByUser(ctx, "amy")
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "amy", friends[0].UserAID)
	assert.Equal(t, "zed", friends[0].UserBID)

	require.NoError(t, repo.Delete(ctx, "amy", "zed"))
	assert.ErrorIs(t, repo.Delete(ctx, "amy", "zed"), ErrNotFound)

	friends, err = repo.ListByUser(ctx, "zed")
	require.NoError(t, err)
	assert.Empty(t, friends)
}
