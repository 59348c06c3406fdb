package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-map-backend/internal/models"
)

func member(id int64, date string) models.Memory {
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return models.Memory{ID: id, Date: d}
}

func threeMembers() []models.Memory {
	return []models.Memory{
		member(1, "2021-03-01"),
		member(2, "2019-08-15"),
		member(3, "2020-12-25"),
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNewSortsAscendingByDate(t *testing.T) {
	c, err := New(threeMembers())
	require.NoError(t, err)

	assert.Equal(t, 0, c.Index())
	assert.Equal(t, int64(2), c.Current().ID)
	c.Next()
	assert.Equal(t, int64(3), c.Current().ID)
	c.Next()
	assert.Equal(t, int64(1), c.Current().ID)
}

func TestBoundaries(t *testing.T) {
	c, err := New(threeMembers())
	require.NoError(t, err)

	assert.False(t, c.CanPrevious())
	assert.False(t, c.Previous())
	assert.Equal(t, 0, c.Index())

	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.Equal(t, 2, c.Index())

	assert.False(t, c.CanNext())
	assert.False(t, c.Next())
	assert.Equal(t, 2, c.Index())

	assert.True(t, c.Previous())
	assert.Equal(t, 1, c.Index())
}

func TestSingleMember(t *testing.T) {
	c, err := New([]models.Memory{member(9, "2020-01-01")})
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, State{Index: 0, Size: 1, Current: member(9, "2020-01-01")}, s)
	assert.False(t, c.Next())
	assert.False(t, c.Previous())
}

func TestClose(t *testing.T) {
	c, err := New(threeMembers())
	require.NoError(t, err)
	require.True(t, c.Next())

	c.Close()
	assert.True(t, c.Closed())
	assert.False(t, c.Next())
	assert.False(t, c.Previous())

	s := c.State()
	assert.True(t, s.Closed)
	assert.Equal(t, 1, s.Index)
	assert.False(t, s.CanNext)
	assert.False(t, s.CanPrevious)
}

func TestNewCopiesMembers(t *testing.T) {
	members := threeMembers()
	c, err := New(members)
	require.NoError(t, err)

	members[1].Location = "changed"
	assert.Empty(t, c.Current().Location)
	assert.Equal(t, int64(1), members[0].ID)
}
