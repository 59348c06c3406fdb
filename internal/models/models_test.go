package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDateJSON(t *testing.T) {
	var m Memory
	err := json.Unmarshal([]byte(`{"id": 3, "date": "2019-05-01"}`), &m)
	require.NoError(t, err)
	assert.Equal(t, "2019-05-01", m.Date.String())

	out, err := json.Marshal(m.Date)
	require.NoError(t, err)
	assert.JSONEq(t, `"2019-05-01"`, string(out))

	err = json.Unmarshal([]byte(`{"date": "01/05/2019"}`), &m)
	assert.Error(t, err)
}

func TestDateYAML(t *testing.T) {
	var v struct {
		Date Date `yaml:"date"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(`date: "2020-02-29"`), &v))
	assert.Equal(t, "2020-02-29", v.Date.String())
}

func TestNewDateTruncates(t *testing.T) {
	d := NewDate(time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC))
	want, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.True(t, d.Equal(want))
}

func TestMemoryBefore(t *testing.T) {
	early, _ := ParseDate("2019-01-01")
	late, _ := ParseDate("2020-01-01")
	a := Memory{ID: 5, Date: early}
	b := Memory{ID: 1, Date: late}
	c := Memory{ID: 2, Date: late}

	assert.True(t, a.Before(&b))
	assert.False(t, b.Before(&a))
	assert.True(t, b.Before(&c))
}

func TestParseViewFilter(t *testing.T) {
	f, err := ParseViewFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseViewFilter("friends")
	require.NoError(t, err)
	assert.Equal(t, FilterFriends, f)

	_, err = ParseViewFilter("public-ish")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestViewStateApply(t *testing.T) {
	memories := []Memory{
		{ID: 1, Public: true},
		{ID: 2, OwnerID: "me"},
		{ID: 3, OwnerID: "friend"},
		{ID: 4, OwnerID: "stranger", Public: true},
		{ID: 5, OwnerID: "stranger"},
	}
	ids := func(ms []Memory) []int64 {
		var out []int64
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}
	friends := map[string]bool{"friend": true}

	all := ViewState{Filter: FilterAll, ViewerID: "me", FriendIDs: friends}.Apply(memories)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(all))
	assert.True(t, all[1].OwnedByViewer)
	assert.False(t, all[0].OwnedByViewer)

	mine := ViewState{Filter: FilterMine, ViewerID: "me", FriendIDs: friends}.Apply(memories)
	assert.Equal(t, []int64{2}, ids(mine))

	theirs := ViewState{Filter: FilterFriends, ViewerID: "me", FriendIDs: friends}.Apply(memories)
	assert.Equal(t, []int64{3}, ids(theirs))

	anonymous := ViewState{Filter: FilterMine}.Apply(memories)
	assert.Empty(t, anonymous)

	public := ViewState{Filter: FilterAll}.Apply(memories)
	assert.Equal(t, []int64{1, 4}, ids(public))

	assert.False(t, memories[1].OwnedByViewer, "input must not be modified")
}

func TestFriendshipOther(t *testing.T) {
	f := Friendship{UserAID: "a", UserBID: "b"}
	assert.Equal(t, "b", f.Other("a"))
	assert.Equal(t, "a", f.Other("b"))
}
