package models

import (
	"errors"
	"fmt"
)

// ViewFilter selects which memories are visible
type ViewFilter string

const (
	FilterAll     ViewFilter = "all"
	FilterMine    ViewFilter = "mine"
	FilterFriends ViewFilter = "friends"
)

// ErrUnknownFilter is returned by ParseViewFilter
var ErrUnknownFilter = errors.New("unknown view filter")

// ParseViewFilter maps a query value to a filter; empty means all
func ParseViewFilter(s string) (ViewFilter, error) {
	switch ViewFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterMine:
		return FilterMine, nil
	case FilterFriends:
		return FilterFriends, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// ViewState is the application state a clustering or timeline pass is computed against
type ViewState struct {
	Filter    ViewFilter
	ViewerID  string
	FriendIDs map[string]bool
}

// Includes reports whether m is visible under the state. Private memories are
// only visible to their owner and the owner's friends.
func (s ViewState) Includes(m *Memory) bool {
	switch s.Filter {
	case FilterMine:
		return s.ViewerID != "" && m.OwnerID == s.ViewerID
	case FilterFriends:
		return m.OwnerID != "" && s.FriendIDs[m.OwnerID]
	default:
		return m.Public || (s.ViewerID != "" && m.OwnerID == s.ViewerID) || (m.OwnerID != "" && s.FriendIDs[m.OwnerID])
	}
}

// Apply returns the visible subset of memories in input order, with OwnedByViewer set
func (s ViewState) Apply(memories []Memory) []Memory {
	visible := make([]Memory, 0, len(memories))
	for i := range memories {
		m := memories[i]
		if !s.Includes(&m) {
			continue
		}
		m.OwnedByViewer = s.ViewerID != "" && m.OwnerID == s.ViewerID
		visible = append(visible, m)
	}
	return visible
}
