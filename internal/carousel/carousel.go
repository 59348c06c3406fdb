// Package carousel steps through the members of an activated cluster one at a time.
package carousel

import (
	"errors"
	"sort"

	"memory-map-backend/internal/models"
)

// ErrEmpty is returned when a carousel is opened without members
var ErrEmpty = errors.New("carousel needs at least one memory")

// Carousel is the viewing(index) state machine. Members are sorted ascending
// by date, so index 0 is the earliest memory. It is not safe for concurrent use.
type Carousel struct {
	members []models.Memory
	index   int
	closed  bool
}

// State is a snapshot of the carousel suitable for rendering
type State struct {
	Index       int           `json:"index"`
	Size        int           `json:"size"`
	Current     models.Memory `json:"current"`
	CanPrevious bool          `json:"can_previous"`
	CanNext     bool          `json:"can_next"`
	Closed      bool          `json:"closed"`
}

// New opens a carousel at viewing(0). The members slice is copied.
func New(members []models.Memory) (*Carousel, error) {
	if len(members) == 0 {
		return nil, ErrEmpty
	}
	sorted := append([]models.Memory(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Before(&sorted[j])
	})
	return &Carousel{members: sorted}, nil
}

// Index returns the current position
func (c *Carousel) Index() int {
	return c.index
}

// Size returns the number of members
func (c *Carousel) Size() int {
	return len(c.members)
}

// Current returns the memory being viewed
func (c *Carousel) Current() models.Memory {
	return c.members[c.index]
}

// CanPrevious reports whether Previous is enabled
func (c *Carousel) CanPrevious() bool {
	return !c.closed && c.index > 0
}

// CanNext reports whether Next is enabled
func (c *Carousel) CanNext() bool {
	return !c.closed && c.index < len(c.members)-1
}

// Previous moves one memory back. It reports false and leaves the state
// untouched when the control is disabled.
func (c *Carousel) Previous() bool {
	if !c.CanPrevious() {
		return false
	}
	c.index--
	return true
}

// Next moves one memory forward. It reports false and leaves the state
// untouched when the control is disabled.
func (c *Carousel) Next() bool {
	if !c.CanNext() {
		return false
	}
	c.index++
	return true
}

// Close ends the carousel; navigation is disabled afterwards
func (c *Carousel) Close() {
	c.closed = true
}

// Closed reports whether Close was called
func (c *Carousel) Closed() bool {
	return c.closed
}

// State returns a snapshot of the carousel
func (c *Carousel) State() State {
	return State{
		Index:       c.index,
		Size:        len(c.members),
		Current:     c.Current(),
		CanPrevious: c.CanPrevious(),
		CanNext:     c.CanNext(),
		Closed:      c.closed,
	}
}
