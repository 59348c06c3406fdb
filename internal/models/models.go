package models

import "time"

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Token     string    `json:"token"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Friendship links two users; UserAID is always the lexicographically smaller id
type Friendship struct {
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Other returns the id of the friend that is not userID
func (f *Friendship) Other(userID string) string {
	if f.UserAID == userID {
		return f.UserBID
	}
	return f.UserAID
}

// Memory represents one geotagged photo pinned on the map
type Memory struct {
	ID          int64     `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Date        Date      `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	GroupTag    string    `json:"group_tag,omitempty"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`

	// OwnedByViewer is filled per request, never stored
	OwnedByViewer bool `json:"is_owned_by_current_user"`
}

// Before orders memories by date, then by id
func (m *Memory) Before(other *Memory) bool {
	if !m.Date.Equal(other.Date) {
		return m.Date.Before(other.Date)
	}
	return m.ID < other.ID
}

// Cluster is a group of memories rendered as a single marker
type Cluster struct {
	Members           []Memory `json:"members"`
	CentroidLatitude  float64  `json:"centroid_latitude"`
	CentroidLongitude float64  `json:"centroid_longitude"`
	Size              int      `json:"size"`
}
