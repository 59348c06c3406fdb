package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-map-backend/internal/models"
	"memory-map-backend/internal/services"
)

// dial connects as u and waits until the hub has registered the connection
func (s *testServer) dial(t *testing.T, u models.User) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?token=" + u.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return s.hub.IsOnline(u.ID) }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg services.WSMessage) services.WSMessage {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	return readMessage(t, conn)
}

func readMessage(t *testing.T, conn *websocket.Conn) services.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var reply services.WSMessage
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	s := newTestServer(t)
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?token=nope"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketCarousel(t *testing.T) {
	s := newTestServer(t)
	u := s.newUser(t)
	conn := s.dial(t, u)

	reply := roundTrip(t, conn, services.WSMessage{Type: services.MsgCarouselNext})
	assert.Equal(t, services.MsgError, reply.Type)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgMarkerActivated, MemoryIDs: []int64{1, 2}})
	require.Equal(t, services.MsgCarouselState, reply.Type)
	require.NotNil(t, reply.Carousel)
	// memory 2 is older, so it opens first
	assert.Equal(t, int64(2), reply.Carousel.Current.ID)
	assert.Equal(t, 0, reply.Carousel.Index)
	assert.Equal(t, 2, reply.Carousel.Size)
	assert.False(t, reply.Carousel.CanPrevious)
	assert.True(t, reply.Carousel.CanNext)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgCarouselPrevious})
	require.Equal(t, services.MsgCarouselState, reply.Type)
	assert.Equal(t, 0, reply.Carousel.Index)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgCarouselNext})
	assert.Equal(t, 1, reply.Carousel.Index)
	assert.Equal(t, int64(1), reply.Carousel.Current.ID)
	assert.False(t, reply.Carousel.CanNext)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgCarouselNext})
	assert.Equal(t, 1, reply.Carousel.Index)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgCarouselClose})
	require.Equal(t, services.MsgCarouselClosed, reply.Type)
	assert.True(t, reply.Carousel.Closed)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgCarouselPrevious})
	assert.Equal(t, services.MsgError, reply.Type)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgMarkerActivated, MemoryIDs: []int64{6}})
	assert.Equal(t, services.MsgError, reply.Type)

	reply = roundTrip(t, conn, services.WSMessage{Type: "dance"})
	assert.Equal(t, services.MsgError, reply.Type)
}

func TestWebSocketCarouselRepeatedIDs(t *testing.T) {
	s := newTestServer(t)
	u := s.newUser(t)
	conn := s.dial(t, u)

	reply := roundTrip(t, conn, services.WSMessage{Type: services.MsgMarkerActivated, MemoryIDs: []int64{1, 1, 1}})
	require.Equal(t, services.MsgCarouselState, reply.Type)
	assert.Equal(t, 1, reply.Carousel.Size)
	assert.False(t, reply.Carousel.CanNext)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgMarkerActivated, MemoryIDs: []int64{2, 1, 2}})
	require.Equal(t, services.MsgCarouselState, reply.Type)
	assert.Equal(t, 2, reply.Carousel.Size)
}

func TestWebSocketRepliesOnOwnConnection(t *testing.T) {
	s := newTestServer(t)
	u := s.newUser(t)
	first := s.dial(t, u)
	second := s.dial(t, u)

	reply := roundTrip(t, second, services.WSMessage{Type: services.MsgMarkerActivated, MemoryIDs: []int64{1}})
	require.Equal(t, services.MsgCarouselState, reply.Type)

	// the replaced connection is closed and never receives the second one's replies
	require.NoError(t, first.SetReadDeadline(time.Now().Add(time.Second)))
	var msg services.WSMessage
	assert.Error(t, first.ReadJSON(&msg))
}

func TestWebSocketLocationUpdate(t *testing.T) {
	s := newTestServer(t)
	u := s.newUser(t)
	conn := s.dial(t, u)

	lat, lng := -36.8485, 174.7633
	reply := roundTrip(t, conn, services.WSMessage{Type: services.MsgLocationUpdate, Latitude: &lat, Longitude: &lng})
	require.Equal(t, services.MsgNearby, reply.Type)
	require.NotNil(t, reply.Count)
	// default radius is 5 km
	assert.Equal(t, 4, *reply.Count)

	reply = roundTrip(t, conn, services.WSMessage{Type: services.MsgLocationUpdate})
	assert.Equal(t, services.MsgError, reply.Type)
}

func TestWebSocketMemoryAdded(t *testing.T) {
	s := newTestServer(t)
	alice := s.newUser(t)
	bob := s.newUser(t)

	resp := s.do(t, http.MethodPost, "/api/v1/friends", alice.Token, map[string]string{"friend_code": bob.Code})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn := s.dial(t, bob)

	resp = s.do(t, http.MethodPost, "/api/v1/memories", alice.Token, map[string]any{
		"latitude":    -36.85,
		"longitude":   174.76,
		"date":        "2020-01-01",
		"location":    "Queen Street",
		"description": "Hello",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	msg := readMessage(t, conn)
	require.Equal(t, services.MsgMemoryAdded, msg.Type)
	require.NotNil(t, msg.Memory)
	assert.Equal(t, "Queen Street", msg.Memory.Location)
	assert.False(t, msg.Memory.OwnedByViewer)
}
