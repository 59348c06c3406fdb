package handlers

import (
	"net/http"

	"memory-map-backend/internal/config"
	"memory-map-backend/internal/middleware"
	"memory-map-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Services is everything the HTTP layer talks to
type Services struct {
	Users     *services.UserService
	Friends   *services.FriendService
	Memories  *services.MemoryService
	Photos    *services.PhotoService
	Locator   services.GeolocationProvider
	Hub       *services.WSHub
	ClusterCf config.ClusterConfig
}

// NewRouter wires the API routes
func NewRouter(svc Services) http.Handler {
	userHandler := NewUserHandler(svc.Users)
	friendHandler := NewFriendHandler(svc.Friends)
	memoryHandler := NewMemoryHandler(svc.Memories, svc.ClusterCf)
	photoHandler := NewPhotoHandler(svc.Photos)
	locationHandler := NewLocationHandler(svc.Locator)
	wsHandler := NewWebSocketHandler(svc.Hub, svc.Users, svc.Memories, svc.ClusterCf.NearbyRadiusMeters)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(svc.Users))
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)

			r.Get("/memories", memoryHandler.ListMemories)
			r.Post("/memories", memoryHandler.CreateMemory)
			r.Get("/memories/timeline", memoryHandler.Timeline)
			r.Get("/memories/clusters", memoryHandler.Clusters)
			r.Get("/memories/nearby", memoryHandler.Nearby)
			r.Get("/memories/areas", memoryHandler.Areas)
			r.Post("/memories/exif", photoHandler.InspectPhoto)

			r.Post("/photos/upload", photoHandler.UploadPhoto)

			r.Get("/friends", friendHandler.ListFriends)
			r.Post("/friends", friendHandler.AddFriend)
			r.Delete("/friends/{friend_id}", friendHandler.RemoveFriend)

			r.Get("/location", locationHandler.GetLocation)
		})
	})

	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
