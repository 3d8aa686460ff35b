package playlist

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	store *Store
	rdb   *redis.Client
}

func NewServer(store *Store, rdb *redis.Client) *Server {
	return &Server{
		store: store,
		rdb:   rdb,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/", s.handleListPlaylists)
	r.Post("/create", s.handleCreatePlaylist)
	r.Get("/stats/overview", s.handleStats)
	r.Get("/recent/{limit}", s.handleRecent)
	r.Get("/search/{query}", s.handleSearchPlaylists)

	r.Get("/{id}", s.handleGetPlaylist)
	r.Put("/{id}", s.handleUpdatePlaylist)
	r.Delete("/{id}", s.handleDeletePlaylist)
	r.Post("/{id}/songs", s.handleAddSong)
	r.Delete("/{id}/songs/{songId}", s.handleRemoveSong)
	r.Post("/{id}/reorder", s.handleReorderPlaylist)
	r.Get("/{id}/play", s.handlePlayPlaylist)

	return r
}

// publishEvent notifies listeners on the broadcast channel, best-effort.
func (s *Server) publishEvent(ctx context.Context, eventType string, payload any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("music-stream-service: publish event: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"detail": msg,
	})
}
