package stream

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AudioFetcher is the pipeline surface the handlers depend on.
type AudioFetcher interface {
	FetchAudio(ctx context.Context, videoID string) (*FetchResult, error)
}

type Server struct {
	searcher Searcher
	resolver Resolver
	pipeline AudioFetcher
}

func NewServer(searcher Searcher, resolver Resolver, pipeline AudioFetcher) *Server {
	return &Server{
		searcher: searcher,
		resolver: resolver,
		pipeline: pipeline,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/", s.HandleRoot)
	r.Get("/health", s.HandleHealth)
	r.Get("/search", s.HandleSearch)
	r.Get("/stream/{videoID}", s.HandleStream)
	r.Get("/info/{videoID}", s.HandleInfo)
	r.Get("/play/{videoID}", s.HandlePlay)
	r.Get("/download/{videoID}", s.HandleDownload)

	return r
}

func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "YouTube Music Player API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"/search":                  "Search for YouTube videos",
			"/stream/{video_id}":       "Get audio stream URL for a video",
			"/play/{video_id}":         "Stream MP3 audio directly",
			"/download/{video_id}":     "Download MP3 file",
			"/info/{video_id}":         "Get video metadata",
			"/playlists":               "Playlist management endpoints",
			"/playlists/create":        "Create a new playlist",
			"/playlists/{playlist_id}": "Get, update, or delete a playlist",
		},
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "music-stream-service",
	})
}
