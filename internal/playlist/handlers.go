package playlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("music-stream-service: list playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}

	now := time.Now().UTC()
	pl := &Playlist{
		ID:          uuid.NewString(),
		Name:        body.Name,
		Description: strings.TrimSpace(body.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
		Songs:       []Song{},
	}

	if err := s.store.Save(r.Context(), pl); err != nil {
		log.Printf("music-stream-service: create playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.publishEvent(r.Context(), "playlist.created", pl)
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.loadPlaylist(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.loadPlaylist(w, r)
	if !ok {
		return
	}

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" || len(name) > 200 {
			writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
			return
		}
		pl.Name = name
	}
	if body.Description != nil {
		pl.Description = strings.TrimSpace(*body.Description)
	}
	pl.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(r.Context(), pl); err != nil {
		log.Printf("music-stream-service: update playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.publishEvent(r.Context(), "playlist.updated", pl)
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return
	}
	if err != nil {
		log.Printf("music-stream-service: delete playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.publishEvent(r.Context(), "playlist.deleted", map[string]string{"id": id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Playlist deleted successfully"})
}

func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.loadPlaylist(w, r)
	if !ok {
		return
	}

	var song Song
	if err := json.NewDecoder(r.Body).Decode(&song); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(song.ID) == "" {
		writeError(w, http.StatusBadRequest, "song id is required")
		return
	}

	// Adding a song that is already present is a no-op returning the
	// unchanged playlist.
	for _, existing := range pl.Songs {
		if existing.ID == song.ID {
			writeJSON(w, http.StatusOK, pl)
			return
		}
	}

	song.AddedAt = time.Now().UTC()
	pl.Songs = append(pl.Songs, song)
	pl.UpdatedAt = song.AddedAt

	// Unparseable duration strings just don't count toward the total.
	if secs, err := parseDurationDisplay(song.Duration); err == nil {
		pl.TotalDuration += secs
	}

	if err := s.store.Save(r.Context(), pl); err != nil {
		log.Printf("music-stream-service: add song: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.publishEvent(r.Context(), "playlist.song_added", pl)
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.loadPlaylist(w, r)
	if !ok {
		return
	}

	songID := chi.URLParam(r, "songId")
	for i, song := range pl.Songs {
		if song.ID != songID {
			continue
		}
		pl.Songs = append(pl.Songs[:i], pl.Songs[i+1:]...)
		pl.UpdatedAt = time.Now().UTC()
		if secs, err := parseDurationDisplay(song.Duration); err == nil {
			pl.TotalDuration -= secs
			if pl.TotalDuration < 0 {
				pl.TotalDuration = 0
			}
		}
		if err := s.store.Save(r.Context(), pl); err != nil {
			log.Printf("music-stream-service: remove song: %v", err)
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		s.publishEvent(r.Context(), "playlist.song_removed", pl)
		break
	}

	// Removing an absent song still answers with the playlist.
	writeJSON(w, http.StatusOK, pl)
}

// handleReorderPlaylist rearranges songs by a full index permutation: the
// body lists, for each new position, the old index of the song that goes
// there.
func (s *Server) handleReorderPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.loadPlaylist(w, r)
	if !ok {
		return
	}

	var indices []int
	if err := json.NewDecoder(r.Body).Decode(&indices); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !validPermutation(indices, len(pl.Songs)) {
		writeError(w, http.StatusNotFound, "Playlist not found or invalid indices")
		return
	}

	reordered := make([]Song, len(pl.Songs))
	for pos, idx := range indices {
		reordered[pos] = pl.Songs[idx]
	}
	pl.Songs = reordered
	pl.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(r.Context(), pl); err != nil {
		log.Printf("music-stream-service: reorder playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.publishEvent(r.Context(), "playlist.reordered", pl)
	writeJSON(w, http.StatusOK, pl)
}

// handlePlayPlaylist returns the songs in play order, optionally shuffled.
func (s *Server) handlePlayPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := s.loadPlaylist(w, r)
	if !ok {
		return
	}

	shuffle := r.URL.Query().Get("shuffle") == "true"

	songs := make([]Song, len(pl.Songs))
	copy(songs, pl.Songs)
	if shuffle {
		rand.Shuffle(len(songs), func(i, j int) {
			songs[i], songs[j] = songs[j], songs[i]
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist_id":   pl.ID,
		"playlist_name": pl.Name,
		"songs":         songs,
		"total_songs":   len(songs),
		"shuffled":      shuffle,
	})
}

func (s *Server) handleSearchPlaylists(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(chi.URLParam(r, "query"))

	playlists, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("music-stream-service: search playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	matches := []*Playlist{}
	for _, pl := range playlists {
		if strings.Contains(strings.ToLower(pl.Name), query) ||
			strings.Contains(strings.ToLower(pl.Description), query) {
			matches = append(matches, pl)
		}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("music-stream-service: playlist stats: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	stats := Stats{TotalPlaylists: len(playlists)}
	for _, pl := range playlists {
		stats.TotalSongs += len(pl.Songs)
		stats.TotalDurationSeconds += pl.TotalDuration
	}
	stats.TotalDurationFormatted = formatHMS(stats.TotalDurationSeconds)

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if v, err := strconv.Atoi(chi.URLParam(r, "limit")); err == nil && v > 0 {
		limit = v
	}

	playlists, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("music-stream-service: recent playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	sort.Slice(playlists, func(i, j int) bool {
		return playlists[i].UpdatedAt.After(playlists[j].UpdatedAt)
	})
	if len(playlists) > limit {
		playlists = playlists[:limit]
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) loadPlaylist(w http.ResponseWriter, r *http.Request) (*Playlist, bool) {
	id := chi.URLParam(r, "id")
	pl, err := s.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return nil, false
	}
	if err != nil {
		log.Printf("music-stream-service: get playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return nil, false
	}
	return pl, true
}

// validPermutation reports whether indices is a permutation of [0, n).
func validPermutation(indices []int, n int) bool {
	if len(indices) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range indices {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// parseDurationDisplay converts a "m:ss" display string to seconds.
func parseDurationDisplay(display string) (int, error) {
	parts := strings.Split(display, ":")
	if len(parts) != 2 {
		return 0, errors.New("not a m:ss duration")
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	return minutes*60 + seconds, nil
}

func formatHMS(total int) string {
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
