package stream

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// HandleStream resolves an identifier to its direct audio URL without
// downloading anything.
func (s *Server) HandleStream(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimSpace(chi.URLParam(r, "videoID"))
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video id is required")
		return
	}

	desc, err := s.resolver.Resolve(r.Context(), videoID)
	if err != nil {
		writeAPIError(w, errResolutionFailed(videoID, err))
		return
	}

	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) HandleInfo(w http.ResponseWriter, r *http.Request) {
	videoID := strings.TrimSpace(chi.URLParam(r, "videoID"))
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video id is required")
		return
	}

	desc, err := s.resolver.Resolve(r.Context(), videoID)
	if err != nil {
		writeAPIError(w, errResolutionFailed(videoID, err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"video_id":  videoID,
		"title":     desc.Title,
		"duration":  desc.Duration,
		"has_audio": true,
		"url":       "https://www.youtube.com/watch?v=" + videoID,
	})
}

// HandlePlay fetches and converts the audio, then streams it inline. The
// temp files are released as soon as the copy finishes, whether the client
// read everything or hung up halfway.
func (s *Server) HandlePlay(w http.ResponseWriter, r *http.Request) {
	result, ok := s.fetchAudio(w, r)
	if !ok {
		return
	}
	defer result.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sanitizeFilename(result.Descriptor.Title)+".mp3"))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "no-cache")
	if size, err := result.Size(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprint(size))
	}

	if _, err := io.Copy(w, result.File); err != nil {
		// Usually the client disconnecting mid-stream. Nothing to send back;
		// the deferred Close still releases the temp files.
		log.Printf("music-stream-service: play %s: %v", result.Descriptor.VideoID, err)
	}
}

// HandleDownload is HandlePlay with an attachment disposition.
func (s *Server) HandleDownload(w http.ResponseWriter, r *http.Request) {
	result, ok := s.fetchAudio(w, r)
	if !ok {
		return
	}
	defer result.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Descriptor.VideoID+".mp3"))
	w.Header().Set("Accept-Ranges", "bytes")
	if size, err := result.Size(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprint(size))
	}

	if _, err := io.Copy(w, result.File); err != nil {
		log.Printf("music-stream-service: download %s: %v", result.Descriptor.VideoID, err)
	}
}

func (s *Server) fetchAudio(w http.ResponseWriter, r *http.Request) (*FetchResult, bool) {
	videoID := strings.TrimSpace(chi.URLParam(r, "videoID"))

	result, err := s.pipeline.FetchAudio(r.Context(), videoID)
	if err != nil {
		writeAPIError(w, err)
		return nil, false
	}
	return result, true
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"':
			return '-'
		}
		return r
	}, name)
}
