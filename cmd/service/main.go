package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"music-stream-service/internal/playlist"
	"music-stream-service/internal/stream"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	port := getenv("PORT", "8000")
	ytAPIKey := getenv("YOUTUBE_API_KEY", "")
	if ytAPIKey == "" {
		log.Fatal("YOUTUBE_API_KEY is required")
	}
	searchBaseURL := getenv("YOUTUBE_SEARCH_URL", "https://www.googleapis.com/youtube/v3/search")
	redisURL := getenv("REDIS_URL", "redis://localhost:6379")
	ffmpegPath := getenv("FFMPEG_PATH", "ffmpeg")
	maxConversions := getenvInt("MAX_CONVERSIONS", 4)

	scratchDir := getenv("SCRATCH_DIR", "")
	ownScratch := false
	if scratchDir == "" {
		dir, err := os.MkdirTemp("", "music-stream-*")
		if err != nil {
			log.Fatalf("scratch dir: %v", err)
		}
		scratchDir = dir
		ownScratch = true
	} else if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		log.Fatalf("scratch dir: %v", err)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	registry := stream.NewRegistry()
	resolver := stream.NewYouTubeResolver()
	transcoder := stream.NewFFmpegTranscoder(ffmpegPath, maxConversions)
	pipeline := stream.NewPipeline(resolver, transcoder, registry, scratchDir)
	searcher := stream.NewYouTubeSearchClient(ytAPIKey, searchBaseURL)

	streamSrv := stream.NewServer(searcher, resolver, pipeline)
	playlistSrv := playlist.NewServer(playlist.NewStore(rdb), rdb)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	// No timeout on the audio routes: a transfer legitimately runs for
	// minutes. Playlist calls are quick and get the usual cap.
	r.Mount("/playlists", playlistSrv.Router(middleware.Timeout(15*time.Second)))
	r.Mount("/", streamSrv.Router())

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("music-stream-service listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("music-stream-service: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("music-stream-service: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("music-stream-service: shutdown: %v", err)
	}

	registry.SweepAll()
	if ownScratch {
		_ = os.RemoveAll(scratchDir)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
