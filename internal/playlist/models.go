package playlist

import "time"

// Playlist is a user-curated list of songs. Stored as one JSON document per
// playlist; TotalDuration is maintained incrementally in seconds.
type Playlist struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Songs         []Song    `json:"songs"`
	TotalDuration int       `json:"total_duration"`
}

// Song carries the search-result fields of a track plus when it was added.
type Song struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Channel   string    `json:"channel"`
	Duration  string    `json:"duration"` // display string, "m:ss"
	Thumbnail string    `json:"thumbnail"`
	URL       string    `json:"url"`
	AddedAt   time.Time `json:"added_at"`
}

// Stats summarizes all playlists.
type Stats struct {
	TotalPlaylists         int    `json:"total_playlists"`
	TotalSongs             int    `json:"total_songs"`
	TotalDurationSeconds   int    `json:"total_duration_seconds"`
	TotalDurationFormatted string `json:"total_duration_formatted"` // "HH:MM:SS"
}
