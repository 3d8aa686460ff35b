package stream

// SearchResult is one entry of a /search response. Fields are display-ready
// strings built from the provider's response; nothing here is derived locally
// beyond formatting.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Duration  string `json:"duration"` // "3:04", "Live" or "N/A"
	Views     string `json:"views"`    // "1.2M views", "3.4K views", "512 views" or "N/A"
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// StreamDescriptor describes a resolved audio stream. The AudioURL is
// time-limited by the upstream platform and must not outlive the request
// that resolved it.
type StreamDescriptor struct {
	Title    string `json:"title"`
	Duration int    `json:"duration"` // seconds
	AudioURL string `json:"audio_url"`
	VideoID  string `json:"video_id"`
}
