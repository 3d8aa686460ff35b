package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Searcher finds candidate media for a free-text query.
type Searcher interface {
	SearchVideos(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// YouTubeSearchClient queries the YouTube Data API.
type YouTubeSearchClient struct {
	apiKey    string
	searchURL string
	http      *http.Client
}

func NewYouTubeSearchClient(apiKey, searchURL string) *YouTubeSearchClient {
	return &YouTubeSearchClient{
		apiKey:    apiKey,
		searchURL: searchURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title                string `json:"title"`
			ChannelTitle         string `json:"channelTitle"`
			LiveBroadcastContent string `json:"liveBroadcastContent"`
			Thumbnails           struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *YouTubeSearchClient) SearchVideos(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("type", "video")
	val.Set("maxResults", fmt.Sprint(limit))
	val.Set("q", query)
	val.Set("key", c.apiKey)

	reqURL := c.searchURL + "?" + val.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube status %d", resp.StatusCode)
	}

	var body ytSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(body.Items))
	var videoIDs []string

	for _, it := range body.Items {
		if it.ID.VideoID == "" {
			continue
		}
		thumbs := it.Snippet.Thumbnails
		thumb := thumbs.High.URL
		if thumb == "" {
			thumb = thumbs.Medium.URL
		}
		if thumb == "" {
			thumb = thumbs.Default.URL
		}
		if thumb == "" {
			thumb = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", it.ID.VideoID)
		}

		duration := "N/A"
		if it.Snippet.LiveBroadcastContent == "live" {
			duration = "Live"
		}

		out = append(out, SearchResult{
			ID:        it.ID.VideoID,
			Title:     it.Snippet.Title,
			Channel:   it.Snippet.ChannelTitle,
			Duration:  duration,
			Views:     "N/A",
			Thumbnail: thumb,
			URL:       "https://www.youtube.com/watch?v=" + it.ID.VideoID,
		})
		videoIDs = append(videoIDs, it.ID.VideoID)
	}

	// Durations and view counts come from the videos endpoint. Results are
	// still usable without them, so a failure here only loses the display
	// strings.
	if len(videoIDs) > 0 {
		details, err := c.fetchDetails(ctx, videoIDs)
		if err != nil {
			log.Printf("music-stream-service: youtube fetch details: %v", err)
		} else {
			for i := range out {
				if d, ok := details[out[i].ID]; ok {
					// Live streams report PT0S, keep the "Live" marker.
					if out[i].Duration != "Live" {
						out[i].Duration = formatDuration(d.durationSec)
					}
					out[i].Views = formatViews(d.viewCount)
				}
			}
		}
	}

	return out, nil
}

type videoDetails struct {
	durationSec int
	viewCount   int64
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (c *YouTubeSearchClient) fetchDetails(ctx context.Context, ids []string) (map[string]videoDetails, error) {
	val := url.Values{}
	val.Set("part", "contentDetails,statistics")
	val.Set("id", strings.Join(ids, ","))
	val.Set("key", c.apiKey)

	// The videos endpoint lives next to the search endpoint.
	baseURL := "https://www.googleapis.com/youtube/v3/videos"
	if strings.HasSuffix(c.searchURL, "/search") {
		baseURL = strings.TrimSuffix(c.searchURL, "/search") + "/videos"
	}

	reqURL := baseURL + "?" + val.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube videos status %d", resp.StatusCode)
	}

	var body ytVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	details := make(map[string]videoDetails)
	for _, item := range body.Items {
		var views int64
		fmt.Sscanf(item.Statistics.ViewCount, "%d", &views)
		details[item.ID] = videoDetails{
			durationSec: parseISO8601Duration(item.ContentDetails.Duration),
			viewCount:   views,
		}
	}
	return details, nil
}

var iso8601Re = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

func parseISO8601Duration(duration string) int {
	matches := iso8601Re.FindStringSubmatch(duration)
	if len(matches) < 4 {
		return 0
	}

	var h, m, s int
	fmt.Sscanf(matches[1], "%d", &h)
	fmt.Sscanf(matches[2], "%d", &m)
	fmt.Sscanf(matches[3], "%d", &s)

	return h*3600 + m*60 + s
}

// formatDuration renders seconds as "m:ss".
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// formatViews renders a view count as "1.2M views" / "3.4K views" / "512 views".
func formatViews(count int64) string {
	switch {
	case count <= 0:
		return "N/A"
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fM views", float64(count)/1_000_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fK views", float64(count)/1_000)
	default:
		return fmt.Sprintf("%d views", count)
	}
}
