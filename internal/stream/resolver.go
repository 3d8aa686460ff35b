package stream

import (
	"context"
	"errors"
	"time"

	"github.com/kkdai/youtube/v2"
)

// Resolver turns a media identifier into a StreamDescriptor with a direct,
// time-limited audio URL.
type Resolver interface {
	Resolve(ctx context.Context, videoID string) (*StreamDescriptor, error)
}

// YouTubeResolver resolves identifiers through the YouTube player API.
type YouTubeResolver struct {
	client  youtube.Client
	timeout time.Duration
}

func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{
		timeout: 30 * time.Second,
	}
}

func (r *YouTubeResolver) Resolve(ctx context.Context, videoID string) (*StreamDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	video, err := r.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, err
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return nil, errors.New("no playable audio stream")
	}

	audioURL, err := r.client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, err
	}

	return &StreamDescriptor{
		Title:    video.Title,
		Duration: int(video.Duration / time.Second),
		AudioURL: audioURL,
		VideoID:  videoID,
	}, nil
}

// bestAudioFormat picks the audio-only format with the highest bitrate,
// falling back to any format carrying audio.
func bestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}
