package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	downloadTimeout  = 10 * time.Minute
	transcodeTimeout = 5 * time.Minute

	// Upstream CDNs reject requests without a browser user agent.
	downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Pipeline fetches a remote media item and normalizes it to MP3 on local
// scratch storage. Each invocation owns its temp files; nothing is shared
// or deduplicated across requests, even for the same identifier.
type Pipeline struct {
	resolver   Resolver
	transcoder Transcoder
	registry   *Registry
	scratchDir string
	http       *http.Client
}

func NewPipeline(resolver Resolver, transcoder Transcoder, registry *Registry, scratchDir string) *Pipeline {
	return &Pipeline{
		resolver:   resolver,
		transcoder: transcoder,
		registry:   registry,
		scratchDir: scratchDir,
		http:       &http.Client{},
	}
}

// FetchResult is an open byte source over the converted MP3 plus the
// descriptor it was resolved from. Close releases the underlying temp
// files; callers must call it once the response is fully written (or
// abandoned).
type FetchResult struct {
	File       *os.File
	Descriptor *StreamDescriptor

	registry *Registry
	handles  []TempFileHandle
}

// Size returns the MP3 byte size for Content-Length headers.
func (fr *FetchResult) Size() (int64, error) {
	info, err := fr.File.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close closes the byte source and releases every temp file this
// invocation allocated.
func (fr *FetchResult) Close() {
	if fr.File != nil {
		_ = fr.File.Close()
	}
	for _, h := range fr.handles {
		fr.registry.Release(h)
	}
}

// FetchAudio resolves, downloads and converts a media item. On failure the
// allocated temp files are released immediately; on success ownership of
// the files passes to the returned FetchResult.
func (p *Pipeline) FetchAudio(ctx context.Context, videoID string) (*FetchResult, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, errInvalidInput("video id is required")
	}

	desc, err := p.resolver.Resolve(ctx, videoID)
	if err != nil {
		return nil, errResolutionFailed(videoID, err)
	}

	var handles []TempFileHandle
	fail := func(cause error) error {
		for _, h := range handles {
			p.registry.Release(h)
		}
		return cause
	}

	rawPath, err := p.allocate(videoID, ".src")
	if err != nil {
		return nil, fail(errScratchFailed(videoID, err))
	}
	handles = append(handles, TempFileHandle{Path: rawPath, CreatedAt: time.Now()})

	if err := p.download(ctx, desc.AudioURL, rawPath); err != nil {
		return nil, fail(errResolutionFailed(videoID, err))
	}

	mp3Path, err := p.allocate(videoID, ".mp3")
	if err != nil {
		return nil, fail(errScratchFailed(videoID, err))
	}
	handles = append(handles, TempFileHandle{Path: mp3Path, CreatedAt: time.Now()})

	tctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()
	if err := p.transcoder.Transcode(tctx, rawPath, mp3Path); err != nil {
		return nil, fail(errConversionFailed(videoID, err))
	}

	f, err := os.Open(mp3Path)
	if err != nil {
		return nil, fail(errScratchFailed(videoID, err))
	}

	return &FetchResult{
		File:       f,
		Descriptor: desc,
		registry:   p.registry,
		handles:    handles,
	}, nil
}

// allocate creates an empty scratch file named after the identifier and
// registers it before anything is written, so a crash mid-download still
// leaves the registry aware of the path.
func (p *Pipeline) allocate(videoID, suffix string) (string, error) {
	f, err := os.CreateTemp(p.scratchDir, videoID+"-*"+suffix)
	if err != nil {
		return "", err
	}
	path := f.Name()
	_ = f.Close()
	p.registry.Register(TempFileHandle{Path: path, CreatedAt: time.Now()})
	return path, nil
}

func (p *Pipeline) download(ctx context.Context, audioURL, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("audio fetch status %d", resp.StatusCode)
	}

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return out.Sync()
}
