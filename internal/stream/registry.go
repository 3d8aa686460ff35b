package stream

import (
	"log"
	"os"
	"sync"
	"time"
)

// TempFileHandle is a tracked scratch file. Ownership belongs to the pipeline
// invocation that allocated it until the response is fully sent, then the
// handle is released back to the registry.
type TempFileHandle struct {
	Path      string
	CreatedAt time.Time
}

// Registry tracks every temp file the pipeline allocates so that files
// surviving their request (release failed, process interrupted between
// allocate and release) can still be deleted by the shutdown sweep.
type Registry struct {
	mu    sync.Mutex
	files map[string]TempFileHandle
}

func NewRegistry() *Registry {
	return &Registry{
		files: make(map[string]TempFileHandle),
	}
}

// Register adds a handle to the tracked set. Idempotent by path.
func (r *Registry) Register(h TempFileHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[h.Path]; ok {
		return
	}
	r.files[h.Path] = h
}

// Release deletes the handle's file and drops it from the tracked set.
// Deletion failures are swallowed: the handle stays registered and the
// shutdown sweep retries. A request that already served its content must
// never fail because of cleanup trouble.
func (r *Registry) Release(h TempFileHandle) {
	err := os.Remove(h.Path)
	if err != nil && !os.IsNotExist(err) {
		log.Printf("music-stream-service: release %s: %v", h.Path, err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, h.Path)
}

// SweepAll deletes every still-registered file. Called once at shutdown;
// individual failures are logged and skipped.
func (r *Registry) SweepAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path := range r.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("music-stream-service: sweep %s: %v", path, err)
			continue
		}
		delete(r.files, path)
	}
}

// Tracked reports whether a path is currently registered.
func (r *Registry) Tracked(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.files[path]
	return ok
}

// Len returns the number of tracked handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}
