package testsupport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"linguo/internal/media/ffmpeg"
)

// FakeEngine is an in-memory ffmpeg.Client that records requests and writes a
// placeholder output file for each render.
type FakeEngine struct {
	mu        sync.Mutex
	snippets  []ffmpeg.SnippetRequest
	snapshots []ffmpeg.SnapshotRequest

	// Err, when set, is returned by every render call.
	Err error
}

// Snippet records the request and creates the output file.
func (f *FakeEngine) Snippet(_ context.Context, req ffmpeg.SnippetRequest) error {
	f.mu.Lock()
	f.snippets = append(f.snippets, req)
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return writePlaceholder(req.Output)
}

// Snapshot records the request and creates the output file.
func (f *FakeEngine) Snapshot(_ context.Context, req ffmpeg.SnapshotRequest) error {
	f.mu.Lock()
	f.snapshots = append(f.snapshots, req)
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return writePlaceholder(req.Output)
}

// Snippets returns a copy of the recorded snippet requests.
func (f *FakeEngine) Snippets() []ffmpeg.SnippetRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ffmpeg.SnippetRequest{}, f.snippets...)
}

// Snapshots returns a copy of the recorded snapshot requests.
func (f *FakeEngine) Snapshots() []ffmpeg.SnapshotRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ffmpeg.SnapshotRequest{}, f.snapshots...)
}

func writePlaceholder(path string) error {
	if path == "" {
		return errors.New("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("rendered"), 0o644)
}

var _ ffmpeg.Client = (*FakeEngine)(nil)
