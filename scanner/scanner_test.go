package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTrackIDIsStableAndPositive(t *testing.T) {
	paths := []string{
		"/music/a.mp3",
		"/music/sub/dir/track.flac",
		"/music/./a.mp3", // cleans to the first path
	}

	if TrackID(paths[0]) != TrackID(paths[2]) {
		t.Error("equivalent paths should produce the same id")
	}
	if TrackID(paths[0]) == TrackID(paths[1]) {
		t.Error("distinct paths should produce distinct ids")
	}
	for _, p := range paths {
		if id := TrackID(p); id <= 0 {
			t.Errorf("TrackID(%q) = %d, want positive", p, id)
		}
	}

	// Ids must survive process restarts, so they are a pure function of the
	// path with no process-local state.
	if got := TrackID("/music/a.mp3"); got != TrackID("/music/a.mp3") {
		t.Errorf("TrackID not deterministic: %d", got)
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/music/song.mp3", true},
		{"/music/song.FLAC", true},
		{"/music/song.ogg", true},
		{"/music/song.m4a", true},
		{"/music/song.opus", true},
		{"/music/cover.jpg", false},
		{"/music/notes.txt", false},
		{"/music/song", false},
		{"/music/song.mp3.bak", false},
	}
	for _, tt := range tests {
		if got := IsAudioFile(tt.path); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/music/01 - So What.mp3", "01 - So What"},
		{"/music/deep/nested/track.flac", "track"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := FallbackTitle(tt.path); got != tt.want {
			t.Errorf("FallbackTitle(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestScanSkipsNonAudioAndUnparseableFiles(t *testing.T) {
	dir := t.TempDir()

	// An extensionless file and a text file are ignored; an mp3 with garbage
	// content still yields a track with filename-derived fields.
	writeFile(t, filepath.Join(dir, "notes.txt"), "not audio")
	writeFile(t, filepath.Join(dir, "README"), "nope")
	writeFile(t, filepath.Join(dir, "album", "03 Flamenco Sketches.mp3"), "garbage bytes")

	s := NewScanner(dir, nil)
	tracks, err := s.Scan(context.Background(), false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	track := tracks[0]
	if track.Title != "03 Flamenco Sketches" {
		t.Errorf("Title = %q, want filename-derived title", track.Title)
	}
	if track.Artist != "Unknown Artist" {
		t.Errorf("Artist = %q, want Unknown Artist", track.Artist)
	}
	if track.Album != "Unknown Album" {
		t.Errorf("Album = %q, want Unknown Album", track.Album)
	}
	if track.FolderName != "album" {
		t.Errorf("FolderName = %q, want album", track.FolderName)
	}
	if track.ID <= 0 {
		t.Errorf("ID = %d, want positive", track.ID)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	s := NewScanner(t.TempDir(), nil)
	tracks, err := s.Scan(context.Background(), false)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("got %d tracks, want 0", len(tracks))
	}
}

func TestScanHonorsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mp3"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(dir, nil)
	if _, err := s.Scan(ctx, false); err == nil {
		t.Fatal("Scan() error = nil, want context error")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
