package scanner

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"PalmFM/artwork"
	"PalmFM/logger"
	"PalmFM/model"

	"github.com/dhowden/tag"
)

// audioExtensions lists the file types treated as device audio.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".m4a":  true,
	".aac":  true,
	".wav":  true,
	".opus": true,
	".wma":  true,
}

// Scanner reads the on-device audio index: a full walk of the music directory,
// producing candidate tracks for import/update reconciliation. Read-only and
// re-invocable at any time; there is no incremental mode.
type Scanner struct {
	musicDir string
	store    *artwork.Store // optional; nil disables artwork caching
}

// NewScanner creates a scanner over the given music directory.
func NewScanner(musicDir string, store *artwork.Store) *Scanner {
	return &Scanner{musicDir: musicDir, store: store}
}

// TrackID derives the stable numeric id for an audio file. Ids must survive
// rescans, so they are a function of the cleaned absolute path only.
func TrackID(path string) int64 {
	h := fnv.New64a()
	h.Write([]byte(filepath.Clean(path)))
	return int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF)
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scan walks the music directory and returns the full current set of device
// tracks. When cacheArt is true and an artwork store is configured, embedded
// pictures are pushed to the store and the returned locator points there;
// otherwise embedded art is referenced in place.
func (s *Scanner) Scan(ctx context.Context, cacheArt bool) ([]model.Track, error) {
	tracks := make([]model.Track, 0)

	err := filepath.WalkDir(s.musicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal: a transient device
			// read must not abort the whole scan.
			logger.Warn("Skipping unreadable entry during scan", logger.String("path", path), logger.ErrorField(err))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !IsAudioFile(path) {
			return nil
		}

		track, err := s.readTrack(ctx, path, cacheArt)
		if err != nil {
			logger.Warn("Skipping unreadable audio file", logger.String("path", path), logger.ErrorField(err))
			return nil
		}
		tracks = append(tracks, track)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan music directory %s: %w", s.musicDir, err)
	}

	logger.Info("Device scan finished", logger.Int("tracks", len(tracks)))
	return tracks, nil
}

// readTrack builds a candidate track from one audio file.
func (s *Scanner) readTrack(ctx context.Context, path string, cacheArt bool) (model.Track, error) {
	track := model.Track{
		ID:         TrackID(path),
		Title:      FallbackTitle(path),
		Artist:     "Unknown Artist",
		Album:      "Unknown Album",
		FilePath:   path,
		FolderName: filepath.Base(filepath.Dir(path)),
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Track{}, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		// No parseable tag; keep filename-derived fields.
		return track, nil
	}

	if title := strings.TrimSpace(meta.Title()); title != "" {
		track.Title = title
	}
	if artist := strings.TrimSpace(meta.Artist()); artist != "" {
		track.Artist = artist
	}
	if album := strings.TrimSpace(meta.Album()); album != "" {
		track.Album = album
	}

	if pic := meta.Picture(); pic != nil {
		track.ArtworkPath = s.artworkLocator(ctx, track.ID, path, pic, cacheArt)
	}

	return track, nil
}

// artworkLocator decides where the core artwork locator points: the MinIO store
// when caching is on, or the embedded picture in place.
func (s *Scanner) artworkLocator(ctx context.Context, trackID int64, path string, pic *tag.Picture, cacheArt bool) string {
	if cacheArt && s.store != nil {
		ext := "." + pic.Ext
		if pic.Ext == "" {
			ext = ".jpg"
		}
		locator, err := s.store.Put(ctx, trackID, pic.Data, pic.MIMEType, ext)
		if err == nil {
			return locator
		}
		logger.Warn("Failed to cache embedded artwork", logger.Int64("trackId", trackID), logger.ErrorField(err))
	}
	return "embedded://" + path
}

// FallbackTitle derives a title from the file name when the tag carries none.
func FallbackTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
