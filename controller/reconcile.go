package controller

import (
	"context"
	"math"

	"PalmFM/logger"
	"PalmFM/model"
)

// durationTolerance allows slight duration differences between the device
// index and the stored value without counting as a change.
const durationTolerance = 1.0 // seconds

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Scanned  int `json:"scanned"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// GetDeviceTracks reads the full current set of on-device tracks, for the
// import flow. Read-only; nothing is written.
func (c *Controller) GetDeviceTracks(ctx context.Context) ([]model.Track, error) {
	return c.scanner.Scan(ctx, c.Settings().CacheAlbumArt)
}

// ImportTracks inserts the given device tracks into the library. Ids that
// already exist are ignored; first import wins for core fields.
func (c *Controller) ImportTracks(tracks []model.Track) (int64, error) {
	return c.tracks.ImportTracks(tracks)
}

// ReconcileWithDevice is the one-way sync from the device's authoritative
// index into the library. New device tracks are inserted; known tracks get
// differing core fields written through; user overrides are never touched;
// tracks missing from the device are left alone so a transient device read
// never destroys library state.
func (c *Controller) ReconcileWithDevice(ctx context.Context) (ReconcileResult, error) {
	deviceTracks, err := c.scanner.Scan(ctx, c.Settings().CacheAlbumArt)
	if err != nil {
		return ReconcileResult{}, err
	}

	c.mu.Lock()
	known := make(map[int64]model.Track, len(c.allTracks))
	for _, t := range c.allTracks {
		known[t.ID] = t
	}
	c.mu.Unlock()

	result := ReconcileResult{Scanned: len(deviceTracks)}
	newTracks := make([]model.Track, 0)

	for _, device := range deviceTracks {
		stored, ok := known[device.ID]
		if !ok {
			newTracks = append(newTracks, device)
			continue
		}
		if coreChanged(stored, device) {
			err := c.tracks.UpdateCore(device.ID, device.Title, device.Artist, device.Album, device.ArtworkPath, device.Duration)
			if err != nil {
				logger.Error("Failed to refresh core metadata",
					logger.Int64("trackId", device.ID), logger.ErrorField(err))
				continue
			}
			result.Updated++
		}
	}

	if len(newTracks) > 0 {
		inserted, err := c.tracks.ImportTracks(newTracks)
		if err != nil {
			return result, err
		}
		result.Inserted = int(inserted)
	}

	logger.Info("Device reconciliation finished",
		logger.Int("scanned", result.Scanned),
		logger.Int("inserted", result.Inserted),
		logger.Int("updated", result.Updated))
	return result, nil
}

// coreChanged compares the core metadata only; duration differences within the
// tolerance are ignored.
func coreChanged(stored, device model.Track) bool {
	return stored.Title != device.Title ||
		stored.Artist != device.Artist ||
		stored.Album != device.Album ||
		stored.ArtworkPath != device.ArtworkPath ||
		math.Abs(stored.Duration-device.Duration) > durationTolerance
}
