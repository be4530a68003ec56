package repository

import (
	"errors"
	"fmt"

	"PalmFM/logger"
	"PalmFM/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackRepository defines the interface for library track operations.
//
// Core metadata is written by ImportTracks (first import wins) and UpdateCore
// (reconciliation only). Override metadata is written by UpdateOverrides only.
type TrackRepository interface {
	ImportTracks(tracks []model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetAllTracks() ([]model.Track, error)
	UpdateOverrides(trackID int64, title, artist, album, artworkPath *string) error
	UpdateCore(trackID int64, title, artist, album, artworkPath string, duration float64) error
	ClearLibrary() error

	// Watch returns a continuously-updating subscription of full library
	// snapshots. A snapshot is published after every successful write.
	Watch() (string, <-chan []model.Track)
	Unwatch(id string)
}

// mysqlTrackRepository implements TrackRepository on GORM/MySQL.
type mysqlTrackRepository struct {
	db        *gorm.DB
	snapshots *broadcaster[[]model.Track]
}

// NewMySQLTrackRepository creates a new track repository on the given handle.
func NewMySQLTrackRepository(gdb *gorm.DB) TrackRepository {
	return &mysqlTrackRepository{
		db:        gdb,
		snapshots: newBroadcaster[[]model.Track](),
	}
}

// ImportTracks inserts newly discovered tracks. Rows whose id already exists are
// ignored, never overwritten. Returns the number of rows actually inserted.
func (r *mysqlTrackRepository) ImportTracks(tracks []model.Track) (int64, error) {
	if len(tracks) == 0 {
		return 0, nil
	}

	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tracks)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to import tracks: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		logger.Info("Imported tracks into library", logger.Int64("inserted", res.RowsAffected))
	}
	r.publishSnapshot()
	return res.RowsAffected, nil
}

// GetTrackByID retrieves a track by id, returning (nil, nil) when not found.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	var track model.Track
	err := r.db.First(&track, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query track by ID %d: %w", id, err)
	}
	return &track, nil
}

// GetAllTracks retrieves the whole library ordered by core title.
func (r *mysqlTrackRepository) GetAllTracks() ([]model.Track, error) {
	tracks := make([]model.Track, 0)
	if err := r.db.Order("title ASC").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to query all tracks: %w", err)
	}
	return tracks, nil
}

// UpdateOverrides writes the user-editable override fields. A nil pointer clears
// the override (stored as NULL); core fields are never touched here.
func (r *mysqlTrackRepository) UpdateOverrides(trackID int64, title, artist, album, artworkPath *string) error {
	updates := map[string]interface{}{
		"custom_title":        title,
		"custom_artist":       artist,
		"custom_album":        album,
		"custom_artwork_path": artworkPath,
	}
	res := r.db.Model(&model.Track{}).Where("id = ?", trackID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update overrides for track %d: %w", trackID, res.Error)
	}

	r.publishSnapshot()
	return nil
}

// UpdateCore refreshes core metadata from the device index. This is the only
// write path for core fields after import; override columns are left alone.
func (r *mysqlTrackRepository) UpdateCore(trackID int64, title, artist, album, artworkPath string, duration float64) error {
	updates := map[string]interface{}{
		"title":        title,
		"artist":       artist,
		"album":        album,
		"artwork_path": artworkPath,
		"duration":     duration,
	}
	res := r.db.Model(&model.Track{}).Where("id = ?", trackID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update core metadata for track %d: %w", trackID, res.Error)
	}

	logger.Debug("Core metadata refreshed", logger.Int64("trackId", trackID), logger.String("title", title))
	r.publishSnapshot()
	return nil
}

// ClearLibrary removes every track.
func (r *mysqlTrackRepository) ClearLibrary() error {
	if err := r.db.Where("1 = 1").Delete(&model.Track{}).Error; err != nil {
		return fmt.Errorf("failed to clear library: %w", err)
	}
	r.publishSnapshot()
	return nil
}

// Watch subscribes to library snapshots.
func (r *mysqlTrackRepository) Watch() (string, <-chan []model.Track) {
	return r.snapshots.Subscribe()
}

// Unwatch removes a subscription.
func (r *mysqlTrackRepository) Unwatch(id string) {
	r.snapshots.Unsubscribe(id)
}

func (r *mysqlTrackRepository) publishSnapshot() {
	tracks, err := r.GetAllTracks()
	if err != nil {
		logger.Error("Failed to read library snapshot for watchers", logger.ErrorField(err))
		return
	}
	r.snapshots.Publish(tracks)
}
