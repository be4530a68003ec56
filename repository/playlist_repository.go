package repository

import (
	"fmt"

	"PalmFM/logger"
	"PalmFM/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository defines the interface for playlist operations.
type PlaylistRepository interface {
	CreatePlaylist(name string) (*model.Playlist, error)
	GetAllPlaylists() ([]model.Playlist, error)
	AddTrackToPlaylist(playlistID, trackID int64) error
	GetPlaylistTracks(playlistID int64) ([]model.Track, error)

	Watch() (string, <-chan []model.Playlist)
	Unwatch(id string)
}

// mysqlPlaylistRepository implements PlaylistRepository on GORM/MySQL.
type mysqlPlaylistRepository struct {
	db        *gorm.DB
	snapshots *broadcaster[[]model.Playlist]
}

// NewMySQLPlaylistRepository creates a new playlist repository on the given handle.
func NewMySQLPlaylistRepository(gdb *gorm.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{
		db:        gdb,
		snapshots: newBroadcaster[[]model.Playlist](),
	}
}

// CreatePlaylist inserts a new named playlist and returns it with its generated id.
func (r *mysqlPlaylistRepository) CreatePlaylist(name string) (*model.Playlist, error) {
	playlist := model.Playlist{Name: name}
	if err := r.db.Create(&playlist).Error; err != nil {
		return nil, fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	logger.Info("Playlist created", logger.Int64("playlistId", playlist.ID), logger.String("name", name))
	r.publishSnapshot()
	return &playlist, nil
}

// GetAllPlaylists retrieves every playlist.
func (r *mysqlPlaylistRepository) GetAllPlaylists() ([]model.Playlist, error) {
	playlists := make([]model.Playlist, 0)
	if err := r.db.Order("created_at ASC").Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	return playlists, nil
}

// AddTrackToPlaylist records a membership pair. Re-adding an existing pair is a
// no-op.
func (r *mysqlPlaylistRepository) AddTrackToPlaylist(playlistID, trackID int64) error {
	ref := model.PlaylistTrack{PlaylistID: playlistID, TrackID: trackID}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ref).Error
	if err != nil {
		return fmt.Errorf("failed to add track %d to playlist %d: %w", trackID, playlistID, err)
	}

	r.publishSnapshot()
	return nil
}

// GetPlaylistTracks returns the playlist's tracks in insertion order.
func (r *mysqlPlaylistRepository) GetPlaylistTracks(playlistID int64) ([]model.Track, error) {
	tracks := make([]model.Track, 0)
	err := r.db.
		Joins("INNER JOIN playlist_tracks ON playlist_tracks.track_id = tracks.id").
		Where("playlist_tracks.playlist_id = ?", playlistID).
		Order("playlist_tracks.created_at ASC").
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for playlist %d: %w", playlistID, err)
	}
	return tracks, nil
}

// Watch subscribes to playlist snapshots.
func (r *mysqlPlaylistRepository) Watch() (string, <-chan []model.Playlist) {
	return r.snapshots.Subscribe()
}

// Unwatch removes a subscription.
func (r *mysqlPlaylistRepository) Unwatch(id string) {
	r.snapshots.Unsubscribe(id)
}

func (r *mysqlPlaylistRepository) publishSnapshot() {
	playlists, err := r.GetAllPlaylists()
	if err != nil {
		logger.Error("Failed to read playlist snapshot for watchers", logger.ErrorField(err))
		return
	}
	r.snapshots.Publish(playlists)
}
