package model

import "time"

// Playlist is a user-created, ordered-by-insertion collection of tracks.
type Playlist struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlaylistTrack is a playlist membership pair. The composite primary key makes
// re-adding a track to the same playlist a no-op.
type PlaylistTrack struct {
	PlaylistID int64     `gorm:"primaryKey;autoIncrement:false" json:"playlistId"`
	TrackID    int64     `gorm:"primaryKey;autoIncrement:false" json:"trackId"`
	CreatedAt  time.Time `json:"createdAt"`
}
