package model

import "time"

// Track represents an audio track known to the library.
//
// Core metadata (title/artist/album/duration/artwork/folder) is sourced from the
// device scanner and only ever refreshed by reconciliation. The Custom* fields are
// user-supplied overrides for display purposes; nil means "no override".
type Track struct {
	ID          int64   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Artist      string  `gorm:"size:255" json:"artist"`
	Album       string  `gorm:"size:255" json:"album"`
	FilePath    string  `gorm:"size:767;not null" json:"-"`
	ArtworkPath string  `gorm:"size:767" json:"artworkPath"`
	Duration    float64 `gorm:"" json:"duration"` // Duration in seconds
	FolderName  string  `gorm:"size:255" json:"folderName"`

	CustomTitle       *string `gorm:"size:255" json:"customTitle,omitempty"`
	CustomArtist      *string `gorm:"size:255" json:"customArtist,omitempty"`
	CustomAlbum       *string `gorm:"size:255" json:"customAlbum,omitempty"`
	CustomArtworkPath *string `gorm:"size:767" json:"customArtworkPath,omitempty"`
	CustomYear        *int    `json:"customYear,omitempty"`
	CustomGenre       *string `gorm:"size:128" json:"customGenre,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayTitle resolves the user override if present, otherwise the core title.
func (t *Track) DisplayTitle() string {
	if t.CustomTitle != nil {
		return *t.CustomTitle
	}
	return t.Title
}

// DisplayArtist resolves the user override if present, otherwise the core artist.
func (t *Track) DisplayArtist() string {
	if t.CustomArtist != nil {
		return *t.CustomArtist
	}
	return t.Artist
}

// DisplayAlbum resolves the user override if present, otherwise the core album.
func (t *Track) DisplayAlbum() string {
	if t.CustomAlbum != nil {
		return *t.CustomAlbum
	}
	return t.Album
}

// DisplayArtworkPath resolves the user override if present, otherwise the core
// artwork locator.
func (t *Track) DisplayArtworkPath() string {
	if t.CustomArtworkPath != nil {
		return *t.CustomArtworkPath
	}
	return t.ArtworkPath
}
