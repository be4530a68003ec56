package model

// Repeat modes mirrored between the settings record and the player session.
const (
	RepeatOff = 0
	RepeatOne = 1
	RepeatAll = 2
)

// Sort orders for the library view.
const (
	SortByTitle     = "Title"
	SortByArtist    = "Artist"
	SortByAlbum     = "Album"
	SortByDateAdded = "DateAdded"
)

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

// Settings is the single-row record of user preferences.
type Settings struct {
	ID int `gorm:"primaryKey;autoIncrement:false" json:"id"`

	// Playback
	ShuffleEnabled    bool    `json:"shuffleEnabled"`
	RepeatMode        int     `json:"repeatMode"` // RepeatOff/RepeatOne/RepeatAll
	GaplessPlayback   bool    `json:"gaplessPlayback"`
	CrossfadeDuration int     `json:"crossfadeDuration"` // 0-6 seconds
	PlaybackSpeed     float64 `json:"playbackSpeed"`     // 0.5-2.0
	SkipSilence       bool    `json:"skipSilence"`

	// Audio
	VolumeNormalization bool   `json:"volumeNormalization"`
	EqualizerEnabled    bool   `json:"equalizerEnabled"`
	EqualizerPreset     string `gorm:"size:64" json:"equalizerPreset"`
	Bass                int    `json:"bass"`     // -10 to 10
	Midrange            int    `json:"midrange"` // -10 to 10
	Treble              int    `json:"treble"`   // -10 to 10

	// Theme
	DarkThemeEnabled bool `json:"darkThemeEnabled"`
	AmoledTheme      bool `json:"amoledTheme"`

	// Notifications
	ShowNotification         bool `json:"showNotification"`
	NotificationOnLockScreen bool `json:"notificationOnLockScreen"`

	// Library
	AutoScanLibrary bool   `json:"autoScanLibrary"`
	CacheAlbumArt   bool   `json:"cacheAlbumArt"`
	SortOrder       string `gorm:"size:32" json:"sortOrder"`

	// Sleep timer; 0 = disabled
	SleepTimerMinutes int `json:"sleepTimerMinutes"`

	// Other
	HapticFeedback     bool `json:"hapticFeedback"`
	ShowLyrics         bool `json:"showLyrics"`
	AudioVisualization bool `json:"audioVisualization"`
}

// DefaultSettings returns the settings row created on first read.
func DefaultSettings() Settings {
	return Settings{
		ID:                       SettingsID,
		ShuffleEnabled:           false,
		RepeatMode:               RepeatOff,
		GaplessPlayback:          true,
		CrossfadeDuration:        0,
		PlaybackSpeed:            1.0,
		SkipSilence:              false,
		VolumeNormalization:      false,
		EqualizerEnabled:         false,
		EqualizerPreset:          "Normal",
		Bass:                     0,
		Midrange:                 0,
		Treble:                   0,
		DarkThemeEnabled:         true,
		AmoledTheme:              false,
		ShowNotification:         true,
		NotificationOnLockScreen: true,
		AutoScanLibrary:          true,
		CacheAlbumArt:            true,
		SortOrder:                SortByTitle,
		SleepTimerMinutes:        0,
		HapticFeedback:           true,
		ShowLyrics:               true,
		AudioVisualization:       true,
	}
}

// ClampedSpeed returns the playback speed limited to the supported 0.5-2.0 range.
func (s *Settings) ClampedSpeed() float64 {
	if s.PlaybackSpeed < 0.5 {
		return 0.5
	}
	if s.PlaybackSpeed > 2.0 {
		return 2.0
	}
	return s.PlaybackSpeed
}

// NextRepeatMode cycles OFF -> ONE -> ALL -> OFF.
func NextRepeatMode(mode int) int {
	switch mode {
	case RepeatOff:
		return RepeatOne
	case RepeatOne:
		return RepeatAll
	default:
		return RepeatOff
	}
}
