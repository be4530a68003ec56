package controller

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"PalmFM/artwork"
	"PalmFM/cache"
	"PalmFM/logger"
	"PalmFM/model"
	"PalmFM/player"
	"PalmFM/repository"
)

// progressPollInterval drives the position indicator. The session does not push
// continuous position updates, so progress is polled while playback is active.
const progressPollInterval = 500 * time.Millisecond

// DeviceScanner is the boundary to the on-device audio index.
type DeviceScanner interface {
	Scan(ctx context.Context, cacheArt bool) ([]model.Track, error)
}

// Deps carries the controller's collaborators. Everything is injected
// explicitly; the controller owns none of them except its own session state.
type Deps struct {
	Session   player.Session        // may be nil until AttachSession
	Tracks    repository.TrackRepository
	Playlists repository.PlaylistRepository
	Settings  repository.SettingsRepository
	Scanner   DeviceScanner
	Favorites cache.FavoritesStore // optional
	Colors    *cache.ColorCache    // optional
	Artwork   *artwork.Store       // optional
}

// Controller is the single authority translating user intents into session
// commands and session/store events into observable state. All state mutation
// happens under c.mu: background tasks deliver their results through locked
// entry points and never touch the state directly.
type Controller struct {
	mu sync.Mutex

	session      player.Session
	tracks       repository.TrackRepository
	playlists    repository.PlaylistRepository
	settingsRepo repository.SettingsRepository
	scanner      DeviceScanner
	favStore     cache.FavoritesStore
	colors       *cache.ColorCache
	artStore     *artwork.Store

	// Library view
	allTracks    []model.Track
	visible      []model.Track
	searchQuery  string
	playlistList []model.Playlist

	// Settings mirror
	settings  model.Settings
	lastSpeed float64

	// Playback session state (exclusively owned)
	activeQueue []model.Track
	current     *model.Track
	isPlaying   bool

	shuffleEnabled bool
	repeatMode     int

	progress float64
	position float64
	duration float64

	sleepTimer  sleepTimerState
	palette     artwork.Palette
	favorites   map[int64]bool
	pollRunning bool

	states *stateHub
}

// New creates a controller. Call Run to load state and start subscriptions.
func New(deps Deps) *Controller {
	return &Controller{
		session:      deps.Session,
		tracks:       deps.Tracks,
		playlists:    deps.Playlists,
		settingsRepo: deps.Settings,
		scanner:      deps.Scanner,
		favStore:     deps.Favorites,
		colors:       deps.Colors,
		artStore:     deps.Artwork,
		settings:     model.DefaultSettings(),
		palette:      defaultPalette,
		favorites:    make(map[int64]bool),
		states:       newStateHub(),
	}
}

// Run loads persisted state and subscribes to the library, playlist and
// settings stores for the controller's lifetime. It returns after the initial
// load; subscription deliveries continue until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	settings, err := c.settingsRepo.GetSettings()
	if err != nil {
		return err
	}

	tracks, err := c.tracks.GetAllTracks()
	if err != nil {
		return err
	}

	playlists, err := c.playlists.GetAllPlaylists()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.settings = settings
	c.shuffleEnabled = settings.ShuffleEnabled
	c.repeatMode = settings.RepeatMode
	c.allTracks = tracks
	c.playlistList = playlists
	c.applyFilterLocked()
	c.broadcastLocked()
	c.mu.Unlock()

	c.loadFavorites(ctx)

	trackWatch, trackCh := c.tracks.Watch()
	playlistWatch, playlistCh := c.playlists.Watch()
	settingsWatch, settingsCh := c.settingsRepo.Watch()

	go func() {
		defer c.tracks.Unwatch(trackWatch)
		defer c.playlists.Unwatch(playlistWatch)
		defer c.settingsRepo.Unwatch(settingsWatch)

		for {
			select {
			case <-ctx.Done():
				return
			case snapshot, ok := <-trackCh:
				if !ok {
					return
				}
				c.applyLibrarySnapshot(snapshot)
			case snapshot, ok := <-playlistCh:
				if !ok {
					return
				}
				c.applyPlaylistSnapshot(snapshot)
			case snapshot, ok := <-settingsCh:
				if !ok {
					return
				}
				c.applySettingsSnapshot(snapshot)
			}
		}
	}()

	return nil
}

// AttachSession wires the remote player session once it is connected, then
// restores the persisted shuffle/repeat/speed state onto it. Control
// operations issued before this are no-ops, tolerating the connection race at
// startup.
func (c *Controller) AttachSession(s player.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = s
	s.SetListener(c)

	if err := s.SetShuffle(c.settings.ShuffleEnabled); err != nil {
		c.logSessionError("restore shuffle", err)
	}
	if err := s.SetRepeat(c.settings.RepeatMode); err != nil {
		c.logSessionError("restore repeat", err)
	}
	speed := c.settings.ClampedSpeed()
	if err := s.SetSpeed(speed); err != nil {
		c.logSessionError("restore speed", err)
	}
	c.lastSpeed = speed
	c.shuffleEnabled = c.settings.ShuffleEnabled
	c.repeatMode = c.settings.RepeatMode
	c.broadcastLocked()
}

func (c *Controller) loadFavorites(ctx context.Context) {
	if c.favStore == nil {
		return
	}
	ids, err := c.favStore.All(ctx)
	if err != nil {
		logger.Warn("Failed to load persisted favorites", logger.ErrorField(err))
		return
	}

	c.mu.Lock()
	for _, id := range ids {
		c.favorites[id] = true
	}
	c.broadcastLocked()
	c.mu.Unlock()
}

// ---- Library view ----

func (c *Controller) applyLibrarySnapshot(tracks []model.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.allTracks = tracks
	// Keep the observable current track in step with library edits.
	if c.current != nil {
		for i := range tracks {
			if tracks[i].ID == c.current.ID {
				copied := tracks[i]
				c.current = &copied
				break
			}
		}
	}
	c.applyFilterLocked()
	c.broadcastLocked()
}

func (c *Controller) applyPlaylistSnapshot(playlists []model.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.playlistList = playlists
	c.broadcastLocked()
}

// applyFilterLocked recomputes the visible track list from the full library,
// the search query and the sort order. Callers must hold c.mu.
func (c *Controller) applyFilterLocked() {
	filtered := make([]model.Track, 0, len(c.allTracks))
	query := strings.ToLower(strings.TrimSpace(c.searchQuery))
	for i := range c.allTracks {
		t := c.allTracks[i]
		if query == "" ||
			strings.Contains(strings.ToLower(t.DisplayTitle()), query) ||
			strings.Contains(strings.ToLower(t.DisplayArtist()), query) {
			filtered = append(filtered, t)
		}
	}

	switch c.settings.SortOrder {
	case model.SortByArtist:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].DisplayArtist()) < strings.ToLower(filtered[j].DisplayArtist())
		})
	case model.SortByAlbum:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].DisplayAlbum()) < strings.ToLower(filtered[j].DisplayAlbum())
		})
	case model.SortByDateAdded:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	default: // Title
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].DisplayTitle()) < strings.ToLower(filtered[j].DisplayTitle())
		})
	}

	c.visible = filtered
}

// SetSearchQuery filters the visible library view.
func (c *Controller) SetSearchQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchQuery = query
	c.applyFilterLocked()
	c.broadcastLocked()
}

// VisibleTracks returns the filtered, sorted library view.
func (c *Controller) VisibleTracks() []model.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Track(nil), c.visible...)
}

// TrackByID looks a track up in the in-memory library.
func (c *Controller) TrackByID(id int64) (model.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.allTracks {
		if c.allTracks[i].ID == id {
			return c.allTracks[i], true
		}
	}
	return model.Track{}, false
}

// TracksByIDs resolves ids against the in-memory library, preserving order and
// dropping unknown ids.
func (c *Controller) TracksByIDs(ids []int64) []model.Track {
	c.mu.Lock()
	defer c.mu.Unlock()

	byID := make(map[int64]model.Track, len(c.allTracks))
	for i := range c.allTracks {
		byID[c.allTracks[i].ID] = c.allTracks[i]
	}

	tracks := make([]model.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// ClearLibrary removes every track from the library. The emptied snapshot
// arrives through the library subscription like any other write.
func (c *Controller) ClearLibrary() error {
	return c.tracks.ClearLibrary()
}

// TracksInFolder returns the library tracks whose folder matches.
func (c *Controller) TracksInFolder(folderName string) []model.Track {
	c.mu.Lock()
	defer c.mu.Unlock()

	tracks := make([]model.Track, 0)
	for i := range c.allTracks {
		if c.allTracks[i].FolderName == folderName {
			tracks = append(tracks, c.allTracks[i])
		}
	}
	return tracks
}

// ---- Playback operations ----

// PlayTrack builds a queue snapshot from queue and starts playback at track.
// A track not present in the queue makes the whole call a no-op.
func (c *Controller) PlayTrack(track model.Track, queue []model.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := -1
	for i := range queue {
		if queue[i].ID == track.ID {
			index = i
			break
		}
	}
	if index == -1 {
		return
	}
	if c.session == nil {
		return
	}

	snapshot := append([]model.Track(nil), queue...)
	if err := c.session.LoadQueue(queueItems(snapshot), index); err != nil {
		c.logSessionError("load queue", err)
		return
	}

	// Apply the persisted shuffle/repeat state before issuing play.
	if err := c.session.SetShuffle(c.settings.ShuffleEnabled); err != nil {
		c.logSessionError("apply shuffle", err)
	}
	c.shuffleEnabled = c.settings.ShuffleEnabled
	if err := c.session.SetRepeat(c.settings.RepeatMode); err != nil {
		c.logSessionError("apply repeat", err)
	}
	c.repeatMode = c.settings.RepeatMode

	if err := c.session.Play(); err != nil {
		c.logSessionError("play", err)
		return
	}

	c.activeQueue = snapshot
	copied := snapshot[index]
	c.current = &copied
	c.progress = 0
	c.position = 0
	c.duration = copied.Duration
	go c.extractColors(copied)
	c.broadcastLocked()
}

// ShufflePlay submits the full queue with shuffle forced on and repeat-ALL,
// persists the shuffle flag and starts playback. Empty queues are a no-op.
func (c *Controller) ShufflePlay(queue []model.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(queue) == 0 {
		return
	}
	if c.session == nil {
		return
	}

	snapshot := append([]model.Track(nil), queue...)
	if err := c.session.LoadQueue(queueItems(snapshot), 0); err != nil {
		c.logSessionError("load queue", err)
		return
	}
	if err := c.session.SetShuffle(true); err != nil {
		c.logSessionError("force shuffle", err)
	}
	c.shuffleEnabled = true
	if err := c.session.SetRepeat(model.RepeatAll); err != nil {
		c.logSessionError("force repeat all", err)
	}
	c.repeatMode = model.RepeatAll

	if err := c.session.Play(); err != nil {
		c.logSessionError("play", err)
		return
	}

	c.activeQueue = snapshot
	copied := snapshot[0]
	c.current = &copied
	c.progress = 0
	c.position = 0
	c.duration = copied.Duration
	go c.extractColors(copied)
	go c.persistShuffle(true)
	c.broadcastLocked()
}

// TogglePlayPause issues the complement of the session's reported playing
// state. The session flag is authoritative; no local intent flag exists.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	var err error
	if c.session.IsPlaying() {
		err = c.session.Pause()
	} else {
		err = c.session.Play()
	}
	if err != nil {
		c.logSessionError("toggle play/pause", err)
	}
}

// SeekTo seeks to a fraction of the session-reported duration and optimistically
// updates progress so the indicator moves before the next poll tick.
func (c *Controller) SeekTo(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	duration := c.session.Duration()
	if duration <= 0 {
		return
	}

	target := fraction * duration
	if err := c.session.SeekTo(target); err != nil {
		c.logSessionError("seek", err)
		return
	}

	c.progress = fraction
	c.position = target
	c.duration = duration
	c.broadcastLocked()
}

// SkipNext advances to the next queue item when one exists.
func (c *Controller) SkipNext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	if c.session.HasNext() {
		if err := c.session.Next(); err != nil {
			c.logSessionError("skip next", err)
		}
	}
}

// SkipPrevious moves to the previous queue item, or restarts the current track
// when there is no previous item.
func (c *Controller) SkipPrevious() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	if c.session.HasPrevious() {
		if err := c.session.Previous(); err != nil {
			c.logSessionError("skip previous", err)
		}
		return
	}
	if err := c.session.SeekTo(0); err != nil {
		c.logSessionError("seek to start", err)
		return
	}
	c.progress = 0
	c.position = 0
	c.broadcastLocked()
}

// ToggleShuffle flips the shuffle flag: session mutation, local mirror and
// settings persistence happen together through one path.
func (c *Controller) ToggleShuffle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	c.applyShuffleLocked(!c.shuffleEnabled, true)
}

// ToggleRepeat cycles OFF -> ONE -> ALL -> OFF with the same three-step sync.
func (c *Controller) ToggleRepeat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyRepeatLocked(model.NextRepeatMode(c.repeatMode), true)
}

// applyShuffleLocked is the single path from a new shuffle value to
// session + mirror + persisted settings. pushToSession is false when the value
// originated from a session event. Callers must hold c.mu.
func (c *Controller) applyShuffleLocked(enabled bool, pushToSession bool) {
	if pushToSession && c.session != nil {
		if err := c.session.SetShuffle(enabled); err != nil {
			c.logSessionError("set shuffle", err)
		}
	}
	c.shuffleEnabled = enabled
	c.settings.ShuffleEnabled = enabled
	go c.persistShuffle(enabled)
	c.broadcastLocked()
}

// applyRepeatLocked mirrors applyShuffleLocked for the repeat mode.
func (c *Controller) applyRepeatLocked(mode int, pushToSession bool) {
	if pushToSession && c.session != nil {
		if err := c.session.SetRepeat(mode); err != nil {
			c.logSessionError("set repeat", err)
		}
	}
	c.repeatMode = mode
	c.settings.RepeatMode = mode
	go c.persistRepeat(mode)
	c.broadcastLocked()
}

func (c *Controller) persistShuffle(enabled bool) {
	if err := c.settingsRepo.UpdateShuffleEnabled(enabled); err != nil {
		logger.Error("Failed to persist shuffle flag", logger.ErrorField(err))
	}
}

func (c *Controller) persistRepeat(mode int) {
	if err := c.settingsRepo.UpdateRepeatMode(mode); err != nil {
		logger.Error("Failed to persist repeat mode", logger.ErrorField(err))
	}
}

// ---- Sleep timer ----

// UpdateSleepTimer cancels any running countdown, persists the chosen minutes
// immediately, and starts a fresh countdown unless minutes is zero.
func (c *Controller) UpdateSleepTimer(minutes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sleepTimer.stopLocked()

	c.settings.SleepTimerMinutes = minutes
	go c.persistSleepTimer(minutes)

	if minutes == 0 {
		c.broadcastLocked()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.sleepTimer = sleepTimerState{
		active:           true,
		minutesRemaining: minutes,
		secondsRemaining: minutes * 60,
		cancel:           cancel,
	}
	go c.runSleepTimer(ctx)
	c.broadcastLocked()
}

func (c *Controller) persistSleepTimer(minutes int) {
	if err := c.settingsRepo.UpdateSleepTimer(minutes); err != nil {
		logger.Error("Failed to persist sleep timer", logger.ErrorField(err))
	}
}

// ---- Metadata ----

// UpdateSongMetadata writes user overrides through to the library and refreshes
// the in-memory copies. Blank strings clear the override rather than storing an
// empty string.
func (c *Controller) UpdateSongMetadata(trackID int64, title, artist, album, artworkPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := -1
	for i := range c.allTracks {
		if c.allTracks[i].ID == trackID {
			index = i
			break
		}
	}
	if index == -1 {
		return
	}

	customTitle := nilIfBlank(title)
	customArtist := nilIfBlank(artist)
	customAlbum := nilIfBlank(album)
	customArtwork := nilIfBlank(artworkPath)

	updated := c.allTracks[index]
	updated.CustomTitle = customTitle
	updated.CustomArtist = customArtist
	updated.CustomAlbum = customAlbum
	updated.CustomArtworkPath = customArtwork
	c.allTracks[index] = updated

	// The edit is visible immediately, including on the current track; the
	// store write follows in the background and re-confirms via the watch.
	if c.current != nil && c.current.ID == trackID {
		copied := updated
		c.current = &copied
	}
	c.applyFilterLocked()
	c.broadcastLocked()

	go func() {
		if err := c.tracks.UpdateOverrides(trackID, customTitle, customArtist, customAlbum, customArtwork); err != nil {
			logger.Error("Failed to persist metadata overrides",
				logger.Int64("trackId", trackID), logger.ErrorField(err))
		}
	}()
}

func nilIfBlank(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ---- Settings synchronization ----

// ApplySettingsChange diffs the new record against the previous one, pushes
// each changed field with a session equivalent (shuffle, repeat, speed), then
// persists the whole record. This is the only path from "new desired settings"
// to persisted + mirrored + applied.
func (c *Controller) ApplySettingsChange(newSettings model.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applySettingsChangeLocked(newSettings)
}

func (c *Controller) applySettingsChangeLocked(newSettings model.Settings) {
	previous := c.settings

	if newSettings.ShuffleEnabled != previous.ShuffleEnabled && c.session != nil {
		if err := c.session.SetShuffle(newSettings.ShuffleEnabled); err != nil {
			c.logSessionError("apply shuffle setting", err)
		}
		c.shuffleEnabled = newSettings.ShuffleEnabled
	}
	if newSettings.RepeatMode != previous.RepeatMode && c.session != nil {
		if err := c.session.SetRepeat(newSettings.RepeatMode); err != nil {
			c.logSessionError("apply repeat setting", err)
		}
		c.repeatMode = newSettings.RepeatMode
	}
	speed := newSettings.ClampedSpeed()
	if speed != c.lastSpeed && c.session != nil {
		if err := c.session.SetSpeed(speed); err != nil {
			c.logSessionError("apply playback speed", err)
		}
		c.lastSpeed = speed
	}

	c.settings = newSettings
	c.applyFilterLocked()
	c.broadcastLocked()

	go func() {
		if err := c.settingsRepo.UpdateSettings(newSettings); err != nil {
			logger.Error("Failed to persist settings", logger.ErrorField(err))
		}
	}()
}

// applySettingsSnapshot re-applies a settings emission from the store. Writes
// through this controller land here too; the mirrors and speed application are
// idempotent so the echo is harmless.
func (c *Controller) applySettingsSnapshot(settings model.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings = settings
	c.shuffleEnabled = settings.ShuffleEnabled
	c.repeatMode = settings.RepeatMode

	speed := settings.ClampedSpeed()
	if speed != c.lastSpeed && c.session != nil {
		if err := c.session.SetSpeed(speed); err != nil {
			c.logSessionError("apply playback speed", err)
		}
		c.lastSpeed = speed
	}

	c.applyFilterLocked()
	c.broadcastLocked()
}

// Settings returns the current settings mirror.
func (c *Controller) Settings() model.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// ---- Favorites ----

// ToggleFavorite flips a track's favorited state and writes it through to the
// favorites store.
func (c *Controller) ToggleFavorite(trackID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.favorites[trackID] {
		delete(c.favorites, trackID)
		if c.favStore != nil {
			go func() {
				if err := c.favStore.Remove(context.Background(), trackID); err != nil {
					logger.Warn("Failed to remove persisted favorite", logger.ErrorField(err))
				}
			}()
		}
	} else {
		c.favorites[trackID] = true
		if c.favStore != nil {
			go func() {
				if err := c.favStore.Add(context.Background(), trackID); err != nil {
					logger.Warn("Failed to persist favorite", logger.ErrorField(err))
				}
			}()
		}
	}
	c.broadcastLocked()
}

// IsFavorite reports whether a track is favorited.
func (c *Controller) IsFavorite(trackID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.favorites[trackID]
}

// ---- Playlists ----

// CreatePlaylist creates a named playlist.
func (c *Controller) CreatePlaylist(name string) (*model.Playlist, error) {
	return c.playlists.CreatePlaylist(name)
}

// AddTracksToPlaylist records membership pairs; duplicates are no-ops.
func (c *Controller) AddTracksToPlaylist(playlistID int64, trackIDs []int64) error {
	for _, id := range trackIDs {
		if err := c.playlists.AddTrackToPlaylist(playlistID, id); err != nil {
			return err
		}
	}
	return nil
}

// PlaylistTracks returns a playlist's tracks in insertion order.
func (c *Controller) PlaylistTracks(playlistID int64) ([]model.Track, error) {
	return c.playlists.GetPlaylistTracks(playlistID)
}

// ---- State access ----

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SubscribeState registers a presentation subscriber for state snapshots.
func (c *Controller) SubscribeState() (string, <-chan State) {
	return c.states.Subscribe()
}

// UnsubscribeState removes a presentation subscriber.
func (c *Controller) UnsubscribeState(id string) {
	c.states.Unsubscribe(id)
}

// ---- Progress poll ----

// startProgressPollLocked starts the poll loop unless one is already running.
// The loop self-terminates when playback stops and is restarted on the next
// play transition. Callers must hold c.mu.
func (c *Controller) startProgressPollLocked() {
	if c.pollRunning {
		return
	}
	c.pollRunning = true
	go c.runProgressPoll()
}

func (c *Controller) runProgressPoll() {
	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !c.pollOnce() {
			return
		}
	}
}

// pollOnce refreshes progress from the session. Returns false when the loop
// should stop.
func (c *Controller) pollOnce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || !c.isPlaying {
		c.pollRunning = false
		return false
	}

	position := c.session.Position()
	duration := c.session.Duration()
	if duration < 1 {
		duration = 1
	}
	c.position = position
	c.duration = duration
	c.progress = position / duration
	c.broadcastLocked()
	return true
}

// ---- Artwork colors ----

// extractColors derives the dominant color pair for a track's artwork in the
// background. Failures fall back to the neutral palette and never block or
// fail playback.
func (c *Controller) extractColors(track model.Track) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.colors != nil {
		if cached, err := c.colors.Get(ctx, track.ID); err == nil && cached != nil {
			c.setPalette(artwork.Palette{Dominant: cached.Dominant, OnColor: cached.OnColor})
			return
		}
	}

	palette, err := c.resolvePalette(ctx, track)
	if err != nil {
		logger.Debug("Artwork color extraction failed, using defaults",
			logger.Int64("trackId", track.ID), logger.ErrorField(err))
		c.setPalette(defaultPalette)
		return
	}

	if c.colors != nil {
		if err := c.colors.Put(ctx, track.ID, cache.TrackColors{Dominant: palette.Dominant, OnColor: palette.OnColor}); err != nil {
			logger.Debug("Failed to cache artwork colors", logger.ErrorField(err))
		}
	}
	c.setPalette(palette)
}

// resolvePalette reads the artwork behind a display locator. Three locator
// schemes exist: minio:// objects, embedded:// audio files, and plain paths.
func (c *Controller) resolvePalette(ctx context.Context, track model.Track) (artwork.Palette, error) {
	locator := track.DisplayArtworkPath()
	switch {
	case strings.HasPrefix(locator, "minio://"):
		if c.artStore == nil {
			return defaultPalette, errNoArtworkStore
		}
		reader, err := c.artStore.Get(ctx, locator)
		if err != nil {
			return defaultPalette, err
		}
		defer reader.Close()
		return artwork.Extract(reader)

	case strings.HasPrefix(locator, "embedded://"):
		return extractEmbedded(strings.TrimPrefix(locator, "embedded://"))

	case locator != "":
		return artwork.ExtractFromFile(locator)
	}
	return defaultPalette, errNoArtwork
}

// setPalette delivers an extraction result into the control context.
func (c *Controller) setPalette(p artwork.Palette) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.palette = p
	c.broadcastLocked()
}

func (c *Controller) logSessionError(op string, err error) {
	// Session unavailability is a transient condition, not a fault; control
	// operations tolerate the startup connection race.
	logger.Debug("Player session command skipped", logger.String("op", op), logger.ErrorField(err))
}

func queueItems(tracks []model.Track) []player.QueueItem {
	items := make([]player.QueueItem, len(tracks))
	for i := range tracks {
		items[i] = player.QueueItem{TrackID: tracks[i].ID, FilePath: tracks[i].FilePath}
	}
	return items
}
