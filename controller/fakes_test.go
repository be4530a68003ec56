package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"PalmFM/model"
	"PalmFM/player"
)

// fakeSession records every command it receives and mirrors the flags a real
// session would report back.
type fakeSession struct {
	mu sync.Mutex

	commands   []string
	queue      []player.QueueItem
	startIndex int

	playing     bool
	position    float64
	duration    float64
	shuffle     bool
	repeat      int
	speed       float64
	hasNext     bool
	hasPrevious bool

	listener player.Listener
}

func (s *fakeSession) record(cmd string) {
	s.commands = append(s.commands, cmd)
}

func (s *fakeSession) LoadQueue(items []player.QueueItem, startIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = items
	s.startIndex = startIndex
	s.record("loadQueue")
	return nil
}

func (s *fakeSession) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.record("play")
	return nil
}

func (s *fakeSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.record("pause")
	return nil
}

func (s *fakeSession) SeekTo(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = seconds
	s.record("seek")
	return nil
}

func (s *fakeSession) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("next")
	return nil
}

func (s *fakeSession) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("previous")
	return nil
}

func (s *fakeSession) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasNext
}

func (s *fakeSession) HasPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPrevious
}

func (s *fakeSession) SetShuffle(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffle = enabled
	s.record("setShuffle")
	return nil
}

func (s *fakeSession) SetRepeat(mode int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = mode
	s.record("setRepeat")
	return nil
}

func (s *fakeSession) SetSpeed(speed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
	s.record("setSpeed")
	return nil
}

func (s *fakeSession) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *fakeSession) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *fakeSession) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *fakeSession) SetListener(l player.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *fakeSession) commandCount(cmd string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.commands {
		if c == cmd {
			n++
		}
	}
	return n
}

func (s *fakeSession) resetCommands() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = nil
}

type overrideWrite struct {
	trackID                           int64
	title, artist, album, artworkPath *string
}

type coreWrite struct {
	trackID                           int64
	title, artist, album, artworkPath string
	duration                          float64
}

// fakeTrackRepo is an in-memory track store. Writes signal on channels so
// tests can wait for the controller's background persistence.
type fakeTrackRepo struct {
	mu        sync.Mutex
	tracks    []model.Track
	overrides chan overrideWrite
	cores     chan coreWrite
	imports   chan []model.Track
	watch     chan []model.Track
}

func newFakeTrackRepo(tracks ...model.Track) *fakeTrackRepo {
	return &fakeTrackRepo{
		tracks:    tracks,
		overrides: make(chan overrideWrite, 8),
		cores:     make(chan coreWrite, 8),
		imports:   make(chan []model.Track, 8),
		watch:     make(chan []model.Track, 1),
	}
}

func (r *fakeTrackRepo) ImportTracks(tracks []model.Track) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	known := make(map[int64]bool, len(r.tracks))
	for _, t := range r.tracks {
		known[t.ID] = true
	}
	var inserted int64
	for _, t := range tracks {
		if !known[t.ID] {
			r.tracks = append(r.tracks, t)
			inserted++
		}
	}
	r.imports <- tracks
	return inserted, nil
}

func (r *fakeTrackRepo) GetTrackByID(id int64) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tracks {
		if r.tracks[i].ID == id {
			copied := r.tracks[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTrackRepo) GetAllTracks() ([]model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Track(nil), r.tracks...), nil
}

func (r *fakeTrackRepo) UpdateOverrides(trackID int64, title, artist, album, artworkPath *string) error {
	r.mu.Lock()
	for i := range r.tracks {
		if r.tracks[i].ID == trackID {
			r.tracks[i].CustomTitle = title
			r.tracks[i].CustomArtist = artist
			r.tracks[i].CustomAlbum = album
			r.tracks[i].CustomArtworkPath = artworkPath
		}
	}
	r.mu.Unlock()
	r.overrides <- overrideWrite{trackID, title, artist, album, artworkPath}
	return nil
}

func (r *fakeTrackRepo) UpdateCore(trackID int64, title, artist, album, artworkPath string, duration float64) error {
	r.mu.Lock()
	for i := range r.tracks {
		if r.tracks[i].ID == trackID {
			r.tracks[i].Title = title
			r.tracks[i].Artist = artist
			r.tracks[i].Album = album
			r.tracks[i].ArtworkPath = artworkPath
			r.tracks[i].Duration = duration
		}
	}
	r.mu.Unlock()
	r.cores <- coreWrite{trackID, title, artist, album, artworkPath, duration}
	return nil
}

func (r *fakeTrackRepo) ClearLibrary() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks = nil
	return nil
}

func (r *fakeTrackRepo) Watch() (string, <-chan []model.Track) {
	return "test", r.watch
}

func (r *fakeTrackRepo) Unwatch(id string) {}

// fakePlaylistRepo is an in-memory playlist store.
type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists []model.Playlist
	members   map[int64][]int64
	nextID    int64
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{members: make(map[int64][]int64), nextID: 1}
}

func (r *fakePlaylistRepo) CreatePlaylist(name string) (*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := model.Playlist{ID: r.nextID, Name: name}
	r.nextID++
	r.playlists = append(r.playlists, p)
	return &p, nil
}

func (r *fakePlaylistRepo) GetAllPlaylists() ([]model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Playlist(nil), r.playlists...), nil
}

func (r *fakePlaylistRepo) AddTrackToPlaylist(playlistID, trackID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.members[playlistID] {
		if id == trackID {
			return nil
		}
	}
	r.members[playlistID] = append(r.members[playlistID], trackID)
	return nil
}

func (r *fakePlaylistRepo) GetPlaylistTracks(playlistID int64) ([]model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tracks := make([]model.Track, 0, len(r.members[playlistID]))
	for _, id := range r.members[playlistID] {
		tracks = append(tracks, model.Track{ID: id})
	}
	return tracks, nil
}

func (r *fakePlaylistRepo) Watch() (string, <-chan []model.Playlist) {
	return "test", make(chan []model.Playlist)
}

func (r *fakePlaylistRepo) Unwatch(id string) {}

// fakeSettingsRepo signals every field-level write so tests can wait for the
// controller's background persistence.
type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings model.Settings

	shuffleWrites chan bool
	repeatWrites  chan int
	timerWrites   chan int
	fullWrites    chan model.Settings
	watch         chan model.Settings
}

func newFakeSettingsRepo(settings model.Settings) *fakeSettingsRepo {
	return &fakeSettingsRepo{
		settings:      settings,
		shuffleWrites: make(chan bool, 8),
		repeatWrites:  make(chan int, 8),
		timerWrites:   make(chan int, 8),
		fullWrites:    make(chan model.Settings, 8),
		watch:         make(chan model.Settings, 1),
	}
}

func (r *fakeSettingsRepo) GetSettings() (model.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, nil
}

func (r *fakeSettingsRepo) UpdateSettings(settings model.Settings) error {
	r.mu.Lock()
	r.settings = settings
	r.mu.Unlock()
	r.fullWrites <- settings
	return nil
}

func (r *fakeSettingsRepo) UpdateShuffleEnabled(enabled bool) error {
	r.mu.Lock()
	r.settings.ShuffleEnabled = enabled
	r.mu.Unlock()
	r.shuffleWrites <- enabled
	return nil
}

func (r *fakeSettingsRepo) UpdateRepeatMode(mode int) error {
	r.mu.Lock()
	r.settings.RepeatMode = mode
	r.mu.Unlock()
	r.repeatWrites <- mode
	return nil
}

func (r *fakeSettingsRepo) UpdateSleepTimer(minutes int) error {
	r.mu.Lock()
	r.settings.SleepTimerMinutes = minutes
	r.mu.Unlock()
	r.timerWrites <- minutes
	return nil
}

func (r *fakeSettingsRepo) Watch() (string, <-chan model.Settings) {
	return "test", r.watch
}

func (r *fakeSettingsRepo) Unwatch(id string) {}

// fakeScanner returns a fixed device index.
type fakeScanner struct {
	tracks []model.Track
	err    error
}

func (s *fakeScanner) Scan(ctx context.Context, cacheArt bool) ([]model.Track, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]model.Track(nil), s.tracks...), nil
}

// testEnv bundles a controller wired against fakes.
type testEnv struct {
	ctrl     *Controller
	session  *fakeSession
	tracks   *fakeTrackRepo
	lists    *fakePlaylistRepo
	settings *fakeSettingsRepo
	scanner  *fakeScanner
	cancel   context.CancelFunc
}

func newTestEnv(t *testing.T, library ...model.Track) *testEnv {
	t.Helper()

	session := &fakeSession{duration: 200}
	tracks := newFakeTrackRepo(library...)
	lists := newFakePlaylistRepo()
	settings := newFakeSettingsRepo(model.DefaultSettings())
	scanner := &fakeScanner{}

	ctrl := New(Deps{
		Tracks:    tracks,
		Playlists: lists,
		Settings:  settings,
		Scanner:   scanner,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := ctrl.Run(ctx); err != nil {
		cancel()
		t.Fatalf("Run() error: %v", err)
	}
	t.Cleanup(cancel)

	ctrl.AttachSession(session)
	session.resetCommands()

	return &testEnv{
		ctrl:     ctrl,
		session:  session,
		tracks:   tracks,
		lists:    lists,
		settings: settings,
		scanner:  scanner,
		cancel:   cancel,
	}
}

// waitFor receives from ch or fails the test after a second.
func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

// eventually polls cond until it holds or a second passes. Used for effects
// that arrive through the store subscription goroutine.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
