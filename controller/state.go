package controller

import (
	"sync"

	"PalmFM/artwork"
	"PalmFM/model"

	"github.com/google/uuid"
)

// State is the observable playback session state pushed to the presentation
// layer. It is a value snapshot; the presentation layer never receives shared
// mutable structures or an error channel.
type State struct {
	CurrentTrack *model.Track `json:"currentTrack,omitempty"`
	QueueLength  int          `json:"queueLength"`

	IsPlaying      bool `json:"isPlaying"`
	ShuffleEnabled bool `json:"shuffleEnabled"`
	RepeatMode     int  `json:"repeatMode"`

	Progress float64 `json:"progress"` // 0..1
	Position float64 `json:"position"` // seconds
	Duration float64 `json:"duration"` // seconds

	SleepTimerActive           bool `json:"sleepTimerActive"`
	SleepTimerMinutesRemaining int  `json:"sleepTimerMinutesRemaining"`

	DominantColor   string `json:"dominantColor"`
	OnDominantColor string `json:"onDominantColor"`

	Favorites []int64          `json:"favorites"`
	Settings  model.Settings   `json:"settings"`
	Playlists []model.Playlist `json:"playlists"`
}

// stateHub fans state snapshots out to presentation subscribers, latest-wins
// per subscriber so a slow websocket never blocks the control context.
type stateHub struct {
	mu          sync.RWMutex
	subscribers map[string]chan State
}

func newStateHub() *stateHub {
	return &stateHub{subscribers: make(map[string]chan State)}
}

func (h *stateHub) Subscribe() (string, <-chan State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan State, 1)
	h.subscribers[id] = ch
	return id, ch
}

func (h *stateHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

func (h *stateHub) Publish(state State) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// snapshotLocked builds the State value from the controller's session state.
// Callers must hold c.mu.
func (c *Controller) snapshotLocked() State {
	var current *model.Track
	if c.current != nil {
		copied := *c.current
		current = &copied
	}

	favorites := make([]int64, 0, len(c.favorites))
	for id := range c.favorites {
		favorites = append(favorites, id)
	}

	playlists := append([]model.Playlist(nil), c.playlistList...)

	return State{
		CurrentTrack:               current,
		QueueLength:                len(c.activeQueue),
		IsPlaying:                  c.isPlaying,
		ShuffleEnabled:             c.shuffleEnabled,
		RepeatMode:                 c.repeatMode,
		Progress:                   c.progress,
		Position:                   c.position,
		Duration:                   c.duration,
		SleepTimerActive:           c.sleepTimer.active,
		SleepTimerMinutesRemaining: c.sleepTimer.minutesRemaining,
		DominantColor:              c.palette.Dominant,
		OnDominantColor:            c.palette.OnColor,
		Favorites:                  favorites,
		Settings:                   c.settings,
		Playlists:                  playlists,
	}
}

func (c *Controller) broadcastLocked() {
	c.states.Publish(c.snapshotLocked())
}

// defaultPalette keeps zero-value state presentable before any track plays.
var defaultPalette = artwork.DefaultPalette()
