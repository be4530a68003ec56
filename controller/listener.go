package controller

import (
	"bytes"
	"errors"
	"os"

	"PalmFM/artwork"
	"PalmFM/model"

	"github.com/dhowden/tag"
)

var (
	errNoArtwork      = errors.New("track has no artwork")
	errNoArtworkStore = errors.New("artwork store not configured")
)

// The controller implements player.Listener: session-originated events (which
// may come from outside this application, e.g. another IPC client) re-enter the
// control context here and flow through the same mirror + persist paths as
// locally-initiated changes.

// OnPlayingChanged mirrors the session's play-state and manages the progress
// poll lifecycle.
func (c *Controller) OnPlayingChanged(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isPlaying = playing
	if playing {
		c.startProgressPollLocked()
	}
	c.broadcastLocked()
}

// OnTrackTransition updates the current track when the session advances.
func (c *Controller) OnTrackTransition(trackID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *model.Track
	for i := range c.activeQueue {
		if c.activeQueue[i].ID == trackID {
			copied := c.activeQueue[i]
			next = &copied
			break
		}
	}
	if next == nil {
		for i := range c.allTracks {
			if c.allTracks[i].ID == trackID {
				copied := c.allTracks[i]
				next = &copied
				break
			}
		}
	}
	if next == nil {
		return
	}

	c.current = next
	c.progress = 0
	c.position = 0
	c.duration = next.Duration
	go c.extractColors(*next)
	c.broadcastLocked()
}

// OnShuffleChanged syncs an externally-originated shuffle change: local mirror
// and settings persistence, without re-issuing the session command.
func (c *Controller) OnShuffleChanged(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuffleEnabled == enabled {
		return
	}
	c.applyShuffleLocked(enabled, false)
}

// OnRepeatChanged syncs an externally-originated repeat change.
func (c *Controller) OnRepeatChanged(mode int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repeatMode == mode {
		return
	}
	c.applyRepeatLocked(mode, false)
}

// extractEmbedded pulls the embedded picture out of an audio file and extracts
// its palette.
func extractEmbedded(path string) (artwork.Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return artwork.DefaultPalette(), err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return artwork.DefaultPalette(), err
	}
	pic := meta.Picture()
	if pic == nil {
		return artwork.DefaultPalette(), errNoArtwork
	}
	return artwork.Extract(bytes.NewReader(pic.Data))
}
