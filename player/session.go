package player

// QueueItem is one entry of the ordered queue submitted to the player session.
type QueueItem struct {
	TrackID  int64
	FilePath string
}

// Listener receives push events from the session. Events can originate outside
// the controller, e.g. another IPC client pausing the player directly, so the
// controller must treat these as authoritative and route them through its normal
// sync path.
type Listener interface {
	OnPlayingChanged(playing bool)
	OnTrackTransition(trackID int64)
	OnShuffleChanged(enabled bool)
	OnRepeatChanged(mode int)
}

// Session is the remote player session: the process that actually renders
// audio, decoupled from the controller by this command/event interface.
//
// Implementations return an error from control methods while disconnected; the
// controller treats those as no-op conditions, never as faults.
type Session interface {
	// LoadQueue replaces the session's queue with an ordered snapshot and
	// positions it at startIndex without starting playback.
	LoadQueue(items []QueueItem, startIndex int) error

	Play() error
	Pause() error
	SeekTo(seconds float64) error
	Next() error
	Previous() error
	HasNext() bool
	HasPrevious() bool

	SetShuffle(enabled bool) error
	SetRepeat(mode int) error
	SetSpeed(speed float64) error

	// Reported playback state. The session is the single source of truth for
	// the playing flag; the controller never tracks a separate intent flag.
	Position() float64
	Duration() float64
	IsPlaying() bool

	SetListener(l Listener)
}
