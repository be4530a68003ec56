package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"sync"
	"time"

	"PalmFM/logger"
	"PalmFM/model"
)

const commandTimeout = 3 * time.Second

// MPVSession drives an mpv process over its JSON IPC socket. mpv owns audio
// decoding and output; this type only translates the Session contract into IPC
// commands and mirrors the properties mpv pushes back.
type MPVSession struct {
	socketPath string

	mu       sync.Mutex
	conn     net.Conn
	listener Listener

	queue    []QueueItem
	index    int
	shuffle  bool
	repeat   int
	playing  bool
	position float64
	duration float64

	nextRequestID int64
	pending       map[int64]chan mpvResponse
}

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
}

type mpvEvent struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
}

// NewMPVSession creates a session for the given IPC socket path. The session is
// unusable until Connect succeeds; control calls before that return errors.
func NewMPVSession(socketPath string) *MPVSession {
	return &MPVSession{
		socketPath: socketPath,
		index:      -1,
		pending:    make(map[int64]chan mpvResponse),
	}
}

// Spawn starts an idle mpv process serving the IPC socket. The returned command
// is already started; the caller owns its lifetime.
func Spawn(ctx context.Context, mpvBin, socketPath string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, mpvBin,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server="+socketPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}
	return cmd, nil
}

// Connect dials the IPC socket, retrying until ctx expires, then starts the
// event read loop and subscribes to the properties the controller mirrors.
func (s *MPVSession) Connect(ctx context.Context) error {
	var conn net.Conn
	var err error
	for {
		conn, err = net.Dial("unix", s.socketPath)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to connect to mpv socket %s: %w", s.socketPath, err)
		case <-time.After(200 * time.Millisecond):
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)

	// Property observes drive the push-based listener events.
	observed := []string{"pause", "time-pos", "duration", "playlist-pos"}
	for i, name := range observed {
		if _, err := s.command("observe_property", int64(i+1), name); err != nil {
			return fmt.Errorf("failed to observe mpv property %s: %w", name, err)
		}
	}

	logger.Info("Connected to mpv session", logger.String("socket", s.socketPath))
	return nil
}

// Close tears down the IPC connection.
func (s *MPVSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *MPVSession) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		var ev mpvEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}

		if ev.Event == "" && ev.RequestID != 0 {
			s.mu.Lock()
			ch, ok := s.pending[ev.RequestID]
			if ok {
				delete(s.pending, ev.RequestID)
			}
			s.mu.Unlock()
			if ok {
				ch <- mpvResponse{Error: ev.Error, Data: ev.Data, RequestID: ev.RequestID}
			}
			continue
		}

		if ev.Event == "property-change" {
			s.handlePropertyChange(ev)
		}
	}

	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
	logger.Warn("mpv session disconnected")
}

func (s *MPVSession) handlePropertyChange(ev mpvEvent) {
	switch ev.Name {
	case "pause":
		var paused bool
		if json.Unmarshal(ev.Data, &paused) != nil {
			return
		}
		s.mu.Lock()
		changed := s.playing == paused
		s.playing = !paused
		l := s.listener
		playing := s.playing
		s.mu.Unlock()
		if changed && l != nil {
			l.OnPlayingChanged(playing)
		}

	case "time-pos":
		var pos float64
		if json.Unmarshal(ev.Data, &pos) == nil {
			s.mu.Lock()
			s.position = pos
			s.mu.Unlock()
		}

	case "duration":
		var dur float64
		if json.Unmarshal(ev.Data, &dur) == nil {
			s.mu.Lock()
			s.duration = dur
			s.mu.Unlock()
		}

	case "playlist-pos":
		var pos int
		if json.Unmarshal(ev.Data, &pos) != nil {
			return
		}
		s.mu.Lock()
		s.index = pos
		var trackID int64
		if pos >= 0 && pos < len(s.queue) {
			trackID = s.queue[pos].TrackID
		}
		l := s.listener
		s.mu.Unlock()
		if trackID != 0 && l != nil {
			l.OnTrackTransition(trackID)
		}
	}
}

// command issues one IPC command and waits for its response.
func (s *MPVSession) command(args ...interface{}) (json.RawMessage, error) {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("mpv session not connected")
	}
	s.nextRequestID++
	id := s.nextRequestID
	ch := make(chan mpvResponse, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	payload, err := json.Marshal(map[string]interface{}{
		"command":    args,
		"request_id": id,
	})
	if err != nil {
		return nil, err
	}
	payload = append(payload, '\n')

	if _, err := conn.Write(payload); err != nil {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to write mpv command: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv command failed: %s", resp.Error)
		}
		return resp.Data, nil
	case <-time.After(commandTimeout):
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("mpv command timed out")
	}
}

func (s *MPVSession) setProperty(name string, value interface{}) error {
	_, err := s.command("set_property", name, value)
	return err
}

// LoadQueue replaces mpv's playlist with the queue snapshot and positions it at
// startIndex, paused.
func (s *MPVSession) LoadQueue(items []QueueItem, startIndex int) error {
	if len(items) == 0 {
		return fmt.Errorf("empty queue")
	}
	if startIndex < 0 || startIndex >= len(items) {
		return fmt.Errorf("start index %d out of range", startIndex)
	}

	if _, err := s.command("loadfile", items[0].FilePath, "replace"); err != nil {
		return err
	}
	for _, item := range items[1:] {
		if _, err := s.command("loadfile", item.FilePath, "append"); err != nil {
			return err
		}
	}
	if err := s.setProperty("playlist-pos", startIndex); err != nil {
		return err
	}
	if err := s.setProperty("pause", true); err != nil {
		return err
	}

	s.mu.Lock()
	s.queue = append([]QueueItem(nil), items...)
	s.index = startIndex
	s.mu.Unlock()
	return nil
}

func (s *MPVSession) Play() error {
	return s.setProperty("pause", false)
}

func (s *MPVSession) Pause() error {
	return s.setProperty("pause", true)
}

func (s *MPVSession) SeekTo(seconds float64) error {
	_, err := s.command("seek", seconds, "absolute")
	return err
}

func (s *MPVSession) Next() error {
	_, err := s.command("playlist-next")
	return err
}

func (s *MPVSession) Previous() error {
	_, err := s.command("playlist-prev")
	return err
}

func (s *MPVSession) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index >= 0 && s.index < len(s.queue)-1
}

func (s *MPVSession) HasPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

// SetShuffle shuffles or restores the playlist order. mpv has no persistent
// shuffle flag, so the flag lives here and listener events are emitted locally.
func (s *MPVSession) SetShuffle(enabled bool) error {
	cmd := "playlist-unshuffle"
	if enabled {
		cmd = "playlist-shuffle"
	}
	if _, err := s.command(cmd); err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.shuffle != enabled
	s.shuffle = enabled
	l := s.listener
	s.mu.Unlock()
	if changed && l != nil {
		l.OnShuffleChanged(enabled)
	}
	return nil
}

// SetRepeat maps the repeat mode onto mpv's loop-file / loop-playlist pair.
func (s *MPVSession) SetRepeat(mode int) error {
	loopFile, loopPlaylist := "no", "no"
	switch mode {
	case model.RepeatOne:
		loopFile = "inf"
	case model.RepeatAll:
		loopPlaylist = "inf"
	}
	if err := s.setProperty("loop-file", loopFile); err != nil {
		return err
	}
	if err := s.setProperty("loop-playlist", loopPlaylist); err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.repeat != mode
	s.repeat = mode
	l := s.listener
	s.mu.Unlock()
	if changed && l != nil {
		l.OnRepeatChanged(mode)
	}
	return nil
}

func (s *MPVSession) SetSpeed(speed float64) error {
	return s.setProperty("speed", speed)
}

func (s *MPVSession) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *MPVSession) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *MPVSession) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.playing
}

func (s *MPVSession) SetListener(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}
