package model

import "testing"

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.ID != SettingsID {
		t.Errorf("ID = %d, want %d", s.ID, SettingsID)
	}
	if s.ShuffleEnabled {
		t.Error("ShuffleEnabled should default to false")
	}
	if s.RepeatMode != RepeatOff {
		t.Errorf("RepeatMode = %d, want RepeatOff", s.RepeatMode)
	}
	if !s.GaplessPlayback {
		t.Error("GaplessPlayback should default to true")
	}
	if s.PlaybackSpeed != 1.0 {
		t.Errorf("PlaybackSpeed = %v, want 1.0", s.PlaybackSpeed)
	}
	if s.EqualizerPreset != "Normal" {
		t.Errorf("EqualizerPreset = %q, want Normal", s.EqualizerPreset)
	}
	if !s.DarkThemeEnabled {
		t.Error("DarkThemeEnabled should default to true")
	}
	if !s.AutoScanLibrary {
		t.Error("AutoScanLibrary should default to true")
	}
	if !s.CacheAlbumArt {
		t.Error("CacheAlbumArt should default to true")
	}
	if s.SortOrder != SortByTitle {
		t.Errorf("SortOrder = %q, want %q", s.SortOrder, SortByTitle)
	}
	if s.SleepTimerMinutes != 0 {
		t.Errorf("SleepTimerMinutes = %d, want 0", s.SleepTimerMinutes)
	}
}

func TestClampedSpeed(t *testing.T) {
	tests := []struct {
		speed float64
		want  float64
	}{
		{0.1, 0.5},
		{0.5, 0.5},
		{1.0, 1.0},
		{1.75, 1.75},
		{2.0, 2.0},
		{3.5, 2.0},
		{-1, 0.5},
	}
	for _, tt := range tests {
		s := Settings{PlaybackSpeed: tt.speed}
		if got := s.ClampedSpeed(); got != tt.want {
			t.Errorf("ClampedSpeed(%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestNextRepeatMode(t *testing.T) {
	if got := NextRepeatMode(RepeatOff); got != RepeatOne {
		t.Errorf("NextRepeatMode(RepeatOff) = %d, want RepeatOne", got)
	}
	if got := NextRepeatMode(RepeatOne); got != RepeatAll {
		t.Errorf("NextRepeatMode(RepeatOne) = %d, want RepeatAll", got)
	}
	if got := NextRepeatMode(RepeatAll); got != RepeatOff {
		t.Errorf("NextRepeatMode(RepeatAll) = %d, want RepeatOff", got)
	}

	// Three steps return to the starting mode.
	mode := RepeatOff
	for i := 0; i < 3; i++ {
		mode = NextRepeatMode(mode)
	}
	if mode != RepeatOff {
		t.Errorf("cycle of three should return to RepeatOff, got %d", mode)
	}
}
