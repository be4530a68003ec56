package model

import "testing"

func strPtr(s string) *string { return &s }

func TestDisplayFieldsResolveOverrides(t *testing.T) {
	tests := []struct {
		name       string
		track      Track
		wantTitle  string
		wantArtist string
		wantAlbum  string
		wantArt    string
	}{
		{
			name: "no overrides",
			track: Track{
				Title:       "Blue in Green",
				Artist:      "Miles Davis",
				Album:       "Kind of Blue",
				ArtworkPath: "embedded:///music/blue.flac",
			},
			wantTitle:  "Blue in Green",
			wantArtist: "Miles Davis",
			wantAlbum:  "Kind of Blue",
			wantArt:    "embedded:///music/blue.flac",
		},
		{
			name: "full overrides",
			track: Track{
				Title:             "trk001",
				Artist:            "Unknown Artist",
				Album:             "Unknown Album",
				ArtworkPath:       "embedded:///music/trk001.mp3",
				CustomTitle:       strPtr("So What"),
				CustomArtist:      strPtr("Miles Davis"),
				CustomAlbum:       strPtr("Kind of Blue"),
				CustomArtworkPath: strPtr("/covers/kind-of-blue.jpg"),
			},
			wantTitle:  "So What",
			wantArtist: "Miles Davis",
			wantAlbum:  "Kind of Blue",
			wantArt:    "/covers/kind-of-blue.jpg",
		},
		{
			name: "partial overrides keep core for the rest",
			track: Track{
				Title:       "Track 7",
				Artist:      "Unknown Artist",
				Album:       "Singles",
				CustomTitle: strPtr("Naima"),
			},
			wantTitle:  "Naima",
			wantArtist: "Unknown Artist",
			wantAlbum:  "Singles",
			wantArt:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.DisplayTitle(); got != tt.wantTitle {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.wantTitle)
			}
			if got := tt.track.DisplayArtist(); got != tt.wantArtist {
				t.Errorf("DisplayArtist() = %q, want %q", got, tt.wantArtist)
			}
			if got := tt.track.DisplayAlbum(); got != tt.wantAlbum {
				t.Errorf("DisplayAlbum() = %q, want %q", got, tt.wantAlbum)
			}
			if got := tt.track.DisplayArtworkPath(); got != tt.wantArt {
				t.Errorf("DisplayArtworkPath() = %q, want %q", got, tt.wantArt)
			}
		})
	}
}

func TestEmptyOverrideStillWins(t *testing.T) {
	// A present-but-empty override is distinct from "no override". The store
	// layer never writes empty overrides, but the display resolution must not
	// second-guess a non-nil pointer.
	track := Track{Title: "Core", CustomTitle: strPtr("")}
	if got := track.DisplayTitle(); got != "" {
		t.Errorf("DisplayTitle() = %q, want empty override to win", got)
	}
}
