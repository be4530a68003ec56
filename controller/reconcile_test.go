package controller

import (
	"errors"
	"testing"

	"PalmFM/model"
)

func TestReconcileInsertsNewDeviceTracks(t *testing.T) {
	env := newTestEnv(t, libraryOfThree()...)
	env.scanner.tracks = append(libraryOfThree(),
		model.Track{ID: 4, Title: "Delta", FilePath: "/music/d.mp3"})

	result, err := env.ctrl.ReconcileWithDevice(t.Context())
	if err != nil {
		t.Fatalf("ReconcileWithDevice() error: %v", err)
	}

	if result.Scanned != 4 {
		t.Errorf("Scanned = %d, want 4", result.Scanned)
	}
	if result.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", result.Inserted)
	}
	if result.Updated != 0 {
		t.Errorf("Updated = %d, want 0", result.Updated)
	}

	imported := waitFor(t, env.tracks.imports, "import write")
	if len(imported) != 1 || imported[0].ID != 4 {
		t.Errorf("imported = %v, want only track 4", imported)
	}
}

func TestReconcileRefreshesChangedCoreMetadata(t *testing.T) {
	env := newTestEnv(t, libraryOfThree()...)

	device := libraryOfThree()
	device[0].Title = "Alpha (Remastered)"
	env.scanner.tracks = device

	result, err := env.ctrl.ReconcileWithDevice(t.Context())
	if err != nil {
		t.Fatalf("ReconcileWithDevice() error: %v", err)
	}

	if result.Updated != 1 {
		t.Errorf("Updated = %d, want 1", result.Updated)
	}
	if result.Inserted != 0 {
		t.Errorf("Inserted = %d, want 0", result.Inserted)
	}

	write := waitFor(t, env.tracks.cores, "core write")
	if write.trackID != 1 || write.title != "Alpha (Remastered)" {
		t.Errorf("core write = %+v, want track 1 retitled", write)
	}
}

func TestReconcileKeepsOverridesIntact(t *testing.T) {
	library := libraryOfThree()
	custom := "My Name For It"
	library[0].CustomTitle = &custom
	env := newTestEnv(t, library...)

	device := libraryOfThree()
	device[0].Title = "Alpha (Remastered)"
	env.scanner.tracks = device

	if _, err := env.ctrl.ReconcileWithDevice(t.Context()); err != nil {
		t.Fatalf("ReconcileWithDevice() error: %v", err)
	}
	waitFor(t, env.tracks.cores, "core write")

	stored, err := env.tracks.GetTrackByID(1)
	if err != nil || stored == nil {
		t.Fatalf("GetTrackByID() = %v, %v", stored, err)
	}
	if stored.Title != "Alpha (Remastered)" {
		t.Errorf("core title = %q, want refreshed value", stored.Title)
	}
	if stored.CustomTitle == nil || *stored.CustomTitle != custom {
		t.Errorf("CustomTitle = %v, want untouched override", stored.CustomTitle)
	}
	if got := stored.DisplayTitle(); got != custom {
		t.Errorf("DisplayTitle() = %q, want override %q", got, custom)
	}
}

func TestReconcileToleratesSmallDurationDrift(t *testing.T) {
	env := newTestEnv(t, libraryOfThree()...)

	device := libraryOfThree()
	device[0].Duration += 0.5 // within tolerance
	device[1].Duration += 3.0 // beyond tolerance
	env.scanner.tracks = device

	result, err := env.ctrl.ReconcileWithDevice(t.Context())
	if err != nil {
		t.Fatalf("ReconcileWithDevice() error: %v", err)
	}

	if result.Updated != 1 {
		t.Fatalf("Updated = %d, want 1", result.Updated)
	}
	write := waitFor(t, env.tracks.cores, "core write")
	if write.trackID != 2 {
		t.Errorf("core write for track %d, want 2", write.trackID)
	}
}

func TestReconcileNeverDeletesMissingTracks(t *testing.T) {
	env := newTestEnv(t, libraryOfThree()...)

	// The device only reports one of the three known tracks.
	env.scanner.tracks = libraryOfThree()[:1]

	result, err := env.ctrl.ReconcileWithDevice(t.Context())
	if err != nil {
		t.Fatalf("ReconcileWithDevice() error: %v", err)
	}
	if result.Scanned != 1 || result.Inserted != 0 || result.Updated != 0 {
		t.Errorf("result = %+v, want scanned 1 and no writes", result)
	}

	all, err := env.tracks.GetAllTracks()
	if err != nil {
		t.Fatalf("GetAllTracks() error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("library has %d tracks, want all 3 kept", len(all))
	}
}

func TestReconcilePropagatesScanFailure(t *testing.T) {
	env := newTestEnv(t, libraryOfThree()...)
	env.scanner.err = errors.New("device busy")

	if _, err := env.ctrl.ReconcileWithDevice(t.Context()); err == nil {
		t.Fatal("ReconcileWithDevice() error = nil, want scan failure")
	}
}

func TestGetDeviceTracksIsReadOnly(t *testing.T) {
	env := newTestEnv(t)
	env.scanner.tracks = libraryOfThree()

	tracks, err := env.ctrl.GetDeviceTracks(t.Context())
	if err != nil {
		t.Fatalf("GetDeviceTracks() error: %v", err)
	}
	if len(tracks) != 3 {
		t.Errorf("got %d device tracks, want 3", len(tracks))
	}

	all, err := env.tracks.GetAllTracks()
	if err != nil {
		t.Fatalf("GetAllTracks() error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("library has %d tracks after a read-only listing, want 0", len(all))
	}
}
