package cmd

import (
	"context"

	"PalmFM/artwork"
	"PalmFM/cache"
	"PalmFM/config"
	"PalmFM/controller"
	"PalmFM/db"
	"PalmFM/logger"
	"PalmFM/player"
	"PalmFM/repository"
	"PalmFM/scanner"
	"PalmFM/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PalmFM daemon",
	Long:  `Runs the library index, the playback controller, the device watcher and the HTTP API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	gdb, err := db.ConnectGorm(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGorm(gdb)
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("Failed to migrate database", logger.ErrorField(err))
	}

	// Redis and MinIO are optional backends. Without Redis the favorites set
	// and the color cache are simply absent; without MinIO artwork stays
	// embedded in the audio files.
	var (
		favorites cache.FavoritesStore
		colors    *cache.ColorCache
	)
	if rdb, err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, favorites and color cache disabled", logger.ErrorField(err))
	} else {
		favorites = cache.NewRedisFavorites(rdb)
		colors = cache.NewColorCache(rdb)
	}

	var artStore *artwork.Store
	if cfg.MinioEnabled {
		artStore, err = artwork.NewStore(cfg)
		if err != nil {
			logger.Warn("MinIO unavailable, artwork caching disabled", logger.ErrorField(err))
			artStore = nil
		}
	}

	sc := scanner.NewScanner(cfg.MusicDir, artStore)

	ctrl := controller.New(controller.Deps{
		Tracks:    repository.NewMySQLTrackRepository(gdb),
		Playlists: repository.NewMySQLPlaylistRepository(gdb),
		Settings:  repository.NewMySQLSettingsRepository(gdb),
		Scanner:   sc,
		Favorites: favorites,
		Colors:    colors,
		Artwork:   artStore,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctrl.Run(ctx); err != nil {
		logger.Fatal("Failed to start controller", logger.ErrorField(err))
	}

	go connectSession(ctx, cfg, ctrl)

	watcher := scanner.NewWatcher(cfg.MusicDir, func() {
		if !ctrl.Settings().AutoScanLibrary {
			return
		}
		if _, err := ctrl.ReconcileWithDevice(ctx); err != nil {
			logger.Error("Auto reconciliation failed", logger.ErrorField(err))
		}
	})
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Warn("Device watcher stopped", logger.ErrorField(err))
		}
	}()

	srv := server.New(cfg, ctrl)
	if err := srv.Start(); err != nil {
		logger.Fatal("Server exited", logger.ErrorField(err))
	}
}

// connectSession brings up the player session and attaches it once reachable.
// The daemon stays useful without a session; library and settings operations
// do not depend on it.
func connectSession(ctx context.Context, cfg *config.Config, ctrl *controller.Controller) {
	if cfg.SpawnPlayer {
		if _, err := player.Spawn(ctx, cfg.MPVBin, cfg.MPVSocket); err != nil {
			logger.Error("Failed to spawn player", logger.ErrorField(err))
			return
		}
	}

	session := player.NewMPVSession(cfg.MPVSocket)
	if err := session.Connect(ctx); err != nil {
		logger.Error("Failed to connect player session",
			logger.String("socket", cfg.MPVSocket), logger.ErrorField(err))
		return
	}

	ctrl.AttachSession(session)
	logger.Info("Player session attached", logger.String("socket", cfg.MPVSocket))
}
